package errors

import (
	"net/url"
	"path/filepath"
	"slices"
	"strings"
	"unicode"
)

// Output formats accepted by [ValidateFormat].
var formats = []string{"json", "yaml", "dot"}

// ValidateDocumentURI validates a document identifier for safety.
// Accepted forms are file:// URIs and plain filesystem paths.
//
// Validation rules:
//   - URI cannot be empty
//   - Maximum length of 2048 characters
//   - No null bytes or control characters
//   - Only the file scheme is supported
func ValidateDocumentURI(uri string) error {
	if uri == "" {
		return New(ErrCodeInvalidURI, "document URI cannot be empty")
	}

	const maxURILength = 2048
	if len(uri) > maxURILength {
		return New(ErrCodeInvalidURI, "document URI too long (max %d characters)", maxURILength)
	}

	for _, r := range uri {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidURI, "document URI contains invalid characters")
		}
	}

	if !strings.Contains(uri, "://") {
		return nil
	}

	u, err := url.Parse(uri)
	if err != nil {
		return Wrap(ErrCodeInvalidURI, err, "malformed document URI")
	}
	if u.Scheme != "file" {
		return New(ErrCodeInvalidURI, "unsupported URI scheme: %q", u.Scheme)
	}
	if u.Path == "" {
		return New(ErrCodeInvalidURI, "document URI has no path")
	}
	return nil
}

// DocumentPath converts a validated document URI to a cleaned absolute path.
func DocumentPath(uri string) (string, error) {
	if err := ValidateDocumentURI(uri); err != nil {
		return "", err
	}
	p := uri
	if strings.Contains(uri, "://") {
		u, _ := url.Parse(uri)
		p = filepath.FromSlash(u.Path)
	}
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", Wrap(ErrCodeInvalidURI, err, "resolve %s", p)
	}
	return abs, nil
}

// ValidateFormat checks that format names a supported graph output format.
func ValidateFormat(format string) error {
	if !slices.Contains(formats, format) {
		return New(ErrCodeInvalidFormat, "unsupported format %q (want one of %s)", format, strings.Join(formats, ", "))
	}
	return nil
}
