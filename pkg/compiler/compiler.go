package compiler

import (
	"context"
	stderrors "errors"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/matzehuels/deploygraph/pkg/errors"
	"github.com/matzehuels/deploygraph/pkg/observability"
	"github.com/matzehuels/deploygraph/pkg/semantic"
)

// DefaultModuleFile is the file a directory module source resolves to.
const DefaultModuleFile = "main.tf"

// Options configures a compilation.
type Options struct {
	// Logger receives debug output. Defaults to log.Default().
	Logger *log.Logger
}

// Compilation is the result of compiling an entry document and every local
// module reachable from it.
type Compilation struct {
	// ID distinguishes compilations of the same document.
	ID uuid.UUID
	// URI is the entry document as it was requested.
	URI string
	// Entry is the model of the entry document.
	Entry semantic.Model
	// Created is when compilation finished.
	Created time.Time

	files   []string
	missing []string
	errors  int
}

// Files returns the absolute paths of all compiled documents, sorted.
func (c *Compilation) Files() []string { return slices.Clone(c.files) }

// Includes reports whether a change to path can change the result of
// compiling c.URI again: path was compiled, or it is or lies below the
// missing target of a module.
func (c *Compilation) Includes(path string) bool {
	path = filepath.Clean(path)
	if _, found := slices.BinarySearch(c.files, path); found {
		return true
	}
	for _, m := range c.missing {
		if path == m || strings.HasPrefix(path, m+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

// Dirs returns the directories holding compiled documents and missing
// module targets, sorted and without duplicates.
func (c *Compilation) Dirs() []string {
	var dirs []string
	for _, p := range c.files {
		dirs = append(dirs, filepath.Dir(p))
	}
	for _, p := range c.missing {
		dirs = append(dirs, filepath.Dir(p))
	}
	slices.Sort(dirs)
	return slices.Compact(dirs)
}

// ErrorCount returns the number of error diagnostics across all documents.
func (c *Compilation) ErrorCount() int { return c.errors }

// Compile compiles the document identified by uri.
//
// uri is a file:// URI or a filesystem path. Compile fails only when uri is
// invalid, the entry document cannot be read, or ctx is cancelled.
func Compile(ctx context.Context, uri string, opts Options) (*Compilation, error) {
	path, err := errors.DocumentPath(uri)
	if err != nil {
		return nil, err
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}

	start := time.Now()
	c := &compiler{
		ctx:     ctx,
		logger:  opts.Logger,
		parser:  hclparse.NewParser(),
		docs:    make(map[string]*document),
		active:  make(map[string]bool),
		missing: make(map[string]bool),
	}

	entry, err := c.load(path)
	if err != nil {
		observability.Compile().OnCompile(ctx, uri, len(c.docs), 0, time.Since(start), err)
		return nil, err
	}
	entry.uri = uri

	comp := &Compilation{
		ID:      uuid.New(),
		URI:     uri,
		Entry:   entry,
		Created: time.Now(),
	}
	for p, doc := range c.docs {
		comp.files = append(comp.files, p)
		comp.errors += len(semantic.Errors(doc))
	}
	slices.Sort(comp.files)
	for p := range c.missing {
		comp.missing = append(comp.missing, p)
	}
	slices.Sort(comp.missing)

	observability.Compile().OnCompile(ctx, uri, len(comp.files), comp.errors, time.Since(start), nil)
	c.logger.Debug("compiled",
		"uri", uri,
		"id", comp.ID,
		"documents", len(comp.files),
		"errors", comp.errors)
	return comp, nil
}

// compiler holds the per-compilation document cache.
type compiler struct {
	ctx    context.Context
	logger *log.Logger
	parser *hclparse.Parser
	docs   map[string]*document
	// active holds the documents currently being compiled, for cycle detection.
	active map[string]bool
	// missing holds module targets that could not be read.
	missing map[string]bool
}

// load compiles the document at path and, recursively, its local modules.
func (c *compiler) load(path string) (*document, error) {
	if doc, ok := c.docs[path]; ok {
		return doc, nil
	}
	if err := c.ctx.Err(); err != nil {
		return nil, err
	}

	src, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeDocumentNotFound, err, "read %s", path)
	}

	c.active[path] = true
	defer delete(c.active, path)

	doc := newDocument(fileURI(path), path, src)
	file, diags := c.parser.ParseHCL(src, path)
	doc.addHCLDiagnostics(diags)
	if file != nil {
		doc.compile(file.Body)
	}

	for _, mod := range doc.modules {
		if err := c.link(doc, mod); err != nil {
			return nil, err
		}
	}

	c.docs[path] = doc
	c.logger.Debug("compiled document",
		"path", path,
		"symbols", len(doc.symbols),
		"diagnostics", len(doc.diags),
		"modules", len(doc.nested))
	return doc, nil
}

// link resolves the nested model of a module declaration with a local source.
func (c *compiler) link(doc *document, mod moduleDecl) error {
	target := filepath.Join(filepath.Dir(doc.path), filepath.FromSlash(mod.source))
	if info, err := os.Stat(target); err == nil && info.IsDir() {
		target = filepath.Join(target, DefaultModuleFile)
	}

	if c.active[target] {
		doc.errorf(mod.span, "module-cycle", "module source %q refers back to a document that includes it", mod.source)
		return nil
	}

	nested, err := c.load(target)
	switch {
	case err == nil:
		doc.nested[mod.symbol] = nested
		return nil
	case c.ctx.Err() != nil:
		return c.ctx.Err()
	case errors.Is(err, errors.ErrCodeDocumentNotFound):
		c.missing[target] = true
		if isNotExist(err) {
			doc.errorf(mod.span, "module-not-found", "module source %q not found", mod.source)
		} else {
			doc.errorf(mod.span, "module-unreadable", "module source %q: %s", mod.source, errors.UserMessage(err))
		}
		return nil
	default:
		return err
	}
}

func isLocalSource(source string) bool {
	return strings.HasPrefix(source, "./") || strings.HasPrefix(source, "../")
}

func isNotExist(err error) bool {
	return stderrors.Is(err, fs.ErrNotExist)
}

func fileURI(path string) string {
	return (&url.URL{Scheme: "file", Path: filepath.ToSlash(path)}).String()
}
