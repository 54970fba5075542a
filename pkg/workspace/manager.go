package workspace

import (
	"context"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/deploygraph/pkg/builder"
	"github.com/matzehuels/deploygraph/pkg/compiler"
	"github.com/matzehuels/deploygraph/pkg/errors"
	"github.com/matzehuels/deploygraph/pkg/graph"
)

// Options configures a Manager.
type Options struct {
	// Build is passed to every graph build. A nil Build.Logger is replaced by
	// Logger.
	Build builder.Options
	// Logger defaults to log.Default().
	Logger *log.Logger
}

// Manager holds one compilation per open document. It is safe for
// concurrent use.
type Manager struct {
	opts   Options
	logger *log.Logger

	mu   sync.RWMutex
	docs map[string]*compiler.Compilation // keyed by document path

	// opened is signalled whenever the set of watched directories may grow.
	opened chan struct{}
}

// New returns an empty Manager.
func New(opts Options) *Manager {
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.Build.Logger == nil {
		opts.Build.Logger = opts.Logger
	}
	return &Manager{
		opts:   opts,
		logger: opts.Logger,
		docs:   make(map[string]*compiler.Compilation),
		opened: make(chan struct{}, 1),
	}
}

// Open compiles the document at uri and keeps the result, replacing any
// previous compilation of the same document.
func (m *Manager) Open(ctx context.Context, uri string) (*compiler.Compilation, error) {
	path, err := errors.DocumentPath(uri)
	if err != nil {
		return nil, err
	}
	comp, err := compiler.Compile(ctx, uri, compiler.Options{Logger: m.logger})
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.docs[path] = comp
	m.mu.Unlock()

	select {
	case m.opened <- struct{}{}:
	default:
	}

	m.logger.Info("opened document", "uri", uri, "documents", len(comp.Files()), "errors", comp.ErrorCount())
	return comp, nil
}

// Close forgets the compilation of uri and reports whether there was one.
func (m *Manager) Close(uri string) bool {
	path, err := errors.DocumentPath(uri)
	if err != nil {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.docs[path]
	delete(m.docs, path)
	if ok {
		m.logger.Debug("closed document", "uri", uri)
	}
	return ok
}

// Compilation returns the current compilation of uri.
func (m *Manager) Compilation(uri string) (*compiler.Compilation, bool) {
	path, err := errors.DocumentPath(uri)
	if err != nil {
		return nil, false
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	comp, ok := m.docs[path]
	return comp, ok
}

// Documents returns the paths of all open documents, sorted.
func (m *Manager) Documents() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Sorted(maps.Keys(m.docs))
}

// Refresh recompiles every open document whose compilation depends on path
// and returns the paths of the documents it recompiled. A document whose
// entry file can no longer be read is closed.
func (m *Manager) Refresh(ctx context.Context, path string) ([]string, error) {
	m.mu.RLock()
	var stale []*compiler.Compilation
	for _, comp := range m.docs {
		if comp.Includes(path) {
			stale = append(stale, comp)
		}
	}
	m.mu.RUnlock()

	slices.SortFunc(stale, func(a, b *compiler.Compilation) int { return strings.Compare(a.URI, b.URI) })

	var refreshed []string
	for _, old := range stale {
		if err := ctx.Err(); err != nil {
			return refreshed, err
		}
		key, _ := errors.DocumentPath(old.URI)
		comp, err := compiler.Compile(ctx, old.URI, compiler.Options{Logger: m.logger})

		m.mu.Lock()
		// Skip documents closed or reopened while compiling.
		if m.docs[key] != old {
			m.mu.Unlock()
			continue
		}
		switch {
		case err == nil:
			m.docs[key] = comp
		case errors.Is(err, errors.ErrCodeDocumentNotFound):
			delete(m.docs, key)
		default:
			m.mu.Unlock()
			return refreshed, err
		}
		m.mu.Unlock()

		if err != nil {
			m.logger.Warn("closed unreadable document", "uri", old.URI, "err", errors.UserMessage(err))
			continue
		}
		refreshed = append(refreshed, key)
		m.logger.Debug("recompiled document", "uri", old.URI, "changed", path, "errors", comp.ErrorCount())
	}
	return refreshed, nil
}

// DeploymentGraph builds the deployment graph of uri from its current
// compilation. It returns nil and no error when the document has not been
// compiled; the caller is expected to ask again later.
func (m *Manager) DeploymentGraph(ctx context.Context, uri string) (*graph.Graph, error) {
	if err := errors.ValidateDocumentURI(uri); err != nil {
		return nil, err
	}
	comp, ok := m.Compilation(uri)
	if !ok {
		m.logger.Error("deployment graph requested for a document without compilation", "uri", uri)
		return nil, nil
	}
	return builder.Build(ctx, comp.Entry, m.opts.Build)
}

// dirs returns the directories of every open compilation.
func (m *Manager) dirs() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []string
	for _, comp := range m.docs {
		out = append(out, comp.Dirs()...)
	}
	slices.Sort(out)
	return slices.Compact(out)
}
