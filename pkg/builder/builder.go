package builder

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/deploygraph/pkg/dependency"
	"github.com/matzehuels/deploygraph/pkg/errors"
	"github.com/matzehuels/deploygraph/pkg/graph"
	"github.com/matzehuels/deploygraph/pkg/observability"
	"github.com/matzehuels/deploygraph/pkg/semantic"
)

var tracer = otel.Tracer("deploygraph.builder")

// extract is replaced in tests to simulate a faulty extractor.
var extract = dependency.Extract

// Options configures a build.
type Options struct {
	// Concurrency bounds how many models of one nesting level are analyzed
	// in parallel. Values below 2 analyze sequentially.
	Concurrency int
	// MaxDepth limits how many module levels below the entry document are
	// visited. Zero means unlimited.
	MaxDepth int
	// Logger receives debug output. Defaults to log.Default().
	Logger *log.Logger
}

// item is one queued model together with the id of the module node that
// caused it to be visited.
type item struct {
	model    semantic.Model
	parentID string
	depth    int
}

// batch is an item with its extracted dependencies and error diagnostics.
type batch struct {
	item
	deps   dependency.Dependencies
	errors []semantic.Diagnostic
}

// state accumulates the result of one Build call.
type state struct {
	opts      Options
	logger    *log.Logger
	nodes     []graph.Node
	edges     []graph.Edge
	hasErrors bool
	batches   int
}

// Build produces the deployment graph rooted at entry.
func Build(ctx context.Context, entry semantic.Model, opts Options) (*graph.Graph, error) {
	if entry == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "entry model is nil")
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}

	uri := entry.URI()
	ctx, span := tracer.Start(ctx, "builder.Build", trace.WithAttributes(attribute.String("uri", uri)))
	defer span.End()

	hooks := observability.Build()
	hooks.OnBuildStart(ctx, uri)
	start := time.Now()

	s := &state{
		opts:   opts,
		logger: opts.Logger,
		nodes:  []graph.Node{},
		edges:  []graph.Edge{},
	}
	err := s.run(ctx, entry)

	stats := observability.BuildStats{
		Batches:   s.batches,
		Nodes:     len(s.nodes),
		Edges:     len(s.edges),
		HasErrors: s.hasErrors,
	}
	hooks.OnBuildComplete(ctx, uri, stats, time.Since(start), err)
	span.SetAttributes(
		attribute.Int("batches", stats.Batches),
		attribute.Int("nodes", stats.Nodes),
		attribute.Int("edges", stats.Edges),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	g := &graph.Graph{Nodes: s.nodes, Edges: s.edges, HasErrors: s.hasErrors}
	g.Sort()

	s.logger.Debug("built deployment graph",
		"uri", uri,
		"batches", stats.Batches,
		"nodes", stats.Nodes,
		"edges", stats.Edges,
		"has_errors", stats.HasErrors)
	return g, nil
}

// run drains the queue level by level. Processing a level in queue order is
// the same traversal as a plain FIFO queue, but lets the analysis of sibling
// models overlap.
func (s *state) run(ctx context.Context, entry semantic.Model) error {
	level := []item{{model: entry}}
	for len(level) > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}

		batches, err := analyze(ctx, level, s.opts.Concurrency)
		if err != nil {
			return err
		}

		var next []item
		for _, b := range batches {
			queued, err := s.process(ctx, b)
			if err != nil {
				return err
			}
			next = append(next, queued...)
		}
		level = next
	}
	return nil
}

// analyze runs dependency extraction and error collection for every item.
func analyze(ctx context.Context, level []item, limit int) ([]batch, error) {
	out := make([]batch, len(level))
	if limit < 2 || len(level) < 2 {
		for i, it := range level {
			out[i] = prepare(it)
		}
		return out, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, it := range level {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out[i] = prepare(it)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func prepare(it item) batch {
	return batch{
		item:   it,
		deps:   extract(it.model),
		errors: semantic.Errors(it.model),
	}
}

// process turns one analyzed model into nodes and edges and returns the
// nested models to visit next.
func (s *state) process(ctx context.Context, b batch) ([]item, error) {
	uri := b.model.URI()
	_, span := tracer.Start(ctx, "builder.batch", trace.WithAttributes(
		attribute.String("uri", uri),
		attribute.String("parent_id", b.parentID),
		attribute.Int("depth", b.depth),
	))
	defer span.End()

	s.batches++
	if len(b.errors) > 0 {
		s.hasErrors = true
	}

	// Sorted so that nested models are queued in a stable order.
	symbols := make([]*semantic.Symbol, 0, len(b.deps))
	for sym := range b.deps {
		symbols = append(symbols, sym)
	}
	slices.SortFunc(symbols, func(x, y *semantic.Symbol) int { return strings.Compare(x.Name, y.Name) })

	lineStarts := b.model.LineStarts()
	index := make(map[*semantic.Symbol]string, len(symbols))
	var queued []item

	for _, sym := range symbols {
		node := graph.Node{
			ID:           graph.NodeID(b.parentID, sym.Name),
			ParentID:     b.parentID,
			SymbolicName: sym.Name,
			Range:        semantic.ToRange(sym.Span, lineStarts),
			HasError:     overlapsAny(sym.Span, b.errors),
		}

		switch sym.Kind {
		case semantic.KindResource:
			node.Kind, node.Ref = resourceVariant(sym)
		case semantic.KindModule:
			node.Kind, node.Ref = moduleVariant(sym)
			if nested, ok := b.model.NestedModel(sym); ok {
				if s.opts.MaxDepth > 0 && b.depth >= s.opts.MaxDepth {
					s.logger.Debug("module depth limit reached", "id", node.ID, "max_depth", s.opts.MaxDepth)
				} else {
					queued = append(queued, item{model: nested, parentID: node.ID, depth: b.depth + 1})
				}
			}
		default:
			err := errors.New(errors.ErrCodeInternal, "extractor reported %s %q in %s", sym.Kind, sym.Name, uri)
			span.RecordError(err)
			return nil, err
		}

		index[sym] = node.ID
		s.nodes = append(s.nodes, node)
	}

	edges := 0
	for _, sym := range symbols {
		source := index[sym]
		for _, dep := range b.deps[sym] {
			target, ok := index[dep]
			if !ok {
				err := errors.New(errors.ErrCodeInternal,
					"dependency %q of %q in %s has no node", dep.Name, sym.Name, uri)
				span.RecordError(err)
				return nil, err
			}
			s.edges = append(s.edges, graph.Edge{SourceID: source, TargetID: target})
			edges++
		}
	}

	observability.Build().OnBatch(ctx, uri, b.depth, len(symbols), edges)
	s.logger.Debug("processed model",
		"uri", uri,
		"parent", b.parentID,
		"nodes", len(symbols),
		"edges", edges,
		"errors", len(b.errors),
		"queued", len(queued))
	return queued, nil
}

func resourceVariant(sym *semantic.Symbol) (graph.Kind, string) {
	ref := graph.Unknown
	if tr := semantic.ResourceTypeRef(sym.Type); tr != nil {
		ref = tr.FullyQualifiedType()
	}
	if semantic.IsResourceCollection(sym.Type) {
		return graph.KindResourceCollection, ref
	}
	return graph.KindResource, ref
}

func moduleVariant(sym *semantic.Symbol) (graph.Kind, string) {
	ref := graph.Unknown
	if path, ok := semantic.ModulePath(sym); ok {
		ref = path
	}
	if semantic.IsModuleCollection(sym.Type) {
		return graph.KindModuleCollection, ref
	}
	return graph.KindModule, ref
}

func overlapsAny(span semantic.Span, diags []semantic.Diagnostic) bool {
	for _, d := range diags {
		if semantic.AreOverlapping(span, d.Span) {
			return true
		}
	}
	return false
}

