package cli

import (
	"context"
	"os"

	"github.com/matzehuels/deploygraph/pkg/builder"
	"github.com/matzehuels/deploygraph/pkg/cache"
	"github.com/matzehuels/deploygraph/pkg/compiler"
	"github.com/matzehuels/deploygraph/pkg/errors"
	"github.com/matzehuels/deploygraph/pkg/graph"
)

// openCache returns the graph cache. Caching is off unless a cache
// directory is configured.
func (c *CLI) openCache() (cache.Cache, error) {
	if c.config.CacheDir == "" {
		return cache.NewNullCache(), nil
	}
	fc, err := cache.NewFileCache(c.config.CacheDir)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "open cache %s", c.config.CacheDir)
	}
	return fc, nil
}

// buildGraph builds the deployment graph of comp, reusing the cached graph
// of identical documents. Compilations with errors are always rebuilt since
// a missing module may appear without any compiled file changing.
func (c *CLI) buildGraph(ctx context.Context, comp *compiler.Compilation) (*graph.Graph, error) {
	store, err := c.openCache()
	if err != nil {
		return nil, err
	}
	defer store.Close()

	if comp.ErrorCount() > 0 {
		return builder.Build(ctx, comp.Entry, c.buildOptions())
	}
	key, err := graphKey(comp, c.config.MaxDepth)
	if err != nil {
		c.Logger.Warn("graph cache disabled", "err", err)
		return builder.Build(ctx, comp.Entry, c.buildOptions())
	}

	if data, ok, err := store.Get(ctx, key); err != nil {
		c.Logger.Warn("read graph cache", "err", err)
	} else if ok {
		if g, err := graph.UnmarshalGraph(data); err == nil {
			c.Logger.Debug("graph cache hit", "uri", comp.URI)
			return g, nil
		}
	}

	g, err := builder.Build(ctx, comp.Entry, c.buildOptions())
	if err != nil {
		return nil, err
	}
	data, err := graph.MarshalGraph(g)
	if err == nil {
		err = store.Set(ctx, key, data, cache.DefaultTTL)
	}
	if err != nil {
		c.Logger.Warn("write graph cache", "err", err)
	}
	return g, nil
}

// graphKey hashes the content of every compiled document together with
// the options that change the resulting graph.
func graphKey(comp *compiler.Compilation, maxDepth int) (string, error) {
	parts := []any{comp.URI, maxDepth}
	for _, path := range comp.Files() {
		data, err := os.ReadFile(path)
		if err != nil {
			return "", err
		}
		parts = append(parts, path, cache.Hash(data))
	}
	return cache.Key("graph", parts...), nil
}
