package index

import (
	"context"
	"sync"
)

// BuildFunc produces the index on first demand.
type BuildFunc func(ctx context.Context) (*Index, error)

// Provider wraps a lazily built, process-lifetime index. The first caller
// triggers the build; concurrent callers block on the same in-flight build
// instead of starting their own. The outcome, error included, is cached:
// an embedding misconfiguration needs an operator fix and a restart, not a
// retry storm against the provider.
type Provider struct {
	build BuildFunc

	once sync.Once
	idx  *Index
	err  error
}

func NewProvider(build BuildFunc) *Provider {
	return &Provider{build: build}
}

func (p *Provider) Get(ctx context.Context) (*Index, error) {
	p.once.Do(func() {
		p.idx, p.err = p.build(ctx)
	})
	return p.idx, p.err
}
