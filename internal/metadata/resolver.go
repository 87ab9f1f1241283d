package metadata

import (
	"context"
	"errors"
	"fmt"
	"log"

	"golang.org/x/sync/singleflight"

	"github.com/mrlokans/bookshelf/internal/metrics"
)

// Provider fetches a book record for one ISBN. It returns ErrNotFound when
// the provider has no entry and an ErrTransport-wrapped error on failure.
type Provider interface {
	Name() string
	FetchByISBN(ctx context.Context, isbn string) (*Lookup, error)
}

type state int

const (
	stateCache state = iota
	statePrimary
	stateSecondary
	stateDone
)

// Resolver looks up book metadata by ISBN: cache, then the primary provider,
// then the secondary one. Only successful lookups are cached.
type Resolver struct {
	cache     Cache
	primary   Provider
	secondary Provider
	group     singleflight.Group
}

// NewResolver wires a resolver. primary may be nil, in which case lookups go
// straight to the secondary provider.
func NewResolver(cache Cache, primary, secondary Provider) *Resolver {
	return &Resolver{
		cache:     cache,
		primary:   primary,
		secondary: secondary,
	}
}

// Lookup resolves isbn. Concurrent calls for the same uncached ISBN share a
// single upstream resolution; a caller whose ctx ends stops waiting but does
// not cancel the shared work.
func (r *Resolver) Lookup(ctx context.Context, isbn string) (*Lookup, error) {
	if lookup, ok := r.cache.Get(isbn); ok {
		metrics.IncLookup(metrics.LookupCacheHit)
		return lookup, nil
	}

	ch := r.group.DoChan(isbn, func() (any, error) {
		return r.resolve(context.WithoutCancel(ctx), isbn)
	})

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %w", ErrTransport, ctx.Err())
	case res := <-ch:
		if res.Shared {
			metrics.IncLookupShared()
		}
		if res.Err != nil {
			if errors.Is(res.Err, ErrNotFound) {
				metrics.IncLookup(metrics.LookupNotFound)
			} else {
				metrics.IncLookup(metrics.LookupError)
			}
			return nil, res.Err
		}
		return res.Val.(*Lookup), nil
	}
}

func (r *Resolver) resolve(ctx context.Context, isbn string) (*Lookup, error) {
	st := stateCache
	for st != stateDone {
		next, lookup, err := r.step(ctx, st, isbn)
		if err != nil {
			return nil, err
		}
		if lookup != nil {
			if st == stateCache {
				metrics.IncLookup(metrics.LookupCacheHit)
			} else {
				metrics.IncLookup(metrics.LookupFound)
				r.cache.Add(isbn, lookup)
			}
			return lookup, nil
		}
		st = next
	}
	return nil, ErrNotFound
}

// step runs one state. It returns either a terminal lookup or error, or the next state.
func (r *Resolver) step(ctx context.Context, st state, isbn string) (state, *Lookup, error) {
	switch st {
	case stateCache:
		// A flight for this ISBN may have completed since the caller's check.
		if lookup, ok := r.cache.Get(isbn); ok {
			return stateDone, lookup, nil
		}
		return statePrimary, nil, nil

	case statePrimary:
		if r.primary == nil {
			return stateSecondary, nil, nil
		}
		lookup, err := r.primary.FetchByISBN(ctx, isbn)
		switch {
		case err == nil:
			return stateDone, lookup, nil
		case errors.Is(err, ErrNotFound):
			return stateSecondary, nil, nil
		default:
			log.Printf("[LOOKUP] %s failed for %s: %v", r.primary.Name(), isbn, err)
			return stateDone, nil, err
		}

	case stateSecondary:
		lookup, err := r.secondary.FetchByISBN(ctx, isbn)
		switch {
		case err == nil:
			return stateDone, lookup, nil
		case errors.Is(err, ErrNotFound):
			return stateDone, nil, ErrNotFound
		default:
			log.Printf("[LOOKUP] %s failed for %s: %v", r.secondary.Name(), isbn, err)
			return stateDone, nil, err
		}
	}
	return stateDone, nil, ErrNotFound
}
