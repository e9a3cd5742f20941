package listing

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/nabil/meshbari/internal/query"
)

// Searcher runs searches with a latest-wins guard. Search requests can
// overlap when the caller fires a new one before the previous answer
// arrives; without a guard, a slow earlier query can land after a fast
// later one and clobber it. Each call takes a generation number before the
// query runs and checks it afterwards: a result whose generation has been
// passed is reported superseded, and the caller drops it instead of
// rendering stale rows.
type Searcher struct {
	svc *Service
	gen atomic.Uint64

	mu       sync.Mutex
	lastSpec query.FilterSpec
	hasLast  bool
}

// NewSearcher wraps a listing service with the latest-wins guard.
func NewSearcher(svc *Service) *Searcher {
	return &Searcher{svc: svc}
}

// Result is a search outcome plus whether it is still current.
type Result struct {
	Page query.Page

	// Superseded is true when a newer search started while this one was
	// running. The page must not be shown in that case.
	Superseded bool
}

// Search runs one guarded search. A change of filter spec relative to the
// previous search resets the page to 1, so stale page numbers never apply
// to a different result set. Errors from a superseded search are swallowed
// since its result would be dropped anyway.
func (s *Searcher) Search(ctx context.Context, spec query.FilterSpec, page, pageSize int) (Result, error) {
	s.mu.Lock()
	if s.hasLast && spec != s.lastSpec {
		page = 1
	}
	s.lastSpec = spec
	s.hasLast = true
	s.mu.Unlock()

	gen := s.gen.Add(1)

	p, err := s.svc.Search(ctx, spec, page, pageSize)

	if s.gen.Load() != gen {
		return Result{Superseded: true}, nil
	}
	if err != nil {
		return Result{}, err
	}
	return Result{Page: p}, nil
}
