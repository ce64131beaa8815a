package usecases

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/DavesarXKhushal/pyrecycleheat/internal/core/domain"
	"github.com/DavesarXKhushal/pyrecycleheat/internal/core/ports"
	"github.com/DavesarXKhushal/pyrecycleheat/internal/pkg/metrics"
)

// LoadState is the dataset lifecycle state of the EntityStore.
type LoadState int

const (
	StateLoading LoadState = iota
	StateReady
	StateFailed
)

func (s LoadState) String() string {
	switch s {
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	default:
		return "loading"
	}
}

// Snapshot is one complete, immutable pair of entity collections. A reader
// always sees both datasets from the same refresh, never a mix.
type Snapshot struct {
	Production  []domain.MapEntity
	Consumption []domain.MapEntity
	FetchedAt   time.Time
}

// Entities returns both collections in one slice.
func (s Snapshot) Entities() []domain.MapEntity {
	out := make([]domain.MapEntity, 0, len(s.Production)+len(s.Consumption))
	out = append(out, s.Production...)
	out = append(out, s.Consumption...)
	return out
}

// EntityStore holds the current entity collections and their load state.
// Refresh fetches both collections concurrently and swaps in the snapshot
// only when both succeed, so sessions never reconcile against a state with
// one dataset missing.
type EntityStore struct {
	catalog ports.SiteCatalog

	mu      sync.RWMutex
	state   LoadState
	snap    Snapshot
	subs    map[int]func(Snapshot)
	nextSub int
}

// NewEntityStore creates a store in the loading state.
func NewEntityStore(catalog ports.SiteCatalog) *EntityStore {
	return &EntityStore{
		catalog: catalog,
		state:   StateLoading,
		subs:    make(map[int]func(Snapshot)),
	}
}

// Refresh fetches both collections, jointly awaited. On any failure the
// previous snapshot stays in place and the state flips to StateFailed,
// which suppresses reconciliation until the next successful refresh.
func (s *EntityStore) Refresh(ctx context.Context) error {
	var production, consumption []domain.MapEntity

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		production, err = s.catalog.ProductionEntities(gctx)
		if err != nil {
			return fmt.Errorf("fetch production sites: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		consumption, err = s.catalog.ConsumptionEntities(gctx)
		if err != nil {
			return fmt.Errorf("fetch consumption sites: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		s.mu.Lock()
		s.state = StateFailed
		s.mu.Unlock()
		metrics.SnapshotRefreshes.WithLabelValues("error").Inc()
		return err
	}

	snap := Snapshot{
		Production:  production,
		Consumption: consumption,
		FetchedAt:   time.Now(),
	}

	s.mu.Lock()
	s.state = StateReady
	s.snap = snap
	subs := make([]func(Snapshot), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	metrics.SnapshotRefreshes.WithLabelValues("ok").Inc()

	for _, fn := range subs {
		fn(snap)
	}
	return nil
}

// Snapshot returns the current snapshot. ok is false unless the store is
// in StateReady.
func (s *EntityStore) Snapshot() (Snapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state != StateReady {
		return Snapshot{}, false
	}
	return s.snap, true
}

// State returns the current load state.
func (s *EntityStore) State() LoadState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Subscribe registers fn to run after every successful refresh and returns
// a cancel func. A torn-down session cancels so late fetch results are
// ignored rather than reconciled against a destroyed surface.
func (s *EntityStore) Subscribe(fn func(Snapshot)) (cancel func()) {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}
