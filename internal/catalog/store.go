package catalog

import (
	"context"
	"errors"
	"sync"
	"time"

	appLog "udhayam/internal/log"
)

// Source selects where a Store reloads its catalog from.
type Source struct {
	Path string // local YAML file; wins over URL
	URL  string // remote YAML fetched with cache validators
}

func (s Source) String() string {
	switch {
	case s.Path != "":
		return "file"
	case s.URL != "":
		return "url"
	default:
		return "embedded"
	}
}

// Store holds the current catalog and swaps it on reload.
//
// Readers always see a complete snapshot. A failed reload keeps the previous
// one.
type Store struct {
	src     Source
	fetcher *Fetcher

	mu       sync.RWMutex
	current  *Catalog
	loadedAt time.Time

	// OnReload, if set, is called after every reload attempt.
	OnReload func(source string, changed bool, err error)
}

// NewStore creates a store seeded with the embedded catalog. Call Reload to
// pick up src.
func NewStore(src Source, fetcher *Fetcher) (*Store, error) {
	c, err := Default()
	if err != nil {
		return nil, err
	}
	if fetcher == nil {
		fetcher = NewFetcher("")
	}
	return &Store{
		src:      src,
		fetcher:  fetcher,
		current:  c,
		loadedAt: time.Now(),
	}, nil
}

// Current returns the active snapshot.
func (s *Store) Current() *Catalog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// LoadedAt returns when the active snapshot was installed.
func (s *Store) LoadedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadedAt
}

// Reload re-reads the configured source. changed reports whether a catalog
// with a different version was installed.
func (s *Store) Reload(ctx context.Context) (changed bool, err error) {
	defer func() {
		if s.OnReload != nil {
			s.OnReload(s.src.String(), changed, err)
		}
	}()

	next, err := s.load(ctx)
	if err != nil {
		appLog.Error("catalog reload failed; keeping previous snapshot", err, "source", s.src.String())
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current != nil && s.current.Version() == next.Version() {
		return false, nil
	}
	s.current = next
	s.loadedAt = time.Now()
	appLog.Info("catalog loaded", "source", s.src.String(), "version", next.Version(), "events", next.EventCount())
	return true, nil
}

func (s *Store) load(ctx context.Context) (*Catalog, error) {
	switch {
	case s.src.Path != "":
		return LoadFile(s.src.Path)
	case s.src.URL != "":
		res, err := s.fetcher.Fetch(ctx, s.src.URL)
		if err != nil {
			return nil, err
		}
		if len(res.Body) == 0 {
			return nil, errors.New("catalog: empty body")
		}
		return Parse(res.Body)
	default:
		return Default()
	}
}
