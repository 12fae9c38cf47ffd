// Package registry loads and caches the universe of listed securities.
// The snapshot is built at most once per process and shared read-only by
// every consumer; a failed load degrades to an empty snapshot rather than
// an error so the pipeline keeps running with no matches.
package registry

import (
	"context"
	"sync"

	"github.com/ternarybob/arbor"

	"github.com/thebeat-kr/thebeat/internal/models"
)

// UniverseProvider is a single external source of the listed-security
// universe. Providers are tried in order until one yields a non-empty
// result.
type UniverseProvider interface {
	// Name returns the provider name for logging.
	Name() string

	// FetchUniverse retrieves the full list of listed securities.
	FetchUniverse(ctx context.Context) ([]models.Security, error)
}

// Service resolves and caches the security universe.
type Service struct {
	providers []UniverseProvider
	logger    arbor.ILogger

	mu     sync.Mutex
	loaded bool
	snap   models.Snapshot
}

// NewService creates a registry service. Providers are consulted in the
// order given.
func NewService(logger arbor.ILogger, providers ...UniverseProvider) *Service {
	return &Service{
		providers: providers,
		logger:    logger,
	}
}

// Load fetches the universe through the ordered provider chain. Any
// provider error or empty result moves on to the next provider; when every
// provider is exhausted an empty snapshot is returned. Load never fails.
func (s *Service) Load(ctx context.Context) models.Snapshot {
	for _, p := range s.providers {
		securities, err := p.FetchUniverse(ctx)
		if err != nil {
			s.logger.Warn().
				Str("provider", p.Name()).
				Err(err).
				Msg("Universe provider unavailable, trying next source")
			continue
		}
		if len(securities) == 0 {
			s.logger.Warn().
				Str("provider", p.Name()).
				Msg("Universe provider returned no securities, trying next source")
			continue
		}

		s.logger.Info().
			Str("provider", p.Name()).
			Int("count", len(securities)).
			Msg("Security universe loaded")
		return models.Snapshot(securities)
	}

	s.logger.Warn().Msg("All universe providers failed, continuing with empty registry")
	return models.Snapshot{}
}

// Snapshot returns the cached universe, loading it on first use. The first
// successful (non-empty) load wins for the process lifetime; the lock makes
// concurrent first callers wait for and share a single fetch. A load that
// came back empty is not cached, so a later call may retry the providers.
func (s *Service) Snapshot(ctx context.Context) models.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.loaded {
		return s.snap
	}

	snap := s.Load(ctx)
	if len(snap) > 0 {
		s.snap = snap
		s.loaded = true
	}
	return snap
}
