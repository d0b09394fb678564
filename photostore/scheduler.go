package photostore

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/photostream/photostream/model"
)

// Loader is the part of Store the scheduler drives.
type Loader interface {
	Load(ctx context.Context, userID string) error
}

// Scheduler decides when the viewed collection must be fetched. It is keyed
// on the requested user id alone and never reads snapshot data, so changes to
// the snapshot cannot trigger another fetch.
type Scheduler struct {
	loader Loader
	logger zerolog.Logger

	mu      sync.Mutex
	last    string
	hasLast bool
}

// NewScheduler returns a Scheduler driving loader.
func NewScheduler(loader Loader) *Scheduler {
	return &Scheduler{loader: loader, logger: log.Logger}
}

// OnViewedUserChanged loads userID when it differs from the last requested
// id. A failed load is not retried; the error is returned and Retry must be
// called explicitly. An empty userID forgets the target without loading.
func (s *Scheduler) OnViewedUserChanged(ctx context.Context, userID string) error {
	if userID == "" {
		s.Reset()
		return nil
	}
	s.mu.Lock()
	if s.hasLast && s.last == userID {
		s.mu.Unlock()
		return nil
	}
	s.last, s.hasLast = userID, true
	s.mu.Unlock()

	s.logger.Debug().Str("user_id", userID).Msg("photostore: viewed user changed, loading")
	return s.load(ctx, userID)
}

// Retry reloads the current target on explicit request.
func (s *Scheduler) Retry(ctx context.Context) error {
	userID, ok := s.Current()
	if !ok {
		return fmt.Errorf("retry: no user is being viewed: %w", model.ErrValidation)
	}
	return s.load(ctx, userID)
}

// Reset forgets the target, e.g. when the view is torn down.
func (s *Scheduler) Reset() {
	s.mu.Lock()
	s.last, s.hasLast = "", false
	s.mu.Unlock()
}

// Current returns the last requested user id.
func (s *Scheduler) Current() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last, s.hasLast
}

func (s *Scheduler) load(ctx context.Context, userID string) error {
	err := s.loader.Load(ctx, userID)
	if errors.Is(err, ErrStaleLoad) {
		// A newer request owns the view now.
		return nil
	}
	return err
}
