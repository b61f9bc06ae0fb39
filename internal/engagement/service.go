// Package engagement holds the state machine on a content record's like-set
// and comment-log. Both operations require a resolved identity and go through
// the store's atomic per-record mutations, so concurrent writers on the same
// record cannot lose updates.
package engagement

import (
	"context"
	"strings"
	"time"

	"github.com/pressroom/pressroom/internal/news"
	"github.com/pressroom/pressroom/internal/shared"
)

// Store is the slice of the content repository the engine mutates.
type Store interface {
	ToggleLike(ctx context.Context, id, userID string) ([]string, error)
	AppendComment(ctx context.Context, id string, comment news.Comment) ([]news.Comment, error)
}

// Service implements the engagement state machine.
type Service struct {
	store Store
	clock func() time.Time
}

// NewService constructs a new Service.
func NewService(store Store) *Service {
	return &Service{store: store, clock: func() time.Time { return time.Now().UTC() }}
}

// WithClock overrides the time source, for tests.
func (s *Service) WithClock(clock func() time.Time) *Service {
	s.clock = clock
	return s
}

// ToggleLike flips the identity's membership in the record's like-set and
// returns the updated set. Each call inverts the previous effect: callers
// retrying on an ambiguous network failure must re-check current state
// rather than blindly resubmitting.
func (s *Service) ToggleLike(ctx context.Context, recordID, identityID string) ([]string, error) {
	if identityID == "" {
		return nil, shared.ErrUnauthenticated
	}
	return s.store.ToggleLike(ctx, recordID, identityID)
}

// AddComment appends an immutable entry to the record's comment-log and
// returns the full updated log. The timestamp is server-assigned; the author
// id comes from the validated token, never from the request payload.
func (s *Service) AddComment(ctx context.Context, recordID, identityID, authorName, text string) ([]news.Comment, error) {
	if identityID == "" {
		return nil, shared.ErrUnauthenticated
	}
	if strings.TrimSpace(text) == "" {
		return nil, shared.NewValidationError("text", "must not be empty")
	}
	comment := news.Comment{
		User: identityID,
		Name: authorName,
		Text: text,
		Date: s.clock(),
	}
	return s.store.AppendComment(ctx, recordID, comment)
}
