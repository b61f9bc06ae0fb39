package news

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pressroom/pressroom/internal/shared"
)

// Service wraps content-record business rules around the store.
type Service struct {
	repo  Repository
	clock func() time.Time
}

// NewService constructs a new Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, clock: func() time.Time { return time.Now().UTC() }}
}

// WithClock overrides the time source, for tests.
func (s *Service) WithClock(clock func() time.Time) *Service {
	s.clock = clock
	return s
}

// Create publishes a new article. Creation time is server-assigned and
// anchors the retention window; publish time defaults to now when omitted.
func (s *Service) Create(ctx context.Context, draft Draft) (*Article, error) {
	if err := validateDraft(draft); err != nil {
		return nil, err
	}
	now := s.clock()
	publishedAt := draft.PublishedAt
	if publishedAt.IsZero() {
		publishedAt = now
	}
	categories := draft.Categories
	if len(categories) == 0 {
		categories = []string{"General"}
	}
	article := &Article{
		ID:          uuid.NewString(),
		Title:       strings.TrimSpace(draft.Title),
		Script:      draft.Script,
		YoutubeLink: draft.YoutubeLink,
		Categories:  categories,
		IsBreaking:  draft.IsBreaking,
		Likes:       []string{},
		Comments:    []Comment{},
		PublishedAt: publishedAt,
		CreatedAt:   now,
	}
	if err := s.repo.Create(ctx, article); err != nil {
		return nil, err
	}
	return article, nil
}

// Get returns one article or shared.ErrNotFound once it has expired.
func (s *Service) Get(ctx context.Context, id string) (*Article, error) {
	return s.repo.Get(ctx, id)
}

// List returns all live articles, newest published first.
func (s *Service) List(ctx context.Context) ([]Article, error) {
	return s.repo.List(ctx)
}

// ListLikedBy returns the live articles liked by the given user.
func (s *Service) ListLikedBy(ctx context.Context, userID string) ([]Article, error) {
	return s.repo.ListLikedBy(ctx, userID)
}

// Update rewrites an article's editorial fields. The retention deadline stays
// anchored to the original creation time.
func (s *Service) Update(ctx context.Context, id string, draft Draft) (*Article, error) {
	if err := validateDraft(draft); err != nil {
		return nil, err
	}
	if draft.PublishedAt.IsZero() {
		draft.PublishedAt = s.clock()
	}
	if len(draft.Categories) == 0 {
		draft.Categories = []string{"General"}
	}
	draft.Title = strings.TrimSpace(draft.Title)
	return s.repo.Update(ctx, id, draft)
}

// Delete removes an article ahead of its natural expiry.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

func validateDraft(draft Draft) error {
	if strings.TrimSpace(draft.Title) == "" {
		return shared.NewValidationError("title", "must not be empty")
	}
	if strings.TrimSpace(draft.Script) == "" {
		return shared.NewValidationError("script", "must not be empty")
	}
	return nil
}
