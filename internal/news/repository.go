package news

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/pressroom/pressroom/internal/shared"
)

// Repository defines persistence operations for content records.
type Repository interface {
	Create(ctx context.Context, article *Article) error
	Get(ctx context.Context, id string) (*Article, error)
	List(ctx context.Context) ([]Article, error)
	ListLikedBy(ctx context.Context, userID string) ([]Article, error)
	Update(ctx context.Context, id string, draft Draft) (*Article, error)
	Delete(ctx context.Context, id string) error
	ToggleLike(ctx context.Context, id, userID string) ([]string, error)
	AppendComment(ctx context.Context, id string, comment Comment) ([]Comment, error)
	SweepExpired(ctx context.Context) (int, error)
}

const indexKey = "news:index"

// document is the stored shape of an article minus its engagement state,
// which lives in sibling keys so it can be mutated atomically.
type document struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Script      string    `json:"script"`
	YoutubeLink string    `json:"youtubeLink,omitempty"`
	Categories  []string  `json:"categories"`
	IsBreaking  bool      `json:"isBreaking"`
	PublishedAt time.Time `json:"publishedAt"`
	CreatedAt   time.Time `json:"createdAt"`
}

// RedisRepository implements Repository on Redis. Retention is enforced by
// key expiry: the document key gets an absolute deadline at creation and the
// engagement keys inherit the document's remaining lifetime on every write,
// so nothing belonging to a record survives creation+retention.
type RedisRepository struct {
	client    *redis.Client
	retention time.Duration
}

// NewRedisRepository constructs a Redis-backed repository.
func NewRedisRepository(client *redis.Client, retention time.Duration) *RedisRepository {
	return &RedisRepository{client: client, retention: retention}
}

func docKey(id string) string      { return "news:" + id }
func likesKey(id string) string    { return "news:" + id + ":likes" }
func commentsKey(id string) string { return "news:" + id + ":comments" }

const missingReply = "NOTFOUND"

// toggleLikeScript flips set membership for one user, atomically with the
// existence check, and returns the resulting member list. Conflicting writers
// on the same record serialize inside Redis.
var toggleLikeScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then
  return redis.status_reply('NOTFOUND')
end
if redis.call('SISMEMBER', KEYS[2], ARGV[1]) == 1 then
  redis.call('SREM', KEYS[2], ARGV[1])
else
  redis.call('SADD', KEYS[2], ARGV[1])
  local ttl = redis.call('PTTL', KEYS[1])
  if ttl > 0 then
    redis.call('PEXPIRE', KEYS[2], ttl)
  end
end
return redis.call('SMEMBERS', KEYS[2])
`)

// appendCommentScript appends one entry to the comment log, atomically with
// the existence check, and returns the whole log in insertion order.
var appendCommentScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then
  return redis.status_reply('NOTFOUND')
end
redis.call('RPUSH', KEYS[2], ARGV[1])
local ttl = redis.call('PTTL', KEYS[1])
if ttl > 0 then
  redis.call('PEXPIRE', KEYS[2], ttl)
end
return redis.call('LRANGE', KEYS[2], 0, -1)
`)

// Create persists a new article and pins its expiry to creation+retention.
func (r *RedisRepository) Create(ctx context.Context, article *Article) error {
	doc := document{
		ID:          article.ID,
		Title:       article.Title,
		Script:      article.Script,
		YoutubeLink: article.YoutubeLink,
		Categories:  article.Categories,
		IsBreaking:  article.IsBreaking,
		PublishedAt: article.PublishedAt,
		CreatedAt:   article.CreatedAt,
	}
	payload, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	deadline := article.CreatedAt.Add(r.retention)
	pipe := r.client.TxPipeline()
	pipe.Set(ctx, docKey(article.ID), payload, 0)
	pipe.ExpireAt(ctx, docKey(article.ID), deadline)
	pipe.ZAdd(ctx, indexKey, redis.Z{Score: float64(article.PublishedAt.Unix()), Member: article.ID})
	_, err = pipe.Exec(ctx)
	return err
}

// Get loads one article with its engagement state. Expired records read as
// not found.
func (r *RedisRepository) Get(ctx context.Context, id string) (*Article, error) {
	payload, err := r.client.Get(ctx, docKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	var doc document
	if err := json.Unmarshal(payload, &doc); err != nil {
		return nil, fmt.Errorf("decode article %s: %w", id, err)
	}
	likes, err := r.client.SMembers(ctx, likesKey(id)).Result()
	if err != nil {
		return nil, err
	}
	rawComments, err := r.client.LRange(ctx, commentsKey(id), 0, -1).Result()
	if err != nil {
		return nil, err
	}
	comments, err := decodeComments(rawComments)
	if err != nil {
		return nil, err
	}
	return assemble(doc, likes, comments), nil
}

// List returns all live articles, newest published first.
func (r *RedisRepository) List(ctx context.Context) ([]Article, error) {
	return r.collect(ctx, func(*Article) bool { return true })
}

// ListLikedBy returns live articles whose like-set contains userID.
func (r *RedisRepository) ListLikedBy(ctx context.Context, userID string) ([]Article, error) {
	return r.collect(ctx, func(a *Article) bool {
		for _, id := range a.Likes {
			if id == userID {
				return true
			}
		}
		return false
	})
}

func (r *RedisRepository) collect(ctx context.Context, keep func(*Article) bool) ([]Article, error) {
	ids, err := r.client.ZRevRange(ctx, indexKey, 0, -1).Result()
	if err != nil {
		return nil, err
	}
	articles := make([]Article, 0, len(ids))
	for _, id := range ids {
		article, err := r.Get(ctx, id)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				// Expired since it was indexed; the sweep will prune it.
				continue
			}
			return nil, err
		}
		if keep(article) {
			articles = append(articles, *article)
		}
	}
	return articles, nil
}

// Update rewrites the document fields while preserving creation time and the
// retention deadline derived from it. Engagement keys are untouched.
func (r *RedisRepository) Update(ctx context.Context, id string, draft Draft) (*Article, error) {
	payload, err := r.client.Get(ctx, docKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	var doc document
	if err := json.Unmarshal(payload, &doc); err != nil {
		return nil, fmt.Errorf("decode article %s: %w", id, err)
	}
	doc.Title = draft.Title
	doc.Script = draft.Script
	doc.YoutubeLink = draft.YoutubeLink
	doc.Categories = draft.Categories
	doc.IsBreaking = draft.IsBreaking
	doc.PublishedAt = draft.PublishedAt

	updated, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	deadline := doc.CreatedAt.Add(r.retention)
	pipe := r.client.TxPipeline()
	pipe.Set(ctx, docKey(id), updated, 0)
	pipe.ExpireAt(ctx, docKey(id), deadline)
	pipe.ZAdd(ctx, indexKey, redis.Z{Score: float64(doc.PublishedAt.Unix()), Member: id})
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, err
	}
	return r.Get(ctx, id)
}

// Delete removes an article and its engagement state.
func (r *RedisRepository) Delete(ctx context.Context, id string) error {
	exists, err := r.client.Exists(ctx, docKey(id)).Result()
	if err != nil {
		return err
	}
	if exists == 0 {
		return shared.ErrNotFound
	}
	pipe := r.client.TxPipeline()
	pipe.Del(ctx, docKey(id), likesKey(id), commentsKey(id))
	pipe.ZRem(ctx, indexKey, id)
	_, err = pipe.Exec(ctx)
	return err
}

// ToggleLike flips userID's membership in the like-set and returns the
// updated set.
func (r *RedisRepository) ToggleLike(ctx context.Context, id, userID string) ([]string, error) {
	res, err := toggleLikeScript.Run(ctx, r.client, []string{docKey(id), likesKey(id)}, userID).Result()
	if err != nil {
		return nil, err
	}
	switch v := res.(type) {
	case string:
		if v == missingReply {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("toggle like: unexpected reply %q", v)
	case []interface{}:
		likes := make([]string, 0, len(v))
		for _, member := range v {
			s, ok := member.(string)
			if !ok {
				return nil, fmt.Errorf("toggle like: unexpected member %T", member)
			}
			likes = append(likes, s)
		}
		return likes, nil
	default:
		return nil, fmt.Errorf("toggle like: unexpected reply type %T", res)
	}
}

// AppendComment appends one entry to the comment log and returns the full
// log in insertion order.
func (r *RedisRepository) AppendComment(ctx context.Context, id string, comment Comment) ([]Comment, error) {
	payload, err := json.Marshal(comment)
	if err != nil {
		return nil, err
	}
	res, err := appendCommentScript.Run(ctx, r.client, []string{docKey(id), commentsKey(id)}, payload).Result()
	if err != nil {
		return nil, err
	}
	switch v := res.(type) {
	case string:
		if v == missingReply {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("append comment: unexpected reply %q", v)
	case []interface{}:
		raw := make([]string, 0, len(v))
		for _, entry := range v {
			s, ok := entry.(string)
			if !ok {
				return nil, fmt.Errorf("append comment: unexpected entry %T", entry)
			}
			raw = append(raw, s)
		}
		return decodeComments(raw)
	default:
		return nil, fmt.Errorf("append comment: unexpected reply type %T", res)
	}
}

// SweepExpired prunes index entries and engagement keys left behind after the
// document key expired. Key expiry remains the authoritative retention bound;
// this only keeps the secondary structures tidy.
func (r *RedisRepository) SweepExpired(ctx context.Context) (int, error) {
	ids, err := r.client.ZRange(ctx, indexKey, 0, -1).Result()
	if err != nil {
		return 0, err
	}
	pruned := 0
	for _, id := range ids {
		exists, err := r.client.Exists(ctx, docKey(id)).Result()
		if err != nil {
			return pruned, err
		}
		if exists > 0 {
			continue
		}
		pipe := r.client.TxPipeline()
		pipe.ZRem(ctx, indexKey, id)
		pipe.Del(ctx, likesKey(id), commentsKey(id))
		if _, err := pipe.Exec(ctx); err != nil {
			return pruned, err
		}
		pruned++
	}
	return pruned, nil
}

func decodeComments(raw []string) ([]Comment, error) {
	comments := make([]Comment, 0, len(raw))
	for _, entry := range raw {
		var c Comment
		if err := json.Unmarshal([]byte(entry), &c); err != nil {
			return nil, fmt.Errorf("decode comment: %w", err)
		}
		comments = append(comments, c)
	}
	return comments, nil
}

func assemble(doc document, likes []string, comments []Comment) *Article {
	if likes == nil {
		likes = []string{}
	}
	categories := doc.Categories
	if categories == nil {
		categories = []string{}
	}
	return &Article{
		ID:          doc.ID,
		Title:       doc.Title,
		Script:      doc.Script,
		YoutubeLink: doc.YoutubeLink,
		Categories:  categories,
		IsBreaking:  doc.IsBreaking,
		Likes:       likes,
		Comments:    comments,
		PublishedAt: doc.PublishedAt,
		CreatedAt:   doc.CreatedAt,
	}
}

var _ Repository = (*RedisRepository)(nil)
