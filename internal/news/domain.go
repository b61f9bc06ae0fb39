package news

import "time"

// Article is a timed-release content record. Likes and Comments are owned by
// dedicated store structures and mutated only through atomic per-record
// operations, never by rewriting the whole document.
type Article struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Script      string    `json:"script"`
	YoutubeLink string    `json:"youtubeLink,omitempty"`
	Categories  []string  `json:"categories"`
	IsBreaking  bool      `json:"isBreaking"`
	Likes       []string  `json:"likes"`
	Comments    []Comment `json:"comments"`
	PublishedAt time.Time `json:"publishedAt"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Comment is one immutable entry of an article's append-only comment log.
// Name snapshots the author's display name at comment time; User is always
// the id resolved from the validated token.
type Comment struct {
	User string    `json:"user"`
	Name string    `json:"name"`
	Text string    `json:"text"`
	Date time.Time `json:"date"`
}

// Draft carries the admin-supplied fields for creating or updating an article.
type Draft struct {
	Title       string
	Script      string
	YoutubeLink string
	Categories  []string
	IsBreaking  bool
	PublishedAt time.Time
}
