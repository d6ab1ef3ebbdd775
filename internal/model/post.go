package model

import "time"

// Post represents a published entry.
//
// AuthorID references an existing users row (enforced by a foreign key) and
// never changes after creation. Updates touch Title and Body only —
// concurrent edits are resolved by "last writer wins", there is no version
// column or conflict detection at this scale.
type Post struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"createdAt"`
	AuthorID  string    `json:"authorId"`
}

// PostWithAuthor is the read projection used by the public listing: the post
// joined with its author's username. Embedding Post keeps the JSON flat-ish
// (post fields at the top level, plus authorUsername) and means callers can
// treat it as a Post where they don't care about the author.
type PostWithAuthor struct {
	Post
	AuthorUsername string `json:"authorUsername"`
}
