package model

// FeedEntry is a post as seen by a particular viewer: all post fields plus
// the author's email and whether the viewer owns the post.
type FeedEntry struct {
	Post
	AuthorEmail string `json:"author_email"`
	IsOwner     bool   `json:"is_owner"`
}
