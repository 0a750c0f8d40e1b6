// Package model defines domain entities for the application.
package model

import "time"

// CreationType identifies which kind of artifact a creation holds.
type CreationType string

const (
	TypeArticle CreationType = "article"
	TypeTitle   CreationType = "title"
	TypeImage   CreationType = "image"
	TypeResume  CreationType = "resume"
)

// IsValid checks if the creation type is one of the known kinds.
func (t CreationType) IsValid() bool {
	switch t {
	case TypeArticle, TypeTitle, TypeImage, TypeResume:
		return true
	}
	return false
}

// Creation represents one generated or transformed artifact and its metadata.
// Content is either inline text (article, title, resume review) or the URL of
// externally stored media (image operations). All fields except Publish and
// Likes are immutable once written.
type Creation struct {
	ID        string       `json:"id"`
	UserID    string       `json:"user_id"`
	Prompt    string       `json:"prompt"`
	Content   string       `json:"content"`
	Type      CreationType `json:"type"`
	Publish   bool         `json:"publish"`
	Likes     []string     `json:"likes"`
	CreatedAt time.Time    `json:"created_at"`
}

// LikedBy reports whether the given user is in the likes set.
func (c *Creation) LikedBy(userID string) bool {
	for _, id := range c.Likes {
		if id == userID {
			return true
		}
	}
	return false
}

// LikeCount returns the number of distinct users that liked the creation.
func (c *Creation) LikeCount() int {
	return len(c.Likes)
}
