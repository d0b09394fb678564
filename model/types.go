// Package model defines the entities shared by the photostream client, the
// photo store and the development backend.
package model

import (
	"strings"
	"time"
)

// User is owned by the identity collaborator; the client never mutates it.
type User struct {
	ID          string
	FirstName   string
	LastName    string
	Location    string
	Description string
	Occupation  string
}

// DisplayName joins first and last name.
func (u User) DisplayName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// Comment is a server-created remark on a photo. AuthorID never changes after
// creation.
type Comment struct {
	ID         string
	AuthorID   string
	AuthorName string
	PhotoID    string
	Text       string
	CreatedAt  time.Time
}

// Photo carries its like set, favorite set and comments in chronological order.
type Photo struct {
	ID          string
	OwnerID     string
	FileRef     string
	CapturedAt  time.Time
	LikedBy     IDSet
	LikesCount  int
	FavoritedBy IDSet
	Comments    []Comment
}

// IsLikedBy reports whether userID is in the like set.
func (p Photo) IsLikedBy(userID string) bool { return p.LikedBy.Has(userID) }

// IsFavoritedBy reports whether userID is in the favorite set.
func (p Photo) IsFavoritedBy(userID string) bool { return p.FavoritedBy.Has(userID) }

// Comment looks up a comment by id.
func (p Photo) Comment(commentID string) (Comment, bool) {
	for _, c := range p.Comments {
		if c.ID == commentID {
			return c, true
		}
	}
	return Comment{}, false
}

// Clone returns a deep copy so callers cannot alias store-owned sets or slices.
func (p Photo) Clone() Photo {
	out := p
	out.LikedBy = p.LikedBy.Clone()
	out.FavoritedBy = p.FavoritedBy.Clone()
	if p.Comments != nil {
		out.Comments = make([]Comment, len(p.Comments))
		copy(out.Comments, p.Comments)
	}
	return out
}

// LikeState is the authoritative result of a like or unlike request.
type LikeState struct {
	LikesCount  int
	LikedByUser bool
}

// PhotoPreview summarises a user's photos for the profile view.
type PhotoPreview struct {
	MostRecent         Photo
	MostCommented      Photo
	MostCommentedCount int
}

// Favorite is one row of a user's favorites listing.
type Favorite struct {
	PhotoID    string
	UserID     string
	FileRef    string
	CapturedAt time.Time
}
