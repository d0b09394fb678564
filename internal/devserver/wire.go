package devserver

import (
	"time"

	"github.com/photostream/photostream/model"
)

// JSON shapes written by the handlers. Field names follow the photo-sharing
// backend the client speaks to.

type userJSON struct {
	ID          string `json:"_id"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Location    string `json:"location,omitempty"`
	Description string `json:"description,omitempty"`
	Occupation  string `json:"occupation,omitempty"`
}

type commentUserJSON struct {
	ID        string `json:"_id"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}

type commentJSON struct {
	ID       string          `json:"_id"`
	Comment  string          `json:"comment"`
	DateTime time.Time       `json:"date_time"`
	PhotoID  string          `json:"photo_id"`
	User     commentUserJSON `json:"user"`
}

type photoJSON struct {
	ID         string        `json:"_id"`
	UserID     string        `json:"user_id"`
	FileName   string        `json:"file_name"`
	DateTime   time.Time     `json:"date_time"`
	Likes      []string      `json:"likes"`
	LikesCount int           `json:"likesCount"`
	Favorites  []string      `json:"favorites"`
	Comments   []commentJSON `json:"comments"`
}

type commentedPhotoJSON struct {
	photoJSON
	CommentsCount int `json:"commentsCount"`
}

type previewJSON struct {
	MostRecent    photoJSON          `json:"mostRecent"`
	MostCommented commentedPhotoJSON `json:"mostCommented"`
}

type favoriteJSON struct {
	PhotoID  string    `json:"photo_id"`
	UserID   string    `json:"user_id"`
	FileName string    `json:"file_name"`
	DateTime time.Time `json:"date_time"`
}

type likeJSON struct {
	LikesCount  int  `json:"likesCount"`
	LikedByUser bool `json:"likedByUser"`
}

type actingUserBody struct {
	UserID string `json:"userId"`
}

type commentBody struct {
	Comment string `json:"comment"`
	UserID  string `json:"userId"`
}

type favoriteBody struct {
	PhotoID string `json:"photoId"`
	UserID  string `json:"userId"`
}

func toUserJSON(u model.User) userJSON {
	return userJSON{ID: u.ID, FirstName: u.FirstName, LastName: u.LastName, Location: u.Location, Description: u.Description, Occupation: u.Occupation}
}

// toCommentJSON splits AuthorName back into first and last name at the first
// space.
func toCommentJSON(c model.Comment) commentJSON {
	first, last := c.AuthorName, ""
	for i := 0; i < len(c.AuthorName); i++ {
		if c.AuthorName[i] == ' ' {
			first, last = c.AuthorName[:i], c.AuthorName[i+1:]
			break
		}
	}
	return commentJSON{
		ID:       c.ID,
		Comment:  c.Text,
		DateTime: c.CreatedAt,
		PhotoID:  c.PhotoID,
		User:     commentUserJSON{ID: c.AuthorID, FirstName: first, LastName: last},
	}
}

func toPhotoJSON(p model.Photo) photoJSON {
	out := photoJSON{
		ID:         p.ID,
		UserID:     p.OwnerID,
		FileName:   p.FileRef,
		DateTime:   p.CapturedAt,
		Likes:      p.LikedBy.Slice(),
		LikesCount: p.LikesCount,
		Favorites:  p.FavoritedBy.Slice(),
		Comments:   make([]commentJSON, 0, len(p.Comments)),
	}
	for _, c := range p.Comments {
		out.Comments = append(out.Comments, toCommentJSON(c))
	}
	return out
}

func toPhotosJSON(in []model.Photo) []photoJSON {
	out := make([]photoJSON, 0, len(in))
	for _, p := range in {
		out = append(out, toPhotoJSON(p))
	}
	return out
}

func toFavoritesJSON(in []model.Favorite) []favoriteJSON {
	out := make([]favoriteJSON, 0, len(in))
	for _, f := range in {
		out = append(out, favoriteJSON{PhotoID: f.PhotoID, UserID: f.UserID, FileName: f.FileRef, DateTime: f.CapturedAt})
	}
	return out
}
