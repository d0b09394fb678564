package types

import (
	"time"

	"github.com/photostream/photostream/model"
)

// ------------------------------
// Wire Entities
// ------------------------------

// User is the wire shape of a profile.
type User struct {
	ID          string `json:"_id"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Location    string `json:"location,omitempty"`
	Description string `json:"description,omitempty"`
	Occupation  string `json:"occupation,omitempty"`
}

// CommentAuthor is the abbreviated user embedded in a comment.
type CommentAuthor struct {
	ID        string `json:"_id"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}

// Comment is the wire shape of a comment.
type Comment struct {
	ID       string        `json:"_id"`
	Comment  string        `json:"comment"`
	DateTime time.Time     `json:"date_time"`
	PhotoID  string        `json:"photo_id,omitempty"`
	User     CommentAuthor `json:"user"`
}

// Photo is the wire shape of a photo with its nested interaction state.
type Photo struct {
	ID         string    `json:"_id"`
	UserID     string    `json:"user_id"`
	FileName   string    `json:"file_name"`
	DateTime   time.Time `json:"date_time"`
	Likes      []string  `json:"likes"`
	LikesCount int       `json:"likesCount"`
	Favorites  []string  `json:"favorites"`
	Comments   []Comment `json:"comments"`

	// LikedByUser is the viewer's membership as computed by the server. Some
	// backends send it instead of listing the viewer in Likes.
	LikedByUser *bool `json:"likedByUser,omitempty"`
}

// Favorite is one entry of a favorites listing.
type Favorite struct {
	PhotoID  string    `json:"photo_id"`
	UserID   string    `json:"user_id"`
	FileName string    `json:"file_name"`
	DateTime time.Time `json:"date_time"`
}

// ------------------------------
// Conversion
// ------------------------------

// ToModel converts the wire user.
func (u User) ToModel() model.User {
	return model.User{
		ID:          u.ID,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		Location:    u.Location,
		Description: u.Description,
		Occupation:  u.Occupation,
	}
}

// UserFromModel converts a model user to its wire shape.
func UserFromModel(u model.User) User {
	return User{
		ID:          u.ID,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		Location:    u.Location,
		Description: u.Description,
		Occupation:  u.Occupation,
	}
}

// ToModel converts the wire comment. photoID fills the back-reference when the
// server omitted it.
func (c Comment) ToModel(photoID string) model.Comment {
	if c.PhotoID != "" {
		photoID = c.PhotoID
	}
	name := c.User.FirstName
	if c.User.LastName != "" {
		name += " " + c.User.LastName
	}
	return model.Comment{
		ID:         c.ID,
		AuthorID:   c.User.ID,
		AuthorName: name,
		PhotoID:    photoID,
		Text:       c.Comment,
		CreatedAt:  c.DateTime,
	}
}

// CommentFromModel converts a model comment to its wire shape.
func CommentFromModel(c model.Comment, author model.User) Comment {
	return Comment{
		ID:       c.ID,
		Comment:  c.Text,
		DateTime: c.CreatedAt,
		PhotoID:  c.PhotoID,
		User:     CommentAuthor{ID: c.AuthorID, FirstName: author.FirstName, LastName: author.LastName},
	}
}

// ToModel converts the wire photo. LikesCount falls back to the like list
// length when the server sent zero.
func (p Photo) ToModel() model.Photo {
	out := model.Photo{
		ID:          p.ID,
		OwnerID:     p.UserID,
		FileRef:     p.FileName,
		CapturedAt:  p.DateTime,
		LikedBy:     model.NewIDSet(p.Likes...),
		LikesCount:  p.LikesCount,
		FavoritedBy: model.NewIDSet(p.Favorites...),
	}
	if out.LikesCount == 0 {
		out.LikesCount = out.LikedBy.Len()
	}
	if len(p.Comments) > 0 {
		out.Comments = make([]model.Comment, 0, len(p.Comments))
		for _, c := range p.Comments {
			out.Comments = append(out.Comments, c.ToModel(p.ID))
		}
	}
	return out
}

// ToModelFor converts the wire photo as seen by viewerID. A likedByUser flag
// overrides the viewer's membership in LikedBy; LikesCount is left as sent.
func (p Photo) ToModelFor(viewerID string) model.Photo {
	out := p.ToModel()
	if p.LikedByUser != nil && viewerID != "" {
		out.LikedBy.Set(viewerID, *p.LikedByUser)
	}
	return out
}

// PhotosToModel converts a wire listing preserving order.
func PhotosToModel(in []Photo) []model.Photo {
	return PhotosToModelFor(in, "")
}

// PhotosToModelFor converts a wire listing as seen by viewerID.
func PhotosToModelFor(in []Photo, viewerID string) []model.Photo {
	out := make([]model.Photo, 0, len(in))
	for _, p := range in {
		out = append(out, p.ToModelFor(viewerID))
	}
	return out
}

// ToModel converts the wire favorite.
func (f Favorite) ToModel() model.Favorite {
	return model.Favorite{PhotoID: f.PhotoID, UserID: f.UserID, FileRef: f.FileName, CapturedAt: f.DateTime}
}

// FavoritesToModel converts a wire favorites listing.
func FavoritesToModel(in []Favorite) []model.Favorite {
	out := make([]model.Favorite, 0, len(in))
	for _, f := range in {
		out = append(out, f.ToModel())
	}
	return out
}
