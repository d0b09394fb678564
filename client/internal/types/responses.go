package types

import "github.com/photostream/photostream/model"

// ------------------------------
// Response Types
// ------------------------------

// LikeResponse is returned by the like and unlike endpoints.
type LikeResponse struct {
	LikesCount  int  `json:"likesCount"`
	LikedByUser bool `json:"likedByUser"`
}

// ToModel converts the like response.
func (r LikeResponse) ToModel() model.LikeState {
	return model.LikeState{LikesCount: r.LikesCount, LikedByUser: r.LikedByUser}
}

// CommentedPhoto is a photo annotated with its comment count.
type CommentedPhoto struct {
	Photo
	CommentsCount int `json:"commentsCount"`
}

// PhotoPreviewResponse mirrors the photos-preview endpoint.
type PhotoPreviewResponse struct {
	MostRecent    Photo          `json:"mostRecent"`
	MostCommented CommentedPhoto `json:"mostCommented"`
}

// ToModel converts the preview response.
func (r PhotoPreviewResponse) ToModel() model.PhotoPreview {
	return model.PhotoPreview{
		MostRecent:         r.MostRecent.ToModel(),
		MostCommented:      r.MostCommented.Photo.ToModel(),
		MostCommentedCount: r.MostCommented.CommentsCount,
	}
}

// ErrorResponse is the JSON error body written by the backend.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    int    `json:"code"`
	Message string `json:"message,omitempty"`
}
