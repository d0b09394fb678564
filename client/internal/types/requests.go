package types

// ------------------------------
// Request Types
// ------------------------------

// ActingUserRequest names the user performing a like or unlike.
type ActingUserRequest struct {
	UserID string `json:"userId"`
}

// AddCommentRequest carries the comment text typed for one photo.
type AddCommentRequest struct {
	Comment string `json:"comment"`
	UserID  string `json:"userId"`
}

// FavoriteRequest adds or removes a favorite.
type FavoriteRequest struct {
	PhotoID string `json:"photoId"`
	UserID  string `json:"userId"`
}
