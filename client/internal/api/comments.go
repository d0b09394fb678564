package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/photostream/photostream/client/internal/types"
	"github.com/photostream/photostream/model"
)

// AddComment posts text on photoID as userID and returns the created comment.
func AddComment(ctx context.Context, httpClient HTTPClient, baseURL, photoID, userID, text string) (model.Comment, error) {
	if err := types.ValidateIDPresent(photoID, "photoId"); err != nil {
		return model.Comment{}, err
	}
	if err := types.ValidateCommentText(text); err != nil {
		return model.Comment{}, err
	}
	var c types.Comment
	url := fmt.Sprintf("%s/commentsOfPhoto/%s", baseURL, photoID)
	req := types.AddCommentRequest{Comment: text, UserID: userID}
	if err := do(ctx, httpClient, http.MethodPost, url, "add comment", req, &c, http.StatusOK, http.StatusCreated); err != nil {
		return model.Comment{}, err
	}
	return c.ToModel(photoID), nil
}

// DeleteComment removes commentID from photoID.
func DeleteComment(ctx context.Context, httpClient HTTPClient, baseURL, photoID, commentID string) error {
	if err := types.ValidateIDPresent(photoID, "photoId"); err != nil {
		return err
	}
	if err := types.ValidateIDPresent(commentID, "commentId"); err != nil {
		return err
	}
	url := fmt.Sprintf("%s/commentsOfPhoto/%s/%s", baseURL, photoID, commentID)
	return do(ctx, httpClient, http.MethodDelete, url, "delete comment", nil, nil, http.StatusOK, http.StatusNoContent)
}
