package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/photostream/photostream/client/internal/types"
	"github.com/photostream/photostream/model"
)

// ListPhotosOfUser fetches every photo owned by userID with nested likes,
// favorites and comments. viewerID is the authenticated user; a likedByUser
// flag in the response is folded into its membership.
func ListPhotosOfUser(ctx context.Context, httpClient HTTPClient, baseURL, userID, viewerID string) ([]model.Photo, error) {
	if err := types.ValidateIDPresent(userID, "userId"); err != nil {
		return nil, err
	}
	var photos []types.Photo
	url := fmt.Sprintf("%s/photosOfUser/%s", baseURL, userID)
	if err := do(ctx, httpClient, http.MethodGet, url, "fetch photos of user", nil, &photos); err != nil {
		return nil, err
	}
	return types.PhotosToModelFor(photos, viewerID), nil
}

// LikePhoto records a like by userID and returns the authoritative state.
func LikePhoto(ctx context.Context, httpClient HTTPClient, baseURL, photoID, userID string) (model.LikeState, error) {
	return likeRequest(ctx, httpClient, baseURL, photoID, userID, "like")
}

// UnlikePhoto removes the like by userID and returns the authoritative state.
func UnlikePhoto(ctx context.Context, httpClient HTTPClient, baseURL, photoID, userID string) (model.LikeState, error) {
	return likeRequest(ctx, httpClient, baseURL, photoID, userID, "unlike")
}

func likeRequest(ctx context.Context, httpClient HTTPClient, baseURL, photoID, userID, verb string) (model.LikeState, error) {
	if err := types.ValidateIDPresent(photoID, "photoId"); err != nil {
		return model.LikeState{}, err
	}
	if err := types.ValidateIDPresent(userID, "userId"); err != nil {
		return model.LikeState{}, err
	}
	var r types.LikeResponse
	url := fmt.Sprintf("%s/photos/%s/%s", baseURL, photoID, verb)
	if err := do(ctx, httpClient, http.MethodPost, url, verb+" photo", types.ActingUserRequest{UserID: userID}, &r); err != nil {
		return model.LikeState{}, err
	}
	return r.ToModel(), nil
}

// DeletePhoto removes a photo owned by the caller.
func DeletePhoto(ctx context.Context, httpClient HTTPClient, baseURL, photoID string) error {
	if err := types.ValidateIDPresent(photoID, "photoId"); err != nil {
		return err
	}
	url := fmt.Sprintf("%s/photos/%s", baseURL, photoID)
	return do(ctx, httpClient, http.MethodDelete, url, "delete photo", nil, nil, http.StatusOK, http.StatusNoContent)
}
