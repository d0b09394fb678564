package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/photostream/photostream/client/internal/types"
	"github.com/photostream/photostream/model"
)

// GetUser retrieves a user profile by ID.
func GetUser(ctx context.Context, httpClient HTTPClient, baseURL, userID string) (model.User, error) {
	if err := types.ValidateIDPresent(userID, "userId"); err != nil {
		return model.User{}, err
	}
	var u types.User
	url := fmt.Sprintf("%s/user/%s", baseURL, userID)
	if err := do(ctx, httpClient, http.MethodGet, url, "get user", nil, &u); err != nil {
		return model.User{}, err
	}
	return u.ToModel(), nil
}

// GetPhotoPreview returns the most recent and most commented photos of a user.
// ok is false when the user has no photos.
func GetPhotoPreview(ctx context.Context, httpClient HTTPClient, baseURL, userID string) (preview model.PhotoPreview, ok bool, err error) {
	if err := types.ValidateIDPresent(userID, "userId"); err != nil {
		return model.PhotoPreview{}, false, err
	}
	var r types.PhotoPreviewResponse
	url := fmt.Sprintf("%s/user/photos-preview/%s", baseURL, userID)
	if err := do(ctx, httpClient, http.MethodGet, url, "get photo preview", nil, &r); err != nil {
		if model.KindOf(err) == model.KindNotFound {
			return model.PhotoPreview{}, false, nil
		}
		return model.PhotoPreview{}, false, err
	}
	return r.ToModel(), true, nil
}

// DeleteUser removes a user account together with its photos and comments.
func DeleteUser(ctx context.Context, httpClient HTTPClient, baseURL, userID string) error {
	if err := types.ValidateIDPresent(userID, "userId"); err != nil {
		return err
	}
	url := fmt.Sprintf("%s/user/delete/%s", baseURL, userID)
	return do(ctx, httpClient, http.MethodDelete, url, "delete user", nil, nil, http.StatusOK, http.StatusNoContent)
}
