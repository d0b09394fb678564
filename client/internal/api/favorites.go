package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/photostream/photostream/client/internal/types"
	"github.com/photostream/photostream/model"
)

// AddFavorite marks photoID as a favorite of userID. The backend answers with
// the full photo listing.
func AddFavorite(ctx context.Context, httpClient HTTPClient, baseURL, photoID, userID string) ([]model.Photo, error) {
	if err := validateFavorite(photoID, userID); err != nil {
		return nil, err
	}
	var photos []types.Photo
	req := types.FavoriteRequest{PhotoID: photoID, UserID: userID}
	if err := do(ctx, httpClient, http.MethodPost, baseURL+"/addFavorite", "add favorite", req, &photos, http.StatusOK, http.StatusCreated); err != nil {
		return nil, err
	}
	return types.PhotosToModelFor(photos, userID), nil
}

// RemoveFavorite unmarks photoID and returns the user's remaining favorites.
func RemoveFavorite(ctx context.Context, httpClient HTTPClient, baseURL, photoID, userID string) ([]model.Favorite, error) {
	if err := validateFavorite(photoID, userID); err != nil {
		return nil, err
	}
	var favs []types.Favorite
	req := types.FavoriteRequest{PhotoID: photoID, UserID: userID}
	if err := do(ctx, httpClient, http.MethodPost, baseURL+"/removeFavorite", "remove favorite", req, &favs); err != nil {
		return nil, err
	}
	return types.FavoritesToModel(favs), nil
}

// ListFavorites returns the favorites of userID.
func ListFavorites(ctx context.Context, httpClient HTTPClient, baseURL, userID string) ([]model.Favorite, error) {
	if err := types.ValidateIDPresent(userID, "userId"); err != nil {
		return nil, err
	}
	var favs []types.Favorite
	url := fmt.Sprintf("%s/getFavorites/%s", baseURL, userID)
	if err := do(ctx, httpClient, http.MethodGet, url, "list favorites", nil, &favs); err != nil {
		return nil, err
	}
	return types.FavoritesToModel(favs), nil
}

func validateFavorite(photoID, userID string) error {
	if err := types.ValidateIDPresent(photoID, "photoId"); err != nil {
		return err
	}
	return types.ValidateIDPresent(userID, "userId")
}
