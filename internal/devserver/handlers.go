package devserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/photostream/photostream/internal/devserver/respond"
	"github.com/photostream/photostream/internal/devserver/storage"
)

// Handler provides HTTP transport for the photo backend.
type Handler struct {
	st       *storage.Store
	imageDir string
	logger   zerolog.Logger
}

// NewHandler binds the handlers to st.
func NewHandler(st *storage.Store, imageDir string, logger zerolog.Logger) *Handler {
	return &Handler{st: st, imageDir: imageDir, logger: logger}
}

// writeStoreError maps storage errors to HTTP status codes.
func (h *Handler) writeStoreError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		respond.WriteNotFound(w, err.Error())
	case errors.Is(err, storage.ErrConflict):
		respond.WriteConflict(w, err.Error())
	default:
		h.logger.Error().Stack().Err(err).Str("url", r.URL.Path).Str("request_id", r.Header.Get("X-Request-ID")).Msg("storage failure")
		respond.WriteInternalError(w, "storage failure")
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if r.Body == nil || r.ContentLength == 0 {
		return true
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return false
	}
	return true
}

// --- Users ---

// GetUser GET /user/{userId}
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	u, err := h.st.GetUser(r.Context(), mux.Vars(r)["userId"])
	if err != nil {
		h.writeStoreError(w, r, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, toUserJSON(u))
}

// ListUsers GET /user/list
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.st.ListUsers(r.Context())
	if err != nil {
		h.writeStoreError(w, r, err)
		return
	}
	out := make([]userJSON, 0, len(users))
	for _, u := range users {
		out = append(out, toUserJSON(u))
	}
	respond.WriteJSON(w, http.StatusOK, out)
}

// PhotoPreview GET /user/photos-preview/{userId}
func (h *Handler) PhotoPreview(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userId"]
	if _, err := h.st.GetUser(r.Context(), userID); err != nil {
		h.writeStoreError(w, r, err)
		return
	}
	pv, ok, err := h.st.Preview(r.Context(), userID)
	if err != nil {
		h.writeStoreError(w, r, err)
		return
	}
	if !ok {
		respond.WriteNotFound(w, "user has no photos")
		return
	}
	respond.WriteJSON(w, http.StatusOK, previewJSON{
		MostRecent:    toPhotoJSON(pv.MostRecent),
		MostCommented: commentedPhotoJSON{photoJSON: toPhotoJSON(pv.MostCommented), CommentsCount: pv.MostCommentedCount},
	})
}

// DeleteUser DELETE /user/delete/{userId}
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userId"]
	if userID != authUser(r) {
		respond.WriteForbidden(w, "users may only delete their own account")
		return
	}
	if err := h.st.DeleteUser(r.Context(), userID); err != nil {
		h.writeStoreError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- Photos ---

// PhotosOfUser GET /photosOfUser/{userId}
func (h *Handler) PhotosOfUser(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userId"]
	if _, err := h.st.GetUser(r.Context(), userID); err != nil {
		h.writeStoreError(w, r, err)
		return
	}
	photos, err := h.st.PhotosOfUser(r.Context(), userID)
	if err != nil {
		h.writeStoreError(w, r, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, toPhotosJSON(photos))
}

// Like POST /photos/{photoId}/like
func (h *Handler) Like(w http.ResponseWriter, r *http.Request) { h.setLike(w, r, true) }

// Unlike POST /photos/{photoId}/unlike
func (h *Handler) Unlike(w http.ResponseWriter, r *http.Request) { h.setLike(w, r, false) }

func (h *Handler) setLike(w http.ResponseWriter, r *http.Request, liked bool) {
	var body actingUserBody
	if !decodeBody(w, r, &body) {
		return
	}
	userID, ok := actingUser(r, body.UserID)
	if !ok {
		respond.WriteForbidden(w, "userId does not match the authenticated user")
		return
	}
	st, err := h.st.SetLike(r.Context(), mux.Vars(r)["photoId"], userID, liked)
	if err != nil {
		h.writeStoreError(w, r, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, likeJSON{LikesCount: st.LikesCount, LikedByUser: st.LikedByUser})
}

// DeletePhoto DELETE /photos/{photoId}
func (h *Handler) DeletePhoto(w http.ResponseWriter, r *http.Request) {
	photoID := mux.Vars(r)["photoId"]
	p, err := h.st.GetPhoto(r.Context(), photoID)
	if err != nil {
		h.writeStoreError(w, r, err)
		return
	}
	if p.OwnerID != authUser(r) {
		respond.WriteForbidden(w, "only the owner can delete a photo")
		return
	}
	if err := h.st.DeletePhoto(r.Context(), photoID); err != nil {
		h.writeStoreError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Image GET /images/{fileRef}
func (h *Handler) Image(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["fileRef"]
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		respond.WriteBadRequest(w, "invalid file reference")
		return
	}
	http.ServeFile(w, r, filepath.Join(h.imageDir, name))
}

// --- Comments ---

// AddComment POST /commentsOfPhoto/{photoId}
func (h *Handler) AddComment(w http.ResponseWriter, r *http.Request) {
	var body commentBody
	if !decodeBody(w, r, &body) {
		return
	}
	if strings.TrimSpace(body.Comment) == "" {
		respond.WriteBadRequest(w, "comment must not be empty")
		return
	}
	userID, ok := actingUser(r, body.UserID)
	if !ok {
		respond.WriteForbidden(w, "userId does not match the authenticated user")
		return
	}
	c, err := h.st.AddComment(r.Context(), mux.Vars(r)["photoId"], userID, body.Comment)
	if err != nil {
		h.writeStoreError(w, r, err)
		return
	}
	respond.WriteJSON(w, http.StatusCreated, toCommentJSON(c))
}

// DeleteComment DELETE /commentsOfPhoto/{photoId}/{commentId}
func (h *Handler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	author, err := h.st.CommentAuthor(r.Context(), vars["photoId"], vars["commentId"])
	if err != nil {
		h.writeStoreError(w, r, err)
		return
	}
	if author != authUser(r) {
		respond.WriteForbidden(w, "only the author can delete a comment")
		return
	}
	if err := h.st.DeleteComment(r.Context(), vars["photoId"], vars["commentId"]); err != nil {
		h.writeStoreError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- Favorites ---

// AddFavorite POST /addFavorite
// Responds with the photos of the favorited photo's owner.
func (h *Handler) AddFavorite(w http.ResponseWriter, r *http.Request) {
	body, userID, ok := h.favoriteRequest(w, r)
	if !ok {
		return
	}
	if err := h.st.AddFavorite(r.Context(), body.PhotoID, userID); err != nil {
		h.writeStoreError(w, r, err)
		return
	}
	p, err := h.st.GetPhoto(r.Context(), body.PhotoID)
	if err != nil {
		h.writeStoreError(w, r, err)
		return
	}
	photos, err := h.st.PhotosOfUser(r.Context(), p.OwnerID)
	if err != nil {
		h.writeStoreError(w, r, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, toPhotosJSON(photos))
}

// RemoveFavorite POST /removeFavorite
// Responds with the caller's remaining favorites.
func (h *Handler) RemoveFavorite(w http.ResponseWriter, r *http.Request) {
	body, userID, ok := h.favoriteRequest(w, r)
	if !ok {
		return
	}
	if err := h.st.RemoveFavorite(r.Context(), body.PhotoID, userID); err != nil {
		h.writeStoreError(w, r, err)
		return
	}
	favs, err := h.st.Favorites(r.Context(), userID)
	if err != nil {
		h.writeStoreError(w, r, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, toFavoritesJSON(favs))
}

func (h *Handler) favoriteRequest(w http.ResponseWriter, r *http.Request) (favoriteBody, string, bool) {
	var body favoriteBody
	if !decodeBody(w, r, &body) {
		return body, "", false
	}
	if body.PhotoID == "" {
		respond.WriteBadRequest(w, "photoId is required")
		return body, "", false
	}
	userID, ok := actingUser(r, body.UserID)
	if !ok {
		respond.WriteForbidden(w, "userId does not match the authenticated user")
		return body, "", false
	}
	return body, userID, true
}

// ListFavorites GET /getFavorites/{userId}
func (h *Handler) ListFavorites(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userId"]
	if userID != authUser(r) {
		respond.WriteForbidden(w, "favorites are private")
		return
	}
	favs, err := h.st.Favorites(r.Context(), userID)
	if err != nil {
		h.writeStoreError(w, r, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, toFavoritesJSON(favs))
}

// --- Health ---

// Health GET /health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.st.HealthCheck(r.Context()); err != nil {
		respond.WriteError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
