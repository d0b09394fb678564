// Package client is the Go SDK for the photostream backend. A Client binds
// every route of the backend and satisfies photostore.RemoteAPI.
package client

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/photostream/photostream/client/internal/api"
	"github.com/photostream/photostream/devmode"
	"github.com/photostream/photostream/model"
)

// RequestIDHeader carries a per-request uuid for log correlation.
const RequestIDHeader = "X-Request-ID"

// --------------------------------------------------------------------
// Client core
// --------------------------------------------------------------------

// Client talks to one backend as one authenticated user. It is safe for
// concurrent use.
type Client struct {
	baseURL string
	http    *http.Client
	token   string // bearer token for the authenticated user
	userID  string // authenticated user, when known
	logger  zerolog.Logger

	closedOnce uint32 // ensures Close is idempotent
}

// New constructs a Client with the specified baseURL and bearer token.
// Additional options can be provided via functional arguments.
func New(baseURL, token string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, errors.New("baseURL cannot be empty")
	}
	if token == "" {
		return nil, errors.New("token cannot be empty")
	}

	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: 30 * time.Second},
		logger:  log.Logger,
	}
	if id, ok := devmode.UserIDFromToken(token); ok {
		c.userID = id
	}

	// Auto-enable debug via env variable without changing code.
	if debugLoggingRequested() {
		opts = append(opts, WithDebugLogging(true))
	}

	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}

	// Wrap HTTP transport to automatically add Authorization and request id
	c.wrapTransportWithAuth()

	return c, nil
}

// NewWithDevMode constructs a Client that authenticates as userID against a
// backend running in development mode.
func NewWithDevMode(baseURL, userID string, opts ...Option) (*Client, error) {
	if userID == "" {
		return nil, errors.New("userID cannot be empty")
	}
	return New(baseURL, devmode.Token(userID), opts...)
}

// wrapTransportWithAuth wraps the HTTP client's transport so every request
// carries the bearer token and a request id.
func (c *Client) wrapTransportWithAuth() {
	baseTransport := c.http.Transport
	if baseTransport == nil {
		baseTransport = http.DefaultTransport
	}
	c.http.Transport = &authTransport{
		base:  baseTransport,
		token: c.token,
	}
}

// authTransport wraps an http.RoundTripper to add Authorization and
// X-Request-ID headers.
type authTransport struct {
	base  http.RoundTripper
	token string
}

func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	// Clone the request to avoid modifying the original
	cloned := req.Clone(req.Context())
	cloned.Header.Set("Authorization", "Bearer "+t.token)
	if cloned.Header.Get(RequestIDHeader) == "" {
		cloned.Header.Set(RequestIDHeader, uuid.NewString())
	}
	return t.base.RoundTrip(cloned)
}

// Close releases idle connections. Safe to call multiple times.
func (c *Client) Close() error {
	if !atomic.CompareAndSwapUint32(&c.closedOnce, 0, 1) {
		return nil
	}
	c.http.CloseIdleConnections()
	return nil
}

// BaseURL returns the backend root the client talks to.
func (c *Client) BaseURL() string { return c.baseURL }

// Token returns the bearer token, for collaborators that fetch images
// outside the JSON API.
func (c *Client) Token() string { return c.token }

// UserID returns the authenticated user, or "" when the token does not
// identify one and WithUserID was not given.
func (c *Client) UserID() string { return c.userID }

// ImageURL resolves a photo file reference to its download URL.
func (c *Client) ImageURL(fileRef string) string {
	return c.baseURL + "/images/" + fileRef
}

// observe records the outcome of one call.
func (c *Client) observe(op string, start time.Time, err error) {
	outcome := outcomeLabel(err)
	requestsTotal.WithLabelValues(op, outcome).Inc()
	requestDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	if err != nil {
		c.logger.Debug().Err(err).Str("op", op).Str("outcome", outcome).Msg("photostream request failed")
	}
}

func outcomeLabel(err error) string {
	if err == nil {
		return "ok"
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return "canceled"
	}
	return model.KindOf(err).String()
}

// --------------------------------------------------------------------
// Photo operations - delegated to internal/api
// --------------------------------------------------------------------

// FetchPhotosOfUser returns every photo of userID with likes, favorites and
// comments embedded.
func (c *Client) FetchPhotosOfUser(ctx context.Context, userID string) (photos []model.Photo, err error) {
	defer func(start time.Time) { c.observe("fetch_photos", start, err) }(time.Now())
	return api.ListPhotosOfUser(ctx, c.http, c.baseURL, userID, c.userID)
}

// LikePhoto records a like by userID.
func (c *Client) LikePhoto(ctx context.Context, photoID, userID string) (st model.LikeState, err error) {
	defer func(start time.Time) { c.observe("like", start, err) }(time.Now())
	return api.LikePhoto(ctx, c.http, c.baseURL, photoID, userID)
}

// UnlikePhoto removes the like by userID.
func (c *Client) UnlikePhoto(ctx context.Context, photoID, userID string) (st model.LikeState, err error) {
	defer func(start time.Time) { c.observe("unlike", start, err) }(time.Now())
	return api.UnlikePhoto(ctx, c.http, c.baseURL, photoID, userID)
}

// DeletePhoto removes a photo owned by the authenticated user.
func (c *Client) DeletePhoto(ctx context.Context, photoID string) (err error) {
	defer func(start time.Time) { c.observe("delete_photo", start, err) }(time.Now())
	return api.DeletePhoto(ctx, c.http, c.baseURL, photoID)
}

// --------------------------------------------------------------------
// Comment operations
// --------------------------------------------------------------------

// AddComment posts text on photoID as userID.
func (c *Client) AddComment(ctx context.Context, photoID, userID, text string) (cm model.Comment, err error) {
	defer func(start time.Time) { c.observe("add_comment", start, err) }(time.Now())
	return api.AddComment(ctx, c.http, c.baseURL, photoID, userID, text)
}

// DeleteComment removes commentID from photoID.
func (c *Client) DeleteComment(ctx context.Context, commentID, photoID string) (err error) {
	defer func(start time.Time) { c.observe("delete_comment", start, err) }(time.Now())
	return api.DeleteComment(ctx, c.http, c.baseURL, photoID, commentID)
}

// --------------------------------------------------------------------
// Favorite operations
// --------------------------------------------------------------------

// AddFavorite marks photoID as a favorite of userID and returns the backend's
// photo listing.
func (c *Client) AddFavorite(ctx context.Context, photoID, userID string) (photos []model.Photo, err error) {
	defer func(start time.Time) { c.observe("add_favorite", start, err) }(time.Now())
	return api.AddFavorite(ctx, c.http, c.baseURL, photoID, userID)
}

// RemoveFavorite unmarks photoID and returns userID's remaining favorites.
func (c *Client) RemoveFavorite(ctx context.Context, photoID, userID string) (favs []model.Favorite, err error) {
	defer func(start time.Time) { c.observe("remove_favorite", start, err) }(time.Now())
	return api.RemoveFavorite(ctx, c.http, c.baseURL, photoID, userID)
}

// ListFavorites returns the favorites of userID.
func (c *Client) ListFavorites(ctx context.Context, userID string) (favs []model.Favorite, err error) {
	defer func(start time.Time) { c.observe("list_favorites", start, err) }(time.Now())
	return api.ListFavorites(ctx, c.http, c.baseURL, userID)
}

// --------------------------------------------------------------------
// User operations
// --------------------------------------------------------------------

// FetchUserProfile returns the profile of userID.
func (c *Client) FetchUserProfile(ctx context.Context, userID string) (u model.User, err error) {
	defer func(start time.Time) { c.observe("fetch_user", start, err) }(time.Now())
	return api.GetUser(ctx, c.http, c.baseURL, userID)
}

// FetchPhotoPreview returns the preview of userID's photos. ok is false when
// the user has none.
func (c *Client) FetchPhotoPreview(ctx context.Context, userID string) (pv model.PhotoPreview, ok bool, err error) {
	defer func(start time.Time) { c.observe("fetch_preview", start, err) }(time.Now())
	return api.GetPhotoPreview(ctx, c.http, c.baseURL, userID)
}

// DeleteUser removes the account of userID.
func (c *Client) DeleteUser(ctx context.Context, userID string) (err error) {
	defer func(start time.Time) { c.observe("delete_user", start, err) }(time.Now())
	return api.DeleteUser(ctx, c.http, c.baseURL, userID)
}
