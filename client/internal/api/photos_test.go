package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/photostream/photostream/client/internal/types"
	perrors "github.com/photostream/photostream/internal/errors"
	"github.com/photostream/photostream/model"
)

func TestListPhotosOfUser_Success(t *testing.T) {
	t.Parallel()
	ts := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	srv := newServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/photosOfUser/u1" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		writeJSON(t, w, http.StatusOK, []types.Photo{
			{ID: "p1", UserID: "u1", FileName: "a.jpg", DateTime: ts, Likes: []string{"u2"}, LikesCount: 1},
			{ID: "p2", UserID: "u1", FileName: "b.jpg", DateTime: ts},
		})
	}))

	photos, err := ListPhotosOfUser(context.Background(), srv.Client(), srv.URL, "u1", "u1")
	if err != nil {
		t.Fatalf("ListPhotosOfUser: %v", err)
	}
	if len(photos) != 2 || photos[0].ID != "p1" || photos[1].ID != "p2" {
		t.Fatalf("unexpected photos: %+v", photos)
	}
	if !photos[0].IsLikedBy("u2") || photos[0].LikesCount != 1 {
		t.Fatalf("like state lost: %+v", photos[0])
	}
}

func TestListPhotosOfUser_LikedByUserFlag(t *testing.T) {
	t.Parallel()
	srv := newServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"_id":"p1","user_id":"u1","file_name":"a.jpg","date_time":"2024-01-02T03:04:05Z","likesCount":1,"likedByUser":true},
			{"_id":"p2","user_id":"u1","file_name":"b.jpg","date_time":"2024-01-02T03:04:05Z","likes":["u9"],"likesCount":1,"likedByUser":false},
			{"_id":"p3","user_id":"u1","file_name":"c.jpg","date_time":"2024-01-02T03:04:05Z","likes":["u9"],"likesCount":1}
		]`))
	}))

	photos, err := ListPhotosOfUser(context.Background(), srv.Client(), srv.URL, "u1", "viewer")
	if err != nil {
		t.Fatalf("ListPhotosOfUser: %v", err)
	}
	if len(photos) != 3 {
		t.Fatalf("expected 3 photos, got %d", len(photos))
	}
	if !photos[0].IsLikedBy("viewer") || photos[0].LikesCount != 1 {
		t.Fatalf("likedByUser=true not folded into likedBy: %+v", photos[0])
	}
	if photos[1].IsLikedBy("viewer") || !photos[1].IsLikedBy("u9") {
		t.Fatalf("likedByUser=false changed other members: %+v", photos[1])
	}
	if photos[2].IsLikedBy("viewer") || photos[2].LikedBy.Len() != 1 {
		t.Fatalf("absent flag changed membership: %+v", photos[2])
	}
}

func TestListPhotosOfUser_ErrorKinds(t *testing.T) {
	t.Parallel()
	cases := []struct {
		status int
		kind   model.Kind
	}{
		{http.StatusUnauthorized, model.KindUnauthorized},
		{http.StatusNotFound, model.KindNotFound},
		{http.StatusBadRequest, model.KindValidation},
		{http.StatusInternalServerError, model.KindServer},
	}
	for _, c := range cases {
		srv := newServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			writeError(t, w, c.status, "nope")
		}))
		_, err := ListPhotosOfUser(context.Background(), srv.Client(), srv.URL, "u1", "u1")
		if got := model.KindOf(err); got != c.kind {
			t.Fatalf("status %d: kind %v, want %v (err=%v)", c.status, got, c.kind, err)
		}
		var ce *perrors.ClassifiedError
		if !errors.As(err, &ce) || ce.Message != "nope" {
			t.Fatalf("status %d: server message not carried: %v", c.status, err)
		}
	}
}

func TestListPhotosOfUser_NetworkError(t *testing.T) {
	t.Parallel()
	hc := &http.Client{Transport: &errRT{}}
	_, err := ListPhotosOfUser(context.Background(), hc, "http://example.invalid", "u1", "u1")
	if !errors.Is(err, model.ErrNetwork) {
		t.Fatalf("expected network error, got %v", err)
	}
	if !perrors.IsRecoverable(err) {
		t.Fatal("network error should be recoverable")
	}
}

func TestListPhotosOfUser_MalformedBody(t *testing.T) {
	t.Parallel()
	srv := newServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("{not json"))
	}))
	_, err := ListPhotosOfUser(context.Background(), srv.Client(), srv.URL, "u1", "u1")
	if !errors.Is(err, model.ErrServer) {
		t.Fatalf("expected server failure, got %v", err)
	}
}

func TestListPhotosOfUser_CanceledContext(t *testing.T) {
	t.Parallel()
	h := &countingHandler{h: func(w http.ResponseWriter, r *http.Request) {}}
	srv := newServer(t, h)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := ListPhotosOfUser(ctx, srv.Client(), srv.URL, "u1", "u1"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if h.n != 0 {
		t.Fatal("no request expected after cancel")
	}
}

func TestLikeAndUnlike(t *testing.T) {
	t.Parallel()
	srv := newServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		var body types.ActingUserRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.UserID != "u1" {
			t.Errorf("unexpected body %+v err=%v", body, err)
		}
		switch r.URL.Path {
		case "/photos/p1/like":
			writeJSON(t, w, http.StatusOK, types.LikeResponse{LikesCount: 1, LikedByUser: true})
		case "/photos/p1/unlike":
			writeJSON(t, w, http.StatusOK, types.LikeResponse{LikesCount: 0, LikedByUser: false})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))

	st, err := LikePhoto(context.Background(), srv.Client(), srv.URL, "p1", "u1")
	if err != nil || st != (model.LikeState{LikesCount: 1, LikedByUser: true}) {
		t.Fatalf("like: %+v %v", st, err)
	}
	st, err = UnlikePhoto(context.Background(), srv.Client(), srv.URL, "p1", "u1")
	if err != nil || st != (model.LikeState{}) {
		t.Fatalf("unlike: %+v %v", st, err)
	}
}

func TestLikePhoto_RejectsEmptyIDsLocally(t *testing.T) {
	t.Parallel()
	h := &countingHandler{h: func(w http.ResponseWriter, r *http.Request) {}}
	srv := newServer(t, h)
	if _, err := LikePhoto(context.Background(), srv.Client(), srv.URL, "", "u1"); !errors.Is(err, model.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := LikePhoto(context.Background(), srv.Client(), srv.URL, "p1", " "); !errors.Is(err, model.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if h.n != 0 {
		t.Fatalf("expected no requests, got %d", h.n)
	}
}

func TestDeletePhoto(t *testing.T) {
	t.Parallel()
	srv := newServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete || r.URL.Path != "/photos/p1" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	if err := DeletePhoto(context.Background(), srv.Client(), srv.URL, "p1"); err != nil {
		t.Fatalf("DeletePhoto: %v", err)
	}
}
