package api

import (
	"context"
	"net/http"
	"testing"

	"github.com/photostream/photostream/client/internal/types"
)

func TestGetUser_Success(t *testing.T) {
	t.Parallel()
	srv := newServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/user/u1" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		writeJSON(t, w, http.StatusOK, types.User{ID: "u1", FirstName: "Ian", LastName: "Malcolm", Occupation: "Mathematician"})
	}))
	u, err := GetUser(context.Background(), srv.Client(), srv.URL, "u1")
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if u.DisplayName() != "Ian Malcolm" || u.Occupation != "Mathematician" {
		t.Fatalf("unexpected user %+v", u)
	}
}

func TestGetPhotoPreview_AbsentOn404(t *testing.T) {
	t.Parallel()
	srv := newServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(t, w, http.StatusNotFound, "no photos")
	}))
	_, ok, err := GetPhotoPreview(context.Background(), srv.Client(), srv.URL, "u1")
	if err != nil || ok {
		t.Fatalf("expected absent preview, ok=%v err=%v", ok, err)
	}
}

func TestGetPhotoPreview_Present(t *testing.T) {
	t.Parallel()
	srv := newServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/user/photos-preview/u1" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		writeJSON(t, w, http.StatusOK, types.PhotoPreviewResponse{
			MostRecent:    types.Photo{ID: "p2"},
			MostCommented: types.CommentedPhoto{Photo: types.Photo{ID: "p1"}, CommentsCount: 3},
		})
	}))
	pv, ok, err := GetPhotoPreview(context.Background(), srv.Client(), srv.URL, "u1")
	if err != nil || !ok {
		t.Fatalf("preview: ok=%v err=%v", ok, err)
	}
	if pv.MostRecent.ID != "p2" || pv.MostCommentedCount != 3 {
		t.Fatalf("unexpected preview %+v", pv)
	}
}

func TestDeleteUser_Status(t *testing.T) {
	t.Parallel()
	srv := newServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete || r.URL.Path != "/user/delete/u1" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		w.WriteHeader(http.StatusOK)
	}))
	if err := DeleteUser(context.Background(), srv.Client(), srv.URL, "u1"); err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}
}
