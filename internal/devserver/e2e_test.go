package devserver_test

import (
	"context"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/photostream/photostream/client"
	"github.com/photostream/photostream/internal/devserver"
	"github.com/photostream/photostream/model"
	"github.com/photostream/photostream/photostore"
)

func startBackend(t *testing.T) string {
	t.Helper()
	cfg := &devserver.Config{SQLitePath: filepath.Join(t.TempDir(), "e2e.db"), ImageDir: t.TempDir(), Seed: true}
	st, err := devserver.Open(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.DB().Close() })

	srv := httptest.NewServer(devserver.NewRouter(devserver.NewHandler(st, cfg.ImageDir, zerolog.Nop()), zerolog.Nop()))
	t.Cleanup(srv.Close)
	return srv.URL
}

func newStore(t *testing.T, baseURL, userID string) *photostore.Store {
	t.Helper()
	c, err := client.NewWithDevMode(baseURL, userID)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	s := photostore.NewStore(c, photostore.WithLogger(zerolog.Nop()))
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestEndToEnd_ViewAndMutate(t *testing.T) {
	ctx := context.Background()
	s := newStore(t, startBackend(t), "took")
	sched := photostore.NewScheduler(s)

	require.NoError(t, sched.OnViewedUserChanged(ctx, "malcolm"))
	snap := s.Snapshot()
	require.Equal(t, "malcolm", snap.UserID)
	require.Len(t, snap.Photos, 2)

	st, err := s.ToggleLike(ctx, "ph-malcolm1", "took")
	require.NoError(t, err)
	assert.Equal(t, model.LikeState{LikesCount: 2, LikedByUser: true}, st)
	p, _ := s.Photo("ph-malcolm1")
	assert.True(t, p.IsLikedBy("took"))

	st, err = s.ToggleLike(ctx, "ph-malcolm1", "took")
	require.NoError(t, err)
	assert.Equal(t, model.LikeState{LikesCount: 1, LikedByUser: false}, st)

	c, err := s.AddComment(ctx, "ph-malcolm1", "took", "Must go faster.")
	require.NoError(t, err)
	assert.Equal(t, "Peregrin Took", c.AuthorName)
	p, _ = s.Photo("ph-malcolm1")
	require.Len(t, p.Comments, 2)
	assert.Equal(t, c.ID, p.Comments[1].ID)

	require.NoError(t, s.DeleteComment(ctx, "ph-malcolm1", c.ID, "took"))
	p, _ = s.Photo("ph-malcolm1")
	assert.Len(t, p.Comments, 1)

	_, err = s.AddFavorite(ctx, "ph-malcolm2", "took")
	require.NoError(t, err)
	p, _ = s.Photo("ph-malcolm2")
	assert.True(t, p.IsFavoritedBy("took"))

	// A reload must agree with the locally reconciled snapshot.
	require.NoError(t, sched.Retry(ctx))
	p, _ = s.Photo("ph-malcolm2")
	assert.True(t, p.IsFavoritedBy("took"))
	p, _ = s.Photo("ph-malcolm1")
	assert.False(t, p.IsLikedBy("took"))
	assert.Equal(t, 1, p.LikesCount)
}

func TestEndToEnd_ConcurrentTogglesSettle(t *testing.T) {
	ctx := context.Background()
	s := newStore(t, startBackend(t), "kenobi")
	require.NoError(t, s.Load(ctx, "ripley"))

	const n = 5
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			_, err := s.ToggleLike(ctx, "ph-ripley2", "kenobi")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	// Odd number of toggles from an unliked start ends liked.
	p, _ := s.Photo("ph-ripley2")
	assert.True(t, p.IsLikedBy("kenobi"))
	assert.Equal(t, 1, p.LikesCount)

	require.NoError(t, s.Load(ctx, "ripley"))
	p, _ = s.Photo("ph-ripley2")
	assert.True(t, p.IsLikedBy("kenobi"))
}

func TestEndToEnd_ServerRejectsForeignDelete(t *testing.T) {
	ctx := context.Background()
	base := startBackend(t)

	c, err := client.NewWithDevMode(base, "ripley")
	require.NoError(t, err)
	defer c.Close()

	err = c.DeletePhoto(ctx, "ph-took1")
	require.Error(t, err)
	assert.ErrorIs(t, err, client.ErrUnauthorized)

	_, ok, err := c.FetchPhotoPreview(ctx, "malcolm")
	require.NoError(t, err)
	assert.True(t, ok)

	u, err := c.FetchUserProfile(ctx, "ludgate")
	require.NoError(t, err)
	assert.Equal(t, "Animal Control", u.Occupation)
}
