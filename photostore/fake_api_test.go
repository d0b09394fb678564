package photostore

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/photostream/photostream/model"
)

// fakeAPI is an in-memory backend with hooks for ordering tests.
type fakeAPI struct {
	mu     sync.Mutex
	photos []model.Photo
	calls  map[string]int
	nextID int

	// errs holds errors returned, in order, by the next calls of an op.
	errs map[string][]error

	// beforeFetch runs before the response is captured.
	beforeFetch func(userID string)
	// onFetch runs after the response is captured and before it is returned.
	onFetch func(userID string)
	// onLike runs before a like or unlike is applied; verb is "like" or "unlike".
	onLike func(photoID, verb string)
	// afterCall runs after any mutation is applied server-side.
	afterCall func(op string)

	likesInFlight int32
	likeOverlap   int32
	likeOrder     []string
}

func newFakeAPI(photos ...model.Photo) *fakeAPI {
	return &fakeAPI{photos: photos, calls: map[string]int{}, errs: map[string][]error{}}
}

func (f *fakeAPI) count(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

func (f *fakeAPI) failNext(op string, errs ...error) {
	f.mu.Lock()
	f.errs[op] = append(f.errs[op], errs...)
	f.mu.Unlock()
}

// begin records a call and pops a queued error.
func (f *fakeAPI) begin(op string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[op]++
	if q := f.errs[op]; len(q) > 0 {
		f.errs[op] = q[1:]
		return q[0]
	}
	return nil
}

func (f *fakeAPI) done(op string) {
	if f.afterCall != nil {
		f.afterCall(op)
	}
}

func (f *fakeAPI) find(photoID string) *model.Photo {
	for i := range f.photos {
		if f.photos[i].ID == photoID {
			return &f.photos[i]
		}
	}
	return nil
}

func (f *fakeAPI) FetchPhotosOfUser(_ context.Context, userID string) ([]model.Photo, error) {
	if err := f.begin("fetch"); err != nil {
		return nil, err
	}
	if f.beforeFetch != nil {
		f.beforeFetch(userID)
	}
	f.mu.Lock()
	var out []model.Photo
	for _, p := range f.photos {
		if p.OwnerID == userID {
			out = append(out, p.Clone())
		}
	}
	f.mu.Unlock()
	if f.onFetch != nil {
		f.onFetch(userID)
	}
	return out, nil
}

func (f *fakeAPI) LikePhoto(ctx context.Context, photoID, userID string) (model.LikeState, error) {
	return f.like(photoID, userID, "like")
}

func (f *fakeAPI) UnlikePhoto(ctx context.Context, photoID, userID string) (model.LikeState, error) {
	return f.like(photoID, userID, "unlike")
}

func (f *fakeAPI) like(photoID, userID, verb string) (model.LikeState, error) {
	if atomic.AddInt32(&f.likesInFlight, 1) > 1 {
		atomic.StoreInt32(&f.likeOverlap, 1)
	}
	defer atomic.AddInt32(&f.likesInFlight, -1)

	if err := f.begin(verb); err != nil {
		return model.LikeState{}, err
	}
	if f.onLike != nil {
		f.onLike(photoID, verb)
	}
	f.mu.Lock()
	f.likeOrder = append(f.likeOrder, verb)
	p := f.find(photoID)
	if p == nil {
		f.mu.Unlock()
		return model.LikeState{}, fmt.Errorf("photo %s: %w", photoID, model.ErrNotFound)
	}
	p.LikedBy.Set(userID, verb == "like")
	p.LikesCount = p.LikedBy.Len()
	st := model.LikeState{LikesCount: p.LikesCount, LikedByUser: p.IsLikedBy(userID)}
	f.mu.Unlock()
	f.done(verb)
	return st, nil
}

func (f *fakeAPI) AddComment(_ context.Context, photoID, userID, text string) (model.Comment, error) {
	if err := f.begin("add_comment"); err != nil {
		return model.Comment{}, err
	}
	f.mu.Lock()
	p := f.find(photoID)
	if p == nil {
		f.mu.Unlock()
		return model.Comment{}, model.ErrNotFound
	}
	f.nextID++
	c := model.Comment{
		ID:        fmt.Sprintf("c%d", f.nextID),
		AuthorID:  userID,
		PhotoID:   photoID,
		Text:      text,
		CreatedAt: time.Date(2024, 1, 1, 0, 0, f.nextID, 0, time.UTC),
	}
	p.Comments = append(p.Comments, c)
	f.mu.Unlock()
	f.done("add_comment")
	return c, nil
}

func (f *fakeAPI) DeleteComment(_ context.Context, commentID, photoID string) error {
	if err := f.begin("delete_comment"); err != nil {
		return err
	}
	f.mu.Lock()
	if p := f.find(photoID); p != nil {
		for i, c := range p.Comments {
			if c.ID == commentID {
				p.Comments = append(p.Comments[:i:i], p.Comments[i+1:]...)
				break
			}
		}
	}
	f.mu.Unlock()
	f.done("delete_comment")
	return nil
}

func (f *fakeAPI) AddFavorite(_ context.Context, photoID, userID string) ([]model.Photo, error) {
	if err := f.begin("add_favorite"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	if p := f.find(photoID); p != nil {
		p.FavoritedBy.Add(userID)
	}
	out := make([]model.Photo, 0, len(f.photos))
	for _, p := range f.photos {
		out = append(out, p.Clone())
	}
	f.mu.Unlock()
	f.done("add_favorite")
	return out, nil
}

func (f *fakeAPI) RemoveFavorite(_ context.Context, photoID, userID string) ([]model.Favorite, error) {
	if err := f.begin("remove_favorite"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	var favs []model.Favorite
	for i := range f.photos {
		p := &f.photos[i]
		if p.ID == photoID {
			p.FavoritedBy.Remove(userID)
		}
		if p.IsFavoritedBy(userID) {
			favs = append(favs, model.Favorite{PhotoID: p.ID, UserID: userID, FileRef: p.FileRef})
		}
	}
	f.mu.Unlock()
	f.done("remove_favorite")
	return favs, nil
}

func (f *fakeAPI) DeletePhoto(_ context.Context, photoID string) error {
	if err := f.begin("delete_photo"); err != nil {
		return err
	}
	f.mu.Lock()
	for i := range f.photos {
		if f.photos[i].ID == photoID {
			f.photos = append(f.photos[:i:i], f.photos[i+1:]...)
			break
		}
	}
	f.mu.Unlock()
	f.done("delete_photo")
	return nil
}

func (f *fakeAPI) DeleteUser(_ context.Context, userID string) error {
	if err := f.begin("delete_user"); err != nil {
		return err
	}
	f.mu.Lock()
	kept := f.photos[:0:0]
	for _, p := range f.photos {
		if p.OwnerID != userID {
			kept = append(kept, p)
		}
	}
	f.photos = kept
	f.mu.Unlock()
	f.done("delete_user")
	return nil
}

// seedPhotos returns two photos of "owner": P1 without likes and P2 liked by
// u3 with one comment by u2.
func seedPhotos() []model.Photo {
	ts := time.Date(2023, 6, 1, 12, 0, 0, 0, time.UTC)
	return []model.Photo{
		{ID: "P1", OwnerID: "owner", FileRef: "p1.jpg", CapturedAt: ts, LikedBy: model.NewIDSet()},
		{
			ID: "P2", OwnerID: "owner", FileRef: "p2.jpg", CapturedAt: ts.Add(time.Hour),
			LikedBy: model.NewIDSet("u3"), LikesCount: 1,
			Comments: []model.Comment{{ID: "c0", AuthorID: "u2", PhotoID: "P2", Text: "wow", CreatedAt: ts}},
		},
		{ID: "Q1", OwnerID: "other", FileRef: "q1.jpg", CapturedAt: ts},
	}
}

// likeDirect records a like by userID without going through the store, as
// another client would.
func (f *fakeAPI) likeDirect(photoID, userID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p := f.find(photoID); p != nil {
		p.LikedBy.Set(userID, true)
		p.LikesCount = p.LikedBy.Len()
	}
}
