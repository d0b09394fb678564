// Package photostore keeps an in-memory mirror of one user's photo collection
// consistent with the backend across overlapping mutation requests.
//
// Mutations are pessimistic: the snapshot changes only after the backend
// confirms, and then only through the Reconciler. Like toggles for one photo
// are serialized on a per-photo FIFO executor; every other call runs on the
// caller's goroutine.
package photostore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	perrors "github.com/photostream/photostream/internal/errors"
	"github.com/photostream/photostream/internal/shardqueue"
	"github.com/photostream/photostream/model"
)

var (
	// ErrStaleLoad reports a fetch whose response was discarded because a
	// newer load or a different target superseded it.
	ErrStaleLoad = errors.New("photostore: stale load discarded")

	// ErrClosed is returned by operations on a closed Store.
	ErrClosed = errors.New("photostore: store closed")
)

// RemoteAPI is the backend the store mirrors. *client.Client implements it.
type RemoteAPI interface {
	FetchPhotosOfUser(ctx context.Context, userID string) ([]model.Photo, error)
	LikePhoto(ctx context.Context, photoID, userID string) (model.LikeState, error)
	UnlikePhoto(ctx context.Context, photoID, userID string) (model.LikeState, error)
	AddComment(ctx context.Context, photoID, userID, text string) (model.Comment, error)
	DeleteComment(ctx context.Context, commentID, photoID string) error
	AddFavorite(ctx context.Context, photoID, userID string) ([]model.Photo, error)
	RemoveFavorite(ctx context.Context, photoID, userID string) ([]model.Favorite, error)
	DeletePhoto(ctx context.Context, photoID string) error
	DeleteUser(ctx context.Context, userID string) error
}

// Snapshot is a read-only copy of the mirrored collection.
type Snapshot struct {
	UserID   string
	Photos   []model.Photo
	Version  uint64
	LoadedAt time.Time
}

// Empty reports whether no collection is loaded.
func (s Snapshot) Empty() bool { return s.UserID == "" }

func (s Snapshot) clone() Snapshot {
	out := s
	if s.Photos != nil {
		out.Photos = make([]model.Photo, len(s.Photos))
		for i, p := range s.Photos {
			out.Photos[i] = p.Clone()
		}
	}
	return out
}

// Observer is notified with a copy of the snapshot after every change.
type Observer func(Snapshot)

type journalEntry struct {
	seq    uint64
	userID string
	patch  Patch
}

// Store owns the snapshot of the currently viewed user.
type Store struct {
	api    RemoteAPI
	exec   *shardqueue.ShardExecutor
	owns   bool // exec created by NewStore and stopped by Close
	rec    Reconciler
	logger zerolog.Logger
	now    func() time.Time

	mu      sync.Mutex
	snap    Snapshot
	target  string // user of the newest Load
	gen     uint64 // bumped by every Load, Discard and account deletion
	loading int    // loads in flight
	seq     uint64
	journal []journalEntry

	observers map[int]Observer
	nextObs   int
	closed    bool
}

// Option configures a Store.
type Option func(*Store)

// WithExecutor runs like toggles on exec instead of a private executor. The
// caller keeps ownership and must stop exec.
func WithExecutor(exec *shardqueue.ShardExecutor) Option {
	return func(s *Store) {
		s.exec = exec
		s.owns = false
	}
}

// WithLogger sets the store logger.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// WithClock overrides time.Now for LoadedAt stamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// NewStore returns an empty Store backed by api.
func NewStore(api RemoteAPI, opts ...Option) *Store {
	s := &Store{
		api:       api,
		logger:    log.Logger,
		now:       time.Now,
		observers: make(map[int]Observer),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.exec == nil {
		logger := s.logger
		s.exec = shardqueue.NewShardExecutor(shardqueue.Config{
			Shards:      4,
			QueueSize:   64,
			MaxAttempts: 3,
			BaseBackoff: 200 * time.Millisecond,
			MaxInterval: 2 * time.Second,
			Retryable:   perrors.IsRecoverable,
			ErrorHandler: func(err error) {
				logger.Debug().Err(err).Msg("photostore: like toggle failed")
			},
		})
		s.owns = true
	}
	s.rec = NewReconciler(s.logger)
	return s
}

// ------------------------------
// Reads and subscriptions
// ------------------------------

// Snapshot returns a deep copy of the current snapshot.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap.clone()
}

// Photo returns a copy of one photo of the snapshot.
func (s *Store) Photo(photoID string) (model.Photo, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := indexOf(s.snap.Photos, photoID); i >= 0 {
		return s.snap.Photos[i].Clone(), true
	}
	return model.Photo{}, false
}

// Subscribe registers fn for change notifications. The returned func removes
// it. Observers run on the goroutine of the call that made the change (for
// like toggles, the ToggleLike caller, not the shard worker), after the store
// lock is released, so they may call back into the store.
func (s *Store) Subscribe(fn Observer) (cancel func()) {
	s.mu.Lock()
	id := s.nextObs
	s.nextObs++
	s.observers[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.observers, id)
			s.mu.Unlock()
		})
	}
}

// notifyLocked captures the observers and the snapshot copy to deliver; call
// the returned func after unlocking.
func (s *Store) notifyLocked() func() {
	if len(s.observers) == 0 {
		return func() {}
	}
	snap := s.snap.clone()
	obs := make([]Observer, 0, len(s.observers))
	for _, fn := range s.observers {
		obs = append(obs, fn)
	}
	return func() {
		for _, fn := range obs {
			fn(snap)
		}
	}
}

// ------------------------------
// Loading
// ------------------------------

// Load fetches userID's collection and replaces the snapshot. On failure the
// snapshot is kept. A response superseded by a newer Load, or by a Discard,
// is dropped and ErrStaleLoad returned.
func (s *Store) Load(ctx context.Context, userID string) error {
	if strings.TrimSpace(userID) == "" {
		return fmt.Errorf("load: user id is required: %w", model.ErrValidation)
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	s.gen++
	gen := s.gen
	s.target = userID
	s.loading++
	fromSeq := s.seq
	s.mu.Unlock()

	fetchesTotal.Inc()
	photos, err := s.api.FetchPhotosOfUser(ctx, userID)

	s.mu.Lock()
	s.loading--
	if gen != s.gen || s.target != userID {
		s.trimJournalLocked()
		s.mu.Unlock()
		staleLoadsTotal.Inc()
		s.logger.Debug().Str("user_id", userID).Uint64("gen", gen).Msg("photostore: stale load discarded")
		return ErrStaleLoad
	}
	if err != nil {
		s.trimJournalLocked()
		s.mu.Unlock()
		loadsTotal.WithLabelValues(model.KindOf(err).String()).Inc()
		return fmt.Errorf("load photos of %s: %w", userID, err)
	}

	sameUser := s.snap.UserID == userID
	if photos == nil {
		photos = []model.Photo{}
	}
	replayed := 0
	if sameUser {
		// Patches confirmed while the fetch was in flight may be missing from
		// the response; reapply them on top.
		for _, je := range s.journal {
			if je.seq > fromSeq && je.userID == userID {
				photos, _ = s.rec.Replay(photos, je.patch)
				replayed++
			}
		}
	}
	s.snap = Snapshot{
		UserID:   userID,
		Photos:   photos,
		Version:  s.snap.Version + 1,
		LoadedAt: s.now(),
	}
	s.trimJournalLocked()
	notify := s.notifyLocked()
	s.mu.Unlock()

	loadsTotal.WithLabelValues("ok").Inc()
	s.logger.Debug().Str("user_id", userID).Int("photos", len(photos)).Bool("reload", sameUser).Int("replayed", replayed).Msg("photostore: snapshot loaded")
	notify()
	return nil
}

func (s *Store) trimJournalLocked() {
	if s.loading == 0 {
		s.journal = nil
	}
}

// Discard drops the snapshot and invalidates loads in flight.
func (s *Store) Discard() {
	s.mu.Lock()
	s.gen++
	s.target = ""
	s.journal = nil
	s.snap = Snapshot{Version: s.snap.Version + 1}
	notify := s.notifyLocked()
	s.mu.Unlock()
	notify()
}

// Close stops the like executor if the store owns it. Further operations
// return ErrClosed.
func (s *Store) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.observers = make(map[int]Observer)
	s.mu.Unlock()
	if s.owns {
		s.exec.Stop()
	}
	return nil
}

// ------------------------------
// Patching
// ------------------------------

// apply hands a confirmed patch to the reconciler and journals it for loads
// in flight. The returned func notifies observers; callers run it on their
// own goroutine, never on a shard worker.
func (s *Store) apply(p Patch) (notify func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	photos, changed := s.rec.Apply(s.snap.Photos, p)
	if s.loading > 0 && s.snap.UserID != "" {
		s.seq++
		s.journal = append(s.journal, journalEntry{seq: s.seq, userID: s.snap.UserID, patch: p})
	}
	if !changed {
		return func() {}
	}
	s.snap.Photos = photos
	s.snap.Version++
	return s.notifyLocked()
}

// lookup checks the common local preconditions and returns a copy of the
// photo.
func (s *Store) lookup(photoID, actingUserID string) (model.Photo, error) {
	if strings.TrimSpace(actingUserID) == "" {
		return model.Photo{}, fmt.Errorf("no authenticated user: %w", model.ErrUnauthorized)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return model.Photo{}, ErrClosed
	}
	i := indexOf(s.snap.Photos, photoID)
	if i < 0 {
		return model.Photo{}, fmt.Errorf("photo %s: %w", photoID, model.ErrNotFound)
	}
	return s.snap.Photos[i].Clone(), nil
}

// notifyHandoff moves an observer notification from a shard worker to the
// goroutine waiting on the job. A notification produced after the waiter gave
// up (cancelled context) runs on its own goroutine.
type notifyHandoff struct {
	mu         sync.Mutex
	pending    func()
	waiterGone bool
}

func (h *notifyHandoff) put(notify func()) {
	h.mu.Lock()
	if h.waiterGone {
		h.mu.Unlock()
		go notify()
		return
	}
	h.pending = notify
	h.mu.Unlock()
}

func (h *notifyHandoff) take() {
	h.mu.Lock()
	h.waiterGone = true
	notify := h.pending
	h.pending = nil
	h.mu.Unlock()
	if notify != nil {
		notify()
	}
}

func observeMutation(op string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = model.KindOf(err).String()
	}
	mutationsTotal.WithLabelValues(op, outcome).Inc()
}

// ------------------------------
// Mutation intents
// ------------------------------

// ToggleLike likes photoID for actingUserID when not already liked, and
// unlikes it otherwise. Toggles for one photo run strictly one after another;
// the like/unlike decision is made when the toggle runs, against the state
// confirmed by the previous toggle.
func (s *Store) ToggleLike(ctx context.Context, photoID, actingUserID string) (state model.LikeState, err error) {
	defer func() { observeMutation("toggle_like", err) }()
	if _, err := s.lookup(photoID, actingUserID); err != nil {
		return model.LikeState{}, err
	}

	var (
		result model.LikeState
		hand   notifyHandoff
	)
	job := shardqueue.JobFunc(func(ctx context.Context) error {
		ph, ok := s.Photo(photoID)
		if !ok {
			return fmt.Errorf("photo %s: %w", photoID, model.ErrNotFound)
		}
		var (
			st   model.LikeState
			rerr error
		)
		if ph.IsLikedBy(actingUserID) {
			st, rerr = s.api.UnlikePhoto(ctx, photoID, actingUserID)
		} else {
			st, rerr = s.api.LikePhoto(ctx, photoID, actingUserID)
		}
		if rerr != nil {
			return rerr
		}
		hand.put(s.apply(Patch{Kind: PatchLike, PhotoID: photoID, UserID: actingUserID, Like: st}))
		result = st
		return nil
	})
	err = s.exec.SubmitWait(ctx, photoID, job)
	hand.take()
	if err != nil {
		if errors.Is(err, shardqueue.ErrExecutorClosed) {
			return model.LikeState{}, ErrClosed
		}
		return model.LikeState{}, fmt.Errorf("toggle like on %s: %w", photoID, err)
	}
	return result, nil
}

// AddComment posts text on photoID and appends the server-created comment.
func (s *Store) AddComment(ctx context.Context, photoID, actingUserID, text string) (c model.Comment, err error) {
	defer func() { observeMutation("add_comment", err) }()
	if strings.TrimSpace(text) == "" {
		return model.Comment{}, fmt.Errorf("comment text is empty: %w", model.ErrValidation)
	}
	if _, err := s.lookup(photoID, actingUserID); err != nil {
		return model.Comment{}, err
	}
	c, err = s.api.AddComment(ctx, photoID, actingUserID, text)
	if err != nil {
		return model.Comment{}, fmt.Errorf("add comment on %s: %w", photoID, err)
	}
	s.apply(Patch{Kind: PatchCommentAdd, PhotoID: photoID, Comment: c})()
	return c, nil
}

// DeleteComment removes a comment written by actingUserID.
func (s *Store) DeleteComment(ctx context.Context, photoID, commentID, actingUserID string) (err error) {
	defer func() { observeMutation("delete_comment", err) }()
	ph, err := s.lookup(photoID, actingUserID)
	if err != nil {
		return err
	}
	c, ok := ph.Comment(commentID)
	if !ok {
		return fmt.Errorf("comment %s on photo %s: %w", commentID, photoID, model.ErrNotFound)
	}
	if c.AuthorID != actingUserID {
		return fmt.Errorf("only the author may delete comment %s: %w", commentID, model.ErrUnauthorized)
	}
	if err := s.api.DeleteComment(ctx, commentID, photoID); err != nil {
		return fmt.Errorf("delete comment %s: %w", commentID, err)
	}
	s.apply(Patch{Kind: PatchCommentDelete, PhotoID: photoID, CommentID: commentID})()
	return nil
}

// AddFavorite marks photoID as a favorite of actingUserID. When the user
// already favorited the photo no request is sent and (nil, nil) is returned.
// The returned listing is informational; membership lives on the photo.
func (s *Store) AddFavorite(ctx context.Context, photoID, actingUserID string) (photos []model.Photo, err error) {
	defer func() { observeMutation("add_favorite", err) }()
	ph, err := s.lookup(photoID, actingUserID)
	if err != nil {
		return nil, err
	}
	if ph.IsFavoritedBy(actingUserID) {
		return nil, nil
	}
	photos, err = s.api.AddFavorite(ctx, photoID, actingUserID)
	if err != nil {
		return nil, fmt.Errorf("add favorite %s: %w", photoID, err)
	}
	s.apply(Patch{Kind: PatchFavoriteAdd, PhotoID: photoID, UserID: actingUserID})()
	return photos, nil
}

// RemoveFavorite unmarks photoID. No request is sent when the user had not
// favorited it.
func (s *Store) RemoveFavorite(ctx context.Context, photoID, actingUserID string) (favs []model.Favorite, err error) {
	defer func() { observeMutation("remove_favorite", err) }()
	ph, err := s.lookup(photoID, actingUserID)
	if err != nil {
		return nil, err
	}
	if !ph.IsFavoritedBy(actingUserID) {
		return nil, nil
	}
	favs, err = s.api.RemoveFavorite(ctx, photoID, actingUserID)
	if err != nil {
		return nil, fmt.Errorf("remove favorite %s: %w", photoID, err)
	}
	s.apply(Patch{Kind: PatchFavoriteRemove, PhotoID: photoID, UserID: actingUserID})()
	return favs, nil
}

// DeletePhoto removes a photo owned by actingUserID.
func (s *Store) DeletePhoto(ctx context.Context, photoID, actingUserID string) (err error) {
	defer func() { observeMutation("delete_photo", err) }()
	ph, err := s.lookup(photoID, actingUserID)
	if err != nil {
		return err
	}
	if ph.OwnerID != actingUserID {
		return fmt.Errorf("only the owner may delete photo %s: %w", photoID, model.ErrUnauthorized)
	}
	if err := s.api.DeletePhoto(ctx, photoID); err != nil {
		return fmt.Errorf("delete photo %s: %w", photoID, err)
	}
	s.apply(Patch{Kind: PatchPhotoDelete, PhotoID: photoID})()
	return nil
}

// DeleteUser deletes the account of userID, which must be the acting user.
// A snapshot showing that user is cleared.
func (s *Store) DeleteUser(ctx context.Context, userID, actingUserID string) (err error) {
	defer func() { observeMutation("delete_user", err) }()
	if strings.TrimSpace(actingUserID) == "" || userID != actingUserID {
		return fmt.Errorf("only the account holder may delete user %s: %w", userID, model.ErrUnauthorized)
	}
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return ErrClosed
	}
	if err := s.api.DeleteUser(ctx, userID); err != nil {
		return fmt.Errorf("delete user %s: %w", userID, err)
	}

	s.mu.Lock()
	if s.snap.UserID != userID && s.target != userID {
		s.mu.Unlock()
		return nil
	}
	s.gen++
	s.target = ""
	s.journal = nil
	s.snap = Snapshot{Version: s.snap.Version + 1}
	notify := s.notifyLocked()
	s.mu.Unlock()
	notify()
	return nil
}
