package photostore

import (
	"github.com/rs/zerolog"

	"github.com/photostream/photostream/model"
)

// PatchKind names the confirmed mutation a Patch carries.
type PatchKind int

const (
	PatchLike PatchKind = iota + 1
	PatchCommentAdd
	PatchCommentDelete
	PatchFavoriteAdd
	PatchFavoriteRemove
	PatchPhotoDelete
)

func (k PatchKind) String() string {
	switch k {
	case PatchLike:
		return "like"
	case PatchCommentAdd:
		return "comment_add"
	case PatchCommentDelete:
		return "comment_delete"
	case PatchFavoriteAdd:
		return "favorite_add"
	case PatchFavoriteRemove:
		return "favorite_remove"
	case PatchPhotoDelete:
		return "photo_delete"
	default:
		return "unknown"
	}
}

// Patch is one server-confirmed change to a photo. Only the fields relevant to
// Kind are read.
type Patch struct {
	Kind      PatchKind
	PhotoID   string
	UserID    string          // acting user for like and favorite patches
	Like      model.LikeState // PatchLike
	Comment   model.Comment   // PatchCommentAdd
	CommentID string          // PatchCommentDelete
}

// Reconciler applies confirmed patches to a photo slice. Every patch is
// idempotent: applying it twice leaves the same state as applying it once.
type Reconciler struct {
	logger zerolog.Logger
}

// NewReconciler returns a Reconciler logging discarded patches to logger.
func NewReconciler(logger zerolog.Logger) Reconciler {
	return Reconciler{logger: logger}
}

// Apply patches photos in place and returns the resulting slice together with
// whether anything changed. A patch whose photo is absent is discarded.
func (r Reconciler) Apply(photos []model.Photo, p Patch) ([]model.Photo, bool) {
	idx := indexOf(photos, p.PhotoID)
	if idx < 0 {
		patchesDiscarded.WithLabelValues(p.Kind.String()).Inc()
		r.logger.Debug().Str("photo_id", p.PhotoID).Str("patch", p.Kind.String()).Msg("photostore: patch discarded, photo not in snapshot")
		return photos, false
	}
	ph := &photos[idx]

	switch p.Kind {
	case PatchLike:
		changed := ph.IsLikedBy(p.UserID) != p.Like.LikedByUser || ph.LikesCount != p.Like.LikesCount
		ph.LikedBy.Set(p.UserID, p.Like.LikedByUser)
		ph.LikesCount = p.Like.LikesCount
		return photos, changed

	case PatchCommentAdd:
		if _, exists := ph.Comment(p.Comment.ID); exists {
			return photos, false
		}
		c := p.Comment
		c.PhotoID = ph.ID
		ph.Comments = append(ph.Comments, c)
		return photos, true

	case PatchCommentDelete:
		for i, c := range ph.Comments {
			if c.ID == p.CommentID {
				ph.Comments = append(ph.Comments[:i:i], ph.Comments[i+1:]...)
				return photos, true
			}
		}
		return photos, false

	case PatchFavoriteAdd:
		return photos, ph.FavoritedBy.Add(p.UserID)

	case PatchFavoriteRemove:
		return photos, ph.FavoritedBy.Remove(p.UserID)

	case PatchPhotoDelete:
		out := make([]model.Photo, 0, len(photos)-1)
		out = append(out, photos[:idx]...)
		out = append(out, photos[idx+1:]...)
		return out, true
	}

	r.logger.Warn().Int("kind", int(p.Kind)).Msg("photostore: unknown patch kind")
	return photos, false
}

// Replay reapplies a journaled patch on top of a freshly fetched slice. A like
// patch only settles the acting user's membership: the fetched count already
// reflects likes by others, so it moves by one when membership changes and is
// kept otherwise. Every other kind behaves as in Apply.
func (r Reconciler) Replay(photos []model.Photo, p Patch) ([]model.Photo, bool) {
	if p.Kind != PatchLike {
		return r.Apply(photos, p)
	}
	idx := indexOf(photos, p.PhotoID)
	if idx < 0 {
		patchesDiscarded.WithLabelValues(p.Kind.String()).Inc()
		return photos, false
	}
	ph := &photos[idx]
	if ph.IsLikedBy(p.UserID) == p.Like.LikedByUser {
		return photos, false
	}
	ph.LikedBy.Set(p.UserID, p.Like.LikedByUser)
	switch {
	case p.Like.LikedByUser:
		ph.LikesCount++
	case ph.LikesCount > 0:
		ph.LikesCount--
	}
	return photos, true
}

func indexOf(photos []model.Photo, photoID string) int {
	for i := range photos {
		if photos[i].ID == photoID {
			return i
		}
	}
	return -1
}
