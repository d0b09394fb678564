// Package storage persists users, photos and their interactions in SQLite for
// the development backend.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/photostream/photostream/model"
)

var (
	// ErrNotFound is returned when a row does not exist.
	ErrNotFound = errors.New("storage: not found")
	// ErrConflict is returned when a row already exists.
	ErrConflict = errors.New("storage: already exists")
)

// Store implements the photo backend on SQLite.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// New wraps db and ensures the schema.
func New(ctx context.Context, db *sql.DB) (*Store, error) {
	if err := EnsureSchema(ctx, db); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return &Store{db: db, now: func() time.Time { return time.Now().UTC() }}, nil
}

// DB exposes the underlying connection.
func (s *Store) DB() *sql.DB { return s.db }

// HealthCheck pings the database.
func (s *Store) HealthCheck(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func toMillis(t time.Time) int64 { return t.UTC().UnixMilli() }

func fromMillis(ms int64) time.Time { return time.UnixMilli(ms).UTC() }

// --- Users ---

// CreateUser inserts u. An empty ID gets a fresh uuid.
func (s *Store) CreateUser(ctx context.Context, u model.User) (model.User, error) {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO Users (UserId, FirstName, LastName, Location, Description, Occupation) VALUES (?,?,?,?,?,?)`,
		u.ID, u.FirstName, u.LastName, u.Location, u.Description, u.Occupation)
	if err != nil {
		if isUniqueViolation(err) {
			return model.User{}, fmt.Errorf("user %s: %w", u.ID, ErrConflict)
		}
		return model.User{}, err
	}
	return u, nil
}

// GetUser loads one user.
func (s *Store) GetUser(ctx context.Context, userID string) (model.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT UserId, FirstName, LastName, Location, Description, Occupation FROM Users WHERE UserId = ?`, userID)
	var u model.User
	if err := row.Scan(&u.ID, &u.FirstName, &u.LastName, &u.Location, &u.Description, &u.Occupation); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.User{}, fmt.Errorf("user %s: %w", userID, ErrNotFound)
		}
		return model.User{}, err
	}
	return u, nil
}

// ListUsers returns every user ordered by last name.
func (s *Store) ListUsers(ctx context.Context) ([]model.User, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT UserId, FirstName, LastName, Location, Description, Occupation FROM Users ORDER BY LastName, FirstName`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.User
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.FirstName, &u.LastName, &u.Location, &u.Description, &u.Occupation); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// DeleteUser removes a user; photos, likes, favorites and comments cascade.
func (s *Store) DeleteUser(ctx context.Context, userID string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM Users WHERE UserId = ?`, userID)
	if err != nil {
		return err
	}
	return expectOne(res, "user "+userID)
}

// --- Photos ---

// CreatePhoto inserts a photo owned by p.OwnerID. An empty ID gets a uuid.
func (s *Store) CreatePhoto(ctx context.Context, p model.Photo) (model.Photo, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.CapturedAt.IsZero() {
		p.CapturedAt = s.now()
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO Photos (PhotoId, UserId, FileName, DateTime) VALUES (?,?,?,?)`,
		p.ID, p.OwnerID, p.FileRef, toMillis(p.CapturedAt))
	if err != nil {
		return model.Photo{}, err
	}
	return s.GetPhoto(ctx, p.ID)
}

// GetPhoto loads one photo with its likes, favorites and comments.
func (s *Store) GetPhoto(ctx context.Context, photoID string) (model.Photo, error) {
	photos, err := s.queryPhotos(ctx, `WHERE PhotoId = ?`, photoID)
	if err != nil {
		return model.Photo{}, err
	}
	if len(photos) == 0 {
		return model.Photo{}, fmt.Errorf("photo %s: %w", photoID, ErrNotFound)
	}
	return photos[0], nil
}

// PhotosOfUser returns userID's photos oldest first with nested interaction
// state.
func (s *Store) PhotosOfUser(ctx context.Context, userID string) ([]model.Photo, error) {
	return s.queryPhotos(ctx, `WHERE UserId = ?`, userID)
}

// DeletePhoto removes a photo and its interactions.
func (s *Store) DeletePhoto(ctx context.Context, photoID string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM Photos WHERE PhotoId = ?`, photoID)
	if err != nil {
		return err
	}
	return expectOne(res, "photo "+photoID)
}

func (s *Store) queryPhotos(ctx context.Context, where string, args ...any) ([]model.Photo, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT PhotoId, UserId, FileName, DateTime FROM Photos `+where+` ORDER BY DateTime, PhotoId`, args...)
	if err != nil {
		return nil, err
	}
	var (
		out   []model.Photo
		index = map[string]int{}
	)
	for rows.Next() {
		var (
			p  model.Photo
			ts int64
		)
		if err := rows.Scan(&p.ID, &p.OwnerID, &p.FileRef, &ts); err != nil {
			_ = rows.Close()
			return nil, err
		}
		p.CapturedAt = fromMillis(ts)
		p.LikedBy = model.NewIDSet()
		p.FavoritedBy = model.NewIDSet()
		index[p.ID] = len(out)
		out = append(out, p)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return out, nil
	}

	ids := make([]any, 0, len(out))
	for _, p := range out {
		ids = append(ids, p.ID)
	}
	in := placeholders(len(ids))

	if err := s.eachPair(ctx, `SELECT PhotoId, UserId FROM Likes WHERE PhotoId IN (`+in+`)`, ids, func(photoID, userID string) {
		out[index[photoID]].LikedBy.Add(userID)
	}); err != nil {
		return nil, err
	}
	if err := s.eachPair(ctx, `SELECT PhotoId, UserId FROM Favorites WHERE PhotoId IN (`+in+`)`, ids, func(photoID, userID string) {
		out[index[photoID]].FavoritedBy.Add(userID)
	}); err != nil {
		return nil, err
	}
	for i := range out {
		out[i].LikesCount = out[i].LikedBy.Len()
	}

	crow, err := s.db.QueryContext(ctx, `SELECT c.CommentId, c.PhotoId, c.UserId, c.Comment, c.DateTime, u.FirstName, u.LastName
        FROM Comments c JOIN Users u ON u.UserId = c.UserId
        WHERE c.PhotoId IN (`+in+`) ORDER BY c.DateTime, c.rowid`, ids...)
	if err != nil {
		return nil, err
	}
	defer crow.Close()
	for crow.Next() {
		var (
			c           model.Comment
			ts          int64
			first, last string
		)
		if err := crow.Scan(&c.ID, &c.PhotoID, &c.AuthorID, &c.Text, &ts, &first, &last); err != nil {
			return nil, err
		}
		c.CreatedAt = fromMillis(ts)
		c.AuthorName = strings.TrimSpace(first + " " + last)
		p := &out[index[c.PhotoID]]
		p.Comments = append(p.Comments, c)
	}
	return out, crow.Err()
}

func (s *Store) eachPair(ctx context.Context, q string, args []any, fn func(a, b string)) error {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var a, b string
		if err := rows.Scan(&a, &b); err != nil {
			return err
		}
		fn(a, b)
	}
	return rows.Err()
}

// Preview returns the most recent photo and the photo with the most comments
// of userID. ok is false when the user has no photos.
func (s *Store) Preview(ctx context.Context, userID string) (pv model.PhotoPreview, ok bool, err error) {
	photos, err := s.PhotosOfUser(ctx, userID)
	if err != nil || len(photos) == 0 {
		return model.PhotoPreview{}, false, err
	}
	recent := photos[0]
	commented := photos[0]
	for _, p := range photos[1:] {
		if !p.CapturedAt.Before(recent.CapturedAt) {
			recent = p
		}
		if len(p.Comments) > len(commented.Comments) {
			commented = p
		}
	}
	return model.PhotoPreview{MostRecent: recent, MostCommented: commented, MostCommentedCount: len(commented.Comments)}, true, nil
}

// --- Likes ---

// SetLike forces the like of userID on photoID and returns the new state.
func (s *Store) SetLike(ctx context.Context, photoID, userID string, liked bool) (model.LikeState, error) {
	if _, err := s.GetPhoto(ctx, photoID); err != nil {
		return model.LikeState{}, err
	}
	var err error
	if liked {
		_, err = s.db.ExecContext(ctx, `INSERT OR IGNORE INTO Likes (PhotoId, UserId) VALUES (?,?)`, photoID, userID)
	} else {
		_, err = s.db.ExecContext(ctx, `DELETE FROM Likes WHERE PhotoId = ? AND UserId = ?`, photoID, userID)
	}
	if err != nil {
		return model.LikeState{}, err
	}
	var st model.LikeState
	row := s.db.QueryRowContext(ctx, `SELECT COUNT(1), COALESCE(SUM(UserId = ?), 0) FROM Likes WHERE PhotoId = ?`, userID, photoID)
	var mine int
	if err := row.Scan(&st.LikesCount, &mine); err != nil {
		return model.LikeState{}, err
	}
	st.LikedByUser = mine > 0
	return st, nil
}

// --- Comments ---

// AddComment stores text by userID on photoID.
func (s *Store) AddComment(ctx context.Context, photoID, userID, text string) (model.Comment, error) {
	if _, err := s.GetPhoto(ctx, photoID); err != nil {
		return model.Comment{}, err
	}
	author, err := s.GetUser(ctx, userID)
	if err != nil {
		return model.Comment{}, err
	}
	c := model.Comment{
		ID:         uuid.NewString(),
		AuthorID:   userID,
		AuthorName: author.DisplayName(),
		PhotoID:    photoID,
		Text:       text,
		CreatedAt:  s.now(),
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO Comments (CommentId, PhotoId, UserId, Comment, DateTime) VALUES (?,?,?,?,?)`,
		c.ID, c.PhotoID, c.AuthorID, c.Text, toMillis(c.CreatedAt))
	if err != nil {
		return model.Comment{}, err
	}
	c.CreatedAt = fromMillis(toMillis(c.CreatedAt))
	return c, nil
}

// CommentAuthor returns the author of commentID on photoID.
func (s *Store) CommentAuthor(ctx context.Context, photoID, commentID string) (string, error) {
	var author string
	err := s.db.QueryRowContext(ctx, `SELECT UserId FROM Comments WHERE PhotoId = ? AND CommentId = ?`, photoID, commentID).Scan(&author)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("comment %s: %w", commentID, ErrNotFound)
	}
	return author, err
}

// DeleteComment removes commentID from photoID.
func (s *Store) DeleteComment(ctx context.Context, photoID, commentID string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM Comments WHERE PhotoId = ? AND CommentId = ?`, photoID, commentID)
	if err != nil {
		return err
	}
	return expectOne(res, "comment "+commentID)
}

// --- Favorites ---

// AddFavorite records photoID as a favorite of userID. Adding twice is a no-op.
func (s *Store) AddFavorite(ctx context.Context, photoID, userID string) error {
	if _, err := s.GetPhoto(ctx, photoID); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `INSERT OR IGNORE INTO Favorites (PhotoId, UserId) VALUES (?,?)`, photoID, userID)
	return err
}

// RemoveFavorite forgets the favorite. Removing an absent favorite is a no-op.
func (s *Store) RemoveFavorite(ctx context.Context, photoID, userID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM Favorites WHERE PhotoId = ? AND UserId = ?`, photoID, userID)
	return err
}

// Favorites lists userID's favorites, newest photo first.
func (s *Store) Favorites(ctx context.Context, userID string) ([]model.Favorite, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT p.PhotoId, p.FileName, p.DateTime FROM Favorites f
        JOIN Photos p ON p.PhotoId = f.PhotoId WHERE f.UserId = ?`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Favorite{}
	for rows.Next() {
		f := model.Favorite{UserID: userID}
		var ts int64
		if err := rows.Scan(&f.PhotoID, &f.FileRef, &ts); err != nil {
			return nil, err
		}
		f.CapturedAt = fromMillis(ts)
		out = append(out, f)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CapturedAt.After(out[j].CapturedAt) })
	return out, rows.Err()
}

// --- helpers ---

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

func expectOne(res sql.Result, what string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || strings.Contains(msg, "PRIMARY KEY")
}
