package storage

import (
	"context"
	"database/sql"
)

// EnsureSchema creates the photo tables if they do not exist.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS Users (
            UserId TEXT PRIMARY KEY,
            FirstName TEXT NOT NULL,
            LastName TEXT NOT NULL,
            Location TEXT NOT NULL DEFAULT '',
            Description TEXT NOT NULL DEFAULT '',
            Occupation TEXT NOT NULL DEFAULT ''
        );`,
		`CREATE TABLE IF NOT EXISTS Photos (
            PhotoId TEXT PRIMARY KEY,
            UserId TEXT NOT NULL REFERENCES Users(UserId) ON DELETE CASCADE,
            FileName TEXT NOT NULL,
            DateTime INTEGER NOT NULL
        );`,
		`CREATE INDEX IF NOT EXISTS PhotosByUser ON Photos(UserId, DateTime);`,
		`CREATE TABLE IF NOT EXISTS Likes (
            PhotoId TEXT NOT NULL REFERENCES Photos(PhotoId) ON DELETE CASCADE,
            UserId TEXT NOT NULL REFERENCES Users(UserId) ON DELETE CASCADE,
            PRIMARY KEY(PhotoId, UserId)
        );`,
		`CREATE TABLE IF NOT EXISTS Favorites (
            PhotoId TEXT NOT NULL REFERENCES Photos(PhotoId) ON DELETE CASCADE,
            UserId TEXT NOT NULL REFERENCES Users(UserId) ON DELETE CASCADE,
            PRIMARY KEY(PhotoId, UserId)
        );`,
		`CREATE TABLE IF NOT EXISTS Comments (
            CommentId TEXT PRIMARY KEY,
            PhotoId TEXT NOT NULL REFERENCES Photos(PhotoId) ON DELETE CASCADE,
            UserId TEXT NOT NULL REFERENCES Users(UserId) ON DELETE CASCADE,
            Comment TEXT NOT NULL,
            DateTime INTEGER NOT NULL
        );`,
		`CREATE INDEX IF NOT EXISTS CommentsByPhoto ON Comments(PhotoId, DateTime);`,
	}
	for _, s := range stmts {
		if _, err := db.ExecContext(ctx, s); err != nil {
			return err
		}
	}
	return nil
}
