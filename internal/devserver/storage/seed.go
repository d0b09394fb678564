package storage

import (
	"context"
	"time"

	"github.com/photostream/photostream/model"
)

// SeedUsers are the sample accounts created by Seed. Their ids double as dev
// login names.
var SeedUsers = []model.User{
	{ID: "malcolm", FirstName: "Ian", LastName: "Malcolm", Location: "Austin, TX", Description: "Should we be doing this?", Occupation: "Mathematician"},
	{ID: "ripley", FirstName: "Ellen", LastName: "Ripley", Location: "Nostromo", Description: "Lvl 6 rating. Pilot.", Occupation: "Warrant Officer"},
	{ID: "took", FirstName: "Peregrin", LastName: "Took", Location: "Gondor", Description: "Home is behind, the world ahead.", Occupation: "Thane"},
	{ID: "kenobi", FirstName: "Rey", LastName: "Kenobi", Location: "D'Qar", Description: "Excited to be here!", Occupation: "Rebel"},
	{ID: "ludgate", FirstName: "April", LastName: "Ludgate", Location: "Pawnee, IN", Description: "Witch", Occupation: "Animal Control"},
}

type seedPhoto struct {
	id, owner, file string
	at              time.Time
	likes, favs     []string
	comments        [][2]string // author, text
}

var seedPhotos = []seedPhoto{
	{id: "ph-malcolm1", owner: "malcolm", file: "malcolm2.jpg", at: time.Date(2023, 8, 30, 10, 44, 23, 0, time.UTC),
		likes: []string{"ripley"}, comments: [][2]string{{"ripley", "Life finds a way."}}},
	{id: "ph-malcolm2", owner: "malcolm", file: "malcolm1.jpg", at: time.Date(2023, 10, 9, 16, 2, 12, 0, time.UTC),
		comments: [][2]string{{"took", "Is that a dinosaur?"}, {"kenobi", "Definitely a raptor."}, {"malcolm", "Clever girl."}}},
	{id: "ph-ripley1", owner: "ripley", file: "ripley1.jpg", at: time.Date(2023, 3, 18, 23, 22, 30, 0, time.UTC),
		likes: []string{"malcolm", "kenobi"}, favs: []string{"malcolm"}},
	{id: "ph-ripley2", owner: "ripley", file: "ripley2.jpg", at: time.Date(2023, 9, 2, 8, 12, 40, 0, time.UTC),
		comments: [][2]string{{"ludgate", "Nice cat."}}},
	{id: "ph-took1", owner: "took", file: "took1.jpg", at: time.Date(2023, 1, 4, 9, 30, 0, 0, time.UTC),
		likes: []string{"kenobi"}},
	{id: "ph-took2", owner: "took", file: "took2.jpg", at: time.Date(2023, 2, 1, 9, 30, 0, 0, time.UTC)},
	{id: "ph-kenobi1", owner: "kenobi", file: "kenobi1.jpg", at: time.Date(2023, 6, 11, 12, 0, 0, 0, time.UTC),
		favs: []string{"took", "ripley"}},
	{id: "ph-ludgate1", owner: "ludgate", file: "ludgate1.jpg", at: time.Date(2023, 11, 25, 18, 5, 0, 0, time.UTC),
		likes: []string{"took", "malcolm", "ripley"}, comments: [][2]string{{"took", "Spooky."}}},
}

// Seed loads the sample users and photos when the Users table is empty.
// It is a no-op otherwise.
func Seed(ctx context.Context, s *Store) error {
	var cnt int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM Users`).Scan(&cnt); err != nil {
		return err
	}
	if cnt > 0 {
		return nil
	}
	for _, u := range SeedUsers {
		if _, err := s.CreateUser(ctx, u); err != nil {
			return err
		}
	}
	for _, sp := range seedPhotos {
		if _, err := s.CreatePhoto(ctx, model.Photo{ID: sp.id, OwnerID: sp.owner, FileRef: sp.file, CapturedAt: sp.at}); err != nil {
			return err
		}
		for _, u := range sp.likes {
			if _, err := s.SetLike(ctx, sp.id, u, true); err != nil {
				return err
			}
		}
		for _, u := range sp.favs {
			if err := s.AddFavorite(ctx, sp.id, u); err != nil {
				return err
			}
		}
		for _, c := range sp.comments {
			if _, err := s.AddComment(ctx, sp.id, c[0], c[1]); err != nil {
				return err
			}
		}
	}
	return nil
}
