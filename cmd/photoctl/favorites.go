package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/photostream/photostream/model"
)

func printFavorites(out io.Writer, favs []model.Favorite) {
	if len(favs) == 0 {
		_, _ = fmt.Fprintln(out, "no favorites")
		return
	}
	for _, f := range favs {
		_, _ = fmt.Fprintf(out, "%s  %s  by %s  %s\n", f.PhotoID, f.FileRef, f.UserID, f.CapturedAt.UTC().Format(timeLayout))
	}
}

// favoriteOwner finds who owns photoID among me's favorites.
func (s *session) favoriteOwner(ctx context.Context, me, photoID string) (string, error) {
	c, err := s.api()
	if err != nil {
		return "", err
	}
	favs, err := c.ListFavorites(ctx, me)
	if err != nil {
		return "", err
	}
	for _, f := range favs {
		if f.PhotoID == photoID {
			return f.UserID, nil
		}
	}
	return "", fmt.Errorf("photo %s is not among your favorites: %w", photoID, model.ErrNotFound)
}

func newFavoriteCmd(s *session) *cobra.Command {
	favCmd := &cobra.Command{
		Use:   "favorite",
		Short: "Manage your favorite photos",
	}

	var owner string
	addCmd := &cobra.Command{
		Use:   "add <photoId>",
		Short: "Mark a photo as favorite",
		Args:  cobra.ExactArgs(1),
		RunE: s.runE(func(cmd *cobra.Command, args []string) error {
			me, err := s.actor()
			if err != nil {
				return err
			}
			ctx, cancel := withTimeout(cmd, s)
			defer cancel()

			store, err := s.load(ctx, owner)
			if err != nil {
				return err
			}
			if _, err := store.AddFavorite(ctx, args[0], me); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s is a favorite\n", args[0])
			return nil
		}),
	}
	addCmd.Flags().StringVar(&owner, "owner", "", "Owner of the photo (required)")
	_ = addCmd.MarkFlagRequired("owner")

	removeCmd := &cobra.Command{
		Use:   "remove <photoId>",
		Short: "Unmark a favorite photo",
		Args:  cobra.ExactArgs(1),
		RunE: s.runE(func(cmd *cobra.Command, args []string) error {
			me, err := s.actor()
			if err != nil {
				return err
			}
			ctx, cancel := withTimeout(cmd, s)
			defer cancel()

			photoOwner, err := s.favoriteOwner(ctx, me, args[0])
			if err != nil {
				return err
			}
			store, err := s.load(ctx, photoOwner)
			if err != nil {
				return err
			}
			favs, err := store.RemoveFavorite(ctx, args[0], me)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s removed from favorites\n", args[0])
			printFavorites(cmd.OutOrStdout(), favs)
			return nil
		}),
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List your favorite photos",
		Args:  cobra.NoArgs,
		RunE: s.runE(func(cmd *cobra.Command, args []string) error {
			me, err := s.actor()
			if err != nil {
				return err
			}
			c, err := s.api()
			if err != nil {
				return err
			}
			ctx, cancel := withTimeout(cmd, s)
			defer cancel()

			favs, err := c.ListFavorites(ctx, me)
			if err != nil {
				return err
			}
			printFavorites(cmd.OutOrStdout(), favs)
			return nil
		}),
	}

	favCmd.AddCommand(addCmd, removeCmd, listCmd)
	return favCmd
}
