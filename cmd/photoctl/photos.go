package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/photostream/photostream/model"
)

const timeLayout = "2006-01-02 15:04"

func printPhoto(out io.Writer, p model.Photo, me string) {
	var marks []string
	if p.IsLikedBy(me) {
		marks = append(marks, "liked")
	}
	if p.IsFavoritedBy(me) {
		marks = append(marks, "favorite")
	}
	flags := ""
	if len(marks) > 0 {
		flags = " [" + strings.Join(marks, ",") + "]"
	}
	_, _ = fmt.Fprintf(out, "%s  %s  %s  likes=%d comments=%d%s\n",
		p.ID, p.FileRef, p.CapturedAt.UTC().Format(timeLayout), p.LikesCount, len(p.Comments), flags)
	for _, c := range p.Comments {
		_, _ = fmt.Fprintf(out, "    %s  %s: %s\n", c.ID, c.AuthorName, c.Text)
	}
}

func newPhotosCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "photos <userId>",
		Short: "List the photos of a user with their likes and comments",
		Args:  cobra.ExactArgs(1),
		RunE: s.runE(func(cmd *cobra.Command, args []string) error {
			me, err := s.actor()
			if err != nil {
				return err
			}
			ctx, cancel := withTimeout(cmd, s)
			defer cancel()

			store, err := s.load(ctx, args[0])
			if err != nil {
				return err
			}
			snap := store.Snapshot()
			out := cmd.OutOrStdout()
			if len(snap.Photos) == 0 {
				_, _ = fmt.Fprintf(out, "%s has no photos\n", args[0])
				return nil
			}
			for _, p := range snap.Photos {
				printPhoto(out, p, me)
			}
			return nil
		}),
	}
}

func newLikeCmd(s *session) *cobra.Command {
	var owner string
	cmd := &cobra.Command{
		Use:   "like <photoId>",
		Short: "Toggle your like on a photo",
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
			st, err := store.ToggleLike(ctx, args[0], me)
			if err != nil {
				return err
			}
			verb := "unliked"
			if st.LikedByUser {
				verb = "liked"
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s %s (likes=%d)\n", verb, args[0], st.LikesCount)
			return nil
		}),
	}
	cmd.Flags().StringVar(&owner, "owner", "", "Owner of the photo (required)")
	_ = cmd.MarkFlagRequired("owner")
	return cmd
}

func newDeletePhotoCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "delete-photo <photoId>",
		Short: "Delete one of your photos",
		Args:  cobra.ExactArgs(1),
		RunE: s.runE(func(cmd *cobra.Command, args []string) error {
			me, err := s.actor()
			if err != nil {
				return err
			}
			ctx, cancel := withTimeout(cmd, s)
			defer cancel()

			store, err := s.load(ctx, me)
			if err != nil {
				return err
			}
			if err := store.DeletePhoto(ctx, args[0], me); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
			return nil
		}),
	}
}
