package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newCommentCmd(s *session) *cobra.Command {
	var owner string
	commentCmd := &cobra.Command{
		Use:   "comment",
		Short: "Add or delete comments",
	}
	commentCmd.PersistentFlags().StringVar(&owner, "owner", "", "Owner of the photo (required)")
	_ = commentCmd.MarkPersistentFlagRequired("owner")

	addCmd := &cobra.Command{
		Use:   "add <photoId> <text...>",
		Short: "Comment on a photo",
		Args:  cobra.MinimumNArgs(2),
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
			c, err := store.AddComment(ctx, args[0], me, strings.Join(args[1:], " "))
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "comment %s added to %s\n", c.ID, args[0])
			return nil
		}),
	}

	deleteCmd := &cobra.Command{
		Use:   "delete <photoId> <commentId>",
		Short: "Delete one of your comments",
		Args:  cobra.ExactArgs(2),
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
			if err := store.DeleteComment(ctx, args[0], args[1], me); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "comment %s deleted\n", args[1])
			return nil
		}),
	}

	commentCmd.AddCommand(addCmd, deleteCmd)
	return commentCmd
}
