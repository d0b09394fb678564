package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newUserCmd(s *session) *cobra.Command {
	userCmd := &cobra.Command{
		Use:   "user",
		Short: "Show, preview or delete user accounts",
	}

	showCmd := &cobra.Command{
		Use:   "show <userId>",
		Short: "Show a user's profile",
		Args:  cobra.ExactArgs(1),
		RunE: s.runE(func(cmd *cobra.Command, args []string) error {
			c, err := s.api()
			if err != nil {
				return err
			}
			ctx, cancel := withTimeout(cmd, s)
			defer cancel()

			u, err := c.FetchUserProfile(ctx, args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "%s (%s)\n", u.DisplayName(), u.ID)
			_, _ = fmt.Fprintf(out, "location:    %s\n", u.Location)
			_, _ = fmt.Fprintf(out, "occupation:  %s\n", u.Occupation)
			_, _ = fmt.Fprintf(out, "description: %s\n", u.Description)
			return nil
		}),
	}

	previewCmd := &cobra.Command{
		Use:   "preview <userId>",
		Short: "Show the most recent and the most commented photo of a user",
		Args:  cobra.ExactArgs(1),
		RunE: s.runE(func(cmd *cobra.Command, args []string) error {
			c, err := s.api()
			if err != nil {
				return err
			}
			ctx, cancel := withTimeout(cmd, s)
			defer cancel()

			pv, ok, err := c.FetchPhotoPreview(ctx, args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if !ok {
				_, _ = fmt.Fprintf(out, "%s has no photos\n", args[0])
				return nil
			}
			_, _ = fmt.Fprintf(out, "most recent:    %s  %s\n", pv.MostRecent.ID, pv.MostRecent.CapturedAt.UTC().Format(timeLayout))
			_, _ = fmt.Fprintf(out, "most commented: %s  comments=%d\n", pv.MostCommented.ID, pv.MostCommentedCount)
			return nil
		}),
	}

	var confirm bool
	deleteCmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete your own account",
		Args:  cobra.NoArgs,
		RunE: s.runE(func(cmd *cobra.Command, args []string) error {
			if !confirm {
				return fmt.Errorf("refusing to delete the account without --yes")
			}
			me, err := s.actor()
			if err != nil {
				return err
			}
			store, err := s.photoStore()
			if err != nil {
				return err
			}
			ctx, cancel := withTimeout(cmd, s)
			defer cancel()

			if err := store.DeleteUser(ctx, me, me); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "account %s deleted\n", me)
			return nil
		}),
	}
	deleteCmd.Flags().BoolVar(&confirm, "yes", false, "Confirm account deletion")

	userCmd.AddCommand(showCmd, previewCmd, deleteCmd)
	return userCmd
}
