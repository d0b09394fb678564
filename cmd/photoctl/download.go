package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/photostream/photostream/model"
)

func newDownloadCmd(s *session) *cobra.Command {
	var owner, outDir string
	cmd := &cobra.Command{
		Use:   "download <photoId>",
		Short: "Save a photo's image file",
		Args:  cobra.ExactArgs(1),
		RunE: s.runE(func(cmd *cobra.Command, args []string) error {
			ctx, cancel := withTimeout(cmd, s)
			defer cancel()

			store, err := s.load(ctx, owner)
			if err != nil {
				return err
			}
			p, ok := store.Photo(args[0])
			if !ok {
				return fmt.Errorf("photo %s of %s: %w", args[0], owner, model.ErrNotFound)
			}
			dest, err := imageDest(outDir, p.FileRef)
			if err != nil {
				return fmt.Errorf("photo %s: %w", p.ID, err)
			}
			if err := os.MkdirAll(outDir, 0o755); err != nil {
				return err
			}

			rc := resty.New().
				SetTimeout(s.cfg.HTTPTimeout).
				SetAuthToken(s.client.Token()).
				SetDebug(s.cfg.Debug)
			resp, err := fetchImage(ctx, rc, s.client.ImageURL(p.FileRef), dest)
			if err != nil {
				return fmt.Errorf("download %s: %w", p.FileRef, err)
			}
			log.Debug().Str("photo_id", p.ID).Str("file", dest).Int64("bytes", resp.Size()).Msg("image saved")
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "saved %s\n", dest)
			return nil
		}),
	}
	cmd.Flags().StringVar(&owner, "owner", "", "Owner of the photo (required)")
	cmd.Flags().StringVarP(&outDir, "out", "o", ".", "Destination directory")
	_ = cmd.MarkFlagRequired("owner")
	return cmd
}

// imageDest returns the local path for fileRef inside outDir. Only the last
// path element of fileRef is used.
func imageDest(outDir, fileRef string) (string, error) {
	base := filepath.Base(fileRef)
	if fileRef == "" || base == "." || base == ".." || base == string(filepath.Separator) {
		return "", fmt.Errorf("invalid file reference %q: %w", fileRef, model.ErrValidation)
	}
	return filepath.Join(outDir, base), nil
}

// fetchImage streams url into dest. dest is removed unless the whole body
// arrived with a 200.
func fetchImage(ctx context.Context, rc *resty.Client, url, dest string) (*resty.Response, error) {
	resp, err := rc.R().
		SetContext(ctx).
		SetOutput(dest).
		Get(url)
	if err == nil && resp.StatusCode() != http.StatusOK {
		err = errors.New("HTTP " + resp.Status())
	}
	if err != nil {
		_ = os.Remove(dest)
		return nil, err
	}
	return resp, nil
}
