package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/photostream/photostream/client"
	"github.com/photostream/photostream/devmode"
	"github.com/photostream/photostream/internal/config"
	"github.com/photostream/photostream/photostore"
)

// session is the state shared by every subcommand after flag parsing.
type session struct {
	cfg    *config.Config
	client *client.Client
	store  *photostore.Store
}

var (
	apiURLFlag  string
	tokenFlag   string
	userIDFlag  string
	debugFlag   bool
	timeoutFlag time.Duration
)

func main() {
	cmd := NewRootCmd()
	if err := cmd.Execute(); err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}

// NewRootCmd constructs the root CLI command; exposed for unit testing.
func NewRootCmd() *cobra.Command {
	s := &session{}

	rootCmd := &cobra.Command{
		Use:           "photoctl",
		Short:         "photoctl browses and edits photostream collections",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.New()
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if flags.Changed("api-url") {
				cfg.APIURL = apiURLFlag
			}
			if flags.Changed("token") {
				cfg.Token = tokenFlag
			}
			if flags.Changed("user-id") {
				cfg.UserID = userIDFlag
			}
			if flags.Changed("timeout") {
				cfg.HTTPTimeout = timeoutFlag
			}
			if debugFlag {
				cfg.Debug = true
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			config.InitLogger(cmd.ErrOrStderr(), cfg.LogLevel, cfg.Debug)
			s.cfg = cfg
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&apiURLFlag, "api-url", "", "Backend base URL (env PHOTOSTREAM_API_URL)")
	rootCmd.PersistentFlags().StringVar(&tokenFlag, "token", "", "Bearer token (env PHOTOSTREAM_TOKEN)")
	rootCmd.PersistentFlags().StringVarP(&userIDFlag, "user-id", "u", "", "Logged-in user id (env PHOTOSTREAM_USER_ID)")
	rootCmd.PersistentFlags().DurationVar(&timeoutFlag, "timeout", 0, "HTTP timeout (env PHOTOSTREAM_HTTP_TIMEOUT)")
	rootCmd.PersistentFlags().BoolVarP(&debugFlag, "debug", "d", false, "Enable request/response dumps")

	rootCmd.AddCommand(newPhotosCmd(s))
	rootCmd.AddCommand(newLikeCmd(s))
	rootCmd.AddCommand(newCommentCmd(s))
	rootCmd.AddCommand(newFavoriteCmd(s))
	rootCmd.AddCommand(newDeletePhotoCmd(s))
	rootCmd.AddCommand(newUserCmd(s))
	rootCmd.AddCommand(newDownloadCmd(s))

	return rootCmd
}

// actor returns the logged-in user id. A development token implies it.
func (s *session) actor() (string, error) {
	if s.cfg.UserID != "" {
		return s.cfg.UserID, nil
	}
	if id, ok := devmode.UserIDFromToken(s.cfg.Token); ok {
		return id, nil
	}
	return "", fmt.Errorf("--user-id required")
}

func (s *session) api() (*client.Client, error) {
	if s.client != nil {
		return s.client, nil
	}
	opts := []client.Option{
		client.WithHTTPTimeout(s.cfg.HTTPTimeout),
		client.WithDebugLogging(s.cfg.Debug),
		client.WithLogger(log.Logger),
	}
	var (
		c   *client.Client
		err error
	)
	if s.cfg.Token != "" {
		c, err = client.New(s.cfg.APIURL, s.cfg.Token, opts...)
	} else {
		var me string
		if me, err = s.actor(); err != nil {
			return nil, err
		}
		c, err = client.NewWithDevMode(s.cfg.APIURL, me, opts...)
	}
	if err != nil {
		return nil, err
	}
	s.client = c
	return c, nil
}

func (s *session) photoStore() (*photostore.Store, error) {
	if s.store != nil {
		return s.store, nil
	}
	c, err := s.api()
	if err != nil {
		return nil, err
	}
	s.store = photostore.NewStore(c, photostore.WithLogger(log.Logger))
	return s.store, nil
}

// load mirrors the collection of ownerID and returns the store holding it.
func (s *session) load(ctx context.Context, ownerID string) (*photostore.Store, error) {
	store, err := s.photoStore()
	if err != nil {
		return nil, err
	}
	sched := photostore.NewScheduler(store)
	start := time.Now()
	if err := sched.OnViewedUserChanged(ctx, ownerID); err != nil {
		log.Error().Err(err).Str("user_id", ownerID).Dur("elapsed", time.Since(start)).Msg("load photos failed")
		return nil, err
	}
	log.Debug().Str("user_id", ownerID).Int("photos", len(store.Snapshot().Photos)).Dur("elapsed", time.Since(start)).Msg("photos loaded")
	return store, nil
}

func (s *session) close() {
	if s.store != nil {
		_ = s.store.Close()
		s.store = nil
	}
	if s.client != nil {
		_ = s.client.Close()
		s.client = nil
	}
}

// runE releases the session after fn returns, whatever its outcome.
func (s *session) runE(fn func(cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		defer s.close()
		return fn(cmd, args)
	}
}

func withTimeout(cmd *cobra.Command, s *session) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), 2*s.cfg.HTTPTimeout)
}
