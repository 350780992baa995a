package main

import (
	"net"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/robalobadob/wordle/apps/tally/internal/httpserver"
	"github.com/robalobadob/wordle/apps/tally/internal/store"
)

// sweepInterval is how often idle sessions are checked for eviction.
const sweepInterval = time.Minute

func newServeCmd(cfg *Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve rounds over HTTP and websockets.",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.validateServe(); err != nil {
				return err
			}
			if err := cfg.setupLogging(false); err != nil {
				return err
			}
			return serve(cmd, cfg)
		},
	}

	fs := cmd.Flags()
	fs.StringVarP(&cfg.bind, "bind", "b", "0.0.0.0", "address to bind to (env: TALLY_BIND)")
	fs.StringVar(&cfg.clientOrigin, "client-origin", "http://localhost:5173", "allowed CORS origin (env: TALLY_CLIENT_ORIGIN)")
	fs.IntVarP(&cfg.port, "port", "p", 5175, "port to listen on (env: TALLY_PORT)")
	fs.BoolVar(&cfg.secureCookies, "secure-cookies", false, "mark cookies Secure with SameSite=None (env: TALLY_SECURE_COOKIES)")
	fs.DurationVar(&cfg.sessionTimeout, "session-timeout", 60*time.Minute, "time before idle rounds are discarded; 0 keeps them forever (env: TALLY_SESSION_TIMEOUT)")
	fs.StringVar(&cfg.tokenSecret, "token-secret", "", "HS256 key for round tokens (env: TALLY_TOKEN_SECRET)")
	fs.DurationVar(&cfg.tokenTTL, "token-ttl", 24*time.Hour, "lifetime of round tokens (env: TALLY_TOKEN_TTL)")

	return cmd
}

func serve(cmd *cobra.Command, cfg *Config) error {
	sources, daily, err := cfg.sources()
	if err != nil {
		return err
	}
	if cfg.tokenSecret == "" {
		log.Warn().Msg("no --token-secret set, using an insecure development key")
	}

	ctx := cmd.Context()
	mem := store.NewMemoryStore(cfg.sessionTimeout)
	go mem.Run(ctx, sweepInterval)

	srv := httpserver.New(mem, sources, daily, httpserver.Config{
		ClientOrigin:  cfg.clientOrigin,
		TokenSecret:   cfg.tokenSecret,
		TokenTTL:      cfg.tokenTTL,
		SecureCookies: cfg.secureCookies,
		DefaultSource: cfg.wordSource,
		Shake:         cfg.shake,
	})

	addr := net.JoinHostPort(cfg.bind, strconv.Itoa(cfg.port))
	log.Info().Str("addr", addr).Str("source", cfg.wordSource).Msg("starting tally server")
	return srv.Start(ctx, addr)
}
