package main

import (
	"github.com/spf13/cobra"

	"github.com/robalobadob/wordle/apps/tally/internal/session"
	"github.com/robalobadob/wordle/apps/tally/internal/tui"
)

func newPlayCmd(cfg *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "play",
		Short: "Play in the terminal.",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.setupLogging(true); err != nil {
				return err
			}
			sources, _, err := cfg.sources()
			if err != nil {
				return err
			}
			p, err := sources.Lookup(cfg.wordSource)
			if err != nil {
				return err
			}

			sess := session.New("local", p, session.WithShake(cfg.shake))
			defer sess.Close()
			return tui.Run(cmd.Context(), sess)
		},
	}
}
