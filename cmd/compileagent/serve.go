package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rahul/compileagent/internal/gateway"
)

func newServeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the pipeline behind a chat gateway",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "telegram",
		Short: "Execute every Telegram message as an intent and reply with the result",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tgCfg, ok := a.cfg.GetTelegramConfig()
			if !ok {
				return fmt.Errorf("telegram gateway is not enabled in the config")
			}

			pipe, cleanup, err := a.pipeline(false)
			if err != nil {
				return err
			}
			defer cleanup()

			handler := &gateway.Handler{Runner: pipe, Tracker: pipe.Tracker}
			tg, err := gateway.NewTelegramGateway(tgCfg.Token, handler, a.logger.Zap())
			if err != nil {
				return fmt.Errorf("start telegram gateway: %w", err)
			}

			done := make(chan error, 1)
			go func() { done <- tg.Start() }()

			select {
			case err := <-done:
				return err
			case <-cmd.Context().Done():
				a.logger.Zap().Info("shutting down telegram gateway")
				if err := tg.Stop(); err != nil {
					return err
				}
				return <-done
			}
		},
	})
	return cmd
}
