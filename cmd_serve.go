package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"devduo/duo"
	"devduo/server"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve collaborations over a JSON HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return exitError(err)
		}
		lister, err := buildLLM(cfg, "")
		if err != nil {
			return err
		}
		factory := func(model string) (*duo.Agent, error) {
			if model == "" {
				model = cfg.Model
			}
			llm, err := buildLLM(cfg, model)
			if err != nil {
				return nil, err
			}
			return duo.NewAgent(llm, duo.Config{Model: model, Delay: cfg.Delay, Logger: logger})
		}
		srv, err := server.New(factory, lister, server.Options{MaxRounds: cfg.MaxRounds, Logger: logger})
		if err != nil {
			return err
		}

		listen := cfg.ServerAddr
		if serveAddr != "" {
			listen = serveAddr
		}
		httpSrv := &http.Server{Addr: listen, Handler: srv.Routes()}

		ctx := cmd.Context()
		go func() {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			_ = httpSrv.Shutdown(shutdownCtx)
		}()

		logger.Info("starting web server", zap.String("addr", listen))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides config server_addr)")
}
