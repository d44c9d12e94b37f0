package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/goliatone/go-editorschema/internal/httpapi"
)

func (c *cli) serveCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the page layouts and the annotation API over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr != "" {
				c.cfg.Server.Addr = addr
			}
			handler, err := c.httpHandler()
			if err != nil {
				return err
			}
			return c.serve(cmd.Context(), handler)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides server.addr)")
	return cmd
}

func (c *cli) httpHandler() (http.Handler, error) {
	registry, err := c.registry()
	if err != nil {
		return nil, err
	}
	server, err := httpapi.New(
		httpapi.WithLogger(c.logger),
		httpapi.WithRegistry(registry),
		httpapi.WithMaxBodyBytes(c.cfg.Server.MaxBodyBytes),
	)
	if err != nil {
		return nil, err
	}
	return server.Handler(), nil
}

func (c *cli) httpServer(handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              c.cfg.Server.Addr,
		Handler:           handler,
		ReadTimeout:       c.cfg.Server.ReadTimeout,
		ReadHeaderTimeout: c.cfg.Server.ReadTimeout,
	}
}

func (c *cli) serve(ctx context.Context, handler http.Handler) error {
	srv := c.httpServer(handler)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		c.logger.Info("http server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), c.cfg.Server.ShutdownTimeout)
		defer cancel()
		c.logger.Info("http server shutting down")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("serve: shutdown: %w", err)
		}
		return nil
	})
	return g.Wait()
}
