package cli

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/baxromumarov/trailscript/internal/api"
)

var (
	serveScan scanFlags
	serveAddr string
)

var serveCmd = &cobra.Command{
	Use:   "serve URL START END",
	Short: "Scan once and serve the result over HTTP",
	Long: `Scan the requested range once, then serve the entries as JSON, text and a
styled HTML page until interrupted.`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		plan, err := buildPlan(cmd, args, &serveScan)
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		entries, err := collect(ctx, plan)
		if err != nil {
			return err
		}

		srv := api.NewServer(entries, plan.textOptions(serveScan.numbered), plan.htmlOptions())
		httpSrv := &http.Server{
			Addr:              serveAddr,
			Handler:           srv.Router(),
			ReadHeaderTimeout: 10 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			slog.InfoContext(ctx, "starting server", "addr", serveAddr, "entries", len(entries))
			errCh <- httpSrv.ListenAndServe()
		}()

		select {
		case err := <-errCh:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		case <-ctx.Done():
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown failed", "error", err)
			return err
		}
		slog.Info("server stopped")
		return nil
	},
}

func init() {
	addScanFlags(serveCmd, &serveScan)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "127.0.0.1:8080", "Address to listen on")
	rootCmd.AddCommand(serveCmd)
}
