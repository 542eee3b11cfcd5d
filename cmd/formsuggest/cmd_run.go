package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"formsuggest/internal/browser"
	"formsuggest/internal/config"
	"formsuggest/internal/popup"
	"formsuggest/internal/server"
	"formsuggest/internal/store"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var runCmd = &cobra.Command{
	Use:   "run [url]",
	Short: "Open a page in Chrome and offer suggestions on its fields",
	Long: `Launches (or connects to) Chrome, opens the page and attaches the popup
to every visible input and textarea. Blocks until interrupted.

Set browser.debugger_url or FORMSUGGEST_DEBUGGER_URL to reuse a running
Chrome started with --remote-debugging-port.`,
	Args: cobra.ExactArgs(1),
	RunE: runBrowser,
}

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the suggestion API over HTTP",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default: server.addr)")
}

func runBrowser(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	svc, err := newService()
	if err != nil {
		return err
	}
	settings, err := openSettings()
	if err != nil {
		return err
	}
	defer settings.Close()

	if stop := startContentWatch(ctx, settings); stop != nil {
		defer stop()
	}

	mgr := browser.NewSessionManager(browser.OptionsFromConfig(appCfg))
	if err := mgr.Start(ctx); err != nil {
		return fmt.Errorf("failed to start browser: %w", err)
	}
	defer func() {
		shutdownCtx, done := context.WithTimeout(context.Background(), 10*time.Second)
		defer done()
		if err := mgr.Shutdown(shutdownCtx); err != nil {
			logger.Warn("Browser shutdown", zap.Error(err))
		}
	}()
	logger.Info("Browser ready", zap.String("control_url", mgr.ControlURL()))

	host, err := mgr.Open(ctx, args[0])
	if err != nil {
		return err
	}

	ctrl := popup.NewController(host, svc, settings,
		popup.WithExtractor(newExtractor()),
		popup.WithShortcutHint(appCfg.Popup.Shortcut.String()),
		popup.WithOffset(float64(appCfg.Popup.OffsetPx)),
	)
	if err := ctrl.Start(ctx); err != nil {
		return err
	}
	logger.Info("Watching page",
		zap.String("url", args[0]),
		zap.String("session", ctrl.Session().ID),
		zap.String("shortcut", appCfg.Popup.Shortcut.String()))

	err = host.Run(ctx)
	ctrl.Wait()
	return err
}

// startContentWatch syncs content.watch_file into the store when configured.
func startContentWatch(ctx context.Context, settings *store.Settings) func() {
	if appCfg.Content.WatchFile == "" {
		return nil
	}
	path := config.ResolvePath(resolveWorkspace(), appCfg.Content.WatchFile)
	w, err := store.NewContentWatcher(path, settings, appCfg.GetContentDebounce())
	if err != nil {
		logger.Warn("Content watcher unavailable", zap.Error(err))
		return nil
	}
	if err := w.Start(ctx); err != nil {
		logger.Warn("Content watcher failed to start", zap.Error(err))
		return nil
	}
	return w.Stop
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	svc, err := newService()
	if err != nil {
		return err
	}
	settings, err := openSettings()
	if err != nil {
		return err
	}
	defer settings.Close()

	if stop := startContentWatch(ctx, settings); stop != nil {
		defer stop()
	}

	srvCfg := appCfg.Server
	if serveAddr != "" {
		srvCfg.Addr = serveAddr
	}
	srv := server.New(srvCfg, server.Deps{
		Suggester: svc,
		Settings:  settings,
		Extractor: newExtractor(),
	})

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Run() }()
	logger.Info("Serving API", zap.String("addr", srvCfg.Addr))

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
	defer done()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return <-errCh
}
