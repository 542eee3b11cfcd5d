package main

import (
	"fmt"
	"io"
	"strings"

	"formsuggest/internal/config"
	"formsuggest/internal/store"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var contentCmd = &cobra.Command{
	Use:   "content",
	Short: "Manage the main content used as priority context",
}

var contentGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Print the saved main content",
	Args:  cobra.NoArgs,
	RunE:  runContentGet,
}

var contentSetCmd = &cobra.Command{
	Use:   "set [text]",
	Short: "Replace the main content (use - to read stdin)",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runContentSet,
}

var contentWatchCmd = &cobra.Command{
	Use:   "watch [file]",
	Short: "Keep the main content in sync with a file until interrupted",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runContentWatch,
}

var suggestionsFlag string

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show or change settings",
	Example: `  formsuggest settings
  formsuggest settings --suggestions off`,
	Args: cobra.NoArgs,
	RunE: runSettings,
}

func init() {
	contentCmd.AddCommand(contentGetCmd)
	contentCmd.AddCommand(contentSetCmd)
	contentCmd.AddCommand(contentWatchCmd)

	settingsCmd.Flags().StringVar(&suggestionsFlag, "suggestions", "", "Open popups on click and focus: on or off")
}

func runContentGet(cmd *cobra.Command, args []string) error {
	settings, err := openSettings()
	if err != nil {
		return err
	}
	defer settings.Close()

	ctx, cancel := commandContext()
	defer cancel()

	main, err := settings.MainContent(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), main)
	return nil
}

func runContentSet(cmd *cobra.Command, args []string) error {
	text := strings.Join(args, " ")
	if text == "-" {
		data, err := readAll(cmd)
		if err != nil {
			return err
		}
		text = data
	}

	settings, err := openSettings()
	if err != nil {
		return err
	}
	defer settings.Close()

	ctx, cancel := commandContext()
	defer cancel()

	if err := settings.SetMainContent(ctx, text); err != nil {
		return err
	}
	logger.Info("Main content saved", zap.Int("chars", len(strings.TrimSpace(text))))
	return nil
}

func readAll(cmd *cobra.Command) (string, error) {
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	return string(data), nil
}

func runContentWatch(cmd *cobra.Command, args []string) error {
	path := config.ResolvePath(resolveWorkspace(), appCfg.Content.WatchFile)
	if len(args) == 1 {
		path = args[0]
	}
	if path == "" {
		return fmt.Errorf("no file given and content.watch_file is not set")
	}

	settings, err := openSettings()
	if err != nil {
		return err
	}
	defer settings.Close()

	ctx, cancel := signalContext()
	defer cancel()

	watcher, err := store.NewContentWatcher(path, settings, appCfg.GetContentDebounce())
	if err != nil {
		return err
	}
	if err := watcher.Start(ctx); err != nil {
		return err
	}
	logger.Info("Watching main content", zap.String("file", path))

	<-ctx.Done()
	watcher.Stop()
	logger.Info("Stopped watching", zap.Int("syncs", watcher.Syncs()), zap.Int("failures", watcher.Failures()))
	return nil
}

func runSettings(cmd *cobra.Command, args []string) error {
	settings, err := openSettings()
	if err != nil {
		return err
	}
	defer settings.Close()

	ctx, cancel := commandContext()
	defer cancel()

	if cmd.Flags().Changed("suggestions") {
		enabled, err := parseOnOff(suggestionsFlag)
		if err != nil {
			return err
		}
		if err := settings.SetSuggestionsEnabled(ctx, enabled); err != nil {
			return err
		}
	}

	enabled, err := settings.SuggestionsEnabled(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "suggestions: %s\n", onOff(enabled))
	return nil
}

func parseOnOff(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "on", "true", "yes", "1":
		return true, nil
	case "off", "false", "no", "0":
		return false, nil
	default:
		return false, fmt.Errorf("expected on or off, got %q", s)
	}
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
