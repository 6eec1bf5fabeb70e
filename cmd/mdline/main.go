package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/gubarz/mdline/internal/config"
	"github.com/gubarz/mdline/internal/convert"
	"github.com/gubarz/mdline/internal/markdown"
	"github.com/gubarz/mdline/internal/outfmt"
	"github.com/gubarz/mdline/internal/output"
	"github.com/gubarz/mdline/internal/termrender"
	"github.com/gubarz/mdline/internal/ui"
	"github.com/gubarz/mdline/internal/watch"
)

var version = "0.1.0"

var rootCmd = &cobra.Command{
	Use:   "mdline [file]",
	Short: "Line-oriented Markdown to HTML",
	Long: `Converts Markdown to HTML one line at a time.

Reads a file, or stdin when no file (or "-") is given, and writes HTML,
plain text, styled terminal text, JSON or YAML.`,
	Args:          cobra.MaximumNArgs(1),
	RunE:          runConvert,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var previewCmd = &cobra.Command{
	Use:   "preview <file>",
	Short: "Scrollable terminal preview of a Markdown file",
	Args:  cobra.ExactArgs(1),
	RunE:  runPreview,
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.AddCommand(previewCmd)
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)

	rootCmd.PersistentFlags().String("config", "", "Config file (default: search ~/.config/mdline, ~, .)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().Bool("newlines", false, "Put each block-level tag on its own line")
	rootCmd.PersistentFlags().Bool("escape", false, "Escape raw HTML in the source")
	rootCmd.PersistentFlags().Bool("watch", false, "Re-render whenever the file changes")
	rootCmd.PersistentFlags().IntP("width", "w", 0, "Wrap width for terminal output (0 = terminal width)")

	rootCmd.Flags().StringP("format", "f", "", "Output format: auto, html, text, term, json, yaml")
	rootCmd.Flags().StringP("output", "o", "", "Output mode: print, file, copy")
	rootCmd.Flags().String("out-file", "", "Write to this file (implies -o file)")
	rootCmd.Flags().Bool("copy", false, "Copy to clipboard (shorthand for -o copy)")
	rootCmd.Flags().String("jq", "", "jq expression applied to json output")

	configShowCmd.Flags().Bool("json", false, "Print as JSON instead of YAML")
	configShowCmd.Flags().Bool("yaml", false, "Print as YAML (default)")
	configShowCmd.MarkFlagsMutuallyExclusive("json", "yaml")

	viper.BindPFlag("width", rootCmd.PersistentFlags().Lookup("width"))
}

func initConfig() {
	if path, _ := rootCmd.PersistentFlags().GetString("config"); path != "" {
		config.SetConfigFile(path)
	}
	if err := config.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
	}
}

// applyFlags copies explicitly set flags over config values
func applyFlags(cmd *cobra.Command) {
	if l, _ := cmd.Flags().GetString("log-level"); l != "" {
		config.SetLogLevel(l)
	}
	if cmd.Flags().Changed("newlines") {
		v, _ := cmd.Flags().GetBool("newlines")
		config.SetNewlines(v)
	}
	if cmd.Flags().Changed("escape") {
		v, _ := cmd.Flags().GetBool("escape")
		config.SetEscapeHTML(v)
	}
}

func newLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: config.GetLogLevel()}))
}

func markdownOptions() markdown.Options {
	return markdown.Options{
		Newlines:   config.GetNewlines(),
		EscapeHTML: config.GetEscapeHTML(),
	}
}

func runConvert(cmd *cobra.Command, args []string) error {
	applyFlags(cmd)

	// Handle output mode flags
	if path, _ := cmd.Flags().GetString("out-file"); path != "" {
		config.SetOutFile(path)
		config.SetOutput(string(output.ModeFile))
	} else if c, _ := cmd.Flags().GetBool("copy"); c {
		config.SetOutput(string(output.ModeCopy))
	} else if o, _ := cmd.Flags().GetString("output"); o != "" {
		config.SetOutput(o)
	}
	if f, _ := cmd.Flags().GetString("format"); f != "" {
		config.SetFormat(f)
	}

	logger := newLogger()

	format, err := convert.ParseFormat(config.GetFormat())
	if err != nil {
		return err
	}
	mode, err := output.ParseMode(config.GetOutput())
	if err != nil {
		return err
	}

	path := "-"
	if len(args) > 0 {
		path = args[0]
	}
	watching, _ := cmd.Flags().GetBool("watch")
	if watching && path == "-" {
		return fmt.Errorf("--watch needs a file argument")
	}

	query, _ := cmd.Flags().GetString("jq")
	stdoutIsTTY := isatty.IsTerminal(os.Stdout.Fd())

	width := config.GetWidth()
	if width <= 0 {
		width = termrender.TerminalWidth(os.Stdout.Fd())
	}
	styles := termrender.DefaultStyles()
	styles.LoadFromConfig()

	sink := output.NewSink(mode, config.GetOutFile())
	conv := &convert.Converter{
		Markdown:   markdownOptions(),
		Width:      width,
		Query:      query,
		Styles:     styles,
		IsTerminal: stdoutIsTTY && sink.Mode() == output.ModePrint,
	}

	once := func() error {
		src, err := readSource(path, cmd.InOrStdin())
		if err != nil {
			return err
		}
		out, err := conv.Render(src, path, format)
		if err != nil {
			return err
		}
		logger.Debug("converted", "source", path, "format", conv.Resolve(format), "bytes", len(out))
		return sink.Write(out)
	}

	if err := once(); err != nil {
		return err
	}
	if !watching {
		return nil
	}

	w, err := watch.New(path, config.GetWatchDebounce(), logger)
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger.Info("watching for changes", "path", w.Path())
	return w.Run(ctx, func() {
		if err := once(); err != nil {
			logger.Error("convert failed", "path", path, "err", err)
		}
	})
}

// readSource reads a file, or r when path is "-"
func readSource(path string, r io.Reader) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(r)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("error resolving path: %w", err)
	}
	data, err := os.ReadFile(absPath)
	if err != nil {
		return "", fmt.Errorf("read source: %w", err)
	}
	return string(data), nil
}

func runPreview(cmd *cobra.Command, args []string) error {
	applyFlags(cmd)
	watching, _ := cmd.Flags().GetBool("watch")

	return ui.RunPreview(args[0], ui.PreviewOptions{
		Markdown: markdownOptions(),
		Watch:    watching,
		Debounce: config.GetWatchDebounce(),
		Logger:   newLogger(),
	})
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	snap, err := config.Snapshot()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	format := "yaml"
	if j, _ := cmd.Flags().GetBool("json"); j {
		format = "json"
	}
	if file := config.ConfigFile(); file != "" {
		fmt.Fprintf(cmd.ErrOrStderr(), "# config file: %s\n", file)
	}

	p := outfmt.NewPrinter(format)
	p.Writer = cmd.OutOrStdout()
	return p.Print(snap)
}

func main() {
	rootCmd.Version = version
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
