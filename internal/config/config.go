package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds the application configuration
type Config struct {
	Format          string `mapstructure:"format" yaml:"format" json:"format"`
	Output          string `mapstructure:"output" yaml:"output" json:"output"`
	OutFile         string `mapstructure:"out_file" yaml:"out_file" json:"out_file"`
	Newlines        bool   `mapstructure:"newlines" yaml:"newlines" json:"newlines"`
	EscapeHTML      bool   `mapstructure:"escape_html" yaml:"escape_html" json:"escape_html"`
	Width           int    `mapstructure:"width" yaml:"width" json:"width"`
	WatchDebounceMs int    `mapstructure:"watch_debounce_ms" yaml:"watch_debounce_ms" json:"watch_debounce_ms"`
	LogLevel        string `mapstructure:"log_level" yaml:"log_level" json:"log_level"`
	ColorHeading    string `mapstructure:"color_heading" yaml:"color_heading" json:"color_heading"`
	ColorCode       string `mapstructure:"color_code" yaml:"color_code" json:"color_code"`
	ColorLink       string `mapstructure:"color_link" yaml:"color_link" json:"color_link"`
	ColorQuote      string `mapstructure:"color_quote" yaml:"color_quote" json:"color_quote"`
	ColorRule       string `mapstructure:"color_rule" yaml:"color_rule" json:"color_rule"`
	Editor          string `mapstructure:"editor" yaml:"editor" json:"editor"`
}

// explicitFile overrides the config search path when set
var explicitFile string

// SetConfigFile makes Init read exactly this file
func SetConfigFile(path string) {
	explicitFile = expandTilde(path)
}

// SetDefaults registers default values for every key
func SetDefaults() {
	viper.SetDefault("format", "auto")
	viper.SetDefault("output", "print")
	viper.SetDefault("out_file", "")
	viper.SetDefault("newlines", false)
	viper.SetDefault("escape_html", false)
	viper.SetDefault("width", 0) // 0 = detect terminal width
	viper.SetDefault("watch_debounce_ms", 150)
	viper.SetDefault("log_level", "warn")
	viper.SetDefault("color_heading", "36") // Cyan
	viper.SetDefault("color_code", "33")    // Yellow
	viper.SetDefault("color_link", "34")    // Blue
	viper.SetDefault("color_quote", "90")   // Gray
	viper.SetDefault("color_rule", "240")
	viper.SetDefault("editor", "")
}

// Init initializes configuration with viper
func Init() error {
	SetDefaults()

	viper.SetConfigType("yaml")
	if explicitFile != "" {
		viper.SetConfigFile(explicitFile)
	} else {
		viper.SetConfigName("mdline")
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "mdline"))
			viper.AddConfigPath(home)
		}
		viper.AddConfigPath(".")
	}

	viper.SetEnvPrefix("MDLINE")
	viper.AutomaticEnv()

	// Try to read config, but don't fail if not found or malformed
	_ = viper.ReadInConfig()

	// Surface type errors in the merged settings early
	_, err := Snapshot()
	return err
}

// Snapshot returns the effective settings
func Snapshot() (Config, error) {
	var c Config
	err := viper.Unmarshal(&c)
	return c, err
}

// ConfigFile returns the config file in use, empty when none was found
func ConfigFile() string {
	return viper.ConfigFileUsed()
}

// GetFormat returns the output format
func GetFormat() string {
	return strings.ToLower(viper.GetString("format"))
}

// GetOutput returns the output mode
func GetOutput() string {
	return viper.GetString("output")
}

// GetOutFile returns the output file path with tilde expansion
func GetOutFile() string {
	return expandTilde(viper.GetString("out_file"))
}

// GetNewlines returns whether block fragments end with a line break
func GetNewlines() bool {
	return viper.GetBool("newlines")
}

// GetEscapeHTML returns whether raw HTML in the source is escaped
func GetEscapeHTML() bool {
	return viper.GetBool("escape_html")
}

// GetWidth returns the terminal rendering width, 0 for auto
func GetWidth() int {
	return viper.GetInt("width")
}

// GetWatchDebounce returns the quiet period before a change triggers a rebuild
func GetWatchDebounce() time.Duration {
	return time.Duration(viper.GetInt("watch_debounce_ms")) * time.Millisecond
}

// GetLogLevel maps the configured level name onto slog
func GetLogLevel() slog.Level {
	switch strings.ToLower(viper.GetString("log_level")) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}

// GetColorHeading returns ANSI color code for headings
func GetColorHeading() string {
	return viper.GetString("color_heading")
}

// GetColorCode returns ANSI color code for code spans and blocks
func GetColorCode() string {
	return viper.GetString("color_code")
}

// GetColorLink returns ANSI color code for links
func GetColorLink() string {
	return viper.GetString("color_link")
}

// GetColorQuote returns ANSI color code for blockquotes
func GetColorQuote() string {
	return viper.GetString("color_quote")
}

// GetColorRule returns the color of horizontal rules and borders
func GetColorRule() string {
	return viper.GetString("color_rule")
}

// GetEditor returns the editor used to open the previewed file
func GetEditor() string {
	return viper.GetString("editor")
}

// SetFormat sets format at runtime
func SetFormat(format string) {
	viper.Set("format", format)
}

// SetOutput sets output mode at runtime
func SetOutput(mode string) {
	viper.Set("output", mode)
}

// SetOutFile sets the output file at runtime
func SetOutFile(path string) {
	viper.Set("out_file", path)
}

// SetNewlines toggles newline layout at runtime
func SetNewlines(on bool) {
	viper.Set("newlines", on)
}

// SetEscapeHTML toggles escaping at runtime
func SetEscapeHTML(on bool) {
	viper.Set("escape_html", on)
}

// SetLogLevel sets the log level at runtime
func SetLogLevel(level string) {
	viper.Set("log_level", level)
}

// expandTilde expands ~ to the user's home directory
func expandTilde(path string) string {
	if len(path) == 0 {
		return path
	}
	if path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}
