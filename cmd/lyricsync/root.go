package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"karolbroda.com/lyricsync/internal/config"
)

var (
	// global flags
	source       string
	mprisService string
	lrclibURL    string
	logLevel     string
	logFile      string
	listenAddr   string
	headless     bool
	hideHeader   bool
)

var rootCmd = &cobra.Command{
	Use:   "lyricsync",
	Short: "synchronized lyrics for the song that is playing",
	Long: `lyricsync follows the song playing in an MPRIS player or on Spotify,
looks its lyrics up on lrclib and highlights the line being sung.

when run without a subcommand, it starts the interactive TUI viewer.`,
	Version: "1.0.0",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runEngine(cmd, args)
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&source, "source", "", "media source: mpris or spotify")
	rootCmd.PersistentFlags().StringVarP(&mprisService, "mpris-service", "m", "", "mpris service name (e.g., org.mpris.MediaPlayer2.spotify)")
	rootCmd.PersistentFlags().StringVar(&lrclibURL, "lrclib-url", "", "custom lrclib api url")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "write logs to this file")
	rootCmd.PersistentFlags().StringVar(&listenAddr, "listen", "", "serve lyrics over websocket on this address (e.g., :8080)")
	rootCmd.PersistentFlags().BoolVar(&headless, "headless", false, "run without the terminal viewer")
	rootCmd.PersistentFlags().BoolVarP(&hideHeader, "hide-header", "H", false, "hide header section")
}

// loadConfig reads the environment and applies the command line overrides.
func loadConfig(cmd *cobra.Command) *config.Config {
	cfg := config.Load()

	if source != "" {
		cfg.Source = strings.ToLower(source)
	}
	if mprisService != "" {
		cfg.MprisService = mprisService
	}
	if lrclibURL != "" {
		cfg.LrclibURL = lrclibURL
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if logFile != "" {
		cfg.LogFile = logFile
	}
	if cmd.Flags().Changed("listen") {
		cfg.ListenAddr = listenAddr
	}

	return cfg
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
