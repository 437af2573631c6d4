package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"karolbroda.com/lyricsync/internal/logging"
	"karolbroda.com/lyricsync/internal/lyrics"
)

var previewDuration time.Duration

var lyricsCmd = &cobra.Command{
	Use:   "lyrics",
	Short: "lyrics lookup utilities",
	Long:  `search lrclib or preview the lyrics the engine would pick for a song.`,
}

var lyricsSearchCmd = &cobra.Command{
	Use:   "search <artist> <title>",
	Short: "search for lyrics on lrclib",
	Long:  `run one lrclib search and list every candidate it returns.`,
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		artist := args[0]
		title := args[1]

		cfg := loadConfig(cmd)
		client, err := lyrics.NewClient(cfg.LrclibURL)
		if err != nil {
			return err
		}

		query := strings.TrimSpace(title + " " + artist)
		fmt.Printf("searching for: %s\n\n", query)

		results, err := client.Search(context.Background(), query)
		if err != nil {
			return fmt.Errorf("search failed: %w", err)
		}
		if len(results) == 0 {
			fmt.Println(lyrics.MessageNotFound)
			return nil
		}

		best, _ := lyrics.Select(results)
		for _, r := range results {
			marker := " "
			if r.ID == best.ID {
				marker = "*"
			}
			fmt.Printf("%s %s - %s", marker, r.ArtistName, r.TrackName)
			if r.Duration > 0 {
				fmt.Printf(" (%.0fs)", r.Duration)
			}
			fmt.Printf("  synced=%v plain=%v instrumental=%v\n",
				r.SyncedLyrics != "", r.PlainLyrics != "", r.Instrumental)
		}

		fmt.Println("\n* marks the result the engine would pick")
		return nil
	},
}

var lyricsPreviewCmd = &cobra.Command{
	Use:   "preview <artist> <title>",
	Short: "preview lyrics in terminal",
	Long:  `resolve lyrics the way the engine does and print them with timestamps (if available).`,
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig(cmd)
		client, err := lyrics.NewClient(cfg.LrclibURL)
		if err != nil {
			return err
		}

		log := logging.New(cfg.LogLevel, cmd.ErrOrStderr())
		resolver := lyrics.NewResolver(client, log)

		req := lyrics.Request{
			Title:          args[1],
			Artist:         args[0],
			DurationHintMs: previewDuration.Milliseconds(),
		}
		content, err := resolver.Resolve(context.Background(), req, nil)
		if err != nil {
			return err
		}

		printContent(content)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(lyricsCmd)

	lyricsPreviewCmd.Flags().DurationVar(&previewDuration, "duration", 0, "song length hint (e.g., 3m25s)")

	lyricsCmd.AddCommand(lyricsSearchCmd)
	lyricsCmd.AddCommand(lyricsPreviewCmd)
}

func printContent(content *lyrics.Content) {
	fmt.Printf("\n%s - %s\n", content.Artist, content.Title)
	if content.Duration() > 0 {
		fmt.Printf("duration: %s\n", lyrics.FormatTimestamp(content.Duration()))
	}
	fmt.Println(strings.Repeat("─", 60))

	body := content.Effective()
	if content.Kind == lyrics.KindMismatch {
		fmt.Println("\nPotential song mismatch.")
		if body == nil {
			return
		}
		fmt.Printf("matched: %s - %s\n", body.Artist, body.Title)
	}

	switch body.Kind {
	case lyrics.KindSynced:
		fmt.Printf("\nsynced lyrics (%d lines):\n\n", len(body.Lines))
		for _, line := range body.Lines {
			fmt.Printf("[%s] %s\n", lyrics.FormatTimestamp(line.OffsetMs), line.Text)
		}
	case lyrics.KindPlain:
		fmt.Print("\nplain lyrics (no timestamps):\n\n")
		fmt.Println(body.Text)
	default:
		fmt.Printf("\n%s\n", body.Message)
	}
}
