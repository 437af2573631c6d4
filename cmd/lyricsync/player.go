package main

import (
	"fmt"

	"github.com/godbus/dbus/v5"
	"github.com/spf13/cobra"

	"karolbroda.com/lyricsync/internal/config"
	"karolbroda.com/lyricsync/internal/lyrics"
	"karolbroda.com/lyricsync/internal/player"
)

var playerCmd = &cobra.Command{
	Use:   "player",
	Short: "mpris player utilities",
	Long:  `discover mpris-compatible music players and inspect what they report.`,
}

var playerListCmd = &cobra.Command{
	Use:   "list",
	Short: "list available mpris players",
	Long:  `list all mpris-compatible music players currently running on the system.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		bus, err := dbus.ConnectSessionBus()
		if err != nil {
			return fmt.Errorf("failed to connect to session bus: %w", err)
		}
		defer bus.Close()

		services, err := player.ListServices(bus)
		if err != nil {
			return err
		}

		if len(services) == 0 {
			fmt.Println("no mpris players found")
			fmt.Println("\ncheck if your music player is running and supports mpris")
			return nil
		}

		fmt.Printf("found %d mpris player(s):\n\n", len(services))
		for _, service := range services {
			if identity := player.Identity(bus, service); identity != "" {
				fmt.Printf("  %s (%s)\n", service, identity)
			} else {
				fmt.Printf("  %s\n", service)
			}
		}

		fmt.Println("\nuse --mpris-service flag to specify which player to use")
		return nil
	},
}

var playerCurrentCmd = &cobra.Command{
	Use:   "current",
	Short: "show currently playing track",
	Long:  `display the track and playback state the selected player reports.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig(cmd)

		bus, err := dbus.ConnectSessionBus()
		if err != nil {
			return fmt.Errorf("failed to connect to session bus: %w", err)
		}
		defer bus.Close()

		svc, err := player.NewService(bus, cfg.MprisService, config.PollInterval, nil)
		if err != nil {
			return fmt.Errorf("failed to connect to player: %w", err)
		}

		info, snap, err := svc.CurrentTrack()
		if err != nil {
			return err
		}

		fmt.Printf("player: %s\n\n", cfg.MprisService)
		fmt.Printf("  title:    %s\n", info.Title)
		if info.Artist != "" {
			fmt.Printf("  artist:   %s\n", info.Artist)
		}
		if info.Album != "" {
			fmt.Printf("  album:    %s\n", info.Album)
		}
		fmt.Printf("  state:    %s\n", snap.State)
		fmt.Printf("  position: %s", lyrics.FormatTimestamp(snap.PositionMs))
		if info.DurationMs > 0 {
			fmt.Printf(" / %s", lyrics.FormatTimestamp(info.DurationMs))
		}
		fmt.Println()
		if info.ArtworkURL != "" {
			fmt.Printf("  artwork:  %s\n", info.ArtworkURL)
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(playerCmd)

	playerCmd.AddCommand(playerListCmd)
	playerCmd.AddCommand(playerCurrentCmd)
}
