package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/godbus/dbus/v5"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"karolbroda.com/lyricsync/internal/broadcast"
	"karolbroda.com/lyricsync/internal/cache"
	"karolbroda.com/lyricsync/internal/config"
	"karolbroda.com/lyricsync/internal/engine"
	"karolbroda.com/lyricsync/internal/highlight"
	"karolbroda.com/lyricsync/internal/logging"
	"karolbroda.com/lyricsync/internal/lyrics"
	"karolbroda.com/lyricsync/internal/playback"
	"karolbroda.com/lyricsync/internal/player"
	"karolbroda.com/lyricsync/internal/spotify"
	"karolbroda.com/lyricsync/internal/ui"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "start the lyrics engine",
	Long: `starts following the configured media source. the terminal viewer is shown
unless --headless is given; --listen additionally serves every update over websocket.`,
	RunE: runEngine,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

// mediaSource is a position source the tracker can follow.
type mediaSource interface {
	Events() <-chan playback.Event
	Run(ctx context.Context)
}

func runEngine(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	defer cancel()

	cfg := loadConfig(cmd)

	var logOut io.Writer = os.Stderr
	if !headless {
		// the viewer owns the terminal
		logOut = io.Discard
	}
	log, closer, err := logging.Open(cfg.LogLevel, cfg.LogFile, logOut)
	if err != nil {
		return err
	}
	defer closer.Close()

	searcher, err := newSearcher(cfg)
	if err != nil {
		return err
	}

	src, cleanup, err := openSource(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer cleanup()

	var sinks engine.Fanout
	var uiSink *ui.Sink
	if !headless {
		uiSink = ui.NewSink()
		sinks = append(sinks, uiSink)
	}
	if headless || cfg.LogFile != "" {
		sinks = append(sinks, engine.LogSink{Log: log})
	}

	var wg sync.WaitGroup
	defer func() {
		cancel()
		if uiSink != nil {
			uiSink.Close()
		}
		wg.Wait()
	}()

	var hub *broadcast.Hub
	if cfg.ListenAddr != "" {
		hub = broadcast.NewHub(log)
		sinks = append(sinks, hub)
	}

	opts := []engine.Option{
		engine.WithLogger(log),
		engine.WithScheduler(highlight.New(cfg.HighlightInterval)),
	}
	if uiSink != nil {
		opts = append(opts, engine.WithViewport(uiSink))
	}
	tracker := engine.New(lyrics.NewResolver(searcher, log), sinks, opts...)

	if hub != nil {
		server := broadcast.NewServer(cfg.ListenAddr, cfg.AllowedOrigins, hub, log).
			WithStatus(func() broadcast.Status {
				return statusOf(tracker.Current())
			})

		wg.Add(2)
		go func() {
			defer wg.Done()
			hub.Run(ctx)
		}()
		go func() {
			defer wg.Done()
			if err := server.Run(ctx); err != nil {
				log.WithError(err).Error("broadcast server stopped")
				cancel()
			}
		}()
	}

	if caching, ok := searcher.(*lyrics.CachingSearcher); ok {
		wg.Add(1)
		go func() {
			defer wg.Done()
			caching.PruneEvery(ctx, cfg.CacheTTL, log)
		}()
	}

	events := make(chan playback.Event)
	wg.Add(4)
	go func() {
		defer wg.Done()
		tracker.Run(ctx)
	}()
	go func() {
		defer wg.Done()
		src.Run(ctx)
	}()
	go func() {
		defer wg.Done()
		defer close(events)
		forwardEvents(ctx, src.Events(), events, uiSink)
	}()
	go func() {
		defer wg.Done()
		if err := tracker.Consume(ctx, events); err != nil && ctx.Err() == nil {
			log.WithError(err).Error("tracker stopped consuming events")
		}
	}()

	log.WithFields(logrus.Fields{
		"source": cfg.Source,
		"listen": cfg.ListenAddr,
	}).Info("lyricsync started")

	if headless {
		<-ctx.Done()
		return nil
	}

	model := ui.NewModel(ui.ModelConfig{
		Sink:       uiSink,
		HideHeader: hideHeader,
	})
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("error running bubble tea: %w", err)
	}
	return nil
}

func newSearcher(cfg *config.Config) (lyrics.Searcher, error) {
	client, err := lyrics.NewClient(cfg.LrclibURL)
	if err != nil {
		return nil, err
	}
	if cfg.CacheTTL <= 0 {
		return client, nil
	}
	return lyrics.NewCachingSearcher(client, cache.New[[]lyrics.Result](cfg.CacheTTL)), nil
}

func statusOf(cur engine.Status) broadcast.Status {
	status := broadcast.Status{
		Active:     cur.Active,
		Title:      cur.Identity.Title,
		Artist:     cur.Identity.Artist,
		DurationMs: cur.DurationMs,
		Source:     cur.SourceID,
	}
	if cur.Content != nil {
		status.Kind = cur.Content.Kind.String()
	}
	return status
}

// openSource connects the configured media source. The cleanup func
// releases whatever connection the source holds.
func openSource(ctx context.Context, cfg *config.Config, log logrus.FieldLogger) (mediaSource, func(), error) {
	switch cfg.Source {
	case "spotify":
		if !cfg.Spotify.IsSet() {
			return nil, nil, fmt.Errorf("spotify source needs SPOTIFY_CLIENT_ID, SPOTIFY_CLIENT_SECRET and SPOTIFY_REFRESH_TOKEN")
		}
		client := spotify.NewClient(ctx, cfg.Spotify.ClientID, cfg.Spotify.ClientSecret, cfg.Spotify.RefreshToken)
		return spotify.NewPoller(client, config.SpotifyPollInterval, log), func() {}, nil

	case "mpris", "":
		bus, err := dbus.ConnectSessionBus()
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to session bus: %w", err)
		}

		svc, err := player.NewService(bus, cfg.MprisService, config.PollInterval, log)
		if err != nil {
			bus.Close()
			return nil, nil, fmt.Errorf("failed to create player service: %w", err)
		}
		if err := svc.Start(); err != nil {
			log.WithError(err).Warn("could not set up dbus signals, polling only")
		}
		return svc, func() {
			svc.Stop()
			bus.Close()
		}, nil

	default:
		return nil, nil, fmt.Errorf("unknown source %q", cfg.Source)
	}
}

// forwardEvents relays source events to the tracker, telling the viewer
// about cover art changes on the way.
func forwardEvents(ctx context.Context, in <-chan playback.Event, out chan<- playback.Event, artwork *ui.Sink) {
	lastArtwork := ""
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-in:
			if !ok {
				return
			}

			if artwork != nil {
				url := ev.ArtworkURL
				if ev.Gone {
					url = ""
				}
				if url != lastArtwork {
					lastArtwork = url
					artwork.ArtworkChanged(url)
				}
			}

			select {
			case out <- ev:
			case <-ctx.Done():
				return
			}
		}
	}
}
