package player

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/sirupsen/logrus"

	"karolbroda.com/lyricsync/internal/logging"
	"karolbroda.com/lyricsync/internal/playback"
	"karolbroda.com/lyricsync/internal/track"
)

const (
	mprisPath        = "/org/mpris/MediaPlayer2"
	mprisPlayerIface = "org.mpris.MediaPlayer2.Player"
	mprisPrefix      = "org.mpris.MediaPlayer2."

	propertiesChanged = "org.freedesktop.DBus.Properties.PropertiesChanged"
	seeked            = "org.mpris.MediaPlayer2.Player.Seeked"
	nameOwnerChanged  = "org.freedesktop.DBus.NameOwnerChanged"
)

// Service turns one MPRIS player into a stream of playback events. Signals
// trigger an immediate read; a ticker covers players that do not signal
// position changes.
type Service struct {
	bus      *dbus.Conn
	service  string
	interval time.Duration
	log      logrus.FieldLogger

	signalChan chan *dbus.Signal
	eventChan  chan playback.Event
	stopChan   chan struct{}
	stopOnce   sync.Once

	mu        sync.Mutex
	available bool
}

func NewService(bus *dbus.Conn, mprisService string, interval time.Duration, log logrus.FieldLogger) (*Service, error) {
	if bus == nil {
		return nil, errors.New("nil dbus connection")
	}
	if mprisService == "" {
		return nil, errors.New("empty mpris service name")
	}
	if log == nil {
		log = logging.Discard()
	}

	return &Service{
		bus:        bus,
		service:    mprisService,
		interval:   interval,
		log:        log.WithField("source", mprisService),
		signalChan: make(chan *dbus.Signal, 10),
		eventChan:  make(chan playback.Event, 16),
		stopChan:   make(chan struct{}),
	}, nil
}

func (s *Service) Name() string {
	return s.service
}

// Start subscribes to the player's signals.
func (s *Service) Start() error {
	s.bus.Signal(s.signalChan)

	matches := []string{
		fmt.Sprintf(
			"type='signal',sender='%s',interface='org.freedesktop.DBus.Properties',member='PropertiesChanged',path='%s'",
			s.service, mprisPath,
		),
		fmt.Sprintf(
			"type='signal',sender='%s',interface='%s',member='Seeked',path='%s'",
			s.service, mprisPlayerIface, mprisPath,
		),
		fmt.Sprintf(
			"type='signal',sender='org.freedesktop.DBus',interface='org.freedesktop.DBus',member='NameOwnerChanged',arg0='%s'",
			s.service,
		),
	}

	for _, match := range matches {
		if err := s.bus.BusObject().Call("org.freedesktop.DBus.AddMatch", 0, match).Err; err != nil {
			return fmt.Errorf("failed to add match %q: %w", match, err)
		}
	}
	return nil
}

func (s *Service) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopChan)
	})
}

// Events is closed when Run returns.
func (s *Service) Events() <-chan playback.Event {
	return s.eventChan
}

// Run reads the player on every signal and tick until ctx is done or Stop
// is called.
func (s *Service) Run(ctx context.Context) {
	defer close(s.eventChan)

	var tick <-chan time.Time
	if s.interval > 0 {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	s.poll(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopChan:
			return
		case <-tick:
			s.poll(ctx)
		case sig, ok := <-s.signalChan:
			if !ok {
				return
			}
			s.handleSignal(ctx, sig)
		}
	}
}

func (s *Service) handleSignal(ctx context.Context, sig *dbus.Signal) {
	if sig == nil {
		return
	}

	switch sig.Name {
	case propertiesChanged, seeked:
		s.poll(ctx)
	case nameOwnerChanged:
		if len(sig.Body) < 3 {
			return
		}
		name, _ := sig.Body[0].(string)
		newOwner, _ := sig.Body[2].(string)
		if name != s.service {
			return
		}
		if newOwner == "" {
			s.markGone(ctx)
			return
		}
		s.poll(ctx)
	}
}

func (s *Service) poll(ctx context.Context) {
	ev, err := s.Read()
	if err != nil {
		s.log.WithError(err).Debug("failed to read player state")
		s.markGone(ctx)
		return
	}

	s.mu.Lock()
	s.available = true
	s.mu.Unlock()

	s.emit(ctx, ev, false)
}

// markGone reports the player as gone once per disappearance.
func (s *Service) markGone(ctx context.Context) {
	s.mu.Lock()
	wasAvailable := s.available
	s.available = false
	s.mu.Unlock()

	if wasAvailable {
		s.log.Info("player went away")
		s.emit(ctx, playback.Event{SourceID: s.service, Gone: true}, true)
	}
}

// emit drops position updates when the consumer lags; the next poll
// carries a fresher reading anyway. Gone events are always delivered.
func (s *Service) emit(ctx context.Context, ev playback.Event, mustDeliver bool) {
	if !mustDeliver {
		select {
		case s.eventChan <- ev:
		default:
		}
		return
	}

	select {
	case s.eventChan <- ev:
	case <-ctx.Done():
	case <-s.stopChan:
	}
}

// Read fetches the full player state in one round trip.
func (s *Service) Read() (playback.Event, error) {
	obj := s.bus.Object(s.service, mprisPath)

	var props map[string]dbus.Variant
	err := obj.Call("org.freedesktop.DBus.Properties.GetAll", 0, mprisPlayerIface).Store(&props)
	if err != nil {
		return playback.Event{}, fmt.Errorf("failed to get player properties: %w", err)
	}

	return eventFromProperties(s.service, props, time.Now()), nil
}

// CurrentTrack returns the metadata of the playing track, or an error when
// the player reports none.
func (s *Service) CurrentTrack() (*track.Info, playback.Snapshot, error) {
	ev, err := s.Read()
	if err != nil {
		return nil, playback.Snapshot{}, err
	}

	info := &track.Info{
		Title:      ev.Title,
		Artist:     ev.Artist,
		Album:      ev.Album,
		ArtworkURL: ev.ArtworkURL,
		DurationMs: ev.DurationMs,
	}
	if !info.IsValid() {
		return nil, ev.Snapshot, errors.New("player reports no track")
	}
	return info, ev.Snapshot, nil
}

func eventFromProperties(source string, props map[string]dbus.Variant, now time.Time) playback.Event {
	var metadata map[string]dbus.Variant
	if v, ok := props["Metadata"]; ok {
		metadata, _ = v.Value().(map[string]dbus.Variant)
	}

	speed := extractFloat(props, "Rate")
	if speed <= 0 {
		speed = 1
	}

	return playback.Event{
		SourceID:   source,
		Title:      extractString(metadata, "xesam:title"),
		Artist:     extractArtist(metadata, "xesam:artist"),
		Album:      extractString(metadata, "xesam:album"),
		ArtworkURL: extractString(metadata, "mpris:artUrl"),
		DurationMs: extractMicros(metadata, "mpris:length") / 1000,
		Snapshot: playback.Snapshot{
			State:             playback.ParseState(extractString(props, "PlaybackStatus")),
			PositionMs:        extractMicros(props, "Position") / 1000,
			Speed:             speed,
			LastUpdateEpochMs: now.UnixMilli(),
		},
	}
}

// ListServices returns the MPRIS players on the bus, sorted by name.
func ListServices(bus *dbus.Conn) ([]string, error) {
	var names []string
	if err := bus.BusObject().Call("org.freedesktop.DBus.ListNames", 0).Store(&names); err != nil {
		return nil, fmt.Errorf("failed to list dbus names: %w", err)
	}
	return filterServices(names), nil
}

func filterServices(names []string) []string {
	var services []string
	for _, name := range names {
		if strings.HasPrefix(name, mprisPrefix) {
			services = append(services, name)
		}
	}
	sort.Strings(services)
	return services
}

// Identity returns the player's human readable name, or "" when it has none.
func Identity(bus *dbus.Conn, service string) string {
	obj := bus.Object(service, mprisPath)
	variant, err := obj.GetProperty("org.mpris.MediaPlayer2.Identity")
	if err != nil {
		return ""
	}
	identity, _ := variant.Value().(string)
	return identity
}

func extractString(values map[string]dbus.Variant, key string) string {
	variant, exists := values[key]
	if !exists {
		return ""
	}

	text, _ := variant.Value().(string)
	return text
}

func extractArtist(values map[string]dbus.Variant, key string) string {
	variant, exists := values[key]
	if !exists {
		return ""
	}

	switch typed := variant.Value().(type) {
	case []string:
		if len(typed) > 0 {
			return typed[0]
		}
		return ""
	case string:
		return typed
	default:
		return ""
	}
}

func extractMicros(values map[string]dbus.Variant, key string) int64 {
	variant, exists := values[key]
	if !exists {
		return 0
	}

	var micros int64
	switch typed := variant.Value().(type) {
	case int64:
		micros = typed
	case uint64:
		micros = int64(typed)
	case int32:
		micros = int64(typed)
	case uint32:
		micros = int64(typed)
	case float64:
		micros = int64(typed)
	}

	if micros < 0 {
		return 0
	}
	return micros
}

func extractFloat(values map[string]dbus.Variant, key string) float64 {
	variant, exists := values[key]
	if !exists {
		return 0
	}

	switch typed := variant.Value().(type) {
	case float64:
		return typed
	case float32:
		return float64(typed)
	default:
		return 0
	}
}
