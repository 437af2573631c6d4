package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DefaultSource            = "mpris"
	DefaultMprisService      = "org.mpris.MediaPlayer2.spotify"
	DefaultLrclibURL         = "https://lrclib.net"
	DefaultHighlightInterval = 200 * time.Millisecond
	DefaultCacheTTL          = 30 * time.Minute
	HTTPTimeout              = 10 * time.Second
	PollInterval             = time.Second
	SpotifyPollInterval      = 3 * time.Second
)

type Config struct {
	Source            string
	MprisService      string
	LrclibURL         string
	HighlightInterval time.Duration
	CacheTTL          time.Duration
	LogLevel          string
	LogFile           string
	ListenAddr        string
	AllowedOrigins    []string
	Spotify           SpotifyConfig
}

type SpotifyConfig struct {
	ClientID     string
	ClientSecret string
	RefreshToken string
}

func (s SpotifyConfig) IsSet() bool {
	return s.ClientID != "" && s.ClientSecret != "" && s.RefreshToken != ""
}

// Load reads the configuration from the environment. A .env file in the
// working directory is merged in first when present; variables already set
// in the environment win.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Source:            strings.ToLower(getEnvOrDefault("SOURCE", DefaultSource)),
		MprisService:      getEnvOrDefault("MPRIS_SERVICE", DefaultMprisService),
		LrclibURL:         getEnvOrDefault("LRCLIB_URL", DefaultLrclibURL),
		HighlightInterval: getMillisOrDefault("HIGHLIGHT_INTERVAL_MS", DefaultHighlightInterval),
		CacheTTL:          getMinutesOrDefault("CACHE_TTL_MINUTES", DefaultCacheTTL),
		LogLevel:          getEnvOrDefault("LOG_LEVEL", "info"),
		LogFile:           os.Getenv("LOG_FILE"),
		ListenAddr:        os.Getenv("LISTEN_ADDR"),
		AllowedOrigins:    splitList(os.Getenv("ALLOWED_ORIGINS")),
		Spotify: SpotifyConfig{
			ClientID:     os.Getenv("SPOTIFY_CLIENT_ID"),
			ClientSecret: os.Getenv("SPOTIFY_CLIENT_SECRET"),
			RefreshToken: os.Getenv("SPOTIFY_REFRESH_TOKEN"),
		},
	}
}

func getEnvOrDefault(key string, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getMillisOrDefault(key string, fallback time.Duration) time.Duration {
	ms, err := strconv.Atoi(os.Getenv(key))
	if err != nil || ms <= 0 {
		return fallback
	}
	return time.Duration(ms) * time.Millisecond
}

func getMinutesOrDefault(key string, fallback time.Duration) time.Duration {
	minutes, err := strconv.Atoi(os.Getenv(key))
	if err != nil || minutes < 0 {
		return fallback
	}
	return time.Duration(minutes) * time.Minute
}

func splitList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
