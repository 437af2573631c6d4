package spotify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"golang.org/x/oauth2"
)

const (
	tokenURL       = "https://accounts.spotify.com/api/token"
	defaultAPIBase = "https://api.spotify.com"
)

// Client talks to the Spotify Web API. It is safe for concurrent use.
type Client struct {
	httpClient *http.Client
	apiBase    string
}

// NewClient creates a client that authenticates with the refresh token flow.
// The token source refreshes the access token on its own.
func NewClient(ctx context.Context, clientID, clientSecret, refreshToken string) *Client {
	conf := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Endpoint: oauth2.Endpoint{
			TokenURL: tokenURL,
		},
	}

	tokenSource := conf.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken})

	return &Client{
		httpClient: oauth2.NewClient(ctx, tokenSource),
		apiBase:    defaultAPIBase,
	}
}

// NewClientWithHTTP uses an already authenticated http client against the
// given API base.
func NewClientWithHTTP(httpClient *http.Client, apiBase string) *Client {
	return &Client{httpClient: httpClient, apiBase: apiBase}
}

func (c *Client) CurrentlyPlaying(ctx context.Context) (*CurrentlyPlaying, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiBase+"/v1/me/player/currently-playing", nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	// nothing playing
	if resp.StatusCode == http.StatusNoContent {
		return &CurrentlyPlaying{}, nil
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("spotify returned status %d: %s", resp.StatusCode, string(body))
	}

	var currentlyPlaying CurrentlyPlaying
	if err := json.NewDecoder(resp.Body).Decode(&currentlyPlaying); err != nil {
		return nil, fmt.Errorf("failed to decode spotify json: %w", err)
	}

	return &currentlyPlaying, nil
}
