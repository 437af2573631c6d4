package spotify

// TrackItem is the track object of the Spotify API.
type TrackItem struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	DurationMs int64  `json:"duration_ms"`
	Artists    []struct {
		Name string `json:"name"`
	} `json:"artists"`
	Album struct {
		Name   string `json:"name"`
		Images []struct {
			URL string `json:"url"`
		} `json:"images"`
	} `json:"album"`
}

// CurrentlyPlaying mirrors /v1/me/player/currently-playing. Item is nil
// when nothing is playing or an ad is on.
type CurrentlyPlaying struct {
	IsPlaying  bool       `json:"is_playing"`
	ProgressMs int64      `json:"progress_ms"`
	Timestamp  int64      `json:"timestamp"`
	Item       *TrackItem `json:"item"`
}

func (t *TrackItem) artist() string {
	if t == nil || len(t.Artists) == 0 {
		return ""
	}
	return t.Artists[0].Name
}

func (t *TrackItem) artworkURL() string {
	if t == nil || len(t.Album.Images) == 0 {
		return ""
	}
	return t.Album.Images[0].URL
}
