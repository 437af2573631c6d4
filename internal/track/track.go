package track

// Identity is the dedup key for "same song" decisions. An absent artist is
// the empty string. Two identities are equal only when both fields match
// exactly, case included.
type Identity struct {
	Title  string
	Artist string
}

// Display renders "title by artist", or just the title when there is no artist.
func (id Identity) Display() string {
	if id.Artist == "" {
		return id.Title
	}
	return id.Title + " by " + id.Artist
}

type Info struct {
	Title      string
	Artist     string
	Album      string
	DurationMs int64
	ArtworkURL string
}

func (t *Info) IsValid() bool {
	if t == nil {
		return false
	}
	return t.Title != ""
}
