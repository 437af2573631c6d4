package lyrics

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"karolbroda.com/lyricsync/internal/logging"
)

// ErrStale means the song changed while the request was in flight. It is the
// normal cancellation path, not a failure.
var ErrStale = errors.New("lyrics request is stale")

const truncatedArtistRunes = 10

type Request struct {
	Title          string
	Artist         string
	DurationHintMs int64
}

type Resolver struct {
	searcher Searcher
	log      logrus.FieldLogger
}

func NewResolver(searcher Searcher, log logrus.FieldLogger) *Resolver {
	if log == nil {
		log = logging.Discard()
	}
	return &Resolver{searcher: searcher, log: log}
}

type tier struct {
	query    string
	relaxed  bool
	answered bool
	results  []Result
}

// Resolve runs the tiered search for one song and classifies the outcome.
// current is consulted before and after the network round trips; once it
// reports false the result is dropped and ErrStale returned.
func (r *Resolver) Resolve(ctx context.Context, req Request, current func() bool) (*Content, error) {
	log := r.log.WithFields(logrus.Fields{
		"request_id": uuid.NewString(),
		"title":      req.Title,
		"artist":     req.Artist,
	})

	if !stillCurrent(ctx, current) {
		log.Debug("dropping lyrics request before search")
		return nil, ErrStale
	}

	tiers := r.queryPlan(req)
	var found *tier
	anyAnswered := false

	for i := 0; i < len(tiers); i++ {
		t := &tiers[i]
		if i > 0 && !tierApplies(req, i) {
			continue
		}

		r.runTier(ctx, log, t)
		if t.answered {
			anyAnswered = true
		}

		if !stillCurrent(ctx, current) {
			log.Debug("dropping lyrics request after search")
			return nil, ErrStale
		}

		if len(t.results) > 0 {
			found = t
			break
		}
	}

	content := r.classify(req, found, anyAnswered)

	if !stillCurrent(ctx, current) {
		log.Debug("dropping lyrics result for superseded song")
		return nil, ErrStale
	}

	log.WithField("kind", content.Kind.String()).Info("lyrics resolved")
	return content, nil
}

func (r *Resolver) classify(req Request, found *tier, anyAnswered bool) *Content {
	fallbackDuration := req.DurationHintMs
	if fallbackDuration < 0 {
		fallbackDuration = 0
	}

	if found == nil {
		if !anyAnswered {
			return NewInfo(req.Title, req.Artist, InfoLoadFailed, fallbackDuration)
		}
		return NewInfo(req.Title, req.Artist, InfoNotFound, fallbackDuration)
	}

	candidate, ok := Select(found.results)
	if !ok {
		return NewInfo(req.Title, req.Artist, InfoNotFound, fallbackDuration)
	}

	content := Classify(candidate, req.Title, req.Artist, ResolveDuration(req.DurationHintMs, candidate))
	if found.relaxed && !content.IsInfo() && differsFrom(candidate, req.Title, req.Artist) {
		return NewMismatch(req.Title, req.Artist, content)
	}
	return content
}

// queryPlan lists the three tiers in order. Whether tiers two and three run
// is decided lazily by tierApplies.
func (r *Resolver) queryPlan(req Request) []tier {
	first := req.Title
	if req.Artist != "" {
		first = req.Title + " " + req.Artist
	}

	truncated := ""
	if utf8.RuneCountInString(req.Artist) > truncatedArtistRunes {
		truncated = req.Title + " " + string([]rune(req.Artist)[:truncatedArtistRunes])
	}

	return []tier{
		{query: first},
		{query: truncated, relaxed: true},
		{query: req.Title, relaxed: true},
	}
}

func tierApplies(req Request, index int) bool {
	switch index {
	case 1:
		return utf8.RuneCountInString(req.Artist) > truncatedArtistRunes
	case 2:
		return strings.TrimSpace(req.Title) != ""
	default:
		return true
	}
}

func (r *Resolver) runTier(ctx context.Context, log logrus.FieldLogger, t *tier) {
	results, err := r.searcher.Search(ctx, t.query)
	if err != nil {
		log.WithError(err).WithField("query", t.query).Debug("search tier failed")
		return
	}
	t.answered = true
	t.results = results
}

func stillCurrent(ctx context.Context, current func() bool) bool {
	if ctx.Err() != nil {
		return false
	}
	return current == nil || current()
}
