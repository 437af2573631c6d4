package lyrics

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"karolbroda.com/lyricsync/internal/cache"
	"karolbroda.com/lyricsync/internal/logging"
)

// CachingSearcher remembers successful answers per query. Failures are not
// cached so that a flaky tier gets another chance on the next song change.
type CachingSearcher struct {
	next  Searcher
	store *cache.Cache[[]Result]
}

func NewCachingSearcher(next Searcher, store *cache.Cache[[]Result]) *CachingSearcher {
	return &CachingSearcher{next: next, store: store}
}

func (s *CachingSearcher) Search(ctx context.Context, query string) ([]Result, error) {
	key := cache.Key(query)
	if cached, err := s.store.Get(key); err == nil {
		return cached, nil
	}

	results, err := s.next.Search(ctx, query)
	if err != nil {
		return nil, err
	}

	s.store.Set(key, results)
	return results, nil
}

// PruneEvery drops expired answers on every tick until ctx is done. Without
// it an answer that is never asked for again stays in memory.
func (s *CachingSearcher) PruneEvery(ctx context.Context, every time.Duration, log logrus.FieldLogger) {
	if every <= 0 {
		return
	}
	if log == nil {
		log = logging.Discard()
	}

	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if pruned := s.store.Prune(); pruned > 0 {
				log.WithFields(logrus.Fields{
					"pruned":    pruned,
					"remaining": s.store.Len(),
				}).Debug("pruned lyrics cache")
			}
		}
	}
}
