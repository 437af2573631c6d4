package engine

import (
	"sync/atomic"

	"karolbroda.com/lyricsync/internal/playback"
)

// binding is the position source the tracker is currently following. The
// tracker stores snapshots into it; a highlight loop reads them. Once
// detached it stays detached.
type binding struct {
	id       string
	snap     atomic.Pointer[playback.Snapshot]
	detached atomic.Bool
}

func newBinding(id string) *binding {
	return &binding{id: id}
}

func (b *binding) store(snap playback.Snapshot) {
	b.snap.Store(&snap)
}

func (b *binding) latest() playback.Snapshot {
	if s := b.snap.Load(); s != nil {
		return *s
	}
	return playback.Snapshot{}
}

func (b *binding) detach() {
	b.detached.Store(true)
}

// Snapshot satisfies highlight.Source.
func (b *binding) Snapshot() (playback.Snapshot, bool) {
	if b.detached.Load() {
		return playback.Snapshot{}, false
	}
	return b.latest(), true
}
