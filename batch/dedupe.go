package batch

import (
	"fmt"
	"github.com/golang/groupcache/lru"
	"github.com/rotblauer/gpxreplay/types/trackpoint"
	"sync"
)

const dedupeCacheSize = 10_000

// dedupe remembers the first input seen for each point sequence.
type dedupe struct {
	mu    sync.Mutex
	cache *lru.Cache
}

func newDedupe() *dedupe {
	return &dedupe{cache: lru.New(dedupeCacheSize)}
}

// seen returns the earlier input with the same points, if any,
// and otherwise records input as the first.
// Empty sequences are never duplicates.
func (d *dedupe) seen(input string, tps trackpoint.TrackPoints) (string, bool) {
	if len(tps) == 0 {
		return "", false
	}
	hash, err := tps.Hash()
	if err != nil {
		return "", false
	}
	key := fmt.Sprintf("%d", hash)

	d.mu.Lock()
	defer d.mu.Unlock()
	if first, ok := d.cache.Get(key); ok {
		return first.(string), true
	}
	d.cache.Add(key, input)
	return "", false
}
