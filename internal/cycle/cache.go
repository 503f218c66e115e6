package cycle

import (
	"encoding/json"
	"errors"
	"math"
	"time"

	"github.com/coocood/freecache"
	log "github.com/sirupsen/logrus"
)

// freecache refuses anything smaller; a single state record is tiny anyway
const stateCacheSize = 512 * 1024

var stateCacheKey = []byte("cycle-state")

// clockTimer drives freecache expiry from the store's clock.
type clockTimer struct {
	now func() time.Time
}

func (t clockTimer) Now() uint32 {
	return uint32(t.now().Unix())
}

// cachedState is what goes into freecache: the state and when it was stored,
// in milliseconds, since freecache expiry only has whole second resolution.
type cachedState struct {
	State      State `json:"state"`
	StoredAtMs int64 `json:"storedAtMs"`
}

// stateCache holds the last known state (which carries the plan it was computed
// for) for a short time, to avoid storage reads within a burst of calls.
type stateCache struct {
	cache *freecache.Cache
	ttl   time.Duration
	now   func() time.Time
	// expireSeconds only lets freecache drop stale entries, freshness is checked in get
	expireSeconds int
}

func newStateCache(ttl time.Duration, now func() time.Time) *stateCache {
	if ttl < time.Millisecond {
		ttl = time.Millisecond
	}
	return &stateCache{
		cache:         freecache.NewCacheCustomTimer(stateCacheSize, clockTimer{now: now}),
		ttl:           ttl,
		now:           now,
		expireSeconds: int(math.Ceil(ttl.Seconds())) + 1,
	}
}

// get returns the cached state if it was stored less than ttl ago.
func (c *stateCache) get() (State, bool) {
	raw, err := c.cache.Get(stateCacheKey)
	if err != nil {
		if !errors.Is(err, freecache.ErrNotFound) {
			log.Warnf("cycle state cache get: %s", err)
		}
		return State{}, false
	}

	var cached cachedState
	if err := json.Unmarshal(raw, &cached); err != nil {
		log.Warnf("cycle state cache, unmarshal: %s", err)
		c.invalidate()
		return State{}, false
	}

	age := time.Duration(c.now().UnixMilli()-cached.StoredAtMs) * time.Millisecond
	if age >= c.ttl {
		c.invalidate()
		return State{}, false
	}
	return cached.State, true
}

func (c *stateCache) set(state State) {
	raw, err := json.Marshal(cachedState{
		State:      state,
		StoredAtMs: c.now().UnixMilli(),
	})
	if err != nil {
		log.Warnf("cycle state cache, marshal: %s", err)
		return
	}
	if err := c.cache.Set(stateCacheKey, raw, c.expireSeconds); err != nil {
		log.Warnf("cycle state cache set: %s", err)
	}
}

func (c *stateCache) invalidate() {
	c.cache.Del(stateCacheKey)
}
