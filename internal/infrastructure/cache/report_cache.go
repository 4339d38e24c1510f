package cache

import (
	"strconv"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/dkverwaltung/dkledger/internal/domain/port"
)

var _ port.ReportCache = (*ReportCache)(nil)

// ReportCache is an in-process port.ReportCache with a per-entry TTL.
type ReportCache struct {
	items *gocache.Cache
}

// NewReportCache creates a cache whose entries expire after ttl. A zero ttl
// keeps entries until they are invalidated.
func NewReportCache(ttl time.Duration) *ReportCache {
	if ttl <= 0 {
		ttl = gocache.NoExpiration
	}
	cleanup := 10 * time.Minute
	if ttl != gocache.NoExpiration && ttl < cleanup {
		cleanup = ttl
	}
	return &ReportCache{items: gocache.New(ttl, cleanup)}
}

func (c *ReportCache) Get(key string) (any, bool) {
	return c.items.Get(key)
}

func (c *ReportCache) Set(key string, value any) {
	c.items.SetDefault(key, value)
}

// InvalidateFrom drops entries whose key year is year or later. Keys without a
// parseable year segment are left alone.
func (c *ReportCache) InvalidateFrom(year int) int {
	dropped := 0
	for key := range c.items.Items() {
		y, ok := keyYear(key)
		if !ok || y < year {
			continue
		}
		c.items.Delete(key)
		dropped++
	}
	return dropped
}

// Len reports the number of unexpired entries.
func (c *ReportCache) Len() int {
	return c.items.ItemCount()
}

func keyYear(key string) (int, bool) {
	parts := strings.SplitN(key, "/", 3)
	if len(parts) < 2 {
		return 0, false
	}
	y, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, false
	}
	return y, true
}
