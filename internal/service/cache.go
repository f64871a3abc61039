package service

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"strconv"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/medmatch-server/internal/domain"
)

// ReportCache memoizes recommendation reports for identical requests.
// The pipeline is deterministic, so a report keyed by payload and
// roster fingerprint can be replayed without recomputation. The cache
// is a bounded in-process memo only; analysis history is never
// persisted.
type ReportCache struct {
	entries *lru.Cache[string, *domain.Report]

	stats   CacheStats
	statsMu sync.Mutex
}

// CacheStats represents cache performance statistics.
type CacheStats struct {
	Hits      int64     `json:"hits"`
	Misses    int64     `json:"misses"`
	LastReset time.Time `json:"last_reset"`
}

// NewReportCache creates a report cache holding up to maxEntries
// reports.
func NewReportCache(maxEntries int) (*ReportCache, error) {
	if maxEntries <= 0 {
		maxEntries = 256
	}
	entries, err := lru.New[string, *domain.Report](maxEntries)
	if err != nil {
		return nil, fmt.Errorf("creating report cache: %w", err)
	}
	return &ReportCache{
		entries: entries,
		stats:   CacheStats{LastReset: time.Now()},
	}, nil
}

// Get returns the cached report for a key, if present.
func (c *ReportCache) Get(key string) (*domain.Report, bool) {
	report, ok := c.entries.Get(key)
	c.statsMu.Lock()
	if ok {
		c.stats.Hits++
	} else {
		c.stats.Misses++
	}
	c.statsMu.Unlock()
	return report, ok
}

// Add stores a report under a key.
func (c *ReportCache) Add(key string, report *domain.Report) {
	c.entries.Add(key, report)
}

// Stats returns a snapshot of cache performance counters.
func (c *ReportCache) Stats() CacheStats {
	c.statsMu.Lock()
	defer c.statsMu.Unlock()
	return c.stats
}

// CacheKey derives a deterministic key from the payload, the roster,
// and the requested list size.
func CacheKey(payload *domain.Payload, practitioners []domain.Practitioner, topN int) string {
	h := sha256.New()
	writePayload(h, payload)
	for _, p := range practitioners {
		fmt.Fprintf(h, "|%s\t%s\t%g\t%s", p.Name, p.Specialty, p.YearsInPractice, p.Hospital)
	}
	io.WriteString(h, "|n="+strconv.Itoa(topN))
	return hex.EncodeToString(h.Sum(nil))
}

// writePayload walks the variant tree in its canonical order.
func writePayload(h hash.Hash, p *domain.Payload) {
	if p == nil {
		io.WriteString(h, "nil")
		return
	}
	switch p.Kind {
	case domain.PayloadText:
		io.WriteString(h, "t:"+p.Text)
	case domain.PayloadScalar:
		io.WriteString(h, "s:"+p.Scalar)
	case domain.PayloadMapping:
		io.WriteString(h, "m{")
		for _, e := range p.Mapping {
			io.WriteString(h, e.Key+"=")
			writePayload(h, e.Value)
			io.WriteString(h, ";")
		}
		io.WriteString(h, "}")
	case domain.PayloadSequence:
		io.WriteString(h, "l[")
		for _, item := range p.Sequence {
			writePayload(h, item)
			io.WriteString(h, ";")
		}
		io.WriteString(h, "]")
	}
}
