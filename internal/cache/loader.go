package cache

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jellydator/ttlcache/v3"
	"github.com/jonboulle/clockwork"

	"github.com/KaramelBytes/chartlens/internal/analysis"
	"github.com/KaramelBytes/chartlens/internal/parser"
	"github.com/KaramelBytes/chartlens/internal/utils"
)

// ParseFunc decodes raw file content; name selects the format.
type ParseFunc func(name string, data []byte) ([]analysis.Observation, error)

// Config configures a Loader.
type Config struct {
	Logger *slog.Logger
	// Clock stamps Table.LoadedAt. Defaults to the real clock.
	Clock clockwork.Clock
	// Parse defaults to parser.ParseBytes with zero options.
	Parse  ParseFunc
	Derive analysis.DeriveOptions
	// TTL bounds how long a derived table is kept; 0 keeps it until the source changes.
	TTL time.Duration
}

func (c *Config) Validate() error {
	if c.Logger == nil {
		return errors.New("logger is required")
	}
	if c.TTL < 0 {
		return fmt.Errorf("invalid cache ttl: %s", c.TTL)
	}
	if c.Clock == nil {
		c.Clock = clockwork.NewRealClock()
	}
	if c.Parse == nil {
		c.Parse = func(name string, data []byte) ([]analysis.Observation, error) {
			return parser.ParseBytes(name, data, parser.Options{})
		}
	}
	return nil
}

type entry struct {
	size    int64
	modTime time.Time
	hash    string
	table   *analysis.Table
}

// Stats counts cache outcomes since the loader was created.
type Stats struct {
	Hits        int64
	Revalidated int64
	Misses      int64
}

// Loader memoizes derived tables per source path. An entry is reused while the
// file's size and mtime are unchanged; otherwise the content hash decides
// whether the table must be derived again.
type Loader struct {
	log *slog.Logger
	cfg *Config

	mu    sync.Mutex
	store *ttlcache.Cache[string, *entry]

	hits, revalidated, misses atomic.Int64
}

func NewLoader(cfg *Config) (*Loader, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	store := ttlcache.New(
		ttlcache.WithTTL[string, *entry](cfg.TTL),
		ttlcache.WithDisableTouchOnHit[string, *entry](),
	)
	return &Loader{log: cfg.Logger, cfg: cfg, store: store}, nil
}

// Load returns the augmented table for path, deriving it only when the source
// content changed since the last load.
func (l *Loader) Load(path string) (*analysis.Table, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve path: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("stat chart file: %w", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	var prev *entry
	if it := l.store.Get(abs); it != nil {
		prev = it.Value()
		if prev.size == info.Size() && prev.modTime.Equal(info.ModTime()) {
			l.hits.Add(1)
			lookups.WithLabelValues("hit").Inc()
			return prev.table, nil
		}
	}

	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("read chart file: %w", err)
	}
	hash := utils.ContentHash(data)
	if prev != nil && prev.hash == hash {
		l.revalidated.Add(1)
		lookups.WithLabelValues("revalidated").Inc()
		l.store.Set(abs, &entry{size: info.Size(), modTime: info.ModTime(), hash: hash, table: prev.table}, ttlcache.DefaultTTL)
		l.log.Debug("cache: content unchanged", "path", abs)
		return prev.table, nil
	}

	l.misses.Add(1)
	lookups.WithLabelValues("miss").Inc()
	start := l.cfg.Clock.Now()
	obs, err := l.cfg.Parse(abs, data)
	if err != nil {
		return nil, err
	}
	t := analysis.NewTable(obs, l.cfg.Derive, analysis.TableInfo{
		Source:      filepath.Base(abs),
		Fingerprint: hash,
		LoadedAt:    l.cfg.Clock.Now(),
	})
	derivations.Inc()
	l.store.Set(abs, &entry{size: info.Size(), modTime: info.ModTime(), hash: hash, table: t}, ttlcache.DefaultTTL)
	l.log.Info("cache: derived table", "path", abs, "rows", t.Len(), "songs", t.Keys(), "took", l.cfg.Clock.Since(start))
	return t, nil
}

// Invalidate drops the entry for path so the next Load re-reads it.
func (l *Loader) Invalidate(path string) {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.store.Delete(abs)
	invalidations.Inc()
	l.log.Debug("cache: invalidated", "path", abs)
}

// Purge drops every entry.
func (l *Loader) Purge() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.store.DeleteAll()
}

// Len returns the number of cached tables.
func (l *Loader) Len() int { return l.store.Len() }

func (l *Loader) Stats() Stats {
	return Stats{Hits: l.hits.Load(), Revalidated: l.revalidated.Load(), Misses: l.misses.Load()}
}
