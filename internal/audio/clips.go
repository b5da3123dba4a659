package audio

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/hammamikhairi/springbreak/internal/domain"
	"github.com/hammamikhairi/springbreak/internal/logger"
)

// Synthesizer turns a greeting phrase into WAV bytes.
type Synthesizer interface {
	Synthesize(ctx context.Context, g domain.Greeting) ([]byte, error)
}

// ClipOption configures the ClipStore.
type ClipOption func(*ClipStore)

// WithSynthesizer enables synthesis for greetings without a clip file.
func WithSynthesizer(s Synthesizer) ClipOption {
	return func(c *ClipStore) { c.synth = s }
}

// WithCacheDir sets where synthesized greetings are persisted. If empty,
// synthesized audio only lives in memory.
func WithCacheDir(dir string) ClipOption {
	return func(c *ClipStore) { c.cacheDir = dir }
}

// WithDiskWrite controls whether newly synthesized greetings are written
// to the cache dir. Existing cache files are read either way.
func WithDiskWrite(enabled bool) ClipOption {
	return func(c *ClipStore) { c.diskWrite = enabled }
}

// ClipStore resolves greetings to WAV bytes. Lookup order:
//
//	memory -> <clipsDir>/<resource>.wav -> <cacheDir>/<hash>.wav -> synthesizer
//
// Safe for concurrent use.
type ClipStore struct {
	mu        sync.RWMutex
	entries   map[string][]byte // resource -> WAV bytes
	clipsDir  string
	cacheDir  string
	diskWrite bool
	synth     Synthesizer
	log       *logger.Logger
	hits      int64
	misses    int64
}

// NewClipStore creates a store reading clips from clipsDir.
func NewClipStore(clipsDir string, log *logger.Logger, opts ...ClipOption) *ClipStore {
	c := &ClipStore{
		entries:   make(map[string][]byte),
		clipsDir:  clipsDir,
		diskWrite: true,
		log:       log,
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.cacheDir != "" && c.diskWrite {
		if err := os.MkdirAll(c.cacheDir, 0o755); err != nil {
			log.Error("clips: failed to create cache dir %s: %v", c.cacheDir, err)
		}
	}
	return c
}

// Load returns the WAV bytes for g.
func (c *ClipStore) Load(ctx context.Context, g domain.Greeting) ([]byte, error) {
	c.mu.RLock()
	data, ok := c.entries[g.Resource]
	c.mu.RUnlock()
	if ok {
		c.count(true)
		c.log.Debug("clip hit (mem): %s (%d bytes)", g.Resource, len(data))
		return data, nil
	}

	if c.clipsDir != "" {
		path := filepath.Join(c.clipsDir, g.Resource+".wav")
		if data, err := os.ReadFile(path); err == nil {
			c.store(g.Resource, data)
			c.count(true)
			c.log.Debug("clip hit (file): %s", path)
			return data, nil
		}
	}

	key := synthKey(g)
	if c.cacheDir != "" {
		if data, err := os.ReadFile(c.cachePath(key)); err == nil {
			c.store(g.Resource, data)
			c.count(true)
			c.log.Debug("clip hit (cache): %s", g.Resource)
			return data, nil
		}
	}

	c.count(false)
	if c.synth == nil {
		return nil, fmt.Errorf("loading %s: %w", g.Resource, domain.ErrClipNotFound)
	}

	data, err := c.synth.Synthesize(ctx, g)
	if err != nil {
		return nil, fmt.Errorf("synthesizing %s: %w", g.Resource, err)
	}
	c.store(g.Resource, data)
	if c.cacheDir != "" && c.diskWrite {
		c.writeCache(key, data)
	}
	c.log.Info("synthesized greeting %s (%d bytes)", g.Resource, len(data))
	return data, nil
}

// Stats returns hit and miss counts.
func (c *ClipStore) Stats() (hits, misses int64) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hits, c.misses
}

func (c *ClipStore) store(resource string, data []byte) {
	c.mu.Lock()
	c.entries[resource] = data
	c.mu.Unlock()
}

func (c *ClipStore) count(hit bool) {
	c.mu.Lock()
	if hit {
		c.hits++
	} else {
		c.misses++
	}
	c.mu.Unlock()
}

// synthKey hashes voice and phrase so a voice change misses the cache.
func synthKey(g domain.Greeting) string {
	h := sha256.Sum256([]byte(g.Voice + ":" + g.Phrase))
	return hex.EncodeToString(h[:])
}

func (c *ClipStore) cachePath(key string) string {
	return filepath.Join(c.cacheDir, key+".wav")
}

func (c *ClipStore) writeCache(key string, data []byte) {
	path := c.cachePath(key)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		c.log.Error("clips: cache write failed for %s: %v", path, err)
		return
	}
	c.log.Debug("clip stored (cache): %s (%d bytes)", key[:12], len(data))
}
