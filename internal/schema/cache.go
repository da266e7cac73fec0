package schema

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

// Bump when the payload format changes so stale entries self-invalidate.
const cacheSchemaVersion uint16 = 1

const cacheTTL = 5 * time.Minute

// Cache keeps recent URL introspection results on disk so repeated doctor
// runs against a slow endpoint stay fast. Misses and corrupt entries are
// silent; the loader just introspects again.
type Cache struct {
	mu  sync.Mutex
	dir string
}

type cachePayload struct {
	Schema    uint16
	FetchedAt int64
	Source    string
	TypeCount int
}

// OpenCache initializes a disk cache at the standard location.
func OpenCache(app string) (*Cache, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		base = filepath.Join(home, ".cache")
	}
	dir := filepath.Join(base, app, "introspection")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Cache{dir: dir}, nil
}

func (c *Cache) pathFor(url, root string) string {
	sum := sha256.Sum256([]byte(url + "\x00" + root))
	return filepath.Join(c.dir, hex.EncodeToString(sum[:])+".mp")
}

// Get returns a cached result if a fresh entry exists.
func (c *Cache) Get(url, root string) (*Result, bool) {
	if c == nil {
		return nil, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	data, err := os.ReadFile(c.pathFor(url, root))
	if err != nil {
		return nil, false
	}
	var payload cachePayload
	if err := msgpack.Unmarshal(data, &payload); err != nil {
		return nil, false
	}
	if payload.Schema != cacheSchemaVersion {
		return nil, false
	}
	if time.Since(time.Unix(payload.FetchedAt, 0)) > cacheTTL {
		return nil, false
	}
	return &Result{Source: payload.Source, TypeCount: payload.TypeCount}, true
}

// Put stores a result. Failures are dropped; the cache is best effort.
func (c *Cache) Put(url, root string, res *Result) {
	if c == nil || res == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	payload := cachePayload{
		Schema:    cacheSchemaVersion,
		FetchedAt: time.Now().Unix(),
		Source:    res.Source,
		TypeCount: res.TypeCount,
	}
	data, err := msgpack.Marshal(&payload)
	if err != nil {
		return
	}
	path := c.pathFor(url, root)
	tmp, err := os.CreateTemp(c.dir, "tmp-*")
	if err != nil {
		return
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return
	}
	// Atomic replace keeps concurrent doctor runs from reading torn files.
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
	}
}
