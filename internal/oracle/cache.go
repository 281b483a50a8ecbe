package oracle

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"sync"

	"github.com/vmihailenco/msgpack/v5"

	"dlc/internal/igr"
)

// increment when the Entry layout changes
const diskCacheSchemaVersion uint16 = 1

// Key identifies one oracle run.
type Key [sha256.Size]byte

// KeyFor hashes a program together with its inputs. engine identifies the
// binary that produced the result, so two engines never share entries.
func KeyFor(engine, program string, inputs []igr.Value) Key {
	h := sha256.New()
	h.Write([]byte(engine))
	h.Write([]byte{0})
	h.Write([]byte(program))
	for _, v := range inputs {
		h.Write([]byte{0})
		h.Write([]byte(v.String()))
	}
	var k Key
	copy(k[:], h.Sum(nil))
	return k
}

// Entry is the on-disk form of a cached result.
type Entry struct {
	Schema uint16
	Result igr.Value
}

// DiskCache stores oracle results as msgpack files. Safe for concurrent use.
type DiskCache struct {
	mu  sync.RWMutex
	dir string
}

// OpenDiskCache opens a cache rooted at dir, or at $XDG_CACHE_HOME/dlc
// (falling back to ~/.cache/dlc) when dir is empty.
func OpenDiskCache(dir string) (*DiskCache, error) {
	if dir == "" {
		base := os.Getenv("XDG_CACHE_HOME")
		if base == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return nil, err
			}
			base = filepath.Join(home, ".cache")
		}
		dir = filepath.Join(base, "dlc")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DiskCache{dir: dir}, nil
}

func (c *DiskCache) pathFor(key Key) string {
	hexKey := hex.EncodeToString(key[:])
	return filepath.Join(c.dir, "oracle", hexKey[:2], hexKey+".mp")
}

// Put writes a result. The file is replaced atomically.
func (c *DiskCache) Put(key Key, v igr.Value) error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer os.Remove(tmp) // no-op after a successful rename

	if err := msgpack.NewEncoder(f).Encode(&Entry{Schema: diskCacheSchemaVersion, Result: v}); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, p)
}

// Get reads a result. Entries written with another schema are misses.
func (c *DiskCache) Get(key Key) (igr.Value, bool, error) {
	if c == nil {
		return igr.Value{}, false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Open(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return igr.Value{}, false, nil
		}
		return igr.Value{}, false, err
	}
	defer f.Close()

	var e Entry
	if err := msgpack.NewDecoder(f).Decode(&e); err != nil {
		return igr.Value{}, false, err
	}
	if e.Schema != diskCacheSchemaVersion {
		return igr.Value{}, false, nil
	}
	return e.Result, true, nil
}
