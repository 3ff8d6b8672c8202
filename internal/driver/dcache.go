package driver

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"sharpfix/internal/diag"
	"sharpfix/internal/source"
)

// Current schema version - increment when DiskPayload format changes
const diskCacheSchemaVersion uint16 = 1

// Digest - фиксированный 256 битный хеш (совместим с source.File.Hash)
type Digest [32]byte

// DiskCache хранит диагностики файлов на диске по хешу содержимого и
// отпечатку набора правил. Thread-safe for concurrent access.
type DiskCache struct {
	mu  sync.RWMutex
	dir string
}

// DiskPayload stores the findings of one file.
type DiskPayload struct {
	// Schema version for safe invalidation when format changes
	Schema uint16

	Path        string
	Fingerprint string
	ContentHash Digest
	Diagnostics []CachedDiagnostic
}

// CachedDiagnostic is a diagnostic without its file id; spans are byte
// offsets into the cached content.
type CachedDiagnostic struct {
	Code      string
	Severity  uint8
	Message   string
	Start     uint32
	End       uint32
	Secondary [][2]uint32
	Props     map[string]string
}

// OpenDiskCache initializes and returns a disk cache at the standard location.
func OpenDiskCache(app string) (*DiskCache, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		base = filepath.Join(home, ".cache")
	}
	return OpenDiskCacheAt(filepath.Join(base, app))
}

// OpenDiskCacheAt uses dir as the cache root.
func OpenDiskCacheAt(dir string) (*DiskCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DiskCache{dir: dir}, nil
}

// Dir returns the cache root.
func (c *DiskCache) Dir() string {
	if c == nil {
		return ""
	}
	return c.dir
}

func (c *DiskCache) pathFor(key Digest) string {
	hexKey := hex.EncodeToString(key[:])
	return filepath.Join(c.dir, "diags", hexKey[:2], hexKey+".mp")
}

// Put serializes and writes a payload to the disk cache.
func (c *DiskCache) Put(key Digest, payload *DiskPayload) (err error) {
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
	defer func() {
		if err != nil {
			_ = f.Close()
			_ = os.Remove(f.Name())
		}
	}()

	if err = msgpack.NewEncoder(f).Encode(payload); err != nil {
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}
	// Атомарная замена
	return os.Rename(f.Name(), p)
}

// Get reads and deserializes a payload from the disk cache. Entries of another
// schema are misses.
func (c *DiskCache) Get(key Digest, out *DiskPayload) (bool, error) {
	if c == nil {
		return false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Open(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	defer f.Close()
	if err := msgpack.NewDecoder(f).Decode(out); err != nil {
		return false, fmt.Errorf("decode cache entry: %w", err)
	}
	return out.Schema == diskCacheSchemaVersion, nil
}

// DropAll invalidates the cache, useful after format changes.
func (c *DiskCache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	// тривиально: переименуем каталог и удалим
	old := c.dir + ".old-" + time.Now().Format("20060102150405")
	if err := os.Rename(c.dir, old); err != nil {
		return err
	}
	if err := os.RemoveAll(old); err != nil {
		return err
	}
	return os.MkdirAll(c.dir, 0o755)
}

// cacheKey: H(schema || tool version || fingerprint || content).
func cacheKey(content Digest, fingerprint, toolVersion string) Digest {
	h := sha256.New()
	_, _ = fmt.Fprintf(h, "%d\x00%s\x00%s\x00", diskCacheSchemaVersion, toolVersion, fingerprint)
	_, _ = h.Write(content[:])
	var out Digest
	copy(out[:], h.Sum(nil))
	return out
}

// toDiskPayload converts the diagnostics of f for caching. Internal
// diagnostics make a result uncacheable: ok is false.
func toDiskPayload(f *source.File, fingerprint string, ds []diag.Diagnostic) (payload *DiskPayload, ok bool) {
	payload = &DiskPayload{
		Schema:      diskCacheSchemaVersion,
		Path:        f.Path,
		Fingerprint: fingerprint,
		ContentHash: f.Hash,
		Diagnostics: make([]CachedDiagnostic, 0, len(ds)),
	}
	for _, d := range ds {
		if d.Internal || d.Primary.File != f.ID {
			return nil, false
		}
		cd := CachedDiagnostic{
			Code:     string(d.Code),
			Severity: uint8(d.Severity),
			Message:  d.Message,
			Start:    d.Primary.Start,
			End:      d.Primary.End,
			Props:    d.Props,
		}
		for _, sp := range d.Secondary {
			if sp.File != f.ID {
				return nil, false
			}
			cd.Secondary = append(cd.Secondary, [2]uint32{sp.Start, sp.End})
		}
		payload.Diagnostics = append(payload.Diagnostics, cd)
	}
	return payload, true
}

// fromDiskPayload rebinds cached diagnostics to file.
func fromDiskPayload(payload *DiskPayload, file source.FileID) []diag.Diagnostic {
	out := make([]diag.Diagnostic, 0, len(payload.Diagnostics))
	for _, cd := range payload.Diagnostics {
		d := diag.Diagnostic{
			Code:     diag.Code(cd.Code),
			Severity: diag.Severity(cd.Severity),
			Message:  cd.Message,
			Primary:  source.Span{File: file, Start: cd.Start, End: cd.End},
			Props:    cd.Props,
		}
		for _, s := range cd.Secondary {
			d.Secondary = append(d.Secondary, source.Span{File: file, Start: s[0], End: s[1]})
		}
		out = append(out, d)
	}
	return out
}
