// Package cache stores intermediate results as JSON files keyed by the
// inputs that produced them.
package cache

import (
	"crypto/sha1"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/coastal-guardian/shoreline-stats/internal/log"
)

type Entry[T any] struct {
	Data      T         `json:"data"`
	CreatedAt time.Time `json:"created_at"`
	Checksum  string    `json:"checksum"`
}

type Service[T any] interface {
	Get(key string) (T, bool)
	Set(key string, data T) error
}

// FileCache keeps one JSON file per key. Entries whose checksum does not
// match their data are treated as missing.
type FileCache[T any] struct {
	dir string
}

func NewFileCache[T any](dir string) *FileCache[T] {
	return &FileCache[T]{dir: dir}
}

func (fc *FileCache[T]) Dir() string {
	return fc.dir
}

// GenerateKey hashes the printed form of params.
func GenerateKey(params ...any) string {
	h := sha1.New()
	for _, param := range params {
		fmt.Fprintf(h, "%v_", param)
	}
	return hex.EncodeToString(h.Sum(nil))
}

// LayerDigest fingerprints a raster layer bit for bit, NaN included.
func LayerDigest(layer []float64) string {
	h := sha256.New()
	var buf [8]byte
	for _, v := range layer {
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(v))
		h.Write(buf[:])
	}
	return hex.EncodeToString(h.Sum(nil))
}

func (fc *FileCache[T]) Get(key string) (T, bool) {
	var zero T
	data, err := os.ReadFile(fc.path(key))
	if err != nil {
		return zero, false
	}

	var entry Entry[T]
	if err := json.Unmarshal(data, &entry); err != nil {
		log.Warnw("discarding unreadable cache entry", "key", key, "error", err)
		return zero, false
	}
	if entry.Checksum != checksum(entry.Data) {
		log.Warnw("discarding corrupted cache entry", "key", key)
		return zero, false
	}
	return entry.Data, true
}

// Set writes through a temporary file so readers never see a partial entry.
func (fc *FileCache[T]) Set(key string, data T) error {
	if err := os.MkdirAll(fc.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	payload, err := json.Marshal(Entry[T]{
		Data:      data,
		CreatedAt: time.Now(),
		Checksum:  checksum(data),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal cache entry: %w", err)
	}

	file := fc.path(key)
	tmp := file + ".tmp"
	if err := os.WriteFile(tmp, payload, 0o644); err != nil {
		return fmt.Errorf("failed to write temp cache file: %w", err)
	}
	if err := os.Rename(tmp, file); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to rename temp cache file: %w", err)
	}
	return nil
}

func (fc *FileCache[T]) path(key string) string {
	return filepath.Join(fc.dir, key+".json")
}

func checksum[T any](data T) string {
	payload, _ := json.Marshal(data)
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}
