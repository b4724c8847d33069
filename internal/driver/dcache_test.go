package driver

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"cbrace/internal/project"
)

func TestDiskCachePutGet(t *testing.T) {
	cache, err := OpenDiskCacheAt(filepath.Join(t.TempDir(), "cbrace"))
	if err != nil {
		t.Fatalf("OpenDiskCacheAt: %v", err)
	}
	key := project.Sum([]byte("int x;\n"))
	stored := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	var miss CachePayload
	if hit, err := cache.Get(key, &miss); err != nil || hit {
		t.Fatalf("expected miss, got hit=%v err=%v", hit, err)
	}

	in := &CachePayload{Path: "main.c", Output: project.Sum([]byte("x")), Changed: true, Stored: stored}
	if err := cache.Put(key, in); err != nil {
		t.Fatalf("Put: %v", err)
	}
	var out CachePayload
	hit, err := cache.Get(key, &out)
	if err != nil || !hit {
		t.Fatalf("expected hit, got hit=%v err=%v", hit, err)
	}
	if out.Path != "main.c" || out.Output != in.Output || !out.Changed || !out.Stored.Equal(stored) {
		t.Errorf("payload mismatch: %+v", out)
	}

	// temp-файлы не остаются рядом с записью
	entries, err := os.ReadDir(filepath.Dir(cache.pathFor(key)))
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("expected a single cache entry, found %d", len(entries))
	}
}

func TestDiskCacheSchemaMismatch(t *testing.T) {
	cache, err := OpenDiskCacheAt(t.TempDir())
	if err != nil {
		t.Fatalf("OpenDiskCacheAt: %v", err)
	}
	key := project.Sum([]byte("k"))
	p := cache.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	data, err := msgpack.Marshal(&CachePayload{Schema: diskCacheSchemaVersion + 1, Path: "old.c"})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if err := os.WriteFile(p, data, 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	var out CachePayload
	if hit, err := cache.Get(key, &out); err != nil || hit {
		t.Errorf("old schema should be a miss, got hit=%v err=%v", hit, err)
	}
}

func TestDiskCacheDropAll(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "cache")
	cache, err := OpenDiskCacheAt(dir)
	if err != nil {
		t.Fatalf("OpenDiskCacheAt: %v", err)
	}
	key := project.Sum([]byte("k"))
	if err := cache.Put(key, &CachePayload{Path: "a.c"}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := cache.DropAll(); err != nil {
		t.Fatalf("DropAll: %v", err)
	}
	var out CachePayload
	if hit, _ := cache.Get(key, &out); hit {
		t.Error("expected miss after DropAll")
	}
	if _, err := os.Stat(dir); err != nil {
		t.Errorf("cache dir should be recreated: %v", err)
	}
}

func TestNilDiskCache(t *testing.T) {
	var cache *DiskCache
	if err := cache.Put(project.Digest{}, &CachePayload{}); err != nil {
		t.Errorf("Put on nil cache: %v", err)
	}
	var out CachePayload
	if hit, err := cache.Get(project.Digest{}, &out); hit || err != nil {
		t.Errorf("Get on nil cache: hit=%v err=%v", hit, err)
	}
	if cache.Dir() != "" {
		t.Error("nil cache has no dir")
	}
}
