package cache

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestMemoryCache_SetGet(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)

	if err := c.Set("scarf:v1:abc", []byte("response"), time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, found := c.Get("scarf:v1:abc")
	if !found || !bytes.Equal(got, []byte("response")) {
		t.Errorf("Get = %q, %v", got, found)
	}
	if _, found := c.Get("missing"); found {
		t.Error("Expected miss for unknown key")
	}
}

func TestMemoryCache_Expiry(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)
	_ = c.Set("k", []byte("v"), 10*time.Millisecond)
	time.Sleep(30 * time.Millisecond)
	if _, found := c.Get("k"); found {
		t.Error("Expected expired entry to miss")
	}
}

func TestDiskCache_SetGet(t *testing.T) {
	dir := t.TempDir()
	c := NewDiskCache(dir, time.Minute)

	if err := c.Set("scarf:v1:abc", []byte("persisted"), time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}

	// Colons never reach the filesystem
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != "scarf_v1_abc.cache" {
		t.Errorf("Cache files = %v", entries)
	}

	got, found := c.Get("scarf:v1:abc")
	if !found || !bytes.Equal(got, []byte("persisted")) {
		t.Errorf("Get = %q, %v", got, found)
	}
}

func TestDiskCache_SurvivesNewInstance(t *testing.T) {
	dir := t.TempDir()
	_ = NewDiskCache(dir, time.Minute).Set("k", []byte("v"), time.Minute)

	reopened := NewDiskCache(dir, time.Minute)
	if got, found := reopened.Get("k"); !found || string(got) != "v" {
		t.Errorf("Get after reopen = %q, %v", got, found)
	}
}

func TestDiskCache_Expiry(t *testing.T) {
	dir := t.TempDir()
	c := NewDiskCache(dir, time.Minute)
	_ = c.Set("k", []byte("v"), 10*time.Millisecond)
	time.Sleep(30 * time.Millisecond)

	if _, found := c.Get("k"); found {
		t.Error("Expected expired entry to miss")
	}
	// Expired read removes the file
	if _, err := os.Stat(filepath.Join(dir, "k.cache")); !os.IsNotExist(err) {
		t.Error("Expected expired file to be removed")
	}
}

func TestDiskCache_CorruptFileIsMiss(t *testing.T) {
	dir := t.TempDir()
	c := NewDiskCache(dir, time.Minute)
	if err := os.WriteFile(filepath.Join(dir, "k.cache"), []byte("not json"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, found := c.Get("k"); found {
		t.Error("Expected corrupt entry to miss")
	}
}

func TestLayeredCache_PromotesFromDisk(t *testing.T) {
	dir := t.TempDir()

	// Seed the disk layer directly, as a previous process would have
	_ = NewDiskCache(dir, time.Minute).Set("k", []byte("v"), time.Minute)

	layered := NewLayeredCache(time.Minute, dir, time.Minute)
	got, found := layered.Get("k")
	if !found || string(got) != "v" {
		t.Fatalf("Get = %q, %v", got, found)
	}

	// Remove the disk file; the promoted memory copy still serves
	_ = NewDiskCache(dir, time.Minute).Delete("k")
	if got, found := layered.Get("k"); !found || string(got) != "v" {
		t.Errorf("Get after disk delete = %q, %v", got, found)
	}
}

func TestLayeredCache_SetWritesBothLayers(t *testing.T) {
	dir := t.TempDir()
	layered := NewLayeredCache(time.Minute, dir, time.Minute)

	if err := layered.Set("k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if got, found := NewDiskCache(dir, time.Minute).Get("k"); !found || string(got) != "v" {
		t.Errorf("Disk layer = %q, %v", got, found)
	}
}
