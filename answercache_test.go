package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestAnswerCache(t *testing.T) {
	cache, err := newAnswerCache()
	if err != nil {
		t.Fatal(err)
	}
	defer cache.Close()

	if _, found := cache.Get("k"); found {
		t.Fatal("empty cache returned an answer")
	}

	cache.Set("k", "answer")
	if answer, found := cache.Get("k"); !found || answer != "answer" {
		t.Errorf("Get = %q, %t", answer, found)
	}
}

func TestFingerprint(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.png")
	b := filepath.Join(dir, "b.png")
	for _, path := range []string{a, b} {
		if err := os.WriteFile(path, []byte("same image"), 0644); err != nil {
			t.Fatal(err)
		}
	}

	fa, err := fingerprint(a, false)
	if err != nil {
		t.Fatal(err)
	}
	fb, err := fingerprint(b, false)
	if err != nil {
		t.Fatal(err)
	}
	if fa != fb {
		t.Errorf("same content, different fingerprints %s %s", fa, fb)
	}

	fc, err := fingerprint(a, true)
	if err != nil {
		t.Fatal(err)
	}
	if fc == fa {
		t.Error("case flag must change the fingerprint")
	}

	if _, err := fingerprint(filepath.Join(dir, "missing.png"), false); err == nil {
		t.Error("expected error for missing file")
	}
}
