package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestListManagerRead(t *testing.T) {
	list := filepath.Join(t.TempDir(), "captchas.txt")
	content := "a.png\n\n# skipped\n  b.png  \na.png\nc.png\n"
	if err := os.WriteFile(list, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	lm := NewListManager()
	lm.AddLine("c.png")
	if err := lm.Read(list); err != nil {
		t.Fatal(err)
	}

	if lm.Count() != 3 {
		t.Fatalf("count = %d", lm.Count())
	}

	var got []string
	for {
		item, ok := lm.Next()
		if !ok {
			break
		}
		got = append(got, item.Line())
	}

	want := []string{"c.png", "a.png", "b.png"}
	if len(got) != len(want) {
		t.Fatalf("got %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("item %d = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestListManagerReadMissing(t *testing.T) {
	if err := NewListManager().Read(filepath.Join(t.TempDir(), "missing.txt")); err == nil {
		t.Fatal("expected error")
	}
}
