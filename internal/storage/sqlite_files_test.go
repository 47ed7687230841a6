package storage

import (
	"os"
	"path/filepath"
	"testing"
)

func TestHasLocalDBFilesReturnsFalseWhenMissing(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "paycycle.db")
	exists, err := hasLocalDBFiles(path)
	if err != nil {
		t.Fatalf("hasLocalDBFiles() unexpected error: %v", err)
	}
	if exists {
		t.Fatal("hasLocalDBFiles() = true, want false")
	}
}

func TestHasLocalDBFilesDetectsPrimaryDB(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "paycycle.db")
	if err := os.WriteFile(path, []byte("db"), 0o600); err != nil {
		t.Fatalf("write db file: %v", err)
	}

	exists, err := hasLocalDBFiles(path)
	if err != nil {
		t.Fatalf("hasLocalDBFiles() unexpected error: %v", err)
	}
	if !exists {
		t.Fatal("hasLocalDBFiles() = false, want true")
	}
}

func TestHasLocalDBFilesDetectsWalOrShm(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "paycycle.db")
	if err := os.WriteFile(path+"-wal", []byte("wal"), 0o600); err != nil {
		t.Fatalf("write wal file: %v", err)
	}

	exists, err := hasLocalDBFiles(path)
	if err != nil {
		t.Fatalf("hasLocalDBFiles() unexpected error: %v", err)
	}
	if !exists {
		t.Fatal("hasLocalDBFiles() = false, want true")
	}
}

func TestResetLocalDBFilesRemovesAllVariants(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "paycycle.db")
	for _, p := range []string{path, path + "-wal", path + "-shm"} {
		if err := os.WriteFile(p, []byte("x"), 0o600); err != nil {
			t.Fatalf("write %s: %v", p, err)
		}
	}

	if err := Wipe(Config{Mode: ModePlain, Path: path}); err != nil {
		t.Fatalf("Wipe() unexpected error: %v", err)
	}
	exists, err := hasLocalDBFiles(path)
	if err != nil {
		t.Fatalf("hasLocalDBFiles() unexpected error: %v", err)
	}
	if exists {
		t.Fatal("hasLocalDBFiles() = true after Wipe, want false")
	}
}

func TestParseMode(t *testing.T) {
	t.Parallel()

	cases := map[string]Mode{"": ModePlain, "plain": ModePlain, " Secure ": ModeSecure}
	for raw, want := range cases {
		got, err := ParseMode(raw)
		if err != nil {
			t.Fatalf("ParseMode(%q) unexpected error: %v", raw, err)
		}
		if got != want {
			t.Fatalf("ParseMode(%q) = %q, want %q", raw, got, want)
		}
	}
	if _, err := ParseMode("cloud"); err == nil {
		t.Fatal("ParseMode(\"cloud\") error = nil, want non-nil")
	}
}
