package pidfile

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestWriteReadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.pid")
	in := Record{PID: 4242, StartUnix: 1712345678}
	if err := Write(path, in); err != nil {
		t.Fatalf("Write: %v", err)
	}
	out, err := Read(path)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if out != in {
		t.Fatalf("round trip mismatch: got %+v want %+v", out, in)
	}
	// First line must be the bare decimal PID so non-Go tooling can read it.
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	first, _, _ := strings.Cut(string(b), "\n")
	if first != "4242" {
		t.Fatalf("first line should be the pid, got %q", first)
	}
}

func TestWriteWithoutStartTime(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.pid")
	if err := Write(path, Record{PID: 99}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	out, err := Read(path)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if out.PID != 99 || out.StartUnix != 0 {
		t.Fatalf("unexpected record: %+v", out)
	}
}

func TestWriteRejectsInvalidPID(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.pid")
	if err := Write(path, Record{PID: 0}); err == nil {
		t.Fatal("expected error for pid 0")
	}
	if err := Write(path, Record{PID: -1}); err == nil {
		t.Fatal("expected error for negative pid")
	}
}

func TestWriteCreatesParentDirs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run", "nested", "app.pid")
	if err := Write(path, Record{PID: 7}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if _, err := Read(path); err != nil {
		t.Fatalf("Read: %v", err)
	}
}

func TestReadLegacyFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "legacy.pid")
	if err := os.WriteFile(path, []byte("12345\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	rec, err := Read(path)
	if err != nil {
		t.Fatalf("Read legacy: %v", err)
	}
	if rec.PID != 12345 || rec.StartUnix != 0 {
		t.Fatalf("unexpected record: %+v", rec)
	}
}

func TestReadMissingFileIsNotExist(t *testing.T) {
	_, err := Read(filepath.Join(t.TempDir(), "absent.pid"))
	if !os.IsNotExist(err) {
		t.Fatalf("want not-exist error, got %v", err)
	}
}

func TestReadCorruptContent(t *testing.T) {
	for _, content := range []string{"", "abc", "-5", "0\n"} {
		path := filepath.Join(t.TempDir(), "bad.pid")
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatal(err)
		}
		if _, err := Read(path); err == nil {
			t.Fatalf("content %q: expected error", content)
		}
	}
}

func TestReadIgnoresUnparsableMeta(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.pid")
	if err := os.WriteFile(path, []byte("321\nnot-json\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	rec, err := Read(path)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if rec.PID != 321 || rec.StartUnix != 0 {
		t.Fatalf("unexpected record: %+v", rec)
	}
}

func TestRemoveIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.pid")
	if err := Write(path, Record{PID: 5}); err != nil {
		t.Fatal(err)
	}
	if err := Remove(path); err != nil {
		t.Fatalf("first Remove: %v", err)
	}
	if err := Remove(path); err != nil {
		t.Fatalf("second Remove should be a no-op: %v", err)
	}
}
