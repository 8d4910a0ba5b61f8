package filterlist

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeTempFile(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "list.txt")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeTempFile(t, "1a86:7523\n\n  0403:6001  \n\t\n/dev/ttyUSB9\r\n")

	set, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if set.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", set.Len())
	}
	for _, want := range []string{"1a86:7523", "0403:6001", "/dev/ttyUSB9"} {
		if !set.Contains(want) {
			t.Errorf("set missing entry %q", want)
		}
	}
	if set.Contains("nope") {
		t.Error("set contains unexpected entry")
	}
}

func TestLoadEmptyFile(t *testing.T) {
	path := writeTempFile(t, "\n\n")

	set, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !set.Empty() {
		t.Error("expected empty set for a blank-lines-only file")
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "does-not-exist.txt"))
	if !errors.Is(err, ErrMissingFile) {
		t.Fatalf("err = %v, want ErrMissingFile", err)
	}
}

func TestLoadAllowlistMissingIsFatal(t *testing.T) {
	_, err := LoadAllowlist(filepath.Join(t.TempDir(), "missing.txt"))
	if err == nil {
		t.Fatal("expected error for missing allowlist")
	}
	if !errors.Is(err, ErrMissingFile) {
		t.Errorf("err = %v, want wrapping ErrMissingFile", err)
	}
}

type recordingLogger struct {
	infos []string
}

func (r *recordingLogger) Info(msg string, args ...any) {
	r.infos = append(r.infos, msg)
}

func TestLoadDenylistOrEmptyMissingIsDemoted(t *testing.T) {
	log := &recordingLogger{}
	set, err := LoadDenylistOrEmpty(filepath.Join(t.TempDir(), "missing.txt"), log)
	if err != nil {
		t.Fatalf("LoadDenylistOrEmpty: %v", err)
	}
	if !set.Empty() {
		t.Error("expected empty denylist when file is missing")
	}
	if len(log.infos) != 1 {
		t.Errorf("expected exactly one info log, got %d", len(log.infos))
	}
}

func TestLoadDenylistOrEmptyPresent(t *testing.T) {
	path := writeTempFile(t, "/dev/ttyUSB9\n")
	log := &recordingLogger{}
	set, err := LoadDenylistOrEmpty(path, log)
	if err != nil {
		t.Fatalf("LoadDenylistOrEmpty: %v", err)
	}
	if !set.Contains("/dev/ttyUSB9") {
		t.Error("expected denylist to contain the entry from the file")
	}
	if len(log.infos) != 0 {
		t.Error("expected no info log when the file is present")
	}
}
