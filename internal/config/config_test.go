package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "gateway.yaml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

const validYAML = `
LOGGING_ACTIVE: true
SCAN_INTERVAL: 5000
WAIT_BEFORE_COMMUNICATION: 200
BAUD_RATE: 9600
MESSAGE_DELIMITER: ","
COMMAND_GETID: "?id"
MESSAGE_TYPE_ID: "ID"
`

func TestLoadValid(t *testing.T) {
	path := writeConfig(t, validYAML)

	snap, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	want := Snapshot{
		LoggingActive:             true,
		ScanIntervalMs:            5000,
		WaitBeforeCommunicationMs: 200,
		BaudRate:                  9600,
		MessageDelimiter:          ",",
		CommandToGetDeviceID:      "?id",
		MessageTypeForIDs:         "ID",
	}
	if snap != want {
		t.Errorf("Load() = %+v, want %+v", snap, want)
	}
}

func TestLoadMissingKey(t *testing.T) {
	path := writeConfig(t, `
LOGGING_ACTIVE: true
SCAN_INTERVAL: 5000
WAIT_BEFORE_COMMUNICATION: 200
BAUD_RATE: 9600
MESSAGE_DELIMITER: ","
COMMAND_GETID: "?id"
`)

	_, err := Load(path)
	if !errors.Is(err, ErrMissingKey) {
		t.Fatalf("err = %v, want ErrMissingKey", err)
	}
}

func TestLoadZeroBaudIsMalformed(t *testing.T) {
	path := writeConfig(t, `
LOGGING_ACTIVE: true
SCAN_INTERVAL: 5000
WAIT_BEFORE_COMMUNICATION: 200
BAUD_RATE: 0
MESSAGE_DELIMITER: ","
COMMAND_GETID: "?id"
MESSAGE_TYPE_ID: "ID"
`)

	_, err := Load(path)
	if !errors.Is(err, ErrMalformedKey) {
		t.Fatalf("err = %v, want ErrMalformedKey", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	if err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestLoadScanIntervalZeroIsValid(t *testing.T) {
	// scan_interval_ms == 0 means "one-shot scan", not malformed.
	path := writeConfig(t, `
LOGGING_ACTIVE: false
SCAN_INTERVAL: 0
WAIT_BEFORE_COMMUNICATION: 0
BAUD_RATE: 9600
MESSAGE_DELIMITER: ","
COMMAND_GETID: "?id"
MESSAGE_TYPE_ID: "ID"
`)

	snap, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if snap.ScanIntervalMs != 0 {
		t.Errorf("ScanIntervalMs = %d, want 0", snap.ScanIntervalMs)
	}
}
