// Package config loads the gateway's startup configuration snapshot
// from the config file named on the command line (spec § 3, § 6).
package config

import (
	"errors"
	"fmt"

	"github.com/spf13/viper"
)

// ErrMissingKey and ErrMalformedKey categorize a configuration failure
// (spec § 7's "config" error kind): a missing required key, or a
// malformed value. A missing or unreadable config file is reported with
// viper's read error instead. All are fatal at startup.
var (
	ErrMissingKey   = errors.New("config: missing required key")
	ErrMalformedKey = errors.New("config: malformed value")
)

// Snapshot is the gateway's immutable startup configuration, read once
// and never mutated afterward (spec § 3).
type Snapshot struct {
	LoggingActive             bool
	ScanIntervalMs            uint
	WaitBeforeCommunicationMs uint
	BaudRate                  uint
	MessageDelimiter          string
	CommandToGetDeviceID      string
	MessageTypeForIDs         string
}

// The required keys, exactly as spec § 6 names them.
const (
	keyLoggingActive  = "LOGGING_ACTIVE"
	keyScanInterval   = "SCAN_INTERVAL"
	keyWaitBeforeComm = "WAIT_BEFORE_COMMUNICATION"
	keyBaudRate       = "BAUD_RATE"
	keyMsgDelimiter   = "MESSAGE_DELIMITER"
	keyCommandGetID   = "COMMAND_GETID"
	keyMsgTypeID      = "MESSAGE_TYPE_ID"
)

// Load reads path (any format viper recognizes from its extension —
// INI, YAML, JSON, TOML), checks that every required key is present,
// and returns a Snapshot. A missing or unreadable file is returned as
// viper's read error, a missing key as an error wrapping ErrMissingKey,
// and a zero BAUD_RATE or an empty string value as an error wrapping
// ErrMalformedKey. Values are read with viper's converting getters: a
// value that does not convert to its key's type reads as the zero
// value and is not reported unless that zero value is itself rejected.
// The caller is expected to treat any non-nil error as startup-fatal
// (spec § 7).
func Load(path string) (Snapshot, error) {
	v := viper.New()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return Snapshot{}, fmt.Errorf("read config %s: %w", path, err)
	}

	for _, key := range []string{
		keyLoggingActive, keyScanInterval, keyWaitBeforeComm,
		keyBaudRate, keyMsgDelimiter, keyCommandGetID, keyMsgTypeID,
	} {
		if !v.IsSet(key) {
			return Snapshot{}, fmt.Errorf("%s: %w", key, ErrMissingKey)
		}
	}

	snap := Snapshot{
		LoggingActive:             v.GetBool(keyLoggingActive),
		ScanIntervalMs:            v.GetUint(keyScanInterval),
		WaitBeforeCommunicationMs: v.GetUint(keyWaitBeforeComm),
		BaudRate:                  v.GetUint(keyBaudRate),
		MessageDelimiter:          v.GetString(keyMsgDelimiter),
		CommandToGetDeviceID:      v.GetString(keyCommandGetID),
		MessageTypeForIDs:         v.GetString(keyMsgTypeID),
	}

	if err := snap.validate(); err != nil {
		return Snapshot{}, err
	}

	return snap, nil
}

func (s Snapshot) validate() error {
	if s.BaudRate == 0 {
		return fmt.Errorf("%s: %w: must be positive", keyBaudRate, ErrMalformedKey)
	}
	if s.MessageDelimiter == "" {
		return fmt.Errorf("%s: %w: must be non-empty", keyMsgDelimiter, ErrMalformedKey)
	}
	if s.CommandToGetDeviceID == "" {
		return fmt.Errorf("%s: %w: must be non-empty", keyCommandGetID, ErrMalformedKey)
	}
	if s.MessageTypeForIDs == "" {
		return fmt.Errorf("%s: %w: must be non-empty", keyMsgTypeID, ErrMalformedKey)
	}
	return nil
}
