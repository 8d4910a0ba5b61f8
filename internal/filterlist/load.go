package filterlist

import (
	"errors"
	"fmt"
)

// InfoLogger is the minimal logging surface LoadDenylistOrEmpty needs
// to report a missing denylist file at info level without importing
// the gwlog package and risking a dependency cycle.
type InfoLogger interface {
	Info(msg string, args ...any)
}

// LoadAllowlist loads the hardware-ID allowlist. A missing file is a
// fatal configuration error (spec § 4.2, § 7): the caller is expected
// to treat a non-nil error here as startup-fatal.
func LoadAllowlist(path string) (Set, error) {
	set, err := Load(path)
	if err != nil {
		return Set{}, fmt.Errorf("load allowlist: %w", err)
	}
	return set, nil
}

// LoadDenylistOrEmpty loads the port-path denylist. A missing file is
// logged at info and treated as an empty denylist rather than being
// fatal (spec § 4.2).
func LoadDenylistOrEmpty(path string, log InfoLogger) (Set, error) {
	set, err := Load(path)
	if err == nil {
		return set, nil
	}
	if errors.Is(err, ErrMissingFile) {
		log.Info("denylist file not found, treating as empty", "path", path)
		return Set{}, nil
	}
	return Set{}, fmt.Errorf("load denylist: %w", err)
}
