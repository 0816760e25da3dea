// Package preference persists the issues page default: show only the
// current user's issues, or all of them.
package preference

import (
	"context"
	"fmt"
)

// IssuesDefaultKey is the store key holding the issues page default.
const IssuesDefaultKey = "sonarqube.issues.default"

// Sentinel values stored under IssuesDefaultKey.
const (
	ModeMy  = "my"
	ModeAll = "all"
)

// Store is the key-value contract the preference helpers need.
type Store interface {
	GetPreference(ctx context.Context, key string) (string, bool, error)
	SetPreference(ctx context.Context, key, value string) error
}

// IsMySet reports whether "my issues" is the saved default. A missing or
// unrecognized value means all issues.
func IsMySet(ctx context.Context, s Store) (bool, error) {
	value, _, err := s.GetPreference(ctx, IssuesDefaultKey)
	if err != nil {
		return false, fmt.Errorf("read issues default: %w", err)
	}
	return value == ModeMy, nil
}

// SaveMyIssues records the issues page default.
func SaveMyIssues(ctx context.Context, s Store, my bool) error {
	value := ModeAll
	if my {
		value = ModeMy
	}
	if err := s.SetPreference(ctx, IssuesDefaultKey, value); err != nil {
		return fmt.Errorf("save issues default: %w", err)
	}
	return nil
}

// ParseMode maps a user-supplied mode to the "my issues" flag.
func ParseMode(mode string) (bool, error) {
	switch mode {
	case ModeMy:
		return true, nil
	case ModeAll:
		return false, nil
	}
	return false, fmt.Errorf("invalid issues mode %q (use %q or %q)", mode, ModeMy, ModeAll)
}
