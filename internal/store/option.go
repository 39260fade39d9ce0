package store

import "context"

// OptionStore persists site-wide name/value settings.
type OptionStore interface {
	// Get returns one option. Returns ErrOptionNotFound if it is not set.
	Get(ctx context.Context, name string) (string, error)

	// GetMany returns the options that are set among names.
	GetMany(ctx context.Context, names []string) (map[string]string, error)

	// Set creates or replaces every option in values.
	Set(ctx context.Context, values map[string]string) error
}
