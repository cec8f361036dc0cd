//go:build js || wasm

package spectraldna

import "errors"

// WebAssembly builds have no database driver; callers supply one with
// WithStorage.
func openStorage(cfg *Config) (Storage, error) {
	return nil, errors.New("no storage backend available in this build; use WithStorage")
}
