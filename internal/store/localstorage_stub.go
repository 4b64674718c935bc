//go:build !js || !wasm
// +build !js !wasm

package store

// LocalStorage is a stub for non-WASM builds; every call reports
// ErrUnavailable.
type LocalStorage struct {
	name string
}

// NewLocalStorage returns the stub backend.
func NewLocalStorage(name string) *LocalStorage {
	return &LocalStorage{name: name}
}

func (l *LocalStorage) Get(string) (string, bool, error) { return "", false, ErrUnavailable }
func (l *LocalStorage) Set(string, string) error         { return ErrUnavailable }
func (l *LocalStorage) Remove(string) error              { return ErrUnavailable }
func (l *LocalStorage) Keys() ([]string, error)          { return nil, ErrUnavailable }

var _ Backend = (*LocalStorage)(nil)
