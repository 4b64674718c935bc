//go:build js && wasm
// +build js,wasm

package store

import (
	"fmt"
	"syscall/js"
)

// LocalStorage is a Backend over a Web Storage object
// (window.localStorage or window.sessionStorage).
type LocalStorage struct {
	name string
}

// NewLocalStorage binds to the named global storage object.
func NewLocalStorage(name string) *LocalStorage {
	return &LocalStorage{name: name}
}

// storage resolves the JS object on every call; some browsers throw on
// property access when storage is blocked.
func (l *LocalStorage) storage() (v js.Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrUnavailable, r)
		}
	}()
	v = js.Global().Get(l.name)
	if v.IsUndefined() || v.IsNull() {
		return js.Value{}, ErrUnavailable
	}
	return v, nil
}

// call invokes method on the storage object, converting thrown JS
// exceptions (QuotaExceededError, SecurityError) into Go errors.
func (l *LocalStorage) call(method string, args ...any) (res js.Value, err error) {
	st, err := l.storage()
	if err != nil {
		return js.Value{}, err
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("localStorage.%s: %v", method, r)
		}
	}()
	return st.Call(method, args...), nil
}

func (l *LocalStorage) Get(key string) (string, bool, error) {
	v, err := l.call("getItem", key)
	if err != nil {
		return "", false, err
	}
	if v.IsNull() || v.IsUndefined() {
		return "", false, nil
	}
	return v.String(), true, nil
}

func (l *LocalStorage) Set(key, value string) error {
	_, err := l.call("setItem", key, value)
	return err
}

func (l *LocalStorage) Remove(key string) error {
	_, err := l.call("removeItem", key)
	return err
}

func (l *LocalStorage) Keys() ([]string, error) {
	st, err := l.storage()
	if err != nil {
		return nil, err
	}
	n := st.Get("length").Int()
	keys := make([]string, 0, n)
	for i := 0; i < n; i++ {
		v, err := l.call("key", i)
		if err != nil {
			return nil, err
		}
		if v.Type() == js.TypeString {
			keys = append(keys, v.String())
		}
	}
	return keys, nil
}

var _ Backend = (*LocalStorage)(nil)
