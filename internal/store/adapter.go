package store

import (
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// Outcome classifies a read. Only Found carries a value.
type Outcome int

const (
	Found Outcome = iota
	Missing
	Corrupt
	Unavailable
)

func (o Outcome) String() string {
	switch o {
	case Found:
		return "found"
	case Missing:
		return "missing"
	case Corrupt:
		return "corrupt"
	case Unavailable:
		return "unavailable"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Adapter is the best-effort persistence adapter every store goes through.
// It never panics on backend failure; reads degrade to an Outcome and
// writes return an error the caller may ignore.
type Adapter struct {
	backend Backend
	log     *zap.Logger
}

// NewAdapter wraps a backend. A nil backend behaves as unavailable storage.
func NewAdapter(b Backend, log *zap.Logger) *Adapter {
	if log == nil {
		log = zap.NewNop()
	}
	return &Adapter{backend: b, log: log}
}

// Backend returns the wrapped backend.
func (a *Adapter) Backend() Backend {
	return a.backend
}

// Probe writes and removes a sentinel key and reports whether storage is usable.
func (a *Adapter) Probe() bool {
	if a.backend == nil {
		return false
	}
	if err := guard(func() error { return a.backend.Set(probeKey, "1") }); err != nil {
		a.log.Warn("storage probe failed", zap.Error(err))
		return false
	}
	if err := guard(func() error { return a.backend.Remove(probeKey) }); err != nil {
		a.log.Warn("storage probe cleanup failed", zap.Error(err))
		return false
	}
	return true
}

// ReadRaw returns the stored string for key.
func (a *Adapter) ReadRaw(key string) (string, Outcome) {
	if a.backend == nil {
		return "", Unavailable
	}
	var (
		v  string
		ok bool
	)
	err := guard(func() error {
		var err error
		v, ok, err = a.backend.Get(key)
		return err
	})
	if err != nil {
		a.log.Warn("storage read failed", zap.String("key", key), zap.Error(err))
		return "", Unavailable
	}
	if !ok {
		return "", Missing
	}
	return v, Found
}

// WriteRaw stores value under key.
func (a *Adapter) WriteRaw(key, value string) error {
	if a.backend == nil {
		return ErrUnavailable
	}
	if err := guard(func() error { return a.backend.Set(key, value) }); err != nil {
		a.log.Warn("storage write failed", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

// Remove deletes key. Removing a missing key is not an error.
func (a *Adapter) Remove(key string) error {
	if a.backend == nil {
		return ErrUnavailable
	}
	if err := guard(func() error { return a.backend.Remove(key) }); err != nil {
		a.log.Warn("storage remove failed", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("remove %s: %w", key, err)
	}
	return nil
}

// ReadJSON decodes the value under key into dst. dst is left untouched
// unless the outcome is Found, so a pre-filled dst acts as the fallback.
// An empty string or JSON null reads as Missing.
func (a *Adapter) ReadJSON(key string, dst any) Outcome {
	raw, outcome := a.ReadRaw(key)
	if outcome != Found {
		return outcome
	}
	if raw == "" || raw == "null" {
		return Missing
	}
	if !json.Valid([]byte(raw)) {
		a.log.Warn("corrupt json in storage", zap.String("key", key))
		return Corrupt
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		a.log.Warn("json does not match expected shape", zap.String("key", key), zap.Error(err))
		return Corrupt
	}
	return Found
}

// WriteJSON encodes v and stores it under key.
func (a *Adapter) WriteJSON(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return a.WriteRaw(key, string(data))
}

// ReadFlag reports whether key holds "1".
func (a *Adapter) ReadFlag(key string) bool {
	v, outcome := a.ReadRaw(key)
	return outcome == Found && v == "1"
}

// WriteFlag stores "1" or "0" under key.
func (a *Adapter) WriteFlag(key string, on bool) error {
	v := "0"
	if on {
		v = "1"
	}
	return a.WriteRaw(key, v)
}

// errBackendPanic wraps a panic out of a backend call.
var errBackendPanic = errors.New("store: backend panicked")

// guard converts a backend panic, such as a JS exception surfaced by
// syscall/js, into an error.
func guard(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", errBackendPanic, r)
		}
	}()
	return fn()
}
