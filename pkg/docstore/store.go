// Package docstore maintains the Index of live documents and their content
// payloads. Every Index mutation is a read-modify-write of the whole blob,
// serialized by the store mutex.
package docstore

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/eternalheli/apollodocs/internal/store"
	"github.com/eternalheli/apollodocs/pkg/clock"
)

const (
	// DefaultTitle names documents created without an explicit title.
	DefaultTitle = "Apollo Document"
	// MaxTitleLen caps titles, in runes.
	MaxTitleLen = 120
)

// ErrNotFound is returned when an id has no Index entry.
var ErrNotFound = errors.New("docstore: document not found")

// Store is the Document Index & Content Store.
type Store struct {
	mu      sync.Mutex
	adapter *store.Adapter
	index   store.Catalog[store.DocumentMeta]
	clock   clock.Clock
	log     *zap.Logger
	newID   func() string
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the time source.
func WithClock(c clock.Clock) Option {
	return func(s *Store) { s.clock = c }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Store) { s.log = l.Named("docstore") }
}

// WithIDSource overrides id generation.
func WithIDSource(f func() string) Option {
	return func(s *Store) { s.newID = f }
}

// New creates a store over the adapter.
func New(a *store.Adapter, opts ...Option) *Store {
	s := &Store{
		adapter: a,
		index:   store.NewJSONCatalog[store.DocumentMeta](a, store.KeyIndex),
		clock:   clock.Real(),
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.newID == nil {
		s.newID = func() string { return NewID(s.clock) }
	}
	return s
}

// Adapter returns the persistence adapter the store writes through.
func (s *Store) Adapter() *store.Adapter {
	return s.adapter
}

// Clock returns the store's time source.
func (s *Store) Clock() clock.Clock {
	return s.clock
}

func (s *Store) now() int64 {
	return clock.NowMillis(s.clock)
}

func (s *Store) saveIndex(idx []store.DocumentMeta) {
	if err := s.index.Save(idx); err != nil {
		s.log.Warn("index not persisted", zap.Error(err))
	}
}

func find(idx []store.DocumentMeta, id string) int {
	return slices.IndexFunc(idx, func(d store.DocumentMeta) bool { return d.ID == id })
}

// =============================================================================
// Index
// =============================================================================

// EnsureMeta returns the entry for id, creating and persisting one with
// fallbackTitle if it does not exist.
func (s *Store) EnsureMeta(id, fallbackTitle string) store.DocumentMeta {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ensureLocked(id, fallbackTitle)
}

func (s *Store) ensureLocked(id, fallbackTitle string) store.DocumentMeta {
	idx := s.index.Load()
	if i := find(idx, id); i >= 0 {
		return idx[i]
	}
	if fallbackTitle == "" {
		fallbackTitle = DefaultTitle
	}
	now := s.now()
	doc := store.DocumentMeta{ID: id, Title: fallbackTitle, CreatedAt: now, UpdatedAt: now}
	idx = append(idx, doc)
	s.saveIndex(idx)
	return doc
}

// Create adds a new document with a fresh id and seeds the welcome content.
func (s *Store) Create(title string) store.DocumentMeta {
	s.mu.Lock()
	defer s.mu.Unlock()

	title = cmp.Or(NormalizeTitle(title), DefaultTitle)
	idx := s.index.Load()
	id := s.uniqueIDLocked(idx)
	now := s.now()
	doc := store.DocumentMeta{ID: id, Title: title, CreatedAt: now, UpdatedAt: now}
	idx = append(idx, doc)
	s.saveIndex(idx)

	if err := s.adapter.WriteRaw(store.ContentKey(id), WelcomeContent); err != nil {
		s.log.Warn("welcome content not seeded", zap.String("id", id), zap.Error(err))
	}
	s.log.Info("document created", zap.String("id", id))
	return doc
}

// uniqueIDLocked draws ids until one is unused by the Index.
func (s *Store) uniqueIDLocked(idx []store.DocumentMeta) string {
	for {
		id := s.newID()
		if find(idx, id) < 0 {
			return id
		}
	}
}

// Patch is a partial metadata update.
type Patch struct {
	Title *string
}

// UpdateMeta merges patch into the entry for id, creating it if absent,
// and bumps UpdatedAt.
func (s *Store) UpdateMeta(id string, patch Patch) store.DocumentMeta {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.index.Load()
	now := s.now()
	i := find(idx, id)
	if i < 0 {
		title := DefaultTitle
		if patch.Title != nil {
			title = *patch.Title
		}
		idx = append(idx, store.DocumentMeta{ID: id, Title: title, CreatedAt: now})
		i = len(idx) - 1
	}
	if patch.Title != nil {
		idx[i].Title = *patch.Title
	}
	idx[i].UpdatedAt = now
	s.saveIndex(idx)
	return idx[i]
}

// Touch bumps UpdatedAt. Missing metadata is recreated so an autosave never
// fails just because the entry was lost.
func (s *Store) Touch(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.index.Load()
	if i := find(idx, id); i >= 0 {
		idx[i].UpdatedAt = s.now()
		s.saveIndex(idx)
		return
	}
	s.ensureLocked(id, DefaultTitle)
}

// NormalizeTitle trims and caps a title. Returns "" for blank input.
func NormalizeTitle(title string) string {
	t := strings.TrimSpace(title)
	if utf8.RuneCountInString(t) > MaxTitleLen {
		t = strings.TrimSpace(string([]rune(t)[:MaxTitleLen]))
	}
	return t
}

// SetTitle renames id. Blank titles are rejected without mutation.
func (s *Store) SetTitle(id, title string) bool {
	next := NormalizeTitle(title)
	if next == "" {
		return false
	}
	s.UpdateMeta(id, Patch{Title: &next})
	return true
}

// Get returns the entry for id.
func (s *Store) Get(id string) (store.DocumentMeta, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.index.Load()
	if i := find(idx, id); i >= 0 {
		return idx[i], true
	}
	return store.DocumentMeta{}, false
}

// List returns the Index sorted by UpdatedAt, newest first.
func (s *Store) List() []store.DocumentMeta {
	s.mu.Lock()
	idx := s.index.Load()
	s.mu.Unlock()

	slices.SortStableFunc(idx, func(a, b store.DocumentMeta) int {
		return cmp.Compare(b.UpdatedAt, a.UpdatedAt)
	})
	return idx
}

// Len returns the number of live documents.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.index.Load())
}

// =============================================================================
// Content
// =============================================================================

// SaveContent stores the payload for id.
func (s *Store) SaveContent(id, payload string) error {
	return s.adapter.WriteRaw(store.ContentKey(id), payload)
}

// LoadContent returns the payload for id, or ok=false if none is stored.
func (s *Store) LoadContent(id string) (string, bool) {
	raw, outcome := s.adapter.ReadRaw(store.ContentKey(id))
	if outcome != store.Found || raw == "" {
		return "", false
	}
	return raw, true
}

// RemoveContent deletes the payload for id.
func (s *Store) RemoveContent(id string) {
	_ = s.adapter.Remove(store.ContentKey(id))
}

// UserStarted reports whether the user has ever edited id.
func (s *Store) UserStarted(id string) bool {
	return s.adapter.ReadFlag(store.StartedKey(id))
}

// MarkUserStarted sets the started flag for id. It is never cleared.
func (s *Store) MarkUserStarted(id string) {
	if err := s.adapter.WriteFlag(store.StartedKey(id), true); err != nil {
		s.log.Warn("started flag not persisted", zap.String("id", id), zap.Error(err))
	}
}

// =============================================================================
// Archive hand-off
// =============================================================================

// Detach removes id from the Index. commit receives the entry and its
// current content (nil when none) and must store them elsewhere; the Index
// is rewritten only after commit succeeds. The content key is left in
// place for the caller to remove.
//
// If commit fails the Index is untouched and its error is returned. If the
// Index write fails after a successful commit, the caller must undo
// whatever commit stored.
func (s *Store) Detach(id string, commit func(store.DocumentMeta, *string) error) (store.DocumentMeta, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.index.Load()
	i := find(idx, id)
	if i < 0 {
		return store.DocumentMeta{}, ErrNotFound
	}
	doc := idx[i]

	var content *string
	if raw, outcome := s.adapter.ReadRaw(store.ContentKey(id)); outcome == store.Found {
		content = &raw
	}
	if commit != nil {
		if err := commit(doc, content); err != nil {
			return doc, err
		}
	}
	if err := s.index.Save(slices.Delete(idx, i, i+1)); err != nil {
		return doc, fmt.Errorf("detach %s: %w", id, err)
	}
	return doc, nil
}

// Adopt inserts doc into the Index, minting a new id when doc.ID is already
// live. UpdatedAt is set to now; CreatedAt is kept. A non-nil content is
// written under the resulting id before the Index, and commit runs last
// with the adopted entry. Any failure undoes the earlier writes and
// returns the error.
func (s *Store) Adopt(doc store.DocumentMeta, content *string, commit func(store.DocumentMeta) error) (store.DocumentMeta, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.index.Load()
	now := s.now()
	if doc.ID == "" || find(idx, doc.ID) >= 0 {
		doc.ID = s.uniqueIDLocked(idx)
	}
	if doc.Title == "" {
		doc.Title = "Untitled"
	}
	if doc.CreatedAt == 0 {
		doc.CreatedAt = now
	}
	doc.UpdatedAt = now

	key := store.ContentKey(doc.ID)
	if content != nil {
		if err := s.adapter.WriteRaw(key, *content); err != nil {
			return doc, fmt.Errorf("adopt %s: %w", doc.ID, err)
		}
	}
	undoContent := func() {
		if content != nil {
			_ = s.adapter.Remove(key)
		}
	}

	if err := s.index.Save(append(slices.Clip(idx), doc)); err != nil {
		undoContent()
		return doc, fmt.Errorf("adopt %s: %w", doc.ID, err)
	}
	if commit != nil {
		if err := commit(doc); err != nil {
			if rerr := s.index.Save(idx); rerr != nil {
				s.log.Error("adopt rollback failed", zap.String("id", doc.ID), zap.Error(rerr))
				return doc, err
			}
			undoContent()
			return doc, err
		}
	}
	return doc, nil
}

// IsLive reports whether id has an Index entry.
func (s *Store) IsLive(id string) bool {
	_, ok := s.Get(id)
	return ok
}
