// Package archive is the soft-delete catalog. Archived documents keep a
// content snapshot for Retention and are purged lazily when the trash is
// next read.
package archive

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/eternalheli/apollodocs/internal/store"
	"github.com/eternalheli/apollodocs/pkg/clock"
	"github.com/eternalheli/apollodocs/pkg/docstore"
)

// Retention is how long an archived document survives.
const Retention = 30 * 24 * time.Hour

// Store manages the Trash catalog. Lock order is archive then docstore.
type Store struct {
	mu    sync.Mutex
	docs  *docstore.Store
	trash store.Catalog[store.TrashItem]
	clock clock.Clock
	log   *zap.Logger
}

type Option func(*Store)

func WithClock(c clock.Clock) Option {
	return func(s *Store) { s.clock = c }
}

func WithLogger(l *zap.Logger) Option {
	return func(s *Store) { s.log = l.Named("archive") }
}

// New creates the trash store. The clock defaults to the docstore's.
func New(a *store.Adapter, docs *docstore.Store, opts ...Option) *Store {
	s := &Store{
		docs:  docs,
		trash: store.NewJSONCatalog[store.TrashItem](a, store.KeyTrash),
		clock: docs.Clock(),
		log:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Clock returns the time source used for retention.
func (s *Store) Clock() clock.Clock {
	return s.clock
}

func (s *Store) now() int64 {
	return clock.NowMillis(s.clock)
}

func (s *Store) save(items []store.TrashItem) error {
	if err := s.trash.Save(items); err != nil {
		s.log.Warn("trash not persisted", zap.Error(err))
		return err
	}
	return nil
}

// reclaim drops the content key of a trashed id unless a live document has
// since taken the same id.
func (s *Store) reclaim(id string) {
	if s.docs.IsLive(id) {
		return
	}
	s.docs.RemoveContent(id)
}

func findItem(items []store.TrashItem, id string) int {
	return slices.IndexFunc(items, func(t store.TrashItem) bool { return t.ID == id })
}

// Archive moves a live document into the trash. The Trash entry is written
// before the Index entry is dropped, and the content key is removed only
// once both writes succeed. Returns false if id is not in the Index or a
// write failed, in which case the document stays live.
func (s *Store) Archive(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := s.trash.Load()
	committed := false
	_, err := s.docs.Detach(id, func(meta store.DocumentMeta, content *string) error {
		now := s.now()
		item := store.TrashItem{
			ID:              meta.ID,
			Title:           cmp.Or(meta.Title, "Untitled"),
			CreatedAt:       cmp.Or(meta.CreatedAt, now),
			UpdatedAt:       cmp.Or(meta.UpdatedAt, now),
			DeletedAt:       now,
			ContentSnapshot: content,
		}
		if err := s.save(append(slices.Clip(items), item)); err != nil {
			return err
		}
		committed = true
		return nil
	})
	if errors.Is(err, docstore.ErrNotFound) {
		return false
	}
	if err != nil {
		if committed {
			if rerr := s.save(items); rerr != nil {
				s.log.Error("trash rollback failed", zap.String("id", id), zap.Error(rerr))
			}
		}
		s.log.Warn("archive aborted", zap.String("id", id), zap.Error(err))
		return false
	}
	s.docs.RemoveContent(id)

	s.log.Info("document archived", zap.String("id", id))
	return true
}

// PurgeExpired drops items past their retention window and returns the
// survivors. Items with a zero DeletedAt are stamped with the current time
// and persisted.
func (s *Store) PurgeExpired() []store.TrashItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.purgeLocked()
}

func (s *Store) purgeLocked() []store.TrashItem {
	now := s.now()
	all := s.trash.Load()
	kept := make([]store.TrashItem, 0, len(all))
	var dropped []string
	stamped := false
	for _, t := range all {
		if t.DeletedAt == 0 {
			t.DeletedAt = now
			stamped = true
		}
		if t.DeletedAt+Retention.Milliseconds() > now {
			kept = append(kept, t)
			continue
		}
		dropped = append(dropped, t.ID)
	}
	if len(dropped) == 0 && !stamped {
		return kept
	}
	// Snapshots stay reachable until the shrunk catalog is stored.
	if err := s.save(kept); err != nil {
		return kept
	}
	for _, id := range dropped {
		s.reclaim(id)
	}
	if len(dropped) > 0 {
		s.log.Info("trash purged", zap.Int("dropped", len(dropped)), zap.Int("kept", len(kept)))
	}
	return kept
}

// List purges and returns the trash, most recently deleted first.
func (s *Store) List() []store.TrashItem {
	items := s.PurgeExpired()
	slices.SortStableFunc(items, func(a, b store.TrashItem) int {
		return cmp.Compare(b.DeletedAt, a.DeletedAt)
	})
	return items
}

// Restore returns a trashed document to the Index, minting a new id if the
// old one is live again. Content and Index are written before the Trash
// entry is dropped. Returns false if id is not in the trash or a write
// failed, in which case the item stays in the trash.
func (s *Store) Restore(id string) (store.DocumentMeta, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := s.trash.Load()
	i := findItem(items, id)
	if i < 0 {
		return store.DocumentMeta{}, false
	}
	item := items[i]
	rest := slices.Delete(slices.Clone(items), i, i+1)
	restored, err := s.docs.Adopt(item.Meta(), item.ContentSnapshot, func(store.DocumentMeta) error {
		return s.save(rest)
	})
	if err != nil {
		s.log.Warn("restore aborted", zap.String("id", id), zap.Error(err))
		return store.DocumentMeta{}, false
	}

	s.log.Info("document restored", zap.String("id", id), zap.String("restored_id", restored.ID))
	return restored, true
}

// PermanentlyDelete erases a trashed document and its snapshot. Returns
// false if id is not in the trash or the catalog could not be rewritten.
func (s *Store) PermanentlyDelete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := s.trash.Load()
	i := findItem(items, id)
	if i < 0 {
		return false
	}
	if err := s.save(slices.Delete(items, i, i+1)); err != nil {
		return false
	}
	s.reclaim(id)

	s.log.Info("document deleted", zap.String("id", id))
	return true
}

// Remaining is the time left before an item deleted at deletedAt (Unix ms)
// expires, clamped at zero.
func Remaining(deletedAt int64, now time.Time) time.Duration {
	expires := time.UnixMilli(deletedAt).Add(Retention)
	left := expires.Sub(now)
	if left < 0 {
		return 0
	}
	return left
}

// FormatRemaining renders d as "12d 03h 04m 05s".
func FormatRemaining(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int64(d / time.Second)
	days := total / 86400
	hours := (total % 86400) / 3600
	mins := (total % 3600) / 60
	secs := total % 60
	return fmt.Sprintf("%dd %02dh %02dm %02ds", days, hours, mins, secs)
}
