package doclist

import (
	"slices"
	"sync"
	"time"

	"github.com/eternalheli/apollodocs/internal/store"
	"github.com/eternalheli/apollodocs/pkg/archive"
)

// Countdown is one row of the archive page.
type Countdown struct {
	ID          string        `json:"id"`
	Title       string        `json:"title"`
	DeletedAt   int64         `json:"deletedAt"`
	Remaining   time.Duration `json:"-"`
	RemainingMs int64         `json:"remainingMs"`
	Label       string        `json:"label"`
}

// Trash is the archive page controller.
type Trash struct {
	mu    sync.Mutex
	store *archive.Store
	items []store.TrashItem
}

func NewTrash(s *archive.Store) *Trash {
	return &Trash{store: s}
}

// Reload purges and lists the trash, most recently deleted first.
func (t *Trash) Reload() []store.TrashItem {
	items := t.store.List()
	t.mu.Lock()
	t.items = items
	t.mu.Unlock()
	return slices.Clone(items)
}

// Items returns the list from the last Reload.
func (t *Trash) Items() []store.TrashItem {
	t.mu.Lock()
	defer t.mu.Unlock()
	return slices.Clone(t.items)
}

// Restore brings id back to the Index.
func (t *Trash) Restore(id string) (store.DocumentMeta, bool) {
	doc, ok := t.store.Restore(id)
	if ok {
		t.Reload()
	}
	return doc, ok
}

// Delete erases id for good.
func (t *Trash) Delete(id string) bool {
	ok := t.store.PermanentlyDelete(id)
	if ok {
		t.Reload()
	}
	return ok
}

// Countdowns computes time left for every item as of now. An item that
// has run out triggers a reload so it disappears.
func (t *Trash) Countdowns() []Countdown {
	now := t.store.Clock().Now()
	items := t.Items()
	for _, it := range items {
		if archive.Remaining(it.DeletedAt, now) <= 0 {
			items = t.Reload()
			break
		}
	}

	out := make([]Countdown, 0, len(items))
	for _, it := range items {
		left := archive.Remaining(it.DeletedAt, now)
		out = append(out, Countdown{
			ID:          it.ID,
			Title:       it.Title,
			DeletedAt:   it.DeletedAt,
			Remaining:   left,
			RemainingMs: left.Milliseconds(),
			Label:       archive.FormatRemaining(left),
		})
	}
	return out
}
