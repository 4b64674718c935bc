package archive

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eternalheli/apollodocs/internal/store"
	"github.com/eternalheli/apollodocs/pkg/clock"
	"github.com/eternalheli/apollodocs/pkg/docstore"
)

var epoch = time.UnixMilli(1_700_000_000_000)

type fixture struct {
	mem   *store.MemoryBackend
	clock *clock.Fake
	docs  *docstore.Store
	trash *Store
}

func newFixture(t *testing.T, ids ...string) *fixture {
	t.Helper()
	mem := store.NewMemoryBackend()
	fc := clock.NewFake(epoch)
	a := store.NewAdapter(mem, nil)
	opts := []docstore.Option{docstore.WithClock(fc)}
	if len(ids) > 0 {
		i := 0
		opts = append(opts, docstore.WithIDSource(func() string {
			id := ids[i%len(ids)]
			i++
			return id
		}))
	}
	docs := docstore.New(a, opts...)
	return &fixture{mem: mem, clock: fc, docs: docs, trash: New(a, docs)}
}

func (f *fixture) hasKey(key string) bool {
	_, ok, _ := f.mem.Get(key)
	return ok
}

func TestArchiveMovesDocument(t *testing.T) {
	f := newFixture(t, "a")
	doc := f.docs.Create("Plans")
	require.NoError(t, f.docs.SaveContent(doc.ID, `{"type":"doc","n":1}`))

	f.clock.Advance(time.Minute)
	require.True(t, f.trash.Archive(doc.ID))

	assert.False(t, f.docs.IsLive(doc.ID))
	assert.False(t, f.hasKey(store.ContentKey(doc.ID)), "live content key must go")

	items := f.trash.List()
	require.Len(t, items, 1)
	assert.Equal(t, "Plans", items[0].Title)
	assert.Equal(t, f.clock.Now().UnixMilli(), items[0].DeletedAt)
	require.NotNil(t, items[0].ContentSnapshot)
	assert.Equal(t, `{"type":"doc","n":1}`, *items[0].ContentSnapshot)

	assert.False(t, f.trash.Archive(doc.ID), "second archive is a no-op")
	assert.False(t, f.trash.Archive("unknown"))
}

func TestArchiveWithoutContent(t *testing.T) {
	f := newFixture(t)
	f.docs.EnsureMeta("bare", "")

	require.True(t, f.trash.Archive("bare"))
	items := f.trash.List()
	require.Len(t, items, 1)
	assert.Nil(t, items[0].ContentSnapshot)
}

func TestArchiveDefaultsMissingFields(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.mem.Set(store.KeyIndex, `[{"id":"z","title":"","createdAt":0,"updatedAt":0}]`))

	require.True(t, f.trash.Archive("z"))
	item := f.trash.List()[0]
	assert.Equal(t, "Untitled", item.Title)
	assert.Equal(t, epoch.UnixMilli(), item.CreatedAt)
	assert.Equal(t, epoch.UnixMilli(), item.UpdatedAt)
}

func TestRetentionBoundary(t *testing.T) {
	f := newFixture(t, "a")
	doc := f.docs.Create("Old")
	require.True(t, f.trash.Archive(doc.ID))

	f.clock.Advance(Retention - time.Millisecond)
	assert.Len(t, f.trash.PurgeExpired(), 1)

	f.clock.Advance(time.Millisecond)
	assert.Empty(t, f.trash.PurgeExpired())
	raw, _, _ := f.mem.Get(store.KeyTrash)
	assert.Equal(t, "[]", raw)
}

func TestPurgeDoesNotRewriteWhenNothingExpired(t *testing.T) {
	f := newFixture(t, "a")
	f.docs.Create("Keep")
	require.True(t, f.trash.Archive("a"))

	raw, _, _ := f.mem.Get(store.KeyTrash)
	require.NoError(t, f.mem.Set(store.KeyTrash, raw+"\n"))

	assert.Len(t, f.trash.PurgeExpired(), 1)
	after, _, _ := f.mem.Get(store.KeyTrash)
	assert.Equal(t, raw+"\n", after)
}

func TestPurgeSparesContentOfLiveNamesake(t *testing.T) {
	f := newFixture(t, "a")
	f.docs.Create("First")
	require.True(t, f.trash.Archive("a"))

	f.docs.EnsureMeta("a", "Reopened")
	require.NoError(t, f.docs.SaveContent("a", "live"))

	f.clock.Advance(Retention)
	assert.Empty(t, f.trash.PurgeExpired())
	got, ok := f.docs.LoadContent("a")
	assert.True(t, ok)
	assert.Equal(t, "live", got)
}

func TestRestoreRoundTrip(t *testing.T) {
	f := newFixture(t, "a")
	doc := f.docs.Create("Notes")
	require.NoError(t, f.docs.SaveContent(doc.ID, "payload"))
	require.True(t, f.trash.Archive(doc.ID))

	f.clock.Advance(time.Hour)
	restored, ok := f.trash.Restore(doc.ID)
	require.True(t, ok)
	assert.Equal(t, doc.ID, restored.ID)
	assert.Equal(t, "Notes", restored.Title)
	assert.Equal(t, doc.CreatedAt, restored.CreatedAt)
	assert.Equal(t, f.clock.Now().UnixMilli(), restored.UpdatedAt)

	got, ok := f.docs.LoadContent(doc.ID)
	assert.True(t, ok)
	assert.Equal(t, "payload", got)
	assert.Empty(t, f.trash.List())

	_, ok = f.trash.Restore(doc.ID)
	assert.False(t, ok)
}

func TestRestoreMintsIDOnCollision(t *testing.T) {
	f := newFixture(t, "a", "b")
	f.docs.Create("Original")
	require.NoError(t, f.docs.SaveContent("a", "old"))
	require.True(t, f.trash.Archive("a"))

	f.docs.EnsureMeta("a", "Squatter")
	require.NoError(t, f.docs.SaveContent("a", "new"))

	restored, ok := f.trash.Restore("a")
	require.True(t, ok)
	assert.Equal(t, "b", restored.ID)

	squatter, _ := f.docs.LoadContent("a")
	assert.Equal(t, "new", squatter)
	old, _ := f.docs.LoadContent("b")
	assert.Equal(t, "old", old)
	assert.Equal(t, 2, f.docs.Len())
}

func TestRestoreNilSnapshotWritesNothing(t *testing.T) {
	f := newFixture(t)
	f.docs.EnsureMeta("bare", "Bare")
	require.True(t, f.trash.Archive("bare"))

	_, ok := f.trash.Restore("bare")
	require.True(t, ok)
	assert.False(t, f.hasKey(store.ContentKey("bare")))
}

func TestLegacyDeltaSnapshotRestores(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.mem.Set(store.KeyTrash,
		`[{"id":"old","title":"Legacy","createdAt":5,"updatedAt":6,"deletedAt":`+
			`1700000000000,"delta":"{\"ops\":[]}"}]`))

	restored, ok := f.trash.Restore("old")
	require.True(t, ok)
	assert.Equal(t, int64(5), restored.CreatedAt)
	got, ok := f.docs.LoadContent("old")
	assert.True(t, ok)
	assert.Equal(t, `{"ops":[]}`, got)
}

func TestPermanentlyDelete(t *testing.T) {
	f := newFixture(t, "a")
	f.docs.Create("Gone")
	require.True(t, f.trash.Archive("a"))

	assert.True(t, f.trash.PermanentlyDelete("a"))
	assert.Empty(t, f.trash.List())
	assert.False(t, f.hasKey(store.ContentKey("a")))
	assert.False(t, f.trash.PermanentlyDelete("a"))
}

func TestListNewestDeletedFirst(t *testing.T) {
	f := newFixture(t, "a", "b", "c")
	for range 3 {
		f.docs.Create("")
	}
	for _, id := range []string{"b", "a", "c"} {
		require.True(t, f.trash.Archive(id))
		f.clock.Advance(time.Second)
	}

	var ids []string
	for _, it := range f.trash.List() {
		ids = append(ids, it.ID)
	}
	assert.Equal(t, []string{"c", "a", "b"}, ids)
}

func TestRemaining(t *testing.T) {
	deleted := epoch.UnixMilli()
	assert.Equal(t, Retention, Remaining(deleted, epoch))
	assert.Equal(t, time.Hour, Remaining(deleted, epoch.Add(Retention-time.Hour)))
	assert.Equal(t, time.Duration(0), Remaining(deleted, epoch.Add(Retention+time.Hour)))
}

func TestFormatRemaining(t *testing.T) {
	assert.Equal(t, "30d 00h 00m 00s", FormatRemaining(Retention))
	d := 2*24*time.Hour + 3*time.Hour + 4*time.Minute + 5*time.Second + 900*time.Millisecond
	assert.Equal(t, "2d 03h 04m 05s", FormatRemaining(d))
	assert.Equal(t, "0d 00h 00m 00s", FormatRemaining(-time.Second))
}

// catalogs reports where id currently lives.
func (f *fixture) catalogs(id string) (live, trashed bool) {
	live = f.docs.IsLive(id)
	for _, it := range f.trash.List() {
		if it.ID == id {
			trashed = true
		}
	}
	return live, trashed
}

func TestArchiveKeepsDocumentLiveWhenAWriteFails(t *testing.T) {
	for _, key := range []string{store.KeyTrash, store.KeyIndex} {
		t.Run(key, func(t *testing.T) {
			f := newFixture(t, "a")
			f.docs.Create("Draft")
			require.NoError(t, f.docs.SaveContent("a", "only copy"))

			f.mem.FailKey(key, true)
			assert.False(t, f.trash.Archive("a"))
			f.mem.FailKey(key, false)

			live, trashed := f.catalogs("a")
			assert.True(t, live)
			assert.False(t, trashed)
			got, ok := f.docs.LoadContent("a")
			require.True(t, ok)
			assert.Equal(t, "only copy", got)
		})
	}
}

func TestRestoreKeepsItemTrashedWhenAWriteFails(t *testing.T) {
	for _, key := range []string{store.KeyIndex, store.KeyTrash, store.ContentKey("a")} {
		t.Run(key, func(t *testing.T) {
			f := newFixture(t, "a")
			f.docs.Create("Draft")
			require.NoError(t, f.docs.SaveContent("a", "snapshot"))
			require.True(t, f.trash.Archive("a"))

			f.mem.FailKey(key, true)
			_, ok := f.trash.Restore("a")
			assert.False(t, ok)
			f.mem.FailKey(key, false)

			live, trashed := f.catalogs("a")
			assert.False(t, live)
			assert.True(t, trashed)
			assert.False(t, f.hasKey(store.ContentKey("a")))

			restored, ok := f.trash.Restore("a")
			require.True(t, ok)
			got, _ := f.docs.LoadContent(restored.ID)
			assert.Equal(t, "snapshot", got)
		})
	}
}

func TestPermanentlyDeleteKeepsSnapshotWhenTrashWriteFails(t *testing.T) {
	f := newFixture(t, "a")
	f.docs.Create("Draft")
	require.True(t, f.trash.Archive("a"))

	f.mem.FailKey(store.KeyTrash, true)
	assert.False(t, f.trash.PermanentlyDelete("a"))
	f.mem.FailKey(store.KeyTrash, false)

	items := f.trash.List()
	require.Len(t, items, 1)
	require.NotNil(t, items[0].ContentSnapshot)
	assert.Equal(t, docstore.WelcomeContent, *items[0].ContentSnapshot)
}

func TestPurgeStampsZeroDeletedAt(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.mem.Set(store.KeyTrash, `[{"id":"old","title":"Legacy","createdAt":5,"updatedAt":6}]`))

	items := f.trash.PurgeExpired()
	require.Len(t, items, 1)
	assert.Equal(t, epoch.UnixMilli(), items[0].DeletedAt)

	f.clock.Advance(time.Hour)
	items = f.trash.PurgeExpired()
	require.Len(t, items, 1)
	assert.Equal(t, epoch.UnixMilli(), items[0].DeletedAt, "stamp is persisted, not recomputed")
	assert.Equal(t, Retention-time.Hour, Remaining(items[0].DeletedAt, f.clock.Now()))

	f.clock.Advance(Retention)
	assert.Empty(t, f.trash.PurgeExpired())
}
