package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type panickyBackend struct{ *MemoryBackend }

func (p *panickyBackend) Set(string, string) error { panic("QuotaExceededError") }

func TestProbe(t *testing.T) {
	mem := NewMemoryBackend()
	a := NewAdapter(mem, nil)
	assert.True(t, a.Probe())
	assert.Equal(t, 0, mem.Len(), "probe key must be removed")

	mem.Disabled = true
	assert.False(t, a.Probe())

	assert.False(t, NewAdapter(nil, nil).Probe())
}

func TestRawRoundTrip(t *testing.T) {
	a := NewAdapter(NewMemoryBackend(), nil)

	_, outcome := a.ReadRaw("k")
	assert.Equal(t, Missing, outcome)

	require.NoError(t, a.WriteRaw("k", "payload"))
	v, outcome := a.ReadRaw("k")
	assert.Equal(t, Found, outcome)
	assert.Equal(t, "payload", v)

	require.NoError(t, a.Remove("k"))
	_, outcome = a.ReadRaw("k")
	assert.Equal(t, Missing, outcome)
}

func TestReadJSONFallbacks(t *testing.T) {
	mem := NewMemoryBackend()
	a := NewAdapter(mem, nil)

	dst := []string{"fallback"}
	assert.Equal(t, Missing, a.ReadJSON("k", &dst))
	assert.Equal(t, []string{"fallback"}, dst)

	require.NoError(t, mem.Set("k", "{broken"))
	assert.Equal(t, Corrupt, a.ReadJSON("k", &dst))
	assert.Equal(t, []string{"fallback"}, dst)

	require.NoError(t, mem.Set("k", `{"not":"an array"}`))
	assert.Equal(t, Corrupt, a.ReadJSON("k", &dst))

	require.NoError(t, mem.Set("k", "null"))
	assert.Equal(t, Missing, a.ReadJSON("k", &dst))

	require.NoError(t, a.WriteJSON("k", []string{"a", "b"}))
	assert.Equal(t, Found, a.ReadJSON("k", &dst))
	assert.Equal(t, []string{"a", "b"}, dst)

	mem.Disabled = true
	assert.Equal(t, Unavailable, a.ReadJSON("k", &dst))
}

func TestWritesReportFailureWithoutPanicking(t *testing.T) {
	mem := NewMemoryBackend()
	mem.FailWrites = true
	a := NewAdapter(mem, nil)

	err := a.WriteRaw("k", "v")
	assert.ErrorIs(t, err, ErrQuotaExceeded)

	assert.ErrorIs(t, NewAdapter(nil, nil).WriteRaw("k", "v"), ErrUnavailable)

	p := NewAdapter(&panickyBackend{MemoryBackend: NewMemoryBackend()}, nil)
	assert.NotPanics(t, func() {
		assert.ErrorIs(t, p.WriteRaw("k", "v"), errBackendPanic)
		assert.False(t, p.Probe())
	})
}

func TestFlags(t *testing.T) {
	a := NewAdapter(NewMemoryBackend(), nil)
	assert.False(t, a.ReadFlag("f"))
	require.NoError(t, a.WriteFlag("f", true))
	assert.True(t, a.ReadFlag("f"))
	require.NoError(t, a.WriteFlag("f", false))
	assert.False(t, a.ReadFlag("f"))
}

func TestCatalogLoadSave(t *testing.T) {
	mem := NewMemoryBackend()
	a := NewAdapter(mem, nil)
	c := NewJSONCatalog[DocumentMeta](a, KeyIndex)

	assert.Empty(t, c.Load())
	assert.NotNil(t, c.Load())

	require.NoError(t, c.Save(nil))
	v, _, _ := mem.Get(KeyIndex)
	assert.Equal(t, "[]", v)

	docs := []DocumentMeta{{ID: "a", Title: "A", CreatedAt: 1, UpdatedAt: 2}}
	require.NoError(t, c.Save(docs))
	assert.Equal(t, docs, c.Load())

	require.NoError(t, mem.Set(KeyIndex, `"just a string"`))
	assert.Empty(t, c.Load())
}

func TestTrashItemReadsLegacyDelta(t *testing.T) {
	mem := NewMemoryBackend()
	a := NewAdapter(mem, nil)
	require.NoError(t, mem.Set(KeyTrash, `[{"id":"old","title":"Old","createdAt":1,"updatedAt":2,"deletedAt":3,"delta":"{\"ops\":[]}"}]`))

	items := NewJSONCatalog[TrashItem](a, KeyTrash).Load()
	require.Len(t, items, 1)
	require.NotNil(t, items[0].ContentSnapshot)
	assert.Equal(t, `{"ops":[]}`, *items[0].ContentSnapshot)
	assert.Equal(t, DocumentMeta{ID: "old", Title: "Old", CreatedAt: 1, UpdatedAt: 2}, items[0].Meta())
}

func TestKeyShapes(t *testing.T) {
	assert.Equal(t, "apollo_docs_doc_d_1_abc_v2", ContentKey("d_1_abc"))
	assert.Equal(t, "apollo_docs_doc_d_1_abc_started_v1", StartedKey("d_1_abc"))
}

func TestFailKeyRejectsOnlyThatKey(t *testing.T) {
	mem := NewMemoryBackend()
	a := NewAdapter(mem, nil)
	mem.FailKey(KeyTrash, true)

	assert.ErrorIs(t, a.WriteRaw(KeyTrash, "[]"), ErrQuotaExceeded)
	require.NoError(t, a.WriteRaw(KeyIndex, "[]"))

	mem.FailKey(KeyTrash, false)
	require.NoError(t, a.WriteRaw(KeyTrash, "[]"))
}
