package prefs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eternalheli/apollodocs/internal/store"
)

func newPrefs() (*Prefs, *store.MemoryBackend, *store.MemoryBackend) {
	local, sess := store.NewMemoryBackend(), store.NewMemoryBackend()
	return New(store.NewAdapter(local, nil), store.NewAdapter(sess, nil)), local, sess
}

func TestTheme(t *testing.T) {
	p, local, _ := newPrefs()

	assert.Equal(t, ThemeDark, p.LoadTheme(false))
	assert.Equal(t, ThemeLight, p.LoadTheme(true))

	p.StoreTheme(ThemeDark)
	assert.Equal(t, ThemeDark, p.LoadTheme(true), "stored choice beats system preference")

	assert.Equal(t, ThemeLight, p.ToggleTheme(false))
	v, _, _ := local.Get(store.KeyTheme)
	assert.Equal(t, "light", v)

	require.NoError(t, local.Set(store.KeyTheme, "sepia"))
	assert.Equal(t, ThemeDark, p.LoadTheme(false))
}

func TestViews(t *testing.T) {
	p, local, _ := newPrefs()

	assert.Equal(t, ViewGrid, p.DocsView())
	assert.Equal(t, ViewList, p.ChangelogView())

	assert.Equal(t, ViewList, p.ToggleDocsView())
	assert.Equal(t, ViewList, p.DocsView())
	assert.Equal(t, ViewGrid, p.ToggleChangelogView())

	require.NoError(t, local.Set(store.KeyDocsView, "bogus"))
	assert.Equal(t, ViewGrid, p.DocsView())
}

func TestWordCountFlag(t *testing.T) {
	p, local, _ := newPrefs()
	assert.False(t, p.WordCountEnabled())
	p.StoreWordCount(true)
	assert.True(t, p.WordCountEnabled())
	p.StoreWordCount(false)
	v, _, _ := local.Get(store.KeyWordCount)
	assert.Equal(t, "0", v)
}

func TestPrivateWarnOncePerSession(t *testing.T) {
	p, local, _ := newPrefs()
	local.FailWrites = true

	assert.True(t, p.ShouldWarnPrivate())
	assert.False(t, p.ShouldWarnPrivate(), "second call in the same session")
}

func TestPrivateWarnSkippedWhenStorageWorks(t *testing.T) {
	p, _, sess := newPrefs()
	assert.False(t, p.ShouldWarnPrivate())
	v, _, _ := sess.Get(store.KeyPrivateWarnedSession)
	assert.Equal(t, "1", v)
}

func TestPrivateWarnDismissed(t *testing.T) {
	p, local, _ := newPrefs()
	p.DismissPrivateWarn()
	local.FailWrites = true

	assert.False(t, p.ShouldWarnPrivate())
}
