// Package prefs stores the small scalar UI preferences and the
// private-browsing advisory state.
package prefs

import (
	"github.com/eternalheli/apollodocs/internal/store"
)

type Theme string

const (
	ThemeDark  Theme = "dark"
	ThemeLight Theme = "light"
)

type View string

const (
	ViewGrid View = "grid"
	ViewList View = "list"
)

// Prefs reads and writes preferences. local is the persistent store;
// session is cleared when the browsing session ends.
type Prefs struct {
	local   *store.Adapter
	session *store.Adapter
}

func New(local, session *store.Adapter) *Prefs {
	return &Prefs{local: local, session: session}
}

// LoadTheme returns the stored theme, or the system preference when none
// is stored.
func (p *Prefs) LoadTheme(prefersLight bool) Theme {
	if v, outcome := p.local.ReadRaw(store.KeyTheme); outcome == store.Found {
		switch Theme(v) {
		case ThemeDark, ThemeLight:
			return Theme(v)
		}
	}
	if prefersLight {
		return ThemeLight
	}
	return ThemeDark
}

func (p *Prefs) StoreTheme(t Theme) {
	if t != ThemeLight {
		t = ThemeDark
	}
	_ = p.local.WriteRaw(store.KeyTheme, string(t))
}

// ToggleTheme flips the current theme, persists and returns it.
func (p *Prefs) ToggleTheme(prefersLight bool) Theme {
	next := ThemeLight
	if p.LoadTheme(prefersLight) == ThemeLight {
		next = ThemeDark
	}
	p.StoreTheme(next)
	return next
}

func (p *Prefs) loadView(key string, def View) View {
	v, outcome := p.local.ReadRaw(key)
	if outcome != store.Found {
		return def
	}
	switch View(v) {
	case ViewGrid, ViewList:
		return View(v)
	}
	return def
}

func (p *Prefs) storeView(key string, v View) {
	if v != ViewList {
		v = ViewGrid
	}
	_ = p.local.WriteRaw(key, string(v))
}

func flip(v View) View {
	if v == ViewList {
		return ViewGrid
	}
	return ViewList
}

// DocsView is the homepage layout, grid by default.
func (p *Prefs) DocsView() View { return p.loadView(store.KeyDocsView, ViewGrid) }

func (p *Prefs) StoreDocsView(v View) { p.storeView(store.KeyDocsView, v) }

func (p *Prefs) ToggleDocsView() View {
	next := flip(p.DocsView())
	p.StoreDocsView(next)
	return next
}

// ChangelogView is the changelog layout, list by default.
func (p *Prefs) ChangelogView() View { return p.loadView(store.KeyChangelogView, ViewList) }

func (p *Prefs) StoreChangelogView(v View) { p.storeView(store.KeyChangelogView, v) }

func (p *Prefs) ToggleChangelogView() View {
	next := flip(p.ChangelogView())
	p.StoreChangelogView(next)
	return next
}

func (p *Prefs) WordCountEnabled() bool {
	return p.local.ReadFlag(store.KeyWordCount)
}

func (p *Prefs) StoreWordCount(on bool) {
	_ = p.local.WriteFlag(store.KeyWordCount, on)
}

// ShouldWarnPrivate reports whether to show the private-browsing advisory.
// The session gate is consumed on the first call whatever the outcome, so
// the advisory appears at most once per session.
func (p *Prefs) ShouldWarnPrivate() bool {
	if p.session.ReadFlag(store.KeyPrivateWarnedSession) {
		return false
	}
	_ = p.session.WriteFlag(store.KeyPrivateWarnedSession, true)

	if p.local.ReadFlag(store.KeyPrivateWarnDismiss) {
		return false
	}
	return !p.local.Probe()
}

// DismissPrivateWarn silences the advisory permanently.
func (p *Prefs) DismissPrivateWarn() {
	_ = p.local.WriteFlag(store.KeyPrivateWarnDismiss, true)
}
