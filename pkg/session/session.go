// Package session drives one open editor: resolving the document,
// hydrating the widget, debounced autosave and manual save.
//
// All session state sits behind one mutex. Widget calls that may emit edit
// notifications (SetContent, InsertContent) run with the mutex released;
// Content and PlainText are plain getters and may be called under it.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/eternalheli/apollodocs/internal/store"
	"github.com/eternalheli/apollodocs/pkg/clock"
	"github.com/eternalheli/apollodocs/pkg/doclist"
	"github.com/eternalheli/apollodocs/pkg/docstore"
	"github.com/eternalheli/apollodocs/pkg/textstats"
)

const (
	DefaultDebounce       = 450 * time.Millisecond
	DefaultHydrateTimeout = 4 * time.Second
)

var (
	ErrNotReady     = errors.New("session: not ready")
	ErrNothingSaved = errors.New("session: nothing saved")
	ErrClosed       = errors.New("session: closed")
	ErrAlreadyOpen  = errors.New("session: already open")
)

// Widget is the rich-text editor. It reports every mutation through
// Session.HandleEdit.
type Widget interface {
	SetContent(payload string) error
	Content() (string, error)
	InsertContent(payload string) error
	PlainText() string
	HTML() string
}

// Navigator rewrites the current location without a history entry.
type Navigator interface {
	Replace(url string)
}

// WordCountPrefs persists the word count toggle.
type WordCountPrefs interface {
	WordCountEnabled() bool
	StoreWordCount(on bool)
}

// EditSource tells user input apart from programmatic changes.
type EditSource int

const (
	SourceUser EditSource = iota
	SourceAPI
)

// Session is a single editor lifecycle for one document.
type Session struct {
	mu     sync.Mutex
	id     string
	docs   *docstore.Store
	widget Widget
	nav    Navigator
	prefs  WordCountPrefs
	clock  clock.Clock
	log    *zap.Logger

	debounce       time.Duration
	hydrateTimeout time.Duration
	observer       func(Snapshot)

	state         State
	status        Status
	doc           store.DocumentMeta
	started       bool
	hydrateFailed bool
	closed        bool
	wordCount     int
	wordCountOn   bool

	// gen identifies the live debounce task; a timer whose generation no
	// longer matches is a no-op.
	gen         uint64
	saveTimer   clock.Timer
	watchdog    clock.Timer
	statusGen   uint64
	statusTimer clock.Timer

	pending []Snapshot
}

type Option func(*Session)

func WithClock(c clock.Clock) Option {
	return func(s *Session) { s.clock = c }
}

func WithLogger(l *zap.Logger) Option {
	return func(s *Session) { s.log = l.Named("session") }
}

// WithObserver registers a callback run after every state or status change.
// It is called without the session lock held.
func WithObserver(f func(Snapshot)) Option {
	return func(s *Session) { s.observer = f }
}

func WithDebounce(d time.Duration) Option {
	return func(s *Session) {
		if d > 0 {
			s.debounce = d
		}
	}
}

func WithHydrateTimeout(d time.Duration) Option {
	return func(s *Session) {
		if d > 0 {
			s.hydrateTimeout = d
		}
	}
}

func WithNavigator(n Navigator) Option {
	return func(s *Session) { s.nav = n }
}

func WithPrefs(p WordCountPrefs) Option {
	return func(s *Session) { s.prefs = p }
}

// New creates an idle session bound to widget.
func New(docs *docstore.Store, widget Widget, opts ...Option) *Session {
	s := &Session{
		id:             uuid.NewString(),
		docs:           docs,
		widget:         widget,
		clock:          docs.Clock(),
		log:            zap.NewNop(),
		debounce:       DefaultDebounce,
		hydrateTimeout: DefaultHydrateTimeout,
		state:          Idle,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With(zap.String("session_id", s.id))
	if s.prefs != nil {
		s.wordCountOn = s.prefs.WordCountEnabled()
	}
	return s
}

// ID returns the session id used in logs.
func (s *Session) ID() string {
	return s.id
}

// =============================================================================
// Locking and notification
// =============================================================================

// unlock releases the mutex and then delivers queued snapshots.
func (s *Session) unlock() {
	queued := s.pending
	s.pending = nil
	obs := s.observer
	s.mu.Unlock()

	if obs == nil {
		return
	}
	for _, snap := range queued {
		obs(snap)
	}
}

func (s *Session) snapshotLocked() Snapshot {
	return Snapshot{
		SessionID:        s.id,
		DocID:            s.doc.ID,
		Title:            s.doc.Title,
		State:            s.state,
		Status:           s.status,
		WordCount:        s.wordCount,
		WordCountEnabled: s.wordCountOn,
		UserStarted:      s.started,
	}
}

func (s *Session) publishLocked() {
	if s.observer != nil {
		s.pending = append(s.pending, s.snapshotLocked())
	}
}

// transitionLocked applies to if the table allows it.
func (s *Session) transitionLocked(to State, st Status) error {
	if !CanTransition(s.state, to) {
		err := &TransitionError{From: s.state, To: to}
		s.log.Warn("transition rejected", zap.Error(err))
		return err
	}
	s.log.Debug("transition", zap.Stringer("from", s.state), zap.Stringer("to", to))
	s.state = to
	s.setStatusLocked(st)
	return nil
}

func (s *Session) setStatusLocked(st Status) {
	s.status = st
	s.statusGen++
	if s.statusTimer != nil {
		s.statusTimer.Stop()
		s.statusTimer = nil
	}
	if st.Tone == ToneOK {
		gen := s.statusGen
		s.statusTimer = s.clock.AfterFunc(StatusResetDelay, func() { s.resetStatus(gen) })
	}
	s.publishLocked()
}

func (s *Session) resetStatus(gen uint64) {
	s.mu.Lock()
	defer s.unlock()
	if s.closed || gen != s.statusGen || s.state != Ready {
		return
	}
	s.statusTimer = nil
	s.setStatusLocked(statusReady)
}

// =============================================================================
// Open and hydration
// =============================================================================

// Open resolves requestedID (creating a document when blank) and hydrates
// the widget. Hydration failures leave the session in Error with a
// watchdog that forces Ready.
func (s *Session) Open(requestedID string) (store.DocumentMeta, error) {
	s.mu.Lock()
	if s.closed {
		s.unlock()
		return store.DocumentMeta{}, ErrClosed
	}
	if s.state != Idle {
		s.unlock()
		return store.DocumentMeta{}, ErrAlreadyOpen
	}
	_ = s.transitionLocked(Resolving, statusLoading)
	s.unlock()

	id := strings.TrimSpace(requestedID)
	var meta store.DocumentMeta
	created := id == ""
	if created {
		meta = s.docs.Create(docstore.DefaultTitle)
	} else {
		s.docs.MigrateLegacy()
		meta = s.docs.EnsureMeta(id, docstore.DefaultTitle)
	}
	started := s.docs.UserStarted(meta.ID)

	s.mu.Lock()
	if s.closed {
		s.unlock()
		return meta, ErrClosed
	}
	s.doc = meta
	s.started = started
	_ = s.transitionLocked(Hydrating, statusLoading)
	s.watchdog = s.clock.AfterFunc(s.hydrateTimeout, s.forceReady)
	s.unlock()

	if created && s.nav != nil {
		s.nav.Replace(doclist.OpenURL(meta.ID))
	}
	s.log.Info("document opened", zap.String("id", meta.ID), zap.Bool("created", created))

	err := s.hydrate(meta.ID, started)

	s.mu.Lock()
	defer s.unlock()
	if s.closed {
		return meta, ErrClosed
	}
	if err != nil {
		s.log.Warn("hydration failed", zap.String("id", meta.ID), zap.Error(err))
		if s.state == Hydrating {
			s.hydrateFailed = true
			_ = s.transitionLocked(Error, statusLoadFailed)
		}
		return meta, fmt.Errorf("hydrate %s: %w", meta.ID, err)
	}
	if s.watchdog != nil {
		s.watchdog.Stop()
		s.watchdog = nil
	}
	if s.wordCountOn {
		s.wordCount = textstats.Words(s.widget.PlainText())
	}
	if s.state == Hydrating {
		_ = s.transitionLocked(Ready, statusReady)
	}
	return meta, nil
}

// hydrate loads the stored payload into the widget, seeding welcome
// content for documents the user has never edited. Runs unlocked; edit
// notifications fired meanwhile are dropped by the Hydrating guard.
func (s *Session) hydrate(id string, started bool) error {
	loaded := false
	if raw, ok := s.docs.LoadContent(id); ok {
		if !isJSON(raw) {
			s.log.Warn("stored content is corrupt", zap.String("id", id))
		} else if err := s.widget.SetContent(raw); err != nil {
			s.log.Warn("widget rejected stored content", zap.String("id", id), zap.Error(err))
		} else {
			loaded = true
		}
	}

	if !loaded {
		if started {
			if err := s.widget.SetContent(docstore.EmptyContent); err != nil {
				return fmt.Errorf("reset content: %w", err)
			}
		} else {
			if err := s.widget.SetContent(docstore.WelcomeContent); err != nil {
				return fmt.Errorf("seed welcome: %w", err)
			}
			s.persistSeed(id, docstore.WelcomeContent)
		}
	}

	if !started && strings.TrimSpace(s.widget.PlainText()) == "" {
		if err := s.widget.InsertContent(docstore.WelcomeContent); err != nil {
			return fmt.Errorf("insert welcome: %w", err)
		}
		payload, err := s.widget.Content()
		if err != nil {
			return fmt.Errorf("read seeded content: %w", err)
		}
		s.persistSeed(id, payload)
	}
	return nil
}

func isJSON(raw string) bool {
	return json.Valid([]byte(raw))
}

func (s *Session) persistSeed(id, payload string) {
	if err := s.docs.SaveContent(id, payload); err != nil {
		s.log.Warn("seed not persisted", zap.String("id", id), zap.Error(err))
		return
	}
	s.docs.Touch(id)
}

// forceReady is the hydration watchdog.
func (s *Session) forceReady() {
	s.mu.Lock()
	defer s.unlock()
	s.watchdog = nil
	if s.closed {
		return
	}
	if s.state == Hydrating || (s.state == Error && s.hydrateFailed) {
		s.log.Warn("hydration watchdog fired", zap.Stringer("state", s.state))
		s.hydrateFailed = false
		_ = s.transitionLocked(Ready, statusReady)
	}
}

// =============================================================================
// Editing and saving
// =============================================================================

// HandleEdit is the widget's change notification.
func (s *Session) HandleEdit(source EditSource) {
	if source != SourceUser {
		return
	}

	s.mu.Lock()
	if s.closed || !s.state.acceptsEdits() {
		s.log.Debug("edit ignored", zap.Stringer("state", s.state))
		s.unlock()
		return
	}
	markStarted := !s.started
	s.started = true
	s.hydrateFailed = false
	if err := s.transitionLocked(Autosaving, statusAutosaving); err != nil {
		s.unlock()
		return
	}
	s.scheduleLocked()
	if s.wordCountOn {
		s.wordCount = textstats.Words(s.widget.PlainText())
	}
	id := s.doc.ID
	s.unlock()

	if markStarted {
		s.docs.MarkUserStarted(id)
	}
}

// scheduleLocked cancels any pending debounce task and starts a new one.
func (s *Session) scheduleLocked() {
	s.cancelLocked()
	gen := s.gen
	s.saveTimer = s.clock.AfterFunc(s.debounce, func() { s.flush(gen) })
}

func (s *Session) cancelLocked() {
	s.gen++
	if s.saveTimer != nil {
		s.saveTimer.Stop()
		s.saveTimer = nil
	}
}

func (s *Session) flush(gen uint64) {
	s.mu.Lock()
	defer s.unlock()
	if s.closed || gen != s.gen || s.state != Autosaving {
		return
	}
	s.saveTimer = nil
	_ = s.persistLocked()
}

// persistLocked writes the widget content and settles in Ready or Error.
func (s *Session) persistLocked() error {
	payload, err := s.widget.Content()
	if err == nil {
		err = s.docs.SaveContent(s.doc.ID, payload)
	}
	if err != nil {
		s.log.Warn("save failed", zap.String("id", s.doc.ID), zap.Error(err))
		_ = s.transitionLocked(Error, statusSaveFailed)
		return fmt.Errorf("save %s: %w", s.doc.ID, err)
	}
	s.docs.Touch(s.doc.ID)
	if meta, ok := s.docs.Get(s.doc.ID); ok {
		s.doc = meta
	}
	return s.transitionLocked(Ready, statusSaved)
}

// Save writes immediately, preempting any pending autosave.
func (s *Session) Save() error {
	s.mu.Lock()
	defer s.unlock()
	if s.closed {
		return ErrClosed
	}
	if !s.state.acceptsEdits() {
		return ErrNotReady
	}
	s.cancelLocked()
	s.hydrateFailed = false
	if err := s.transitionLocked(Saving, statusSaving); err != nil {
		return err
	}
	return s.persistLocked()
}

// Reload replaces the widget content with the stored payload.
func (s *Session) Reload() error {
	s.mu.Lock()
	if s.closed {
		s.unlock()
		return ErrClosed
	}
	if !s.state.acceptsEdits() {
		s.unlock()
		return ErrNotReady
	}
	raw, ok := s.docs.LoadContent(s.doc.ID)
	if !ok {
		s.setStatusLocked(statusNothing)
		s.unlock()
		return ErrNothingSaved
	}
	s.unlock()

	err := s.widget.SetContent(raw)

	s.mu.Lock()
	defer s.unlock()
	if s.closed {
		return ErrClosed
	}
	if err != nil {
		s.setStatusLocked(statusReloadError)
		return fmt.Errorf("reload %s: %w", s.doc.ID, err)
	}
	s.cancelLocked()
	if s.wordCountOn {
		s.wordCount = textstats.Words(s.widget.PlainText())
	}
	if s.state == Ready {
		s.setStatusLocked(statusReloaded)
		return nil
	}
	return s.transitionLocked(Ready, statusReloaded)
}

// CommitTitle persists the title field on blur. Blank input falls back to
// the default title.
func (s *Session) CommitTitle(title string) bool {
	s.mu.Lock()
	id := s.doc.ID
	s.mu.Unlock()
	if id == "" {
		return false
	}

	t := strings.TrimSpace(title)
	if t == "" {
		t = docstore.DefaultTitle
	}
	if !s.docs.SetTitle(id, t) {
		return false
	}

	s.mu.Lock()
	defer s.unlock()
	if meta, ok := s.docs.Get(id); ok {
		s.doc = meta
	}
	s.publishLocked()
	return true
}

// =============================================================================
// Word count and accessors
// =============================================================================

// WordCount recomputes the count from the widget.
func (s *Session) WordCount() int {
	n := textstats.Words(s.widget.PlainText())
	s.mu.Lock()
	s.wordCount = n
	s.mu.Unlock()
	return n
}

// SetWordCountEnabled toggles live word counting and persists the choice.
func (s *Session) SetWordCountEnabled(on bool) {
	if s.prefs != nil {
		s.prefs.StoreWordCount(on)
	}
	s.mu.Lock()
	defer s.unlock()
	s.wordCountOn = on
	if on {
		s.wordCount = textstats.Words(s.widget.PlainText())
	}
	s.publishLocked()
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Close stops every timer. A pending autosave is dropped, not flushed.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.unlock()
	if s.closed {
		return ErrClosed
	}
	s.cancelLocked()
	for _, t := range []clock.Timer{s.watchdog, s.statusTimer} {
		if t != nil {
			t.Stop()
		}
	}
	s.watchdog, s.statusTimer = nil, nil
	if s.state != Idle {
		_ = s.transitionLocked(Idle, Status{})
	}
	s.closed = true
	s.log.Info("session closed", zap.String("id", s.doc.ID))
	return nil
}
