// Package doclist holds the controllers behind the homepage and the
// archive page.
package doclist

import (
	"net/url"
	"slices"
	"sync"

	"go.uber.org/zap"

	"github.com/eternalheli/apollodocs/internal/store"
	"github.com/eternalheli/apollodocs/pkg/archive"
	"github.com/eternalheli/apollodocs/pkg/docstore"
)

// OpenURL is the canonical editor location for id.
func OpenURL(id string) string {
	return "/editor?id=" + url.QueryEscape(id)
}

// Home is the document list controller.
type Home struct {
	mu    sync.Mutex
	docs  *docstore.Store
	trash *archive.Store
	log   *zap.Logger
	list  []store.DocumentMeta
}

// NewHome creates the controller. A nil logger is allowed.
func NewHome(docs *docstore.Store, trash *archive.Store, log *zap.Logger) *Home {
	if log == nil {
		log = zap.NewNop()
	}
	return &Home{docs: docs, trash: trash, log: log.Named("home")}
}

// Reload purges expired trash, migrates legacy storage and re-reads the
// Index, newest first.
func (h *Home) Reload() []store.DocumentMeta {
	h.trash.PurgeExpired()
	if doc, ok := h.docs.MigrateLegacy(); ok {
		h.log.Info("legacy document imported", zap.String("id", doc.ID))
	}
	list := h.docs.List()

	h.mu.Lock()
	h.list = list
	h.mu.Unlock()
	return slices.Clone(list)
}

// Docs returns the list from the last Reload.
func (h *Home) Docs() []store.DocumentMeta {
	h.mu.Lock()
	defer h.mu.Unlock()
	return slices.Clone(h.list)
}

// CreateAndOpen creates a document and returns it with its editor URL.
func (h *Home) CreateAndOpen() (store.DocumentMeta, string) {
	doc := h.docs.Create(docstore.DefaultTitle)
	h.Reload()
	return doc, OpenURL(doc.ID)
}

// Open returns the editor URL for id.
func (h *Home) Open(id string) string {
	return OpenURL(id)
}

// Rename sets a new title. Blank, unchanged or unknown ids are rejected.
func (h *Home) Rename(id, title string) bool {
	next := docstore.NormalizeTitle(title)
	if next == "" {
		return false
	}
	cur, ok := h.docs.Get(id)
	if !ok || cur.Title == next {
		return false
	}
	if !h.docs.SetTitle(id, next) {
		return false
	}
	h.Reload()
	return true
}

// Archive moves id to the trash and reloads.
func (h *Home) Archive(id string) bool {
	if !h.trash.Archive(id) {
		return false
	}
	h.Reload()
	return true
}
