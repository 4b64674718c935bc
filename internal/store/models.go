// Package store provides the key-value persistence layer for Apollo Documents.
// Every record lives under a single string key; catalogs are whole JSON blobs.
package store

import (
	"encoding/json"
	"fmt"
)

// DocumentMeta is one live document in the Index.
type DocumentMeta struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	CreatedAt int64  `json:"createdAt"` // Unix ms
	UpdatedAt int64  `json:"updatedAt"` // Unix ms
}

// TrashItem is an archived document awaiting restore or expiry.
type TrashItem struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	CreatedAt int64  `json:"createdAt"`
	UpdatedAt int64  `json:"updatedAt"`
	DeletedAt int64  `json:"deletedAt"`

	// ContentSnapshot is the raw content payload at archive time, nil when
	// the document had never been saved.
	ContentSnapshot *string `json:"contentV2"`
}

// UnmarshalJSON accepts trash written by older builds, which kept the
// snapshot under "delta".
func (t *TrashItem) UnmarshalJSON(data []byte) error {
	type plain TrashItem
	var aux struct {
		plain
		Delta *string `json:"delta"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*t = TrashItem(aux.plain)
	if t.ContentSnapshot == nil && aux.Delta != nil {
		t.ContentSnapshot = aux.Delta
	}
	return nil
}

// Meta returns the live-document view of the item.
func (t TrashItem) Meta() DocumentMeta {
	return DocumentMeta{ID: t.ID, Title: t.Title, CreatedAt: t.CreatedAt, UpdatedAt: t.UpdatedAt}
}

// Storage keys. Shapes are shared with the TypeScript build, so blobs
// written by either remain readable.
const (
	KeyIndex              = "apollo_docs_index_v1"
	KeyTrash              = "apollo_docs_trash_v1"
	KeyTheme              = "apollo_docs_theme_v1"
	KeyDocsView           = "apollo_docs_view_v1"
	KeyChangelogView      = "apollo_docs_changelog_view_v1"
	KeyWordCount          = "apollo_docs_wordcount_v1"
	KeyPrivateWarnDismiss = "apollo_docs_private_warn_dismissed_v1"

	// KeyPrivateWarnedSession lives in the session-scoped store.
	KeyPrivateWarnedSession = "apollo_docs_private_warned_session_v1"

	// Legacy single-document format, migrated once into the Index.
	KeyLegacyDelta = "apollo_docs_delta_v1"
	KeyLegacyTitle = "apollo_docs_title_v1"

	probeKey = "__apollo_ls_test__"
)

// ContentKey is the per-document content payload key.
func ContentKey(id string) string {
	return fmt.Sprintf("apollo_docs_doc_%s_v2", id)
}

// StartedKey is the per-document "user has started editing" flag key.
func StartedKey(id string) string {
	return fmt.Sprintf("apollo_docs_doc_%s_started_v1", id)
}
