package docstore

import (
	"go.uber.org/zap"

	"github.com/eternalheli/apollodocs/internal/store"
)

// MigrateLegacy converts the single-document format into one Index entry.
// It only runs while the Index is empty and a legacy payload exists.
func (s *Store) MigrateLegacy() (store.DocumentMeta, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.index.Load()) > 0 {
		return store.DocumentMeta{}, false
	}
	payload, outcome := s.adapter.ReadRaw(store.KeyLegacyDelta)
	if outcome != store.Found || payload == "" {
		return store.DocumentMeta{}, false
	}

	title := DefaultTitle
	if raw, outcome := s.adapter.ReadRaw(store.KeyLegacyTitle); outcome == store.Found {
		if t := NormalizeTitle(raw); t != "" {
			title = t
		}
	}

	id := s.uniqueIDLocked(nil)
	now := s.now()
	doc := store.DocumentMeta{ID: id, Title: title, CreatedAt: now, UpdatedAt: now}
	if err := s.adapter.WriteRaw(store.ContentKey(id), payload); err != nil {
		s.log.Warn("legacy migration aborted", zap.Error(err))
		return store.DocumentMeta{}, false
	}
	if err := s.index.Save([]store.DocumentMeta{doc}); err != nil {
		s.log.Warn("legacy migration aborted", zap.Error(err))
		_ = s.adapter.Remove(store.ContentKey(id))
		return store.DocumentMeta{}, false
	}
	_ = s.adapter.WriteFlag(store.StartedKey(id), true)
	_ = s.adapter.Remove(store.KeyLegacyDelta)
	_ = s.adapter.Remove(store.KeyLegacyTitle)

	s.log.Info("legacy document migrated", zap.String("id", id))
	return doc, true
}
