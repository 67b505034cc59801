package service

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/Rrens/studymate/internal/domain"
)

// DefaultStorageKey namespaces the study document of the local client
const DefaultStorageKey = "studymate_data"

// StorageKey returns the key holding clientID's document under base.
// The empty client maps to base itself.
func StorageKey(base, clientID string) string {
	if base == "" {
		base = DefaultStorageKey
	}
	if clientID == "" {
		return base
	}
	return base + ":" + clientID
}

// StudyStore reads and writes the study document under a single key.
// Neither Load nor Save returns an error: failures are logged and degrade to empty state.
type StudyStore struct {
	kv  domain.KeyValueStore
	key string
}

func NewStudyStore(kv domain.KeyValueStore, key string) *StudyStore {
	if key == "" {
		key = DefaultStorageKey
	}
	return &StudyStore{kv: kv, key: key}
}

// Key returns the storage key
func (s *StudyStore) Key() string {
	return s.key
}

// Load returns the stored document. Missing or unparsable fields come back empty,
// each field independently of the others.
func (s *StudyStore) Load(ctx context.Context) domain.StudyData {
	empty := domain.StudyData{}.Normalize()

	raw, err := s.kv.Get(ctx, s.key)
	if errors.Is(err, domain.ErrKeyNotFound) {
		return empty
	}
	if err != nil {
		log.Error().Err(err).Str("key", s.key).Msg("Failed to read study data")
		return empty
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(raw, &doc); err != nil {
		log.Warn().Err(err).Str("key", s.key).Msg("Stored study data is corrupt, starting empty")
		return empty
	}

	return domain.StudyData{
		Notes:       s.decodeItems(doc, "notes"),
		Bookmarks:   s.decodeItems(doc, "bookmarks"),
		SavedPoints: s.decodeItems(doc, "savedPoints"),
	}
}

func (s *StudyStore) decodeItems(doc map[string]json.RawMessage, field string) []domain.StudyItem {
	raw, ok := doc[field]
	if !ok {
		return []domain.StudyItem{}
	}

	var items []domain.StudyItem
	if err := json.Unmarshal(raw, &items); err != nil {
		log.Warn().Err(err).Str("key", s.key).Str("field", field).Msg("Dropping unparsable study items")
		return []domain.StudyItem{}
	}
	if items == nil {
		return []domain.StudyItem{}
	}
	return items
}

// Save overwrites the stored document with all three collections
func (s *StudyStore) Save(ctx context.Context, data domain.StudyData) {
	raw, err := json.Marshal(data.Normalize())
	if err != nil {
		log.Error().Err(err).Str("key", s.key).Msg("Failed to encode study data")
		return
	}

	if err := s.kv.Set(ctx, s.key, raw); err != nil {
		log.Error().Err(err).Str("key", s.key).Msg("Failed to save study data")
	}
}
