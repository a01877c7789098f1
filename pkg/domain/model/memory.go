package model

import (
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

// EmbeddingDimension is the dimension of every stored embedding vector.
// Gemini text-embedding-004 uses 768 dimensions and the hash fallback matches it.
const EmbeddingDimension = 768

// MemoryID is a UUID-based identifier for MemoryRecord
type MemoryID string

// NewMemoryID generates a new UUID v4 MemoryID
func NewMemoryID() MemoryID {
	return MemoryID(uuid.New().String())
}

// MemoryRecord is a stored (text, vector, metadata) unit owned by exactly one user.
// Records are immutable once written.
type MemoryRecord struct {
	ID        MemoryID
	UserID    string
	Text      string
	Embedding []float32
	Tags      []string // normalized with NewTagSet
	Metadata  map[string]any
	CreatedAt time.Time
}

// ScoredMemory is a MemoryRecord returned from a nearest-neighbor search.
// Distance is the cosine distance to the query vector; smaller is closer.
type ScoredMemory struct {
	Record   *MemoryRecord
	Distance float64
}

// NewTagSet trims, de-duplicates and sorts tags, dropping empty entries.
func NewTagSet(tags ...string) []string {
	set := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		set[tag] = struct{}{}
	}
	return slices.Sorted(maps.Keys(set))
}

// HasTag reports whether the record carries tag.
func (m *MemoryRecord) HasTag(tag string) bool {
	return slices.Contains(m.Tags, tag)
}

// HasAnyTag reports whether the record's tag set intersects tags.
func (m *MemoryRecord) HasAnyTag(tags ...string) bool {
	for _, tag := range tags {
		if m.HasTag(tag) {
			return true
		}
	}
	return false
}

// Copy returns a deep copy of the record.
func (m *MemoryRecord) Copy() *MemoryRecord {
	copied := &MemoryRecord{
		ID:        m.ID,
		UserID:    m.UserID,
		Text:      m.Text,
		CreatedAt: m.CreatedAt,
	}
	if m.Embedding != nil {
		copied.Embedding = slices.Clone(m.Embedding)
	}
	if m.Tags != nil {
		copied.Tags = slices.Clone(m.Tags)
	}
	if m.Metadata != nil {
		copied.Metadata = maps.Clone(m.Metadata)
	}
	return copied
}

// MetaString returns metadata[key] as a string, or "" when absent or not a string.
func (m *MemoryRecord) MetaString(key string) string {
	if m.Metadata == nil {
		return ""
	}
	s, _ := m.Metadata[key].(string)
	return s
}
