package model

import (
	"maps"
	"slices"
	"strings"
	"time"
)

// DefaultUserName is used wherever a profile has no name.
const DefaultUserName = "Friend"

// PersonalInfo holds the facts collected by the profile questionnaire
type PersonalInfo struct {
	Name               string
	Age                string
	Location           string
	Occupation         string
	Interests          []string
	Goals              []string
	CommunicationStyle string
}

// ProfileMemory is a curated fact kept on the profile itself. It is independent of
// the similarity-indexed MemoryRecord store.
type ProfileMemory struct {
	Type       string
	Content    string
	Tags       []string
	Importance int
	CreatedAt  time.Time
}

// Profile is a user's questionnaire result and curated memories
type Profile struct {
	UserID       string
	PersonalInfo PersonalInfo
	Answers      map[string]string
	Memories     []ProfileMemory
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// DisplayName returns the user's name or DefaultUserName.
func (p *Profile) DisplayName() string {
	if p == nil || strings.TrimSpace(p.PersonalInfo.Name) == "" {
		return DefaultUserName
	}
	return strings.TrimSpace(p.PersonalInfo.Name)
}

// Copy returns a deep copy of the profile. A nil profile copies to nil.
func (p *Profile) Copy() *Profile {
	if p == nil {
		return nil
	}
	copied := *p
	copied.PersonalInfo.Interests = slices.Clone(p.PersonalInfo.Interests)
	copied.PersonalInfo.Goals = slices.Clone(p.PersonalInfo.Goals)
	copied.Answers = maps.Clone(p.Answers)
	copied.Memories = make([]ProfileMemory, len(p.Memories))
	for i, m := range p.Memories {
		m.Tags = slices.Clone(m.Tags)
		copied.Memories[i] = m
	}
	return &copied
}

// RelevantMemories returns up to limit profile memories. Without a query they are
// ordered newest first. With a query only memories whose content or tags contain it
// (case-insensitively) are kept, ordered by importance and then recency.
func (p *Profile) RelevantMemories(query string, limit int) []ProfileMemory {
	if p == nil || limit <= 0 {
		return nil
	}

	query = strings.ToLower(strings.TrimSpace(query))
	var picked []ProfileMemory
	for _, m := range p.Memories {
		if query == "" || matchesMemory(m, query) {
			picked = append(picked, m)
		}
	}

	slices.SortStableFunc(picked, func(a, b ProfileMemory) int {
		if query != "" && a.Importance != b.Importance {
			return b.Importance - a.Importance
		}
		return b.CreatedAt.Compare(a.CreatedAt)
	})

	if len(picked) > limit {
		picked = picked[:limit]
	}
	return picked
}

func matchesMemory(m ProfileMemory, query string) bool {
	if strings.Contains(strings.ToLower(m.Content), query) {
		return true
	}
	for _, tag := range m.Tags {
		if strings.Contains(strings.ToLower(tag), query) {
			return true
		}
	}
	return false
}
