// Package questsrvc serves the quest catalog. Quests are loaded and
// schema-validated once at process start; lookups after that are
// read-only and allocation-free.
package questsrvc

import (
	"fmt"
	"regexp"
	"sort"

	"github.com/questlab/backend/fsquest"
)

// QuestIDRegex admits letters, digits, underscore and hyphen only; it is
// checked before any sandbox work begins.
var QuestIDRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

type QuestSrvc struct {
	byID    map[string]*fsquest.Quest
	byWorld map[string][]*fsquest.Quest
	ordered []*fsquest.Quest
}

// NewQuestSrvc loads every quest below questDir.
func NewQuestSrvc(questDir string) (*QuestSrvc, error) {
	quests, err := fsquest.ReadAll(questDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load quest catalog: %w", err)
	}
	return NewQuestSrvcFromQuests(quests)
}

// NewQuestSrvcFromQuests indexes an already-loaded quest set; tests use
// this to avoid touching the filesystem.
func NewQuestSrvcFromQuests(quests []*fsquest.Quest) (*QuestSrvc, error) {
	s := &QuestSrvc{
		byID:    map[string]*fsquest.Quest{},
		byWorld: map[string][]*fsquest.Quest{},
	}
	for _, q := range quests {
		if !QuestIDRegex.MatchString(q.QuestID) {
			return nil, ErrInvalidQuestID(q.QuestID)
		}
		if _, dup := s.byID[q.QuestID]; dup {
			return nil, fmt.Errorf("duplicate quest id %s", q.QuestID)
		}
		s.byID[q.QuestID] = q
		s.byWorld[q.WorldID] = append(s.byWorld[q.WorldID], q)
		s.ordered = append(s.ordered, q)
	}
	sort.Slice(s.ordered, func(i, j int) bool {
		return s.ordered[i].QuestID < s.ordered[j].QuestID
	})
	return s, nil
}

func (s *QuestSrvc) Get(questID string) (*fsquest.Quest, error) {
	if !QuestIDRegex.MatchString(questID) {
		return nil, ErrInvalidQuestID(questID)
	}
	q, ok := s.byID[questID]
	if !ok {
		return nil, ErrQuestNotFound(questID)
	}
	return q, nil
}

func (s *QuestSrvc) List() []*fsquest.Quest {
	return s.ordered
}

// WorldQuestIDs returns the sibling quest set of a world; the progression
// engine recounts passes over exactly this set.
func (s *QuestSrvc) WorldQuestIDs(worldID string) []string {
	quests := s.byWorld[worldID]
	ids := make([]string, len(quests))
	for i, q := range quests {
		ids[i] = q.QuestID
	}
	return ids
}

func (s *QuestSrvc) WorldTotalQuests(worldID string) int {
	return len(s.byWorld[worldID])
}

func (s *QuestSrvc) Worlds() []string {
	worlds := make([]string, 0, len(s.byWorld))
	for w := range s.byWorld {
		worlds = append(worlds, w)
	}
	sort.Strings(worlds)
	return worlds
}
