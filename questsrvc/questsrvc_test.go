package questsrvc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/questlab/backend/fsquest"
)

func catalogFixture() []*fsquest.Quest {
	return []*fsquest.Quest{
		{QuestID: "loops-1", WorldID: "loops"},
		{QuestID: "hello", WorldID: "basics"},
		{QuestID: "hello-2", WorldID: "basics"},
	}
}

func TestGetByQuestId(t *testing.T) {
	srvc, err := NewQuestSrvcFromQuests(catalogFixture())
	require.NoError(t, err)

	quest, err := srvc.Get("hello")
	require.NoError(t, err)
	assert.Equal(t, "basics", quest.WorldID)
}

func TestGetRejectsMalformedId(t *testing.T) {
	srvc, err := NewQuestSrvcFromQuests(catalogFixture())
	require.NoError(t, err)

	for _, id := range []string{"../escape", "a b", "", "hello!"} {
		_, err := srvc.Get(id)
		require.Error(t, err, "id %q", id)
	}
}

func TestGetUnknownQuest(t *testing.T) {
	srvc, err := NewQuestSrvcFromQuests(catalogFixture())
	require.NoError(t, err)

	_, err = srvc.Get("nope")
	assert.Error(t, err)
}

func TestListIsSortedByQuestId(t *testing.T) {
	srvc, err := NewQuestSrvcFromQuests(catalogFixture())
	require.NoError(t, err)

	ids := []string{}
	for _, q := range srvc.List() {
		ids = append(ids, q.QuestID)
	}
	assert.Equal(t, []string{"hello", "hello-2", "loops-1"}, ids)
}

func TestWorldLookups(t *testing.T) {
	srvc, err := NewQuestSrvcFromQuests(catalogFixture())
	require.NoError(t, err)

	assert.Equal(t, []string{"basics", "loops"}, srvc.Worlds())
	assert.ElementsMatch(t, []string{"hello", "hello-2"}, srvc.WorldQuestIDs("basics"))
	assert.Equal(t, 2, srvc.WorldTotalQuests("basics"))
	assert.Equal(t, 0, srvc.WorldTotalQuests("unknown"))
}

func TestDuplicateQuestIdRejected(t *testing.T) {
	_, err := NewQuestSrvcFromQuests([]*fsquest.Quest{
		{QuestID: "hello", WorldID: "basics"},
		{QuestID: "hello", WorldID: "loops"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate")
}
