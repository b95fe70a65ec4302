package fsquest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/questlab/backend/evalsrvc"
)

const validQuestToml = `specification = "v1.0"

quest_id = "hello-world"
world_id = "basics"
title = "Hello, World"
language = "python"

difficulty_1_to_5 = 1
xp_reward = 50
hint_unlock_attempts = 3
timeout_ms = 2000

starter_file = "starter.py"
solution_file = "solution.py"
hints = ["Use print().", "Strings go in quotes."]

[[tests]]
id = "greets"
kind = "output"
description = "prints the greeting"
expected = "Hello, World!"

[[tests]]
id = "has-count"
kind = "variable_value"
variable = "count"
expected = 3

[[tests]]
id = "greet-fn"
kind = "function_call"
function = "greet"
args = ["World"]
expected = "Hello, World!"

[[datasets]]
name = "data.txt"
file = "data.txt"
`

func writeQuestDir(t *testing.T, questToml string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "quest.toml"), []byte(questToml), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "starter.py"), []byte("# your code here\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "solution.py"), []byte("print(\"Hello, World!\")\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "data.txt"), []byte("1,2,3"), 0644))
	return dir
}

func TestReadValidQuest(t *testing.T) {
	dir := writeQuestDir(t, validQuestToml)

	q, err := Read(dir)
	require.NoError(t, err)

	assert.Equal(t, "hello-world", q.QuestID)
	assert.Equal(t, "basics", q.WorldID)
	assert.Equal(t, "python", q.Language)
	assert.Equal(t, 50, q.XpReward)
	assert.Equal(t, 3, q.HintUnlockAttempts)
	assert.Equal(t, int64(2000), q.TimeoutMs)
	assert.Equal(t, "# your code here\n", q.Starter)
	assert.Contains(t, q.Solution, "Hello, World!")
	assert.Equal(t, 2, q.MaxHintTier())

	require.Len(t, q.Tests, 3)
	assert.Equal(t, evalsrvc.KindOutput, q.Tests[0].Kind)
	assert.JSONEq(t, `"Hello, World!"`, string(q.Tests[0].Expected))
	assert.Equal(t, "count", q.Tests[1].VariableName)
	assert.JSONEq(t, `3`, string(q.Tests[1].Expected))
	assert.Equal(t, "greet", q.Tests[2].FunctionName)
	require.Len(t, q.Tests[2].Args, 1)
	assert.JSONEq(t, `"World"`, string(q.Tests[2].Args[0]))

	require.Len(t, q.Datasets, 1)
	assert.Equal(t, "data.txt", q.Datasets[0].Name)
	assert.Equal(t, "1,2,3", string(q.Datasets[0].Content))
}

func TestReadRejectsUnsupportedSpecVersion(t *testing.T) {
	dir := writeQuestDir(t, `specification = "v2.0"
quest_id = "q"
world_id = "w"
language = "python"
`)

	_, err := Read(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported specification version")
}

func TestReadRejectsMissingRequiredFields(t *testing.T) {
	dir := writeQuestDir(t, `specification = "v1.0"
quest_id = "q"
world_id = ""
language = "python"
`)

	_, err := Read(dir)
	assert.Error(t, err)
}

func TestReadValidatesTestSpecsAtLoadTime(t *testing.T) {
	dir := writeQuestDir(t, `specification = "v1.0"
quest_id = "q"
world_id = "w"
language = "python"

[[tests]]
id = "broken"
kind = "variable_type"
variable = "x"
`)

	_, err := Read(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected_type")
}

func TestReadRejectsFileTraversal(t *testing.T) {
	dir := writeQuestDir(t, `specification = "v1.0"
quest_id = "q"
world_id = "w"
language = "python"
starter_file = "../outside.py"
`)

	_, err := Read(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsafe file reference")
}

func TestReadAllSortsAndRejectsDuplicates(t *testing.T) {
	root := t.TempDir()
	for _, id := range []string{"zeta", "alpha"} {
		qdir := filepath.Join(root, id)
		require.NoError(t, os.Mkdir(qdir, 0755))
		questToml := `specification = "v1.0"
quest_id = "` + id + `"
world_id = "w"
language = "python"
`
		require.NoError(t, os.WriteFile(filepath.Join(qdir, "quest.toml"), []byte(questToml), 0644))
	}

	quests, err := ReadAll(root)
	require.NoError(t, err)
	require.Len(t, quests, 2)
	assert.Equal(t, "alpha", quests[0].QuestID)
	assert.Equal(t, "zeta", quests[1].QuestID)

	dupDir := filepath.Join(root, "alpha-copy")
	require.NoError(t, os.Mkdir(dupDir, 0755))
	questToml := `specification = "v1.0"
quest_id = "alpha"
world_id = "w"
language = "python"
`
	require.NoError(t, os.WriteFile(filepath.Join(dupDir, "quest.toml"), []byte(questToml), 0644))

	_, err = ReadAll(root)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate quest id")
}
