// Package fsquest reads quest definitions from a directory tree. Each
// quest lives in its own directory with a quest.toml plus starter,
// solution, dataset and illustration files. The whole shape, including
// every test specification, is validated here at load time; the grading
// engine trusts it and never re-validates per request.
package fsquest

import (
	"github.com/questlab/backend/evalsrvc"
	"github.com/questlab/backend/sandbox"
)

type Quest struct {
	QuestID  string
	WorldID  string
	Title    string
	Language string

	DifficultyOneToFive int
	XpReward            int
	HintUnlockAttempts  int
	TimeoutMs           int64

	Starter  string
	Solution string // hidden from every public view
	Hints    []string

	Tests    []evalsrvc.TestSpec
	Datasets []sandbox.DatasetFile

	IllustrationFname string
	IllustrationImg   []byte
}

// MaxHintTier is the highest hint tier a quest can unlock.
func (q *Quest) MaxHintTier() int {
	return len(q.Hints)
}
