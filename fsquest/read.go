package fsquest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/questlab/backend/evalsrvc"
	"github.com/questlab/backend/sandbox"
)

const supportedSpecMajor = "v1"

type questToml struct {
	Specification string `toml:"specification"`

	QuestID  string `toml:"quest_id"`
	WorldID  string `toml:"world_id"`
	Title    string `toml:"title"`
	Language string `toml:"language"`

	DifficultyOneToFive int   `toml:"difficulty_1_to_5"`
	XpReward            int   `toml:"xp_reward"`
	HintUnlockAttempts  int   `toml:"hint_unlock_attempts"`
	TimeoutMs           int64 `toml:"timeout_ms"`

	StarterFile       string   `toml:"starter_file"`
	SolutionFile      string   `toml:"solution_file"`
	IllustrationImage string   `toml:"illustration_image"`
	Hints             []string `toml:"hints"`

	Tests    []testToml    `toml:"tests"`
	Datasets []datasetToml `toml:"datasets"`
}

type testToml struct {
	ID           string `toml:"id"`
	Kind         string `toml:"kind"`
	Description  string `toml:"description"`
	Expected     any    `toml:"expected"`
	Variable     string `toml:"variable"`
	ExpectedType string `toml:"expected_type"`
	Function     string `toml:"function"`
	Args         []any  `toml:"args"`
}

type datasetToml struct {
	Name string `toml:"name"`
	File string `toml:"file"`
}

// Read parses and validates one quest directory.
func Read(questDirPath string) (*Quest, error) {
	tomlPath := filepath.Join(questDirPath, "quest.toml")
	content, err := os.ReadFile(tomlPath)
	if err != nil {
		return nil, fmt.Errorf("error reading quest.toml: %w", err)
	}

	var parsed questToml
	if err := toml.Unmarshal(content, &parsed); err != nil {
		return nil, fmt.Errorf("failed to unmarshal quest.toml: %w", err)
	}

	if parsed.Specification == "" {
		return nil, fmt.Errorf("empty specification")
	}
	if !strings.HasPrefix(parsed.Specification, supportedSpecMajor) {
		return nil, fmt.Errorf("unsupported specification version: %s", parsed.Specification)
	}

	if parsed.QuestID == "" || parsed.WorldID == "" {
		return nil, fmt.Errorf("quest_id and world_id are required")
	}
	if parsed.Language == "" {
		return nil, fmt.Errorf("quest %s: language is required", parsed.QuestID)
	}
	if parsed.XpReward < 0 {
		return nil, fmt.Errorf("quest %s: xp_reward must not be negative", parsed.QuestID)
	}

	q := &Quest{
		QuestID:             parsed.QuestID,
		WorldID:             parsed.WorldID,
		Title:               parsed.Title,
		Language:            parsed.Language,
		DifficultyOneToFive: parsed.DifficultyOneToFive,
		XpReward:            parsed.XpReward,
		HintUnlockAttempts:  parsed.HintUnlockAttempts,
		TimeoutMs:           parsed.TimeoutMs,
		Hints:               parsed.Hints,
		IllustrationFname:   parsed.IllustrationImage,
	}

	if parsed.StarterFile != "" {
		starter, err := readQuestFile(questDirPath, parsed.StarterFile)
		if err != nil {
			return nil, fmt.Errorf("quest %s: %w", q.QuestID, err)
		}
		q.Starter = string(starter)
	}
	if parsed.SolutionFile != "" {
		solution, err := readQuestFile(questDirPath, parsed.SolutionFile)
		if err != nil {
			return nil, fmt.Errorf("quest %s: %w", q.QuestID, err)
		}
		q.Solution = string(solution)
	}
	if parsed.IllustrationImage != "" {
		img, err := readQuestFile(questDirPath, parsed.IllustrationImage)
		if err != nil {
			return nil, fmt.Errorf("quest %s: %w", q.QuestID, err)
		}
		q.IllustrationImg = img
	}

	q.Tests, err = convertTests(parsed.Tests)
	if err != nil {
		return nil, fmt.Errorf("quest %s: %w", q.QuestID, err)
	}

	for _, d := range parsed.Datasets {
		if d.Name == "" || d.File == "" {
			return nil, fmt.Errorf("quest %s: dataset entries need name and file", q.QuestID)
		}
		content, err := readQuestFile(questDirPath, d.File)
		if err != nil {
			return nil, fmt.Errorf("quest %s: %w", q.QuestID, err)
		}
		q.Datasets = append(q.Datasets, sandbox.DatasetFile{Name: d.Name, Content: content})
	}

	return q, nil
}

// ReadAll loads every quest directory below root. Directory order is not
// meaningful; results are sorted by quest id for stable listings.
func ReadAll(root string) ([]*Quest, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("error reading quest root: %w", err)
	}

	var quests []*Quest
	seen := map[string]bool{}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		q, err := Read(filepath.Join(root, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("quest dir %s: %w", entry.Name(), err)
		}
		if seen[q.QuestID] {
			return nil, fmt.Errorf("duplicate quest id %s", q.QuestID)
		}
		seen[q.QuestID] = true
		quests = append(quests, q)
	}

	sort.Slice(quests, func(i, j int) bool {
		return quests[i].QuestID < quests[j].QuestID
	})
	return quests, nil
}

func readQuestFile(questDir string, rel string) ([]byte, error) {
	clean := filepath.Clean(rel)
	if filepath.IsAbs(clean) || strings.Contains(clean, "..") {
		return nil, fmt.Errorf("unsafe file reference %q", rel)
	}
	content, err := os.ReadFile(filepath.Join(questDir, clean))
	if err != nil {
		return nil, fmt.Errorf("error reading %s: %w", rel, err)
	}
	return content, nil
}

func convertTests(tests []testToml) ([]evalsrvc.TestSpec, error) {
	specs := make([]evalsrvc.TestSpec, 0, len(tests))
	for _, t := range tests {
		spec := evalsrvc.TestSpec{
			ID:           t.ID,
			Kind:         evalsrvc.TestKind(t.Kind),
			Description:  t.Description,
			VariableName: t.Variable,
			ExpectedType: t.ExpectedType,
			FunctionName: t.Function,
		}
		if t.Expected != nil {
			raw, err := json.Marshal(t.Expected)
			if err != nil {
				return nil, fmt.Errorf("test %s: expected value is not representable: %w", t.ID, err)
			}
			spec.Expected = raw
		}
		for _, arg := range t.Args {
			raw, err := json.Marshal(arg)
			if err != nil {
				return nil, fmt.Errorf("test %s: argument is not representable: %w", t.ID, err)
			}
			spec.Args = append(spec.Args, raw)
		}
		if err := spec.Validate(); err != nil {
			return nil, err
		}
		specs = append(specs, spec)
	}
	return specs, nil
}
