package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/questlab/backend/fsquest"
)

var (
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#3498db"))
	valueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#e056fd"))
)

func renderQuestPreview(q *fsquest.Quest) string {
	difficultyNames := map[int]string{
		1: "very easy",
		2: "easy",
		3: "medium",
		4: "hard",
		5: "very hard",
	}

	kindCounts := map[string]int{}
	for _, t := range q.Tests {
		kindCounts[string(t.Kind)]++
	}
	kinds := make([]string, 0, len(kindCounts))
	for kind, n := range kindCounts {
		kinds = append(kinds, fmt.Sprintf("%dx %s", n, kind))
	}

	datasetBytes := 0
	for _, d := range q.Datasets {
		datasetBytes += len(d.Content)
	}

	rows := []struct {
		label string
		value string
	}{
		{"Quest", q.QuestID},
		{"World", q.WorldID},
		{"Title", q.Title},
		{"Language", q.Language},
		{"Difficulty", fmt.Sprintf("%d (%s)", q.DifficultyOneToFive, difficultyNames[q.DifficultyOneToFive])},
		{"XP reward", fmt.Sprintf("%d", q.XpReward)},
		{"Timeout", fmt.Sprintf("%d ms", q.TimeoutMs)},
		{"Tests", strings.Join(kinds, ", ")},
		{"Hints", fmt.Sprintf("%d (every %d failed attempts)", len(q.Hints), q.HintUnlockAttempts)},
		{"Datasets", fmt.Sprintf("%d files, %d bytes", len(q.Datasets), datasetBytes)},
		{"Illustration", q.IllustrationFname},
	}

	var sb strings.Builder
	for _, row := range rows {
		if row.value == "" {
			continue
		}
		sb.WriteString(fmt.Sprintf("  %s %s\n",
			labelStyle.Render(fmt.Sprintf("%-13s", row.label+":")),
			valueStyle.Render(row.value)))
	}
	return sb.String()
}
