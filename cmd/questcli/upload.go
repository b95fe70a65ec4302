package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/questlab/backend/conf"
	"github.com/questlab/backend/fsquest"
	"github.com/questlab/backend/s3bucket"
)

type uploadState int

const (
	uploadStatePreview uploadState = iota
	uploadStateEnterID
	uploadStateConfirm
	uploadStateUploading
	uploadStateDone
)

type uploadModel struct {
	state        uploadState
	uplSpinner   spinner.Model
	questDir     string
	quest        *fsquest.Quest
	questIDInput textinput.Model
	uploadedTo   []string
	err          error
}

func newUploadModel(dir string, quest *fsquest.Quest) uploadModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#3498db"))

	ti := textinput.New()
	ti.SetValue(quest.QuestID)
	ti.CharLimit = 64
	ti.Width = 26
	ti.Prompt = ""
	ti.TextStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#9b59b6"))

	return uploadModel{
		state:        uploadStatePreview,
		uplSpinner:   s,
		questDir:     dir,
		quest:        quest,
		questIDInput: ti,
	}
}

func (u uploadModel) Init() tea.Cmd {
	return nil
}

type uploadResult struct {
	uploaded []string
	err      error
}

func (u uploadModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch u.state {
	case uploadStatePreview:
		if key, ok := msg.(tea.KeyMsg); ok {
			switch key.String() {
			case "ctrl+c", "q":
				return u, tea.Quit
			default:
				u.state = uploadStateEnterID
				u.questIDInput.Focus()
				return u, textinput.Blink
			}
		}

	case uploadStateEnterID:
		var tiCmd tea.Cmd
		u.questIDInput, tiCmd = u.questIDInput.Update(msg)
		if key, ok := msg.(tea.KeyMsg); ok {
			switch key.Type {
			case tea.KeyCtrlC:
				return u, tea.Quit
			case tea.KeyEnter:
				u.questIDInput.Blur()
				u.state = uploadStateConfirm
				return u, nil
			}
		}
		return u, tiCmd

	case uploadStateConfirm:
		if key, ok := msg.(tea.KeyMsg); ok {
			switch key.String() {
			case "ctrl+c", "q", "n", "N":
				return u, tea.Quit
			case "y", "Y":
				u.state = uploadStateUploading
				questID := u.questIDInput.Value()
				return u, tea.Batch(u.uplSpinner.Tick, func() tea.Msg {
					uploaded, err := uploadQuestAssets(questID, u.quest)
					return uploadResult{uploaded: uploaded, err: err}
				})
			}
		}

	case uploadStateUploading:
		switch msg := msg.(type) {
		case uploadResult:
			u.uploadedTo = msg.uploaded
			u.err = msg.err
			u.state = uploadStateDone
			return u, nil
		case spinner.TickMsg:
			var cmd tea.Cmd
			u.uplSpinner, cmd = u.uplSpinner.Update(msg)
			return u, cmd
		}

	case uploadStateDone:
		if _, ok := msg.(tea.KeyMsg); ok {
			return u, tea.Quit
		}
	}
	return u, nil
}

func (u uploadModel) View() string {
	header := fmt.Sprintf("Quest directory: %s\n\n%s\n", valueStyle.Render(u.questDir), renderQuestPreview(u.quest))

	switch u.state {
	case uploadStatePreview:
		return header + "\nPress any key to continue, q to quit.\n"
	case uploadStateEnterID:
		return header + fmt.Sprintf("\nQuest id: %s\n", u.questIDInput.View())
	case uploadStateConfirm:
		return header + fmt.Sprintf("\nUpload assets of %s? Press %s to confirm, %s to cancel.\n",
			valueStyle.Render(u.questIDInput.Value()), valueStyle.Render("Y"), valueStyle.Render("N"))
	case uploadStateUploading:
		return header + fmt.Sprintf("\n%s Uploading assets...\n", u.uplSpinner.View())
	case uploadStateDone:
		if u.err != nil {
			return header + fmt.Sprintf("\nUpload failed: %v\nPress any key to exit.\n", u.err)
		}
		out := header + "\nUploaded:\n"
		for _, url := range u.uploadedTo {
			out += "  " + url + "\n"
		}
		return out + "Press any key to exit.\n"
	}
	return header
}

// uploadQuestAssets pushes the quest's illustration and dataset files to
// the assets bucket. Grading inputs stay on the filesystem catalog; only
// media served to clients goes to S3.
func uploadQuestAssets(questID string, quest *fsquest.Quest) ([]string, error) {
	bucketName := os.Getenv("ASSETS_S3_BUCKET")
	if bucketName == "" {
		return nil, fmt.Errorf("ASSETS_S3_BUCKET is not set")
	}
	region := conf.GetEnvOrDefault("AWS_REGION", "eu-central-1")

	bucket, err := s3bucket.NewS3Bucket(region, bucketName)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	var uploaded []string

	if len(quest.IllustrationImg) > 0 {
		img, mediaType, err := compressIllustration(quest.IllustrationImg, 600)
		if err != nil {
			return uploaded, fmt.Errorf("failed to compress illustration: %w", err)
		}
		key := fmt.Sprintf("quests/%s/illustration-%s.jpg", questID, uuid.New().String())
		url, err := bucket.Upload(ctx, img, key, mediaType)
		if err != nil {
			return uploaded, err
		}
		uploaded = append(uploaded, url)
	}

	for _, dataset := range quest.Datasets {
		key := fmt.Sprintf("quests/%s/datasets/%s", questID, dataset.Name)
		url, err := bucket.Upload(ctx, dataset.Content, key, "application/octet-stream")
		if err != nil {
			return uploaded, err
		}
		uploaded = append(uploaded, url)
	}

	return uploaded, nil
}
