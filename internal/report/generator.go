// Package report turns an account's intake form and symptom log into a
// personalized coaching report via an LLM completion.
package report

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sethvargo/go-retry"

	"github.com/rowanhealth/rowan/internal/model"
)

const systemPrompt = `You are a supportive health coach writing a personalized report for a client
who has completed an intake form and a 5-day symptom log. Summarize the patterns
you see, suggest three concrete habit changes, and keep a warm, encouraging tone.
Do not give medical diagnoses. Write in plain prose with short sections.`

// CompletionClient is the subset of the OpenAI client the generator
// uses. Satisfied by *openai.Client.
type CompletionClient interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

type Generator struct {
	client CompletionClient
	model  string
	logger *slog.Logger
}

func NewGenerator(client CompletionClient, model string, logger *slog.Logger) *Generator {
	if model == "" {
		model = openai.GPT4oMini
	}
	return &Generator{client: client, model: model, logger: logger}
}

// Model returns the completion model name recorded on generated reports.
func (g *Generator) Model() string {
	return g.model
}

// GenerateInitial produces the initial report from the intake form and
// daily logs. Transient API failures are retried with exponential
// backoff before giving up.
func (g *Generator) GenerateInitial(ctx context.Context, intake *model.IntakeForm, logs []*model.DailyLog) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: buildPrompt(intake, logs)},
		},
	}

	var content string
	backoff := retry.WithMaxRetries(3, retry.NewExponential(time.Second))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		resp, err := g.client.CreateChatCompletion(ctx, req)
		if err != nil {
			g.logger.Warn("completion attempt failed", "error", err)
			return retry.RetryableError(err)
		}
		if len(resp.Choices) == 0 {
			return retry.RetryableError(fmt.Errorf("completion returned no choices"))
		}
		content = resp.Choices[0].Message.Content
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("generate report: %w", err)
	}
	return content, nil
}

func buildPrompt(intake *model.IntakeForm, logs []*model.DailyLog) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Client intake:\n")
	fmt.Fprintf(&b, "- Age: %d\n", intake.Age)
	fmt.Fprintf(&b, "- Height: %d cm, weight: %.1f kg\n", intake.HeightCm, intake.WeightKg)
	fmt.Fprintf(&b, "- Primary goal: %s\n", intake.PrimaryGoal)
	if intake.Symptoms != "" {
		fmt.Fprintf(&b, "- Reported symptoms: %s\n", intake.Symptoms)
	}
	if intake.Medications != "" {
		fmt.Fprintf(&b, "- Medications: %s\n", intake.Medications)
	}
	if intake.Notes != "" {
		fmt.Fprintf(&b, "- Notes: %s\n", intake.Notes)
	}

	b.WriteString("\nSymptom log:\n")
	for _, l := range logs {
		fmt.Fprintf(&b, "Day %d: energy %d/10, sleep %d/10, mood %d/10", l.Day, l.Energy, l.Sleep, l.Mood)
		if l.Symptoms != "" {
			fmt.Fprintf(&b, ", symptoms: %s", l.Symptoms)
		}
		if l.Notes != "" {
			fmt.Fprintf(&b, ", notes: %s", l.Notes)
		}
		b.WriteByte('\n')
	}

	return b.String()
}
