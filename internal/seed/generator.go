// ABOUTME: Data generator for the development backend's conference content.
// ABOUTME: Uses OpenAI chat completions for sessions and sponsors, falling back to static data.

package seed

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// Config configures a Generator. An empty APIKey selects static data.
type Config struct {
	APIKey  string
	Model   string
	BaseURL string
}

// Generator creates fake data using OpenAI or falls back to static data.
type Generator struct {
	client *openai.Client
	model  string
	logger *zap.Logger
}

// NewGenerator returns a generator for cfg.
func NewGenerator(cfg Config, logger *zap.Logger) *Generator {
	if logger == nil {
		logger = zap.NewNop()
	}
	g := &Generator{model: cfg.Model, logger: logger.Named("seed")}
	if g.model == "" {
		g.model = openai.GPT4oMini
	}

	if cfg.APIKey == "" {
		g.logger.Info("No OpenAI API key configured, using static fallback data")
		return g
	}
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	g.client = openai.NewClientWithConfig(clientCfg)
	g.logger.Info("OpenAI API key found, using AI-generated data", zap.String("model", g.model))
	return g
}

// UsesAI reports whether generation goes through OpenAI.
func (g *Generator) UsesAI() bool {
	return g.client != nil
}

// SpeakerData is a generated speaker profile.
type SpeakerData struct {
	NicknameKo  string `json:"nickname_ko"`
	NicknameEn  string `json:"nickname_en"`
	BiographyKo string `json:"biography_ko"`
	BiographyEn string `json:"biography_en"`
}

// SessionData is a generated presentation.
type SessionData struct {
	TitleKo       string      `json:"title_ko"`
	TitleEn       string      `json:"title_en"`
	SummaryKo     string      `json:"summary_ko"`
	SummaryEn     string      `json:"summary_en"`
	DescriptionKo string      `json:"description_ko"`
	DescriptionEn string      `json:"description_en"`
	Categories    []string    `json:"categories"`
	Speaker       SpeakerData `json:"speaker"`
}

// SponsorData is a generated sponsor.
type SponsorData struct {
	Name        string `json:"name"`
	Tier        string `json:"tier"`
	Description string `json:"description"`
	URL         string `json:"url"`
}

// GeneratedData holds all the generated fake data.
type GeneratedData struct {
	Sessions []SessionData `json:"sessions"`
	Sponsors []SponsorData `json:"sponsors"`
}

// Generate creates numSessions presentations and numSponsors sponsors.
// Any AI failure replaces the whole set with static data.
func (g *Generator) Generate(ctx context.Context, numSessions, numSponsors int) (*GeneratedData, error) {
	if !g.UsesAI() {
		return generateStatic(numSessions, numSponsors), nil
	}

	data := &GeneratedData{}

	type result struct {
		name string
		err  error
	}

	resultCh := make(chan result, 2)

	g.logger.Info("Generating seed data via AI", zap.Int("sessions", numSessions), zap.Int("sponsors", numSponsors))

	go func() {
		sessions, err := g.generateSessions(ctx, numSessions)
		if err == nil {
			data.Sessions = sessions
		}
		resultCh <- result{"sessions", err}
	}()

	go func() {
		sponsors, err := g.generateSponsors(ctx, numSponsors)
		if err == nil {
			data.Sponsors = sponsors
		}
		resultCh <- result{"sponsors", err}
	}()

	var failed []string
	for i := 0; i < 2; i++ {
		r := <-resultCh
		if r.err != nil {
			g.logger.Warn("AI generation failed", zap.String("set", r.name), zap.Error(r.err))
			failed = append(failed, r.name)
		}
	}

	if len(failed) > 0 {
		g.logger.Info("AI generation incomplete, falling back to static data", zap.Strings("failed", failed))
		return generateStatic(numSessions, numSponsors), nil
	}
	return data, nil
}

func (g *Generator) generateSessions(ctx context.Context, count int) ([]SessionData, error) {
	prompt := fmt.Sprintf(`Generate %d realistic talk proposals for PyCon Korea. Mix beginner and advanced topics:
web frameworks, data science, packaging, typing, async, education, community.

Return as JSON array with objects containing: title_ko, title_en, summary_ko, summary_en,
description_ko, description_en (markdown, 2-3 paragraphs), categories (array of 1-2 of
"Web", "Data Science", "Core Python", "Community", "Education", "DevOps"),
speaker (object with nickname_ko, nickname_en, biography_ko, biography_en).
Korean fields must be in Korean, English fields in English.`, count)

	return callOpenAI[[]SessionData](ctx, g.client, g.model, prompt)
}

func (g *Generator) generateSponsors(ctx context.Context, count int) ([]SponsorData, error) {
	prompt := fmt.Sprintf(`Generate %d fictional sponsor companies for a Python conference.
Return as JSON array with objects containing: name, tier (one of "Keystone", "Diamond",
"Platinum", "Gold", "Startup"), description (one sentence), url (https://...example.com).`, count)

	return callOpenAI[[]SponsorData](ctx, g.client, g.model, prompt)
}

func callOpenAI[T any](ctx context.Context, client *openai.Client, model, prompt string) (T, error) {
	var result T

	resp, err := client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "You are a data generator. Always respond with valid JSON only, no markdown or explanation.",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
	})
	if err != nil {
		return result, fmt.Errorf("OpenAI API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return result, fmt.Errorf("no response from OpenAI")
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	content = strings.TrimSuffix(strings.TrimPrefix(strings.TrimPrefix(content, "```json"), "```"), "```")
	if err := json.Unmarshal([]byte(content), &result); err != nil {
		return result, fmt.Errorf("failed to parse JSON response: %w", err)
	}

	return result, nil
}
