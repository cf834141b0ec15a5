package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/KaramelBytes/dataloom-cli/internal/analysis"
	"github.com/KaramelBytes/dataloom-cli/internal/cluster"
	"github.com/KaramelBytes/dataloom-cli/internal/utils"
)

// FallbackNarrative replaces the model output whenever the proxy cannot
// produce a usable narrative. The report always carries insight text.
const FallbackNarrative = "An error occurred while generating the narrative."

const systemPrompt = "You are an expert data analyst."

const promptFrame = `Dataset Analysis:

Summary:
%s

Analysis Results:
%s

Write a detailed, well-structured Markdown summary of the dataset analysis. Include an overview of the data, key findings, and potential implications.`

// Generator is the narrow client surface the narrator needs.
type Generator interface {
	Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error)
}

// Narrator turns analysis output into a prose summary via the proxy.
type Narrator struct {
	Client      Generator
	Model       string
	MaxTokens   int
	PromptLimit int
	DryRun      bool
}

// BuildPrompt renders the summary and clustering results into the user
// message sent to the model. When PromptLimit is positive the prompt is
// truncated to roughly that many tokens.
func (n *Narrator) BuildPrompt(sum *analysis.Summary, res *cluster.Result) (string, error) {
	sumJSON, err := utils.PrettyJSON(sum)
	if err != nil {
		return "", fmt.Errorf("render summary: %w", err)
	}
	resJSON, err := utils.PrettyJSON(res)
	if err != nil {
		return "", fmt.Errorf("render analysis results: %w", err)
	}
	prompt := fmt.Sprintf(promptFrame, sumJSON, resJSON)
	if n.PromptLimit > 0 {
		prompt = utils.TruncateToTokenLimit(prompt, n.PromptLimit)
	}
	return prompt, nil
}

// Narrate requests a narrative for the analysis. It always returns a
// usable string: on any failure the fixed fallback sentence comes back
// along with the underlying error so callers can log it.
func (n *Narrator) Narrate(ctx context.Context, sum *analysis.Summary, res *cluster.Result) (string, error) {
	prompt, err := n.BuildPrompt(sum, res)
	if err != nil {
		return FallbackNarrative, err
	}
	if n.DryRun {
		return FallbackNarrative, nil
	}
	resp, err := n.Client.Chat(ctx, ChatRequest{
		Model: n.Model,
		Messages: []Message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
		MaxTokens: n.MaxTokens,
	})
	if err != nil {
		return FallbackNarrative, err
	}
	if len(resp.Choices) == 0 {
		return FallbackNarrative, errors.New("response carried no choices")
	}
	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return FallbackNarrative, errors.New("response content was empty")
	}
	return text, nil
}
