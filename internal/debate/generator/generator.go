// Package generator turns prompts into validated, structured model output.
package generator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"regexp"
	"strings"

	"github.com/lorenzotomasdiez/debate-arena/internal/debate"
	"github.com/lorenzotomasdiez/debate-arena/internal/openrouter"
)

const maxAttempts = 3

var codeBlockRe = regexp.MustCompile("(?s)```(?:json)?\\s*\\n?(.*?)\\n?```")

// ErrNoValidOutput is returned when every attempt produced unusable output.
var ErrNoValidOutput = errors.New("generator: no valid output")

// Generator implements debate.Generator over an LLM client.
type Generator struct {
	llm          debate.LLMClient
	defaultModel string
	logger       *slog.Logger
}

var _ debate.Generator = (*Generator)(nil)

// New creates a Generator. defaultModel is used for prompts without one.
func New(llm debate.LLMClient, defaultModel string, logger *slog.Logger) *Generator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{llm: llm, defaultModel: defaultModel, logger: logger}
}

// Generate asks for JSON, decodes it into out and validates it. Output that
// fails to parse or validate is re-asked up to three times in total.
// Transport errors are returned immediately; the client has already retried.
func (g *Generator) Generate(ctx context.Context, prompt debate.Prompt, out any) error {
	rv := reflect.ValueOf(out)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return fmt.Errorf("generator: out must be a non-nil pointer, got %T", out)
	}
	model := prompt.Model
	if model == "" {
		model = g.defaultModel
	}

	base := []openrouter.Message{
		{Role: "system", Content: prompt.System},
		{Role: "user", Content: prompt.User},
	}

	var lastErr error
	for attempt := range maxAttempts {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("generator: %w", err)
		}

		msgs := base
		if attempt > 0 {
			msgs = append(append([]openrouter.Message(nil), base...), openrouter.Message{
				Role: "user",
				Content: fmt.Sprintf("Your previous response could not be used (%v). "+
					"Return ONLY a JSON object in the requested format, no markdown, no explanation.", lastErr),
			})
		}

		resp, err := g.llm.ChatCompletion(ctx, model, msgs, openrouter.WithJSONResponse())
		if err != nil {
			return fmt.Errorf("generator: %w", err)
		}

		rv.Elem().Set(reflect.Zero(rv.Elem().Type()))
		if err := decode(resp.Content(), out); err != nil {
			lastErr = err
			g.logger.Debug("generation unparseable", "model", model, "attempt", attempt+1, "error", err)
			continue
		}
		if v, ok := out.(debate.Validator); ok {
			if err := v.Validate(); err != nil {
				lastErr = err
				g.logger.Debug("generation invalid", "model", model, "attempt", attempt+1, "error", err)
				continue
			}
		}
		return nil
	}

	g.logger.Warn("generation failed", "model", model, "attempts", maxAttempts, "error", lastErr)
	return fmt.Errorf("%w after %d attempts: %v", ErrNoValidOutput, maxAttempts, lastErr)
}

// decode extracts and parses a JSON object from model output. It accepts
// bare JSON, a fenced code block, or an object embedded in prose.
func decode(raw string, out any) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return errors.New("empty response")
	}

	err := json.Unmarshal([]byte(raw), out)
	if err == nil {
		return nil
	}

	if matches := codeBlockRe.FindStringSubmatch(raw); len(matches) > 1 {
		if err := json.Unmarshal([]byte(strings.TrimSpace(matches[1])), out); err == nil {
			return nil
		}
	}

	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start >= 0 && end > start {
		if err := json.Unmarshal([]byte(raw[start:end+1]), out); err == nil {
			return nil
		}
	}

	return fmt.Errorf("invalid JSON: %w", err)
}
