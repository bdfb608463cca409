package namer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"google.golang.org/genai"
)

// ErrInvalidResponse is returned when the model answers with something other
// than a JSON object of names.
var ErrInvalidResponse = errors.New("namer: invalid response from model")

const namingPrompt = `You name React components extracted from a web page.
Each input item has an "id" and a "sample" of the element's markup.
Reply with a JSON object mapping every id to a short PascalCase component name
describing the element's role (for example "PrimaryButton" or "NavLink").
Do not reuse one name for two ids.`

// Gemini asks a Gemini model for names in JSON mode.
type Gemini struct {
	cli   *genai.Client
	model string
	retry time.Duration
}

// NewGemini creates a Gemini namer. An empty apiKey lets the client read
// GEMINI_API_KEY / GOOGLE_API_KEY from the environment.
func NewGemini(ctx context.Context, apiKey, model string) (*Gemini, error) {
	cli, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey, Backend: genai.BackendGeminiAPI})
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}
	return &Gemini{cli: cli, model: model, retry: 300 * time.Millisecond}, nil
}

func (g *Gemini) Name(ctx context.Context, sigs []Signature) (map[string]string, error) {
	if len(sigs) == 0 {
		return map[string]string{}, nil
	}
	in, err := json.MarshalIndent(sigs, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding signatures: %w", err)
	}
	full := namingPrompt + "\n\n[INPUT JSON]\n" + string(in)
	log.Printf("[namer] gemini request: %d signatures, %d bytes", len(sigs), len(full))

	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		resp, err := g.cli.Models.GenerateContent(ctx, g.model,
			[]*genai.Content{{Parts: []*genai.Part{{Text: full}}}},
			&genai.GenerateContentConfig{ResponseMIMEType: "application/json"},
		)
		switch {
		case err != nil:
			lastErr = err
		case len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0:
			lastErr = ErrInvalidResponse
		default:
			names, err := decodeNames(resp.Candidates[0].Content.Parts[0].Text)
			if err == nil {
				return names, nil
			}
			lastErr = err
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(g.retry * time.Duration(1<<attempt)):
		}
	}
	return nil, lastErr
}

func decodeNames(txt string) (map[string]string, error) {
	txt = strings.TrimSpace(txt)
	txt = strings.TrimPrefix(txt, "```json")
	txt = strings.TrimSuffix(strings.TrimPrefix(txt, "```"), "```")

	var names map[string]string
	if err := json.Unmarshal([]byte(txt), &names); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	return names, nil
}
