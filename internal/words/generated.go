package words

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
)

const systemPrompt = "You suggest words for a drawing and guessing game. Answer only with simple, concrete nouns that are easy to draw, comma separated."

// Completer is a chat completion backend.
type Completer interface {
	Complete(ctx context.Context, model, system, prompt string) (string, error)
}

// Generated asks a language model for words and falls back to another
// provider when the model fails or returns too few.
type Generated struct {
	Backend  Completer
	Model    string
	Fallback Provider
	Timeout  time.Duration
}

func (g *Generated) Words(ctx context.Context, n int) ([]string, error) {
	if n <= 0 {
		n = 3
	}
	timeout := g.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	cctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	text, err := g.Backend.Complete(cctx, g.Model, systemPrompt, fmt.Sprintf("Give me %d different words.", n))
	if err == nil {
		if words := Parse(text); len(words) >= n {
			return words[:n], nil
		}
		err = fmt.Errorf("model returned too few words: %q", text)
	}
	log.Warn().Err(err).Str("model", g.Model).Msg("word generation failed")
	if g.Fallback == nil {
		return nil, err
	}
	return g.Fallback.Words(ctx, n)
}
