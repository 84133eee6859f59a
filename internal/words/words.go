package words

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"strings"

	"github.com/kiliankoe/drawguess/internal/protocol"
	"gopkg.in/yaml.v3"
)

var ErrNoWords = errors.New("no words available")

// Provider hands out candidate words for a round.
type Provider interface {
	Words(ctx context.Context, n int) ([]string, error)
}

// List is a fixed word pool.
type List struct {
	words []string
}

type listFile struct {
	Words []string `yaml:"words"`
}

var defaultWords = []string{
	"cat", "house", "tree", "bicycle", "sun", "fish", "guitar", "rocket",
	"umbrella", "banana", "castle", "snowman", "clock", "bridge", "turtle",
	"lighthouse", "pizza", "kite", "cactus", "glasses",
}

func DefaultList() *List {
	return NewList(defaultWords)
}

func NewList(words []string) *List {
	return &List{words: clean(words)}
}

// LoadList reads a YAML file of the form `words: [cat, dog, ...]`.
func LoadList(path string) (*List, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read words file: %w", err)
	}
	var f listFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse words file: %w", err)
	}
	l := NewList(f.Words)
	if len(l.words) == 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrNoWords)
	}
	return l, nil
}

// Words returns up to n distinct words in random order.
func (l *List) Words(_ context.Context, n int) ([]string, error) {
	if len(l.words) == 0 {
		return nil, ErrNoWords
	}
	if n <= 0 || n > len(l.words) {
		n = len(l.words)
	}
	idx := rand.Perm(len(l.words))[:n]
	out := make([]string, n)
	for i, j := range idx {
		out[i] = l.words[j]
	}
	return out, nil
}

// Payload wraps words in the shape of the words event.
func Payload(words []string) []protocol.WordList {
	list := protocol.WordList{Words: make([]protocol.Word, 0, len(words))}
	for _, w := range words {
		list.Words = append(list.Words, protocol.Word{Word: w})
	}
	return []protocol.WordList{list}
}

// Parse splits a completion into words. Commas, newlines, list bullets and
// numbering are accepted.
func Parse(text string) []string {
	fields := strings.FieldsFunc(text, func(r rune) bool { return r == ',' || r == '\n' || r == ';' })
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.TrimSpace(f)
		f = strings.TrimLeft(f, "-*•0123456789. ")
		f = strings.Trim(f, "\"'.")
		if f != "" {
			out = append(out, strings.ToLower(f))
		}
	}
	return clean(out)
}

func clean(words []string) []string {
	seen := make(map[string]bool, len(words))
	out := make([]string, 0, len(words))
	for _, w := range words {
		w = strings.TrimSpace(w)
		if w == "" || seen[w] {
			continue
		}
		seen[w] = true
		out = append(out, w)
	}
	return out
}
