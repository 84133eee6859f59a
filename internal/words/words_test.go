package words

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/kiliankoe/drawguess/internal/protocol"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"cat, dog, house", []string{"cat", "dog", "house"}},
		{"1. Cat\n2. Dog\n3. Cat", []string{"cat", "dog"}},
		{"- \"Rocket\".\n- kite", []string{"rocket", "kite"}},
		{"", []string{}},
	}
	for _, tt := range tests {
		if diff := cmp.Diff(tt.want, Parse(tt.in)); diff != "" {
			t.Fatalf("Parse(%q) mismatch:\n%s", tt.in, diff)
		}
	}
}

func TestListWords(t *testing.T) {
	l := NewList([]string{"a", "b", "c", "b", " "})
	got, err := l.Words(context.Background(), 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0] == got[1] {
		t.Fatalf("expected 2 distinct words, got %v", got)
	}
	all, _ := l.Words(context.Background(), 10)
	if len(all) != 3 {
		t.Fatalf("expected the 3 unique words, got %v", all)
	}
	if _, err := NewList(nil).Words(context.Background(), 1); !errors.Is(err, ErrNoWords) {
		t.Fatalf("expected ErrNoWords, got %v", err)
	}
}

func TestLoadList(t *testing.T) {
	path := filepath.Join(t.TempDir(), "words.yaml")
	if err := os.WriteFile(path, []byte("words:\n  - cat\n  - dog\n"), 0644); err != nil {
		t.Fatal(err)
	}
	l, err := LoadList(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if diff := cmp.Diff([]string{"cat", "dog"}, l.words); diff != "" {
		t.Fatalf("words mismatch:\n%s", diff)
	}

	empty := filepath.Join(t.TempDir(), "empty.yaml")
	if err := os.WriteFile(empty, []byte("words: []\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadList(empty); !errors.Is(err, ErrNoWords) {
		t.Fatalf("expected ErrNoWords, got %v", err)
	}
}

func TestPayload(t *testing.T) {
	want := []protocol.WordList{{Words: []protocol.Word{{Word: "cat"}, {Word: "dog"}}}}
	if diff := cmp.Diff(want, Payload([]string{"cat", "dog"})); diff != "" {
		t.Fatalf("payload mismatch:\n%s", diff)
	}
}

type stubCompleter struct {
	text string
	err  error
}

func (s stubCompleter) Complete(context.Context, string, string, string) (string, error) {
	return s.text, s.err
}

func TestGeneratedWords(t *testing.T) {
	g := &Generated{Backend: stubCompleter{text: "cat, dog, tree, sun"}, Model: "m"}
	got, err := g.Words(context.Background(), 3)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"cat", "dog", "tree"}, got); diff != "" {
		t.Fatalf("words mismatch:\n%s", diff)
	}

	fb := &Generated{Backend: stubCompleter{err: errors.New("down")}, Fallback: NewList([]string{"kite"})}
	got, err = fb.Words(context.Background(), 1)
	if err != nil || len(got) != 1 || got[0] != "kite" {
		t.Fatalf("expected fallback word, got %v %v", got, err)
	}

	short := &Generated{Backend: stubCompleter{text: "cat"}}
	if _, err := short.Words(context.Background(), 3); err == nil {
		t.Fatal("expected error for too few words without fallback")
	}
}

func TestOpenAIComplete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer key" {
			t.Errorf("unexpected auth header %q", got)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{{"message": map[string]string{"content": " cat, dog "}}},
		})
	}))
	defer srv.Close()

	got, err := NewOpenAI("key", srv.URL).Complete(context.Background(), "gpt", "sys", "prompt")
	if err != nil {
		t.Fatal(err)
	}
	if got != "cat, dog" {
		t.Fatalf("unexpected completion %q", got)
	}

	if _, err := NewOpenAI("", srv.URL).Complete(context.Background(), "gpt", "sys", "p"); err == nil {
		t.Fatal("expected error without api key")
	}
}

func TestOllamaComplete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"message": map[string]string{"content": "kite"}})
	}))
	defer srv.Close()

	got, err := NewOllama(srv.URL).Complete(context.Background(), "llama", "sys", "prompt")
	if err != nil || got != "kite" {
		t.Fatalf("unexpected result %q %v", got, err)
	}
}
