package config

import (
	"testing"
	"time"
)

func TestFromEnvDefaults(t *testing.T) {
	for _, k := range []string{"PORT", "WORD_SOURCE", "LOBBY_CAPACITY", "ROUND_BREAK_SECONDS", "EXPORT_ENABLED"} {
		t.Setenv(k, "")
	}
	c := FromEnv()
	if c.Port != "3000" {
		t.Fatalf("expected port 3000, got %s", c.Port)
	}
	if c.WordSource != "static" {
		t.Fatalf("expected static word source, got %s", c.WordSource)
	}
	if c.Capacity != 5 {
		t.Fatalf("expected capacity 5, got %d", c.Capacity)
	}
	if c.RoundBreak != 5*time.Second {
		t.Fatalf("expected 5s round break, got %s", c.RoundBreak)
	}
	if c.ExportEnabled {
		t.Fatal("export should be off by default")
	}
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("COUNTDOWN_SECONDS", "10")
	t.Setenv("GUESSES_PER_SECOND", "0.5")
	t.Setenv("REQUIRED_READY", "not-a-number")
	t.Setenv("EXPORT_ENABLED", "true")

	c := FromEnv()
	if c.Port != "8080" || c.CountdownSeconds != 10 || c.GuessesPerSecond != 0.5 {
		t.Fatalf("overrides not applied: %+v", c)
	}
	if c.RequiredReady != 5 {
		t.Fatalf("invalid int should fall back to default, got %d", c.RequiredReady)
	}
	if !c.ExportEnabled {
		t.Fatal("export should be enabled")
	}
}
