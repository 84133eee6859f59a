package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	// server
	Port             string
	WordSource       string // static | openai | ollama
	WordsFile        string
	Model            string
	OpenAIKey        string
	OpenAIBaseURL    string
	OllamaHost       string
	Capacity         int
	RequiredReady    int
	CountdownSeconds int
	WordsPerRound    int
	RoundBreak       time.Duration
	GuessesPerSecond float64
	ExportEnabled    bool
	ExportFile       string

	// client
	ServerURL string
	StateFile string
	LogLevel  string
}

func FromEnv() Config {
	c := Config{}
	c.Port = getenv("PORT", "3000")
	c.WordSource = getenv("WORD_SOURCE", "static")
	c.WordsFile = os.Getenv("WORDS_FILE")
	c.Model = getenv("WORD_MODEL", "gpt-4o-mini")
	c.OpenAIKey = os.Getenv("OPENAI_API_KEY")
	c.OpenAIBaseURL = os.Getenv("OPENAI_BASE_URL")
	c.OllamaHost = getenv("OLLAMA_HOST", "http://localhost:11434")
	c.Capacity = getenvInt("LOBBY_CAPACITY", 5)
	c.RequiredReady = getenvInt("REQUIRED_READY", 5)
	c.CountdownSeconds = getenvInt("COUNTDOWN_SECONDS", 5)
	c.WordsPerRound = getenvInt("WORDS_PER_ROUND", 3)
	c.RoundBreak = time.Duration(getenvInt("ROUND_BREAK_SECONDS", 5)) * time.Second
	c.GuessesPerSecond = getenvFloat("GUESSES_PER_SECOND", 2)
	c.ExportEnabled = getenv("EXPORT_ENABLED", "false") == "true"
	c.ExportFile = getenv("EXPORT_FILE", "./drawguess-results.txt")
	c.ServerURL = getenv("SERVER_URL", "http://localhost:3000/")
	c.StateFile = getenv("STATE_FILE", defaultStateFile())
	c.LogLevel = getenv("LOG_LEVEL", "info")
	return c
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getenvInt(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getenvFloat(k string, def float64) float64 {
	if v := os.Getenv(k); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func defaultStateFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".drawguess.yaml"
	}
	return dir + "/drawguess/state.yaml"
}
