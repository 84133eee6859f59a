package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/kiliankoe/drawguess/internal/config"
	"github.com/kiliankoe/drawguess/internal/lobby"
	"github.com/kiliankoe/drawguess/internal/words"
	"github.com/kiliankoe/drawguess/internal/ws"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const version = "v0.3.0-dev"

func main() {
	var (
		showHelp    = flag.Bool("help", false, "Show help message")
		showVersion = flag.Bool("version", false, "Show version information")
		portFlag    = flag.String("port", "", "Port to listen on (overrides PORT env var)")
	)
	flag.BoolVar(showHelp, "h", false, "Show help message (shorthand)")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	flag.Parse()

	if *showHelp {
		fmt.Printf(`drawguess - multiplayer drawing and guessing lobby server

Usage: %s [options]

Options:
  -h, --help      Show this help message
  -v, --version   Show version information
  --port PORT     Port to listen on (default: 3000 or PORT env var)

Environment Variables (also read from .env):
  PORT                 Port to listen on (default: 3000)
  WORD_SOURCE          "static", "openai" or "ollama" (default: static)
  WORDS_FILE           YAML word list for the static source
  WORD_MODEL           Model used by the openai/ollama sources
  OPENAI_API_KEY       OpenAI API key
  OPENAI_BASE_URL      Custom OpenAI API base URL (optional)
  OLLAMA_HOST          Ollama host URL (default: http://localhost:11434)
  LOBBY_CAPACITY       Players per lobby (default: 5)
  REQUIRED_READY       Ready players needed to start (default: capacity)
  COUNTDOWN_SECONDS    Countdown before the first round (default: 5)
  WORDS_PER_ROUND      Words offered to the drawer (default: 3)
  ROUND_BREAK_SECONDS  Pause between rounds (default: 5)
  GUESSES_PER_SECOND   Guess rate limit per player (default: 2)
  EXPORT_ENABLED       Append scores to a file after each round (default: false)
  EXPORT_FILE          Path of the score file (default: ./drawguess-results.txt)
`, os.Args[0])
		return
	}

	if *showVersion {
		fmt.Printf("drawguess %s\n", version)
		return
	}

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "reading .env: %v\n", err)
	}
	cfg := config.FromEnv()
	if *portFlag != "" {
		cfg.Port = *portFlag
	}

	// zerolog setup (human-friendly console)
	zerolog.TimeFieldFormat = time.RFC3339
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})

	// Gin setup with custom logger (skip /socket.io noise)
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(func(c *gin.Context) {
		start := time.Now()
		c.Next()
		path := c.Request.URL.Path
		if strings.HasPrefix(path, "/socket.io") {
			return
		}
		log.Info().Str("path", path).Int("status", c.Writer.Status()).Dur("dur", time.Since(start)).Msg("http")
	})

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true, "time": time.Now().UTC()})
	})

	provider, err := wordProvider(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("word source")
	}

	l := lobby.NewLobby(lobby.SessionConfig{
		Capacity:         cfg.Capacity,
		RequiredReady:    cfg.RequiredReady,
		CountdownSeconds: cfg.CountdownSeconds,
		WordsPerRound:    cfg.WordsPerRound,
	})
	io := ws.New(l, provider, cfg).Mount(r)
	defer io.Close()

	log.Info().Str("port", cfg.Port).Str("lobby", l.Code).Str("words", cfg.WordSource).Msg("listening")
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func wordProvider(cfg config.Config) (words.Provider, error) {
	static := words.DefaultList()
	if cfg.WordsFile != "" {
		l, err := words.LoadList(cfg.WordsFile)
		if err != nil {
			return nil, err
		}
		static = l
	}
	switch strings.ToLower(cfg.WordSource) {
	case "", "static":
		return static, nil
	case "openai":
		return &words.Generated{Backend: words.NewOpenAI(cfg.OpenAIKey, cfg.OpenAIBaseURL), Model: cfg.Model, Fallback: static}, nil
	case "ollama":
		return &words.Generated{Backend: words.NewOllama(cfg.OllamaHost), Model: cfg.Model, Fallback: static}, nil
	default:
		return nil, fmt.Errorf("unknown WORD_SOURCE %q", cfg.WordSource)
	}
}
