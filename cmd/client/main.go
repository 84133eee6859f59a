package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kiliankoe/drawguess/internal/client"
	"github.com/kiliankoe/drawguess/internal/config"
	"github.com/kiliankoe/drawguess/internal/game"
	"github.com/kiliankoe/drawguess/internal/ws"
	"github.com/rs/zerolog"
)

const help = `commands:
  /login [NAME] join the lobby, reusing the last name if omitted
  /ready        toggle readiness
  /start        ask the server to start the game
  /claim        claim a correct guess
  /quit         leave
anything else is sent as a guess`

func main() {
	_ = godotenv.Load()
	cfg := config.FromEnv()

	server := flag.String("server", cfg.ServerURL, "lobby server URL")
	state := flag.String("state", cfg.StateFile, "file that remembers name and id")
	verbose := flag.Bool("verbose", false, "log protocol traffic")
	flag.Parse()

	level := zerolog.WarnLevel
	if *verbose {
		level = zerolog.DebugLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		Level(level).With().Timestamp().Logger()

	if err := run(*server, *state, logger, os.Stdin, os.Stdout); err != nil {
		logger.Fatal().Err(err).Msg("client stopped")
	}
}

func run(server, statePath string, logger zerolog.Logger, in io.Reader, out io.Writer) error {
	if err := os.MkdirAll(filepath.Dir(statePath), 0755); err != nil {
		return fmt.Errorf("state dir: %w", err)
	}
	storage, err := client.OpenFileStorage(statePath)
	if err != nil {
		return err
	}

	sess := client.NewSession(ws.NewClientChannel(server), storage,
		client.WithLogger(logger),
		client.WithNoticeHandler(func(err error) { fmt.Fprintf(out, "! %v\n", err) }),
	)
	sess.Store().Subscribe(render(out))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := sess.Connect(connectCtx); err != nil {
		return err
	}
	defer sess.Dispose()

	fmt.Fprintln(out, help)
	if name, ok := storage.Get(client.KeyUser); ok {
		fmt.Fprintf(out, "last name was %s, /login to use it again\n", name)
	}

	lines := make(chan string)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			lines <- sc.Text()
		}
	}()
	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			if quit := command(sess.Emitter(), storage, out, line); quit {
				return nil
			}
		}
	}
}

func command(e *client.Emitter, storage client.Storage, out io.Writer, line string) (quit bool) {
	cmd, arg, _ := strings.Cut(strings.TrimSpace(line), " ")
	switch cmd {
	case "":
	case "/quit":
		return true
	case "/help":
		fmt.Fprintln(out, help)
	case "/login":
		if arg == "" {
			arg, _ = storage.Get(client.KeyUser)
		}
		report(out, e.SubmitLogin(arg))
	case "/ready":
		report(out, e.ToggleReadiness())
	case "/start":
		report(out, e.RequestStartGame())
	case "/claim":
		report(out, e.ClaimCorrectGuess())
	default:
		report(out, e.SubmitGuess(line))
	}
	return false
}

func report(out io.Writer, err error) {
	var (
		verr *game.ValidationError
		perr *game.PreconditionError
	)
	switch {
	case err == nil:
	case errors.As(err, &verr), errors.As(err, &perr):
		fmt.Fprintf(out, "? %v\n", err)
	default:
		fmt.Fprintf(out, "! %v\n", err)
	}
}

// render prints what changed between two committed states.
func render(out io.Writer) client.Listener {
	prev := game.NewSessionState()
	return func(st game.SessionState) {
		defer func() { prev = st }()

		if st.LocalPlayerID != prev.LocalPlayerID && st.LocalPlayerID != "" {
			fmt.Fprintf(out, "joined as %s\n", st.LocalPlayerID)
		}
		if st.LocalOrphaned && !prev.LocalOrphaned {
			fmt.Fprintln(out, "! you are no longer in the lobby, /login again")
		}
		if rosterChanged(prev.Roster, st.Roster) || st.ReadyCount != prev.ReadyCount {
			names := make([]string, 0, len(st.Roster))
			for _, p := range st.Roster {
				mark := " "
				if p.IsReady {
					mark = "*"
				}
				names = append(names, mark+p.Name)
			}
			fmt.Fprintf(out, "lobby (%d/%d ready): %s\n", st.ReadyCount, game.MaxPlayers, strings.Join(names, ", "))
		}
		if st.Countdown != nil && (prev.Countdown == nil || *prev.Countdown != *st.Countdown) {
			fmt.Fprintf(out, "starting in %d\n", *st.Countdown)
		}
		if st.CurrentDrawer != "" && (st.CurrentDrawer != prev.CurrentDrawer || st.Phase != prev.Phase && st.Phase == game.PhaseRound) {
			if st.CurrentDrawer == st.LocalPlayerID || st.IsLocalDrawer() {
				fmt.Fprintln(out, "you are drawing")
			} else if p, ok := st.Player(st.CurrentDrawer); ok {
				fmt.Fprintf(out, "%s is drawing\n", p.Name)
			}
		}
		if st.CurrentWord != "" && st.CurrentWord != prev.CurrentWord && st.IsLocalDrawer() {
			fmt.Fprintf(out, "your word: %s\n", st.CurrentWord)
		}
		for _, c := range st.Chat[min(len(prev.Chat), len(st.Chat)):] {
			fmt.Fprintf(out, "%s: %s\n", c.Author, c.Text)
		}
		if st.Phase == game.PhaseScoring && prev.Phase != game.PhaseScoring {
			for _, p := range st.Roster {
				fmt.Fprintf(out, "  %-12s %d\n", p.Name, p.Score)
			}
		}
	}
}

func rosterChanged(a, b []game.Player) bool {
	if len(a) != len(b) {
		return true
	}
	for i := range a {
		if a[i] != b[i] {
			return true
		}
	}
	return false
}
