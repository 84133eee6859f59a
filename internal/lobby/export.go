package lobby

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// ExportScores appends the current round and scoreboard to a text file.
func ExportScores(l *Lobby, filename string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	fileExists := false
	if _, err := os.Stat(filename); err == nil {
		fileExists = true
	}

	file, err := os.OpenFile(filename, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	var sb strings.Builder

	// Header for new files or the first round of a lobby
	if !fileExists || l.RoundIx <= 1 {
		if fileExists {
			sb.WriteString("\n\n")
		}
		sb.WriteString(fmt.Sprintf("drawguess results - lobby %s\n", l.Code))
		sb.WriteString(fmt.Sprintf("Started: %s\n", l.CreatedAt.Format("2006-01-02 15:04:05")))
		sb.WriteString(strings.Repeat("=", 50) + "\n\n")

		sb.WriteString("Players:\n")
		for _, p := range l.players {
			sb.WriteString(fmt.Sprintf("- %s\n", p.Name))
		}
		sb.WriteString("\n")
	}

	if r := l.current(); r != nil {
		drawer := "Unknown"
		if p := l.byID[r.DrawerID]; p != nil {
			drawer = p.Name
		}
		sb.WriteString(fmt.Sprintf("Round %d: drawn by %s\n", r.Index, drawer))
		sb.WriteString(strings.Repeat("-", 40) + "\n")
	}

	sb.WriteString("Scores:\n")
	scores := make([]Player, 0, len(l.players))
	for _, p := range l.players {
		scores = append(scores, *p)
	}
	sort.SliceStable(scores, func(i, j int) bool { return scores[i].Points > scores[j].Points })
	for _, p := range scores {
		sb.WriteString(fmt.Sprintf("- %s: %d points\n", p.Name, p.Points))
	}
	sb.WriteString(fmt.Sprintf("\nExported at %s\n", time.Now().Format("2006-01-02 15:04:05")))

	if _, err := file.WriteString(sb.String()); err != nil {
		return fmt.Errorf("failed to write to file: %w", err)
	}
	return nil
}
