package game

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ExportResult appends a finished round to a text file.
func ExportResult(s *Session, res RoundResult, filename string) error {
	// Create directory if it doesn't exist
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

	// Header once per session
	if res.Index == 1 {
		if fileExists {
			sb.WriteString("\n")
		}
		sb.WriteString(fmt.Sprintf("Number Hunter Results - Session %s\n", s.Code))
		sb.WriteString(fmt.Sprintf("Started: %s\n", s.CreatedAt.Local().Format("2006-01-02 15:04:05")))
		sb.WriteString(strings.Repeat("=", 50) + "\n")
	}

	outcome := "ALL CLEARED"
	if res.Outcome == OutcomeGameOver {
		outcome = "GAME OVER"
	}
	sb.WriteString(fmt.Sprintf("Round %d: %s\n", res.Index, outcome))
	sb.WriteString(strings.Repeat("-", 40) + "\n")
	sb.WriteString(fmt.Sprintf("Targets:  %d\n", res.TargetCount))
	sb.WriteString(fmt.Sprintf("Progress: %d / %d\n", res.Progress, res.TargetCount))
	sb.WriteString(fmt.Sprintf("Time:     %s\n", FormatElapsed(res.Elapsed)))
	sb.WriteString(fmt.Sprintf("Score:    %d\n", res.Score))
	sb.WriteString(fmt.Sprintf("Finished: %s\n\n", res.FinishedAt.Local().Format("2006-01-02 15:04:05")))

	if _, err := file.WriteString(sb.String()); err != nil {
		return fmt.Errorf("failed to write to file: %w", err)
	}
	return nil
}

// FormatElapsed renders a round time the way the board shows it, e.g. "12.3s".
func FormatElapsed(d time.Duration) string {
	return fmt.Sprintf("%.1fs", d.Seconds())
}
