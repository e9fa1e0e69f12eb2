package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/seqops/virsam/internal/config"
	"github.com/seqops/virsam/internal/journal"
	"github.com/seqops/virsam/internal/service"
	"github.com/seqops/virsam/internal/ui"
)

// Color codes for terminal output
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
	colorGray   = "\033[90m"
	colorBold   = "\033[1m"
)

// Check if output is to terminal
func isTerminal() bool {
	fileInfo, _ := os.Stdout.Stat()
	return (fileInfo.Mode() & os.ModeCharDevice) != 0
}

// Apply color if terminal output and color enabled
func colorize(color, text string) string {
	if !noColor && isTerminal() && os.Getenv("NO_COLOR") == "" {
		return color + text + colorReset
	}
	return text
}

// Print error message in user-friendly format
func printError(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintf(os.Stderr, "%s %s\n", colorize(colorRed, "✗"), msg)
}

// Print success message
func printSuccess(format string, args ...interface{}) {
	if !quiet {
		msg := fmt.Sprintf(format, args...)
		fmt.Printf("%s %s\n", colorize(colorGreen, "✓"), msg)
	}
}

// Print info message
func printInfo(format string, args ...interface{}) {
	if !quiet {
		msg := fmt.Sprintf(format, args...)
		fmt.Printf("%s\n", colorize(colorCyan, msg))
	}
}

// Print warning message
func printWarning(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintf(os.Stderr, "%s %s\n", colorize(colorYellow, "⚠"), msg)
}

// runWithSpinner wraps a blocking archive call with terminal feedback.
// Quiet mode runs the call silently.
func runWithSpinner(message string, fn func() error) error {
	if quiet {
		return fn()
	}
	return ui.ShowSpinner(message, fn)
}

// openJournal loads the configuration and opens the submission journal.
// The caller owns the returned journal and must close it.
func openJournal() (*config.Config, *journal.DB, error) {
	cfg, err := config.Load(config.GetConfigPath())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, nil, err
	}
	jdb, err := journal.Initialize(cfg.Journal.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open journal: %w", err)
	}
	return cfg, jdb, nil
}

// printJSON writes a value as indented JSON to stdout.
func printJSON(v interface{}) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// printProjectResult reports a project registration to the user.
func printProjectResult(result *service.ProjectResult, asJSON bool) error {
	if asJSON {
		return printJSON(result)
	}
	if result.DryRun {
		printSuccess("Wrote %s (dry run, nothing submitted)", result.Path)
		return nil
	}
	printSuccess("Registered %s as %s (%s service)", result.Alias,
		colorize(colorCyan, result.Accession), result.Target)
	printInfo("Project document: %s", result.Path)
	return nil
}

// credentialStatus reports whether a secret is configured without echoing it.
func credentialStatus(s string) string {
	if s == "" {
		return "(not set)"
	}
	return "(set)"
}

// Helper function to read accessions from a reader, one per line,
// skipping blanks and # comments
func readAccessionsFromReader(r io.Reader) ([]string, error) {
	accessions := make([]string, 0)
	scanner := bufio.NewScanner(r)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" && !strings.HasPrefix(line, "#") {
			accessions = append(accessions, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return accessions, nil
}

// Helper function to read accessions from a file, or stdin when path is "-"
func readAccessionFile(path string) ([]string, error) {
	if path == "-" {
		return readAccessionsFromReader(os.Stdin)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return readAccessionsFromReader(file)
}

func truncateStr(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
