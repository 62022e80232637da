package main

import (
	"fmt"
	"os"

	"github.com/kalambet/jobfill/internal/model"
	"github.com/kalambet/jobfill/internal/panel"
	"github.com/kalambet/jobfill/internal/storage"
)

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
	colorBold   = "\033[1m"
)

func colorize(color, text string) string {
	if noColor {
		return text
	}
	return color + text + colorReset
}

func printSuccess(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(os.Stderr, colorize(colorGreen, "✓ "+msg))
}

func printError(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(os.Stderr, colorize(colorRed, "✗ "+msg))
}

func printWarning(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(os.Stderr, colorize(colorYellow, "⚠ "+msg))
}

func printStatus(label string, format string, args ...any) {
	val := fmt.Sprintf(format, args...)
	l := colorize(colorBold, label+":")
	fmt.Fprintf(os.Stderr, "  %s %s\n", l, val)
}

func printStep(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(os.Stderr, colorize(colorCyan, "→ "+msg))
}

func levelColor(level string) string {
	switch panel.Level(level) {
	case panel.LevelSuccess:
		return colorGreen
	case panel.LevelWarning:
		return colorYellow
	case panel.LevelError:
		return colorRed
	}
	return colorCyan
}

// printLogEntry shows a panel activity line as it happens.
func printLogEntry(e storage.LogEntry) {
	fmt.Fprintln(os.Stderr, colorize(levelColor(e.Level), panel.FormatEntry(e)))
}

func printJob(job model.JobRecord) {
	printStatus("Title", "%s", job.Title)
	printStatus("Company", "%s", job.Company)
	printStatus("Location", "%s", job.Location)
	printStatus("Type", "%s", job.EmploymentType)
	printStatus("Salary", "%s", job.Salary)
	if len(job.Requirements) > 0 {
		printStatus("Requirements", "%d listed", len(job.Requirements))
	}
	if len(job.Technologies) > 0 {
		printStatus("Technologies", "%v", job.Technologies)
	}
	if job.Fallback {
		printWarning("The model reply could not be parsed; placeholder values were stored")
	}
}
