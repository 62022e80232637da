package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
)

var version = "dev"

var (
	noColor        bool
	assumeYes      bool
	coordinatorURL string
)

var rootCmd = &cobra.Command{
	Use:   "jobfill",
	Short: "Scrape job postings and auto-fill application forms with an LLM",
	Long: `jobfill scrapes job postings into a short local history and fills
application forms with answers drafted from your resume.

Examples:
  jobfill settings set-key sk-...
  jobfill resume set --file ./cv.pdf
  jobfill scrape https://acme.example/jobs/42
  jobfill fill ./apply.html --out ./apply.filled.html`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", os.Getenv("NO_COLOR") != "", "disable colored output")
	rootCmd.PersistentFlags().BoolVarP(&assumeYes, "yes", "y", false, "grant consent without prompting")
	rootCmd.PersistentFlags().StringVar(&coordinatorURL, "coordinator", "", "send LLM requests to a running jobfill server at this URL")

	rootCmd.AddCommand(startCmd, stopCmd, statusCmd)
	rootCmd.AddCommand(scrapeCmd, fillCmd, jobsCmd, settingsCmd, resumeCmd, logsCmd, configCmd, versionCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		var re reportedError
		if !errors.As(err, &re) {
			printError("%v", err)
		}
		stop()
		os.Exit(1)
	}
}

// reportedError marks an error the panel has already shown to the user.
type reportedError struct{ error }

func (e reportedError) Unwrap() error { return e.error }

func reported(err error) error {
	if err == nil {
		return nil
	}
	return reportedError{err}
}

func setupLogging(level string) {
	logLevel := slog.LevelInfo
	switch strings.ToLower(level) {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn", "warning":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the jobfill version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "jobfill version %s\n", version)
	},
}
