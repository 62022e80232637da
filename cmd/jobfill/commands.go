package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/kalambet/jobfill/internal/config"
	"github.com/kalambet/jobfill/internal/panel"
	"github.com/kalambet/jobfill/internal/resume"
)

// --- scrape ---

var scrapeCmd = &cobra.Command{
	Use:   "scrape <url-or-file>",
	Short: "Extract the job posting on a page and store it",
	Long: `Extract the job posting on a page and store it.

Only the five most recent jobs are kept.

Examples:
  jobfill scrape https://acme.example/jobs/42
  jobfill scrape ./saved-posting.html --yes`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := openApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		doc, err := a.openPage(ctx, args[0])
		if err != nil {
			return err
		}

		job, err := a.panel.ScrapeCurrentPage(ctx, a.agent(doc))
		if err != nil {
			return reported(err)
		}
		printJob(job)
		return nil
	},
}

// --- fill ---

var fillCmd = &cobra.Command{
	Use:   "fill <url-or-file>",
	Short: "Fill the first form on a page for the most recent job",
	Long: `Fill the first form on a page for the most recent job.

The filled page is written to --out ("-" for stdout).

Examples:
  jobfill fill ./apply.html --out ./apply.filled.html
  jobfill fill https://acme.example/apply --out -`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out, _ := cmd.Flags().GetString("out")

		ctx := cmd.Context()
		a, err := openApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		doc, err := a.openPage(ctx, args[0])
		if err != nil {
			return err
		}

		if job, ok, err := a.jobs.Latest(ctx); err == nil && ok {
			printStep("Answering for %s at %s", job.Title, job.Company)
		}

		res, err := a.panel.AutoFillCurrentForm(ctx, a.agent(doc))
		if err != nil {
			return reported(err)
		}
		printStatus("Filled", "%d of %d fields", res.FilledCount, res.TotalFields)

		if out == "" {
			printWarning("No --out given; the filled page was not saved")
			return nil
		}

		var w io.Writer = cmd.OutOrStdout()
		if out != "-" {
			f, err := os.Create(out)
			if err != nil {
				return fmt.Errorf("creating output file: %w", err)
			}
			defer f.Close()
			w = f
		}
		if err := doc.Render(w); err != nil {
			return fmt.Errorf("writing filled page: %w", err)
		}
		if out != "-" {
			printSuccess("Filled page written to %s", out)
		}
		return nil
	},
}

func init() {
	fillCmd.Flags().String("out", "", `write the filled page to this file ("-" for stdout)`)
}

// --- jobs ---

var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "List or clear stored jobs",
}

var jobsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored jobs, newest first",
	Long: `List stored jobs, newest first.

With --coordinator, lists the jobs held by that server.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")

		ctx := cmd.Context()
		a, err := openApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		jobs, err := a.storedJobs(ctx)
		if err != nil {
			return err
		}

		if asJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(jobs)
		}
		if len(jobs) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No jobs stored yet")
			return nil
		}
		for i, job := range jobs {
			fmt.Fprintf(cmd.OutOrStdout(), "%d. %s\n   %s", i+1, colorize(colorBold, job.Title), job.Company)
			if !job.ScrapedAt.IsZero() {
				fmt.Fprintf(cmd.OutOrStdout(), ", %s", job.ScrapedAt.Local().Format("2006-01-02"))
			}
			fmt.Fprintln(cmd.OutOrStdout())
		}
		return nil
	},
}

var jobsClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all stored jobs",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := openApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		return reported(a.panel.ClearStoredJobs(ctx))
	},
}

func init() {
	jobsListCmd.Flags().Bool("json", false, "print jobs as JSON")
	jobsCmd.AddCommand(jobsListCmd)
	jobsCmd.AddCommand(jobsClearCmd)
}

// --- settings ---

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show or change the LLM provider and API key",
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective provider settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := openApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		s, err := a.panel.Settings(ctx)
		if err != nil {
			return err
		}
		key := "(not set)"
		if s.APIKey != "" {
			key = "(set)"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "  %s = %s\n", colorize(colorBold, "provider"), s.Provider)
		fmt.Fprintf(cmd.OutOrStdout(), "  %s = %s\n", colorize(colorBold, "apiKey"), key)
		return nil
	},
}

var settingsSetProviderCmd = &cobra.Command{
	Use:   "set-provider <openai|xai>",
	Short: "Select the LLM provider",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := openApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		s, err := a.panel.Settings(ctx)
		if err != nil {
			return err
		}
		return reported(a.panel.SaveConfiguration(ctx, args[0], s.APIKey))
	},
}

var settingsSetKeyCmd = &cobra.Command{
	Use:   "set-key <api-key>",
	Short: "Save the API key for the selected provider",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := openApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		s, err := a.panel.Settings(ctx)
		if err != nil {
			return err
		}
		return reported(a.panel.SaveConfiguration(ctx, string(s.Provider), args[0]))
	},
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetProviderCmd)
	settingsCmd.AddCommand(settingsSetKeyCmd)
}

// --- resume ---

var resumeCmd = &cobra.Command{
	Use:   "resume",
	Short: "Save or show your resume/CV",
}

var resumeSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Save your resume/CV from text or a file",
	Long: `Save your resume/CV from text or a file.

PDF files are converted to plain text.

Examples:
  jobfill resume set --file ./cv.pdf
  jobfill resume set --text "Jane Doe, backend engineer, 8 years of Go"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		text, _ := cmd.Flags().GetString("text")
		file, _ := cmd.Flags().GetString("file")

		if (text == "") == (file == "") {
			return errors.New("exactly one of --text or --file is required")
		}
		if file != "" {
			var err error
			if text, err = resume.Load(file); err != nil && !errors.Is(err, resume.ErrEmpty) {
				return err
			}
		}

		ctx := cmd.Context()
		a, err := openApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		return reported(a.panel.SaveResume(ctx, text))
	},
}

var resumeShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the saved resume/CV",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := openApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		s, err := a.panel.Settings(ctx)
		if err != nil {
			return err
		}
		if s.Resume == "" {
			printWarning("No resume saved")
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), s.Resume)
		return nil
	},
}

func init() {
	resumeSetCmd.Flags().String("text", "", "resume text")
	resumeSetCmd.Flags().String("file", "", "resume file (.pdf or text)")
	resumeCmd.AddCommand(resumeSetCmd)
	resumeCmd.AddCommand(resumeShowCmd)
}

// --- logs ---

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "Show recent activity",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		ctx := cmd.Context()
		a, err := openApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		entries, err := a.panel.Logs(ctx, limit)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No logs yet")
			return nil
		}
		for _, e := range entries {
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", colorize(levelColor(e.Level), "●"), panel.FormatEntry(e))
		}
		return nil
	},
}

var logsClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete the activity log",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := openApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.panel.ClearLogs(ctx); err != nil {
			return err
		}
		printSuccess("Activity log cleared")
		return nil
	},
}

func init() {
	logsCmd.Flags().Int("limit", 50, "number of entries to show")
	logsCmd.AddCommand(logsClearCmd)
}

// --- config ---

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or update configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		keys := config.ShowAll(cfg)
		for _, k := range keys {
			fmt.Fprintf(cmd.OutOrStdout(), "  %s = %s\n", colorize(colorBold, k.Key), k.Value)
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long:  "Set a configuration value. Secrets such as llm.api_key are not stored here; use `jobfill settings set-key`.",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]

		if err := config.SetKey(key, value); err != nil {
			return err
		}

		printSuccess("Set %s = %s", key, value)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
