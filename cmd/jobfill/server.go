package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/kalambet/jobfill/internal/api"
	"github.com/kalambet/jobfill/internal/config"
	"github.com/kalambet/jobfill/internal/jobstore"
	"github.com/kalambet/jobfill/internal/model"
	"github.com/kalambet/jobfill/internal/storage"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the jobfill coordinator server (foreground)",
	RunE: func(cmd *cobra.Command, args []string) error {
		withMCP, _ := cmd.Flags().GetBool("mcp")
		return runServer(withMCP)
	},
}

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the running jobfill server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return stopServer()
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show jobfill status",
	RunE: func(cmd *cobra.Command, args []string) error {
		return showStatus(cmd.Context())
	},
}

func init() {
	startCmd.Flags().Bool("mcp", false, "also serve MCP tools over stdin/stdout")
}

func pidFilePath(dataDir string) string {
	return filepath.Join(dataDir, "jobfill.pid")
}

func writePIDFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(strconv.Itoa(os.Getpid())), 0o644)
}

func readPIDFile(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(strings.TrimSpace(string(data)))
}

func removePIDFile(path string) {
	os.Remove(path)
}

func serverURL(cfg config.Config) string {
	return fmt.Sprintf("http://127.0.0.1:%d", cfg.Server.Port)
}

func runServer(withMCP bool) error {
	fmt.Fprintf(os.Stderr, "jobfill version %s\n", version)

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	setupLogging(cfg.Log.Level)

	apiToken, err := config.GetAPIToken(config.NewKeychain())
	if err != nil {
		return fmt.Errorf("initializing API token: %w", err)
	}
	slog.Info("API bearer token available")

	if err := api.NewClient(serverURL(cfg), "", &http.Client{Timeout: 2 * time.Second}).Health(context.Background()); err == nil {
		printWarning("jobfill is already running on port %d", cfg.Server.Port)
		return fmt.Errorf("server already running on port %d", cfg.Server.Port)
	}
	pidPath := pidFilePath(cfg.Storage.DataDir)
	if err := writePIDFile(pidPath); err != nil {
		return fmt.Errorf("writing PID file: %w", err)
	}
	defer removePIDFile(pidPath)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := storage.Open(cfg.Storage.DataDir)
	if err != nil {
		return fmt.Errorf("opening storage: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			printWarning("closing storage: %v", err)
		}
	}()

	jobs := jobstore.New(store)
	pnl := newPanel(cfg, store, jobs)
	svc := newService(cfg)

	if s, err := pnl.Settings(ctx); err == nil && s.APIKey == "" {
		printWarning("No API key configured; %s", config.MissingAPIKeyHint())
	}

	addr := fmt.Sprintf("127.0.0.1:%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: api.NewHandler(api.HandlerDeps{Coordinator: svc, Jobs: jobs, Token: apiToken}),
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		fmt.Fprintf(os.Stderr, "jobfill listening on %s\n", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	if withMCP {
		mcpSrv := api.NewMCPServer(api.MCPDeps{
			Coordinator: svc,
			Jobs:        jobs,
			Settings: func(ctx context.Context) (model.ProviderConfig, error) {
				s, err := pnl.Settings(ctx)
				return s.Config(), err
			},
			Resume: func(ctx context.Context) (string, error) {
				s, err := pnl.Settings(ctx)
				return s.Resume, err
			},
		})
		stdioSrv := server.NewStdioServer(mcpSrv)
		g.Go(func() error {
			if err := stdioSrv.Listen(gctx, os.Stdin, os.Stdout); err != nil && !errors.Is(err, context.Canceled) {
				slog.Error("MCP stdio server error", "error", err)
			}
			return nil
		})
		slog.Info("MCP server started (stdio transport)")
	}

	g.Go(func() error {
		<-gctx.Done()
		fmt.Fprintln(os.Stderr, "shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func stopServer() error {
	cfg, err := config.Load()
	if err != nil {
		printError("could not load config: %v", err)
		return reported(err)
	}

	pidPath := pidFilePath(cfg.Storage.DataDir)
	pid, err := readPIDFile(pidPath)
	if err != nil {
		printError("jobfill is not running (no PID file)")
		return reported(fmt.Errorf("not running: %w", err))
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		printError("could not find process %d", pid)
		return reported(err)
	}

	if err := process.Signal(syscall.SIGTERM); err != nil {
		printError("could not stop jobfill (PID %d): %v", pid, err)
		removePIDFile(pidPath)
		return reported(err)
	}

	printSuccess("Sent stop signal to jobfill (PID %d)", pid)
	return nil
}

func showStatus(ctx context.Context) error {
	a, err := openApp(ctx)
	if err != nil {
		printError("config error: %v", err)
		return nil
	}
	defer a.Close()

	url := serverURL(a.cfg)
	if coordinatorURL != "" {
		url = coordinatorURL
	}
	healthCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := api.NewClient(url, "", nil).Health(healthCtx); err != nil {
		printStatus("Server", "stopped")
	} else {
		printStatus("Server", "running at %s", url)
	}

	s, err := a.panel.Settings(ctx)
	if err != nil {
		return err
	}
	printStatus("Provider", "%s", s.Provider)
	if s.APIKey == "" {
		printStatus("API key", "(not set)")
	} else {
		printStatus("API key", "(set)")
	}
	if s.Resume == "" {
		printStatus("Resume", "(not set)")
	} else {
		printStatus("Resume", "%d characters", len([]rune(s.Resume)))
	}

	jobs, err := a.panel.StoredJobs(ctx)
	if err != nil {
		return err
	}
	printStatus("Stored jobs", "%d of %d", len(jobs), jobstore.MaxJobs)

	if logs, err := a.panel.Logs(ctx, 1); err == nil && len(logs) > 0 {
		printStatus("Last activity", "%s", logs[0].Message)
	}
	printStatus("Data dir", "%s", a.cfg.Storage.DataDir)
	return nil
}
