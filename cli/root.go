// Package cli is the view-layer collaborator: it drives the stores through
// their operation set and renders their observable state to the terminal.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"task-tracker-client/adapters/rest"
	"task-tracker-client/adapters/sessionfile"
	"task-tracker-client/config"
	"task-tracker-client/core"
)

// App bundles the wired stores for command handlers.
type App struct {
	cfg     config.Config
	log     *slog.Logger
	tasks   *core.TaskStore
	session *core.SessionStore
}

func newApp(configPath string) *App {
	cfg := config.MustLoad(configPath)
	log := mustMakeLogger(cfg.LogLevel)

	client := rest.NewClient(cfg.API.BaseURL, cfg.API.Timeout, log)
	storage := sessionfile.New(cfg.SessionFile, log)

	tasks := core.NewTaskStore(client, log)
	session := core.NewSessionStore(client, client, storage, tasks, log)

	return &App{cfg: cfg, log: log, tasks: tasks, session: session}
}

// bootstrap reconciles the persisted session with the server before any
// authenticated command runs.
func (a *App) bootstrap(ctx context.Context) error {
	if err := a.session.CheckAuth(ctx); err != nil {
		a.log.Debug("session check failed", "error", err)
	}
	if !a.session.IsLogin() {
		return fmt.Errorf("not logged in, run %q first", "task-tracker login")
	}
	return nil
}

func Execute() error {
	var configPath string
	app := &App{}

	rootCmd := &cobra.Command{
		Use:           "task-tracker",
		Short:         "task-tracker - personal task tracking client",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			*app = *newApp(configPath)
		},
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config.yaml", "client configuration file")

	rootCmd.AddCommand(
		loginCmd(app),
		registerCmd(app),
		logoutCmd(app),
		whoamiCmd(app),
		profileCmd(app),
		listCmd(app),
		addCmd(app),
		showCmd(app),
		editCmd(app),
		doneCmd(app),
		undoneCmd(app),
		rmCmd(app),
	)

	return rootCmd.Execute()
}

func mustMakeLogger(levelStr string) *slog.Logger {
	var level slog.Level
	switch levelStr {
	case "DEBUG":
		level = slog.LevelDebug
	case "INFO":
		level = slog.LevelInfo
	case "ERROR":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	return slog.New(handler)
}
