// Package cli implements the studymate terminal client.
package cli

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/Rrens/studymate/internal/client"
	"github.com/Rrens/studymate/internal/config"
	"github.com/Rrens/studymate/internal/repository/sqlite"
	"github.com/Rrens/studymate/internal/service"
)

var (
	serverURL  string
	clientID   string
	dbPath     string
	formatFlag string
)

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "studymate",
	Short: "AI study assistant in the terminal",
	Long:  "Chat with the StudyMate gateway and keep notes, bookmarks and saved points in a local SQLite file.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// keep store and session logs off the REPL
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	},
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&serverURL, "server", "s", "", "Server URL (default: $STUDYMATE_SERVER or client.server_url)")
	RootCmd.PersistentFlags().StringVar(&clientID, "client", "", "Client ID sent as X-Client-ID; selects the server-side study document")
	RootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "", "Database path (default: $STUDYMATE_DB or ~/.studymate/studymate.db)")
	RootCmd.PersistentFlags().StringVarP(&formatFlag, "format", "f", "text", "Output format: json or text")
}

// Execute runs the root command
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		exitErr("load config", err)
	}
	return cfg
}

func getServerURL(cfg *config.Config) string {
	if serverURL != "" {
		return serverURL
	}
	return cfg.Client.ServerURL
}

// newClient builds the server client. Its HTTP timeout outlasts the server's own upstream timeout.
func newClient(cfg *config.Config) *client.Client {
	timeout := cfg.LLM.RequestTimeout + 30*time.Second
	return client.New(getServerURL(cfg), clientID).WithHTTPClient(&http.Client{Timeout: timeout})
}

func getDBPath(cfg *config.Config) string {
	if dbPath != "" {
		return dbPath
	}
	if cfg.Client.DBPath != "" {
		return cfg.Client.DBPath
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".studymate", "studymate.db")
}

// openStudies opens the local study document
func openStudies(ctx context.Context, cfg *config.Config) (*service.StudyService, func(), error) {
	path := getDBPath(cfg)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("failed to create data dir: %w", err)
	}

	store, err := sqlite.NewStore(path)
	if err != nil {
		return nil, nil, err
	}

	studies := service.NewStudyService(service.NewStudyStore(store, cfg.Storage.Key))
	studies.Load(ctx)
	return studies, func() { store.Close() }, nil
}

func exitErr(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}
