// Command copilot is a terminal client for copilot runtimes and direct
// agent servers: an interactive chat TUI plus quick commands for agent
// discovery and thread state.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/drewfead/copilot/internal/client"
	"github.com/drewfead/copilot/internal/config"
	"github.com/drewfead/copilot/internal/eventlog"
	"github.com/drewfead/copilot/internal/logging"
)

var cfg *config.Config

var (
	flagRuntimeURL string
	flagAgentURL   string
	flagAPIKey     string
	flagAgent      string
	flagThread     string
)

func main() {
	var err error
	cfg, err = config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	if err := logging.Init(logging.Config{
		Level:     logging.ParseLevel(cfg.Log.Level),
		SentryDSN: cfg.Log.SentryDSN,
		Version:   client.ClientVersion,
		LogFile:   cfg.Log.File,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logging: %v\n", err)
		os.Exit(1)
	}
	defer logging.Flush(2 * time.Second)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// options merges the config file with command-line overrides.
func options() *config.Options {
	opts := cfg.Client
	if flagRuntimeURL != "" {
		opts.RuntimeURL = flagRuntimeURL
	}
	if flagAgentURL != "" {
		opts.AgentURL = flagAgentURL
	}
	if flagAPIKey != "" {
		opts.PublicAPIKey = flagAPIKey
	}
	if flagThread != "" {
		opts.ThreadID = flagThread
	}
	return &opts
}

// newRecorder builds the protocol event journal when enabled.
func newRecorder() (*eventlog.Recorder, func(), error) {
	if !cfg.Journal.Enabled {
		return nil, func() {}, nil
	}
	journal, err := eventlog.NewSQLiteJournal(cfg.Journal.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("open event journal: %w", err)
	}
	return eventlog.NewRecorder(journal, eventlog.NewBus()), func() { journal.Close() }, nil
}

var rootCmd = &cobra.Command{
	Use:   "copilot",
	Short: "Terminal client for copilot agents",
	Long: `copilot - chat with agents behind a copilot runtime or direct agent servers.

Configure a backend in ~/.config/copilot/config.yaml or via flags:
  copilot chat --agent-url http://localhost:8000      # direct ag_ui agent
  copilot chat --runtime-url https://api.example.com  # GraphQL runtime
  copilot agents                                      # list available agents
  copilot state <thread-id> --agent planner           # inspect thread state`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runChat()
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagRuntimeURL, "runtime-url", "", "GraphQL runtime server URL")
	pf.StringVar(&flagAgentURL, "agent-url", "", "direct agent server URL")
	pf.StringVar(&flagAPIKey, "api-key", "", "public API key (runtime mode only)")
	pf.StringVar(&flagAgent, "agent", "", "agent name to talk to")
	pf.StringVar(&flagThread, "thread", "", "conversation thread id")

	rootCmd.AddCommand(chatCmd, agentsCmd, stateCmd, askCmd, versionCmd)
}
