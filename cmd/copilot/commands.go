package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/drewfead/copilot/internal/client"
	"github.com/drewfead/copilot/internal/errclass"
	"github.com/drewfead/copilot/internal/message"
	"github.com/drewfead/copilot/internal/response"
	"github.com/drewfead/copilot/internal/tui/chat"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Open the interactive chat TUI",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runChat()
	},
}

var agentsCmd = &cobra.Command{
	Use:   "agents",
	Short: "List agents the backend can route to",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAgents()
	},
}

var stateCmd = &cobra.Command{
	Use:   "state <thread-id>",
	Short: "Show the persisted agent state for a thread",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runState(args[0])
	},
}

var askCmd = &cobra.Command{
	Use:   "ask <prompt>",
	Short: "Send one prompt and print the response",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAsk(args[0])
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the client protocol version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(client.ClientVersion)
	},
}

func runChat() error {
	rec, closeRec, err := newRecorder()
	if err != nil {
		return err
	}
	defer closeRec()

	opts := options()

	var program *tea.Program
	opts.OnError = func(se *errclass.StructuredError) {
		if program != nil {
			program.Send(chat.Banner(se.Message))
		}
	}
	opts.OnWarning = func(msg string) {
		if program != nil {
			program.Send(chat.Warning(msg))
		}
	}

	mgr, err := client.New(opts, rec)
	if err != nil {
		return err
	}
	defer mgr.Close()

	model := chat.New(mgr, flagAgent, opts.ThreadID, cfg.UI.ShowAgentState)
	program = tea.NewProgram(model, tea.WithAltScreen())
	_, err = program.Run()
	return err
}

func runAgents() error {
	mgr, err := client.New(options(), nil)
	if err != nil {
		return err
	}
	defer mgr.Close()

	c := mgr.Resolve(flagAgent)
	if c == nil {
		return fmt.Errorf("no client available for agent %q", flagAgent)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	agents, err := c.AvailableAgents(ctx)
	if err != nil {
		return err
	}
	if len(agents) == 0 {
		fmt.Println("No agents available.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tID\tDESCRIPTION")
	for _, a := range agents {
		fmt.Fprintf(w, "%s\t%s\t%s\n", a.Name, a.ID, a.Description)
	}
	return w.Flush()
}

func runState(threadID string) error {
	mgr, err := client.New(options(), nil)
	if err != nil {
		return err
	}
	defer mgr.Close()

	c := mgr.Resolve(flagAgent)
	if c == nil {
		return fmt.Errorf("no client available for agent %q", flagAgent)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	state, err := c.LoadAgentState(ctx, flagAgent, threadID)
	if err != nil {
		return err
	}
	if state == nil || !state.ThreadExists {
		fmt.Printf("Thread %s has no persisted state.\n", threadID)
		return nil
	}

	fmt.Printf("thread: %s\n", state.ThreadID)
	if len(state.State) > 0 {
		var pretty map[string]any
		if err := json.Unmarshal(state.State, &pretty); err == nil {
			enc, _ := json.MarshalIndent(pretty, "", "  ")
			fmt.Println(string(enc))
		} else {
			fmt.Println(string(state.State))
		}
	}
	fmt.Printf("messages: %d\n", len(state.Messages))
	return nil
}

func runAsk(prompt string) error {
	rec, closeRec, err := newRecorder()
	if err != nil {
		return err
	}
	defer closeRec()

	opts := options()
	mgr, err := client.New(opts, rec)
	if err != nil {
		return err
	}
	defer mgr.Close()

	c := mgr.Resolve(flagAgent)
	if c == nil {
		return fmt.Errorf("no client available for agent %q", flagAgent)
	}

	stream, err := c.AsStream(context.Background(), &client.GenerateRequest{
		AgentName: flagAgent,
		ThreadID:  opts.ThreadID,
		Messages:  []*message.Message{message.NewText(message.RoleUser, prompt)},
	})
	if err != nil {
		return err
	}

	for out := range stream.Outputs() {
		switch out.Kind {
		case response.KindTextMessage:
			fmt.Print(out.Content)
		case response.KindActionExecution:
			if out.ActionName != "" {
				fmt.Printf("\n[action %s]", out.ActionName)
			}
			fmt.Print(out.Args)
		}
	}
	fmt.Println()
	return stream.Err()
}
