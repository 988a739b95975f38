package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pellucid-ai/agentwire-go"
)

func newChatCmd(cfg *config) *cobra.Command {
	var (
		sessionID   string
		agentName   string
		workflow    string
		autoApprove bool
	)

	cmd := &cobra.Command{
		Use:   "chat [prompt]",
		Short: "Stream one chat turn and print the response",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if agentName == "" {
				agentName = cfg.Agent
			}
			if workflow == "" {
				workflow = cfg.Workflow
			}
			return runChat(cmd, cfg, args[0], sessionID, agentName, workflow, autoApprove)
		},
	}

	cmd.Flags().StringVar(&sessionID, "session", "", "continue an existing session")
	cmd.Flags().StringVar(&agentName, "agent", "", "route the turn through a named agent")
	cmd.Flags().StringVar(&workflow, "workflow", "", "route the turn through a named workflow")
	cmd.Flags().BoolVar(&autoApprove, "yes", false, "approve tool calls without prompting")
	return cmd
}

func runChat(cmd *cobra.Command, cfg *config, prompt, sessionID, agentName, workflow string, autoApprove bool) error {
	ctx := cmd.Context()

	client, err := newClient(cfg)
	if err != nil {
		return err
	}

	if sessionID == "" {
		session, err := client.CreateSession(ctx)
		if err != nil {
			return fmt.Errorf("creating session: %w", err)
		}
		sessionID = session.ID
		fmt.Fprintln(cmd.ErrOrStderr(), "session:", sessionID)
	}

	site := agentwire.CallSiteChat
	switch {
	case workflow != "":
		site = agentwire.CallSiteWorkflow
	case agentName != "":
		site = agentwire.CallSiteAgent
	}

	provider := agentwire.ProviderID(cfg.Provider)
	if cfg.Provider != "" && !provider.IsValid() {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: unrecognized provider %q, forwarding anyway\n", provider.String())
	}

	req := &agentwire.TurnRequest{
		SessionID:   sessionID,
		Content:     prompt,
		Provider:    provider,
		Model:       cfg.Model,
		Temperature: &cfg.Temperature,
		Agent:       agentName,
		Workflow:    workflow,
	}

	events, err := client.Stream(ctx, site, req)
	if err != nil {
		return err
	}

	conv := agentwire.NewConversation(client, agentwire.CapabilitiesFor(site), slog.Default())
	conv.SetSessionID(sessionID)
	conv.AppendUser(prompt, nil)

	out := cmd.OutOrStdout()
	errOut := cmd.ErrOrStderr()
	stdin := bufio.NewReader(os.Stdin)

	for ev := range events {
		switch ev := ev.(type) {
		case *agentwire.TokenEvent:
			fmt.Fprint(out, ev.Content)
		case *agentwire.AgentStartEvent:
			fmt.Fprintf(errOut, "\n[agent %s]\n", ev.Name)
		case *agentwire.ToolCallEvent:
			if agent := conv.ActiveAgent(); agent != "" {
				fmt.Fprintf(errOut, "\n[tool %s by %s]\n", ev.ToolName, agent)
			} else {
				fmt.Fprintf(errOut, "\n[tool %s]\n", ev.ToolName)
			}
		}
		conv.Apply(ev)

		if approval, ok := ev.(*agentwire.ApprovalRequestEvent); ok {
			if err := decideApproval(ctx, conv, approval, stdin, errOut, autoApprove); err != nil {
				return err
			}
		}
	}
	fmt.Fprintln(out)

	if text := conv.LastError(); text != "" {
		return fmt.Errorf("turn failed: %s", text)
	}
	return nil
}

// decideApproval prompts on stderr for a pending tool approval and posts the
// decision back to the backend. With --yes every request is approved.
func decideApproval(ctx context.Context, conv *agentwire.Conversation, approval *agentwire.ApprovalRequestEvent, stdin *bufio.Reader, errOut io.Writer, autoApprove bool) error {
	if autoApprove {
		fmt.Fprintf(errOut, "\n[auto-approving %s]\n", approval.ToolName)
		return conv.Approve(ctx, approval.ApprovalID, "")
	}

	fmt.Fprintf(errOut, "\napproval requested for %s", approval.ToolName)
	if approval.Message != "" {
		fmt.Fprintf(errOut, ": %s", approval.Message)
	}
	if approval.Config.ShowArgs && len(approval.ToolArgs) > 0 {
		if args, err := json.Marshal(approval.ToolArgs); err == nil {
			fmt.Fprintf(errOut, "\nargs: %s", args)
		}
	}
	fmt.Fprint(errOut, "\napprove? [y/N] ")

	line, err := stdin.ReadString('\n')
	if err != nil && err != io.EOF {
		return fmt.Errorf("reading approval decision: %w", err)
	}
	if answer := strings.ToLower(strings.TrimSpace(line)); answer == "y" || answer == "yes" {
		return conv.Approve(ctx, approval.ApprovalID, "")
	}

	reason := "rejected from terminal"
	if approval.Config.RequireReasonOnReject {
		fmt.Fprint(errOut, "reason: ")
		line, err := stdin.ReadString('\n')
		if err != nil && err != io.EOF {
			return fmt.Errorf("reading rejection reason: %w", err)
		}
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			reason = trimmed
		}
	}
	return conv.Reject(ctx, approval.ApprovalID, reason)
}

func newClient(cfg *config) (*agentwire.Client, error) {
	var opts []agentwire.Option
	if cfg.APIKey != "" {
		opts = append(opts, agentwire.WithAPIKey(cfg.APIKey))
	}
	return agentwire.NewClient(cfg.BaseURL, opts...)
}
