// agentchat is a small terminal client for agentwire backends. It streams a
// chat turn to stdout, printing tokens as they arrive and tool/approval
// activity on stderr.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var cfgPath string
	cfg := defaultConfig()

	root := &cobra.Command{
		Use:           "agentchat",
		Short:         "Chat with an agentwire backend from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := loadConfig(cfgPath)
			if err != nil {
				return err
			}
			// Flags set explicitly win over the config file.
			mergeConfig(cmd, cfg, loaded)
			return nil
		},
	}

	root.PersistentFlags().StringVar(&cfgPath, "config", "", "config file (default ~/.agentchat.yaml)")
	root.PersistentFlags().StringVar(&cfg.BaseURL, "backend", cfg.BaseURL, "backend base URL")
	root.PersistentFlags().StringVar(&cfg.Provider, "provider", cfg.Provider, "LLM provider")
	root.PersistentFlags().StringVar(&cfg.Model, "model", cfg.Model, "model identifier")
	root.PersistentFlags().Float64Var(&cfg.Temperature, "temperature", cfg.Temperature, "sampling temperature")

	root.AddCommand(newChatCmd(cfg))
	root.AddCommand(newSessionsCmd(cfg))
	return root
}
