package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/joho/godotenv"
	"github.com/openai/openai-go/v3"
	"github.com/spf13/cobra"

	"github.com/n1nt3ndon/soloclaw/internal/config"
	"github.com/n1nt3ndon/soloclaw/internal/log"
	"github.com/n1nt3ndon/soloclaw/internal/modelclient"
	"github.com/n1nt3ndon/soloclaw/internal/tui"
)

var version = "0.1.0"

func init() {
	_ = godotenv.Load()
	_ = log.Init()
}

func main() {
	defer log.Sync()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var (
	modelFlag string
	cwdFlag   string
)

var rootCmd = &cobra.Command{
	Use:   "soloclaw",
	Short: "soloclaw - terminal-resident coding agent",
	Long: `soloclaw is a terminal-resident conversational agent: a turn loop
talking to an LLM, a layered approval engine gating tool calls, and a
terminal UI driving both.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, err := config.Load()
		if err != nil {
			return fmt.Errorf("load settings: %w", err)
		}

		cwd := cwdFlag
		if cwd == "" {
			cwd, _ = os.Getwd()
		}

		model := modelFlag
		if model == "" {
			model = settings.Model
		}

		client, resolvedModel, err := resolveClient(model)
		if err != nil {
			return err
		}

		return tui.Run(tui.Options{
			Client:          client,
			Model:           resolvedModel,
			MaxTokens:       settings.MaxTokens,
			InputTokenLimit: modelclient.DefaultInputTokenLimit(resolvedModel),
			Cwd:             cwd,
			Settings:        settings,
		})
	},
}

func init() {
	rootCmd.Flags().StringVarP(&modelFlag, "model", "m", "", "model name (defaults to settings.model)")
	rootCmd.Flags().StringVar(&cwdFlag, "cwd", "", "working directory (defaults to the current directory)")
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(configCmd)
}

// resolveClient picks a provider by the model name's prefix: "gpt"/"o1"/"o3"
// route to OpenAI, everything else to Anthropic, the default provider for
// this runtime. Both SDK clients read their API key from the environment
// (ANTHROPIC_API_KEY / OPENAI_API_KEY) when constructed with no options.
func resolveClient(model string) (modelclient.StreamingClient, string, error) {
	if model == "" {
		model = "claude-sonnet-4-20250514"
	}

	if strings.HasPrefix(model, "gpt") || strings.HasPrefix(model, "o1") || strings.HasPrefix(model, "o3") {
		if os.Getenv("OPENAI_API_KEY") == "" {
			return nil, "", fmt.Errorf("OPENAI_API_KEY is not set")
		}
		client := openai.NewClient()
		return modelclient.NewOpenAIClient(client, "openai"), model, nil
	}

	if os.Getenv("ANTHROPIC_API_KEY") == "" {
		return nil, "", fmt.Errorf("ANTHROPIC_API_KEY is not set")
	}
	client := anthropic.NewClient()
	return modelclient.NewAnthropicClient(client, "anthropic"), model, nil
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("soloclaw version %s\n", version)
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the merged settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, err := config.Load()
		if err != nil {
			return err
		}
		fmt.Printf("model:           %s\n", settings.Model)
		fmt.Printf("maxTokens:       %d\n", settings.MaxTokens)
		fmt.Printf("approvalsPath:   %s\n", settings.ApprovalsPath)
		fmt.Printf("approvalTimeout: %s\n", settings.ApprovalTimeout)
		return nil
	},
}
