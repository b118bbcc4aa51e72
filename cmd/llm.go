package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/giasu/internal/llm"
)

var llmCmd = &cobra.Command{
	Use:   "llm",
	Short: "Inspect LLM provider configuration",
}

var llmCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify the configured provider responds",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := llm.ConfigFromEnv()
		if err := cfg.Validate(); err != nil {
			discovered, ok := llm.DiscoverConfig()
			if !ok {
				return err
			}
			cfg = discovered
		}

		ctx := context.Background()
		provider, err := llm.NewProvider(ctx, cfg)
		if err != nil {
			return fmt.Errorf("build provider: %w", err)
		}

		fmt.Printf("Provider: %s\n", cfg.Provider)
		fmt.Printf("Model:    %s\n", provider.ModelID())

		resp, err := provider.Generate(ctx, llm.Request{
			Messages:  []llm.Message{{Role: llm.RoleUser, Content: "Reply with the single word: ok"}},
			MaxTokens: 8,
		})
		if err != nil {
			return fmt.Errorf("probe request failed: %w", err)
		}
		fmt.Printf("Response: %s\n", strings.TrimSpace(string(resp.Content)))
		fmt.Printf("Tokens:   %d in / %d out\n", resp.Usage.InputTokens, resp.Usage.OutputTokens)
		return nil
	},
}

var llmModelsCmd = &cobra.Command{
	Use:   "models",
	Short: "Show known models and their pricing",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("%-32s  %12s  %12s\n", "Model", "In $/MTok", "Out $/MTok")
		fmt.Println(strings.Repeat("─", 60))
		for _, id := range llm.KnownModels() {
			cost := llm.LookupCost(id)
			fmt.Printf("%-32s  %12.2f  %12.2f\n", id, cost.InputPerMTok, cost.OutputPerMTok)
		}
	},
}

func init() {
	llmCmd.AddCommand(llmCheckCmd)
	llmCmd.AddCommand(llmModelsCmd)
}
