package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"devduo/console"
	"devduo/duo"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List the chat models your API key can use",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return exitError(err)
		}
		llm, err := buildLLM(cfg, "")
		if err != nil {
			return err
		}
		con, err := console.New(cmd.InOrStdin(), cmd.OutOrStdout(), console.Options{Plain: true})
		if err != nil {
			return err
		}

		con.Infof("Checking available models...")
		ids, err := llm.ListModels(cmd.Context())
		if err != nil {
			con.PrintFailure(err, "")
			return fmt.Errorf("list models: %w", err)
		}
		printModels(con, duo.FilterChatModels(ids))
		return nil
	},
}

func printModels(con *console.Console, models []string) {
	con.Successf("Found %d chat models available:", len(models))
	for _, m := range models {
		con.Infof("  %s", m)
	}

	rec := duo.Recommend(models)
	con.Section("Recommendations:")
	if rec.Capable != "" {
		con.Infof("  Use %s (most capable)", rec.Capable)
	}
	if rec.CostEffective != "" {
		con.Infof("  Use %s (cost-effective)", rec.CostEffective)
	}
	con.Section("Update your .env file with:")
	con.Infof("OPENAI_MODEL=%s", duo.FallbackModel)
}
