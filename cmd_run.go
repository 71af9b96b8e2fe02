package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"devduo/config"
	"devduo/console"
	"devduo/duo"
	"devduo/report"
)

var runFlags struct {
	model  string
	rounds int
	delay  time.Duration
	out    string
	html   string
	yes    bool
	quiet  bool
	plain  bool
	mock   bool
}

var runCmd = &cobra.Command{
	Use:   "run [task]",
	Short: "Run a writer/reviewer collaboration",
	Long: `Run a writer/reviewer collaboration for a coding task.

Without a task argument devduo lists your available models and a few example
tasks and asks you to choose.

Examples:
  devduo run
  devduo run --model gpt-4o --rounds 2 "reverse a string"
  devduo run --mock --yes --out result.json "check if a number is prime"`,
	RunE: runCollaboration,
}

func init() {
	f := runCmd.Flags()
	f.StringVar(&runFlags.model, "model", "", "model to use (skips interactive selection)")
	f.IntVar(&runFlags.rounds, "rounds", 0, "maximum rounds (default from config, 3)")
	f.DurationVar(&runFlags.delay, "delay", -1, "fixed pause between API calls (default from config, 1s)")
	f.StringVar(&runFlags.out, "out", "", "write the JSON result to this file without asking")
	f.StringVar(&runFlags.html, "html", "", "also write an HTML report to this file")
	f.BoolVarP(&runFlags.yes, "yes", "y", false, "save the result without asking")
	f.BoolVarP(&runFlags.quiet, "quiet", "q", false, "do not print each turn")
	f.BoolVar(&runFlags.plain, "plain", false, "print replies verbatim instead of rendering markdown")
	f.BoolVar(&runFlags.mock, "mock", false, "use a canned offline model instead of the API")
}

func runCollaboration(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	var (
		cfg config.Config
		err error
	)
	if runFlags.mock {
		cfg, err = config.Load(configPath)
	} else {
		cfg, err = loadConfig()
	}
	if err != nil {
		return exitError(err)
	}

	con, err := console.New(cmd.InOrStdin(), cmd.OutOrStdout(), console.Options{Plain: runFlags.plain})
	if err != nil {
		return err
	}
	con.Banner("Welcome to DevDuo - AI Pair Programming System")

	task := strings.TrimSpace(strings.Join(args, " "))
	interactive := task == ""

	var llm duo.LLMClient
	model := runFlags.model
	if runFlags.mock {
		if model == "" {
			model = "mock"
		}
		llm = &duo.MockLLM{Reply: duo.EchoReply}
	} else {
		if model == "" && interactive {
			lister, err := buildLLM(cfg, "")
			if err != nil {
				return err
			}
			con.Infof("Checking available models...")
			model, err = con.SelectModel(fetchChatModels(ctx, lister))
			if err != nil {
				return err
			}
		}
		if model == "" {
			model = cfg.Model
		}
		client, err := buildLLM(cfg, model)
		if err != nil {
			return err
		}
		llm = client
	}

	if interactive {
		if task, err = con.SelectTask(); err != nil {
			return err
		}
	}

	rounds := runFlags.rounds
	if rounds == 0 {
		rounds = cfg.MaxRounds
	}
	delay := cfg.Delay
	if runFlags.delay >= 0 {
		delay = runFlags.delay
	}
	if runFlags.mock {
		delay = 0
	}

	agentCfg := duo.Config{Model: model, Delay: delay, Logger: logger}
	if !runFlags.quiet {
		agentCfg.OnTurn = con.PrintTurn
	}
	agent, err := duo.NewAgent(llm, agentCfg)
	if err != nil {
		return err
	}

	con.Section(fmt.Sprintf("Starting collaboration with %s", model))
	con.Infof("Task: %s", task)
	logger.Debug("collaboration starting", zap.String("model", model), zap.Int("max_rounds", rounds), zap.Duration("delay", delay))

	res, err := agent.Collaborate(ctx, task, rounds)
	if err != nil {
		con.PrintFailure(err, model)
		return fmt.Errorf("collaboration failed: %w", err)
	}
	con.PrintResult(res)

	return saveResult(con, cfg, res)
}

func saveResult(con *console.Console, cfg config.Config, res duo.Result) error {
	path := runFlags.out
	if path == "" {
		save := runFlags.yes
		if !save {
			var err error
			if save, err = con.Confirm("Would you like to save the results to a file?"); err != nil {
				return err
			}
		}
		if !save {
			return nil
		}
		path = cfg.Output
	}
	if err := report.SaveJSON(path, res); err != nil {
		return fmt.Errorf("save result: %w", err)
	}
	con.Successf("Results saved to %s", path)

	if runFlags.html != "" {
		if err := report.SaveHTML(runFlags.html, res); err != nil {
			return fmt.Errorf("save html report: %w", err)
		}
		con.Successf("HTML report saved to %s", runFlags.html)
	}
	return nil
}
