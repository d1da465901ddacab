package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/rxtech-lab/argo-signals/internal/engine"
	"github.com/rxtech-lab/argo-signals/internal/logger"
	"github.com/rxtech-lab/argo-signals/internal/rule"
	"github.com/rxtech-lab/argo-signals/internal/version"
	"github.com/rxtech-lab/argo-signals/pkg/marketdata"
	"github.com/urfave/cli/v3"
)

// evaluateAction loads the config and rules, warms the snapshot store for
// the configured universe, then evaluates every instrument and prints the
// resulting decisions.
func evaluateAction(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")
	debug := cmd.Bool("debug")

	l, err := newLogger(debug)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer l.Sync()

	config, err := engine.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	ruleSet, err := rule.LoadRules(config.RulesPath)
	if err != nil {
		return fmt.Errorf("failed to load rules: %w", err)
	}

	provider, err := marketdata.NewProvider(
		marketdata.ProviderType(config.Provider),
		os.Getenv("POLYGON_API_KEY"))
	if err != nil {
		return fmt.Errorf("failed to create market data provider: %w", err)
	}

	signalEngine, err := engine.NewEngine(config, ruleSet.Rules, provider, nil, nil, l)
	if err != nil {
		return fmt.Errorf("failed to create engine: %w", err)
	}
	defer signalEngine.Close()

	err = marketdata.Prefetch(ctx, signalEngine.Snapshots(), provider,
		config.Instruments, config.Timeframe, l)
	if err != nil {
		return fmt.Errorf("failed to prefetch snapshots: %w", err)
	}

	for _, instrument := range config.Instruments {
		decision, err := signalEngine.Evaluate(ctx, instrument)
		if err != nil {
			log.Printf("%s: evaluation failed: %v", instrument, err)

			continue
		}

		printDecision(decision)
	}

	return nil
}

func printDecision(decision engine.Decision) {
	if len(decision.Presentation) == 0 {
		fmt.Printf("%s: no signals\n", decision.Instrument)
	}

	for _, signal := range decision.Presentation {
		fmt.Printf("%s: %s %s (priority %d, confidence %.2f): %s\n",
			decision.Instrument,
			signal.Direction,
			signal.RuleName,
			signal.Priority,
			signal.Confidence,
			signal.Justification)
	}

	for _, diagnostic := range decision.Diagnostics {
		fmt.Printf("%s: diagnostic: %s\n", decision.Instrument, diagnostic)
	}
}

func newLogger(debug bool) (*logger.Logger, error) {
	if debug {
		return logger.NewDebugLogger()
	}

	return logger.NewLogger()
}

func main() {
	cmd := &cli.Command{
		Name:    "signals",
		Usage:   "Evaluate signal rules over the configured instrument universe",
		Version: version.GetVersion(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "config",
				Aliases:  []string{"c"},
				Usage:    "Path to the engine config yaml",
				Value:    "config/signal-engine-config.yaml",
				Required: false,
			},
			&cli.BoolFlag{
				Name:     "debug",
				Aliases:  []string{"d"},
				Usage:    "Enable debug logging",
				Required: false,
			},
		},
		Action: evaluateAction,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
