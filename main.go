package main

import (
	"bandit/chart"
	"bandit/experiments"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

type runFlags struct {
	config     string
	out        string
	chart      bool
	seed       int64
	trials     int
	horizon    int
	workers    int
	trialStats bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var verbose bool
	root := &cobra.Command{
		Use:           "bandit",
		Short:         "Compare multi-armed bandit policies on simulated click-through rates",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly})
			zerolog.SetGlobalLevel(zerolog.InfoLevel)
			if verbose {
				zerolog.SetGlobalLevel(zerolog.DebugLevel)
			}
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log every trial")
	root.AddCommand(newRunCmd())
	return root
}

func newRunCmd() *cobra.Command {
	flags := runFlags{}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run every configured policy over repeated trials",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, flags)
			if err != nil {
				log.Error().Err(err).Msg("failed to set up experiment")
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := runExperiment(ctx, cfg, flags); err != nil {
				log.Error().Err(err).Msg("experiment failed")
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&flags.config, "config", "c", "", "YAML experiment config (defaults compare all policies on three ads)")
	cmd.Flags().StringVarP(&flags.out, "out", "o", "results", "directory for results")
	cmd.Flags().BoolVar(&flags.chart, "chart", true, "render an HTML chart of the series")
	cmd.Flags().Int64Var(&flags.seed, "seed", 0, "random seed, overrides the config")
	cmd.Flags().IntVar(&flags.trials, "trials", 0, "number of trials, overrides the config")
	cmd.Flags().IntVar(&flags.horizon, "horizon", 0, "rounds per trial, overrides the config")
	cmd.Flags().IntVar(&flags.workers, "workers", 0, "concurrent trials, overrides the config")
	cmd.Flags().BoolVar(&flags.trialStats, "trial-stats", false, "record timing of every trial")
	return cmd
}

func loadConfig(cmd *cobra.Command, flags runFlags) (experiments.Config, error) {
	cfg := experiments.DefaultConfig()
	if flags.config != "" {
		var err error
		cfg, err = experiments.LoadConfig(flags.config)
		if err != nil {
			return cfg, err
		}
	}
	if cmd.Flags().Changed("seed") {
		cfg.RandomSeed = &flags.seed
	}
	if cmd.Flags().Changed("trials") {
		cfg.NumTrials = flags.trials
	}
	if cmd.Flags().Changed("horizon") {
		cfg.Horizon = flags.horizon
	}
	if cmd.Flags().Changed("workers") {
		cfg.Workers = flags.workers
	}
	return cfg, cfg.Validate()
}

func runExperiment(ctx context.Context, cfg experiments.Config, flags runFlags) error {
	options := []experiments.Option{}
	if flags.trialStats {
		options = append(options, experiments.WithTrialMetrics())
	}
	x, err := experiments.New(cfg, options...)
	if err != nil {
		return err
	}

	result, runErr := x.Run(ctx)
	if result == nil {
		return runErr
	}
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return runErr
	}
	if runErr != nil {
		log.Warn().Msg("interrupted, storing partial results")
	}

	// Store experiment results
	writer, err := experiments.NewWriter(flags.out)
	if err != nil {
		return err
	}
	if err := writer.WriteAll(result); err != nil {
		return err
	}
	log.Info().Msgf("stored results in %s", writer.Dir())

	if flags.chart {
		curves := make([]chart.Curve, len(result.Policies))
		for i, p := range result.Policies {
			curves[i] = chart.Curve{Label: p.Label, Summary: p.Summary}
		}
		path := filepath.Join(writer.Dir(), "chart.html")
		if err := chart.RenderFile(path, curves); err != nil {
			return err
		}
		log.Info().Msgf("rendered chart to %s", path)
	}

	printSummary(result)
	return runErr
}

func printSummary(result *experiments.Result) {
	best := result.Arms[result.OptimalArm]
	fmt.Printf("Best arm: %s (true mean %.4f)\n", best.Name, best.Mean)
	for _, p := range result.Policies {
		s := p.Summary
		if s.Trials == 0 {
			fmt.Printf("%-24s no completed trials\n", p.Label)
			continue
		}
		last := len(s.MeanReward) - 1
		fmt.Printf("%-24s trials=%d reward=%.1f±%.1f regret=%.1f±%.1f best-arm pulls=%.1f%%\n",
			p.Label, s.Trials, s.MeanReward[last], s.StdReward[last], s.MeanRegret[last], s.StdRegret[last],
			100*s.PullFractions[result.OptimalArm])
	}
}
