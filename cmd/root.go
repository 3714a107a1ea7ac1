package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kilianp07/rotables/app"
	"github.com/kilianp07/rotables/config"
	"github.com/kilianp07/rotables/infra/logger"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:   "rotables",
	Short: "Rotable kit allocation engine",
	RunE:  run,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Play a game against the scoring service",
	RunE:  run,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "config.yaml", "configuration file")
	rootCmd.AddCommand(runCmd)
}

// Execute runs the CLI.
func Execute() error { return rootCmd.Execute() }

func run(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	svc, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			logger.New("main").Errorf("service close: %v", err)
		}
	}()
	res, err := svc.Run(ctx)
	fmt.Fprintf(cmd.OutOrStdout(), "hours=%d last=%s total_cost=%.2f penalties=%d penalty_amount=%.2f\n",
		res.Hours, res.Last, res.TotalCost, res.Penalties, res.PenaltyAmount)
	return err
}
