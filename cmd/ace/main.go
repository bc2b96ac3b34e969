package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jakegem/ACE/sim"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/mat"
)

func main() {
	cobra.CheckErr(NewCmd().ExecuteContext(context.Background()))
}

// NewCmd creates the ace root command.
func NewCmd() *cobra.Command {
	cobra.EnableCommandSorting = false

	rootCmd := &cobra.Command{
		Use:           "ace [command] [flags]",
		Short:         "ace runs linear Kalman filter simulations",
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Print(cmd.UsageString())
		},
	}
	rootCmd.PersistentFlags().String("log-level", "info", "`<Level>` of logging: debug, info, warn or error")
	rootCmd.PersistentFlags().String("log-file", "", "`<Path>` of the rotated log file, stderr if empty")

	runCmd := &cobra.Command{
		Use:   "run [flags]",
		Short: "Filter a simulated trajectory and plot the estimates",
		Args:  cobra.NoArgs,
		RunE:  doRun,
	}
	runCmd.Flags().StringP("config", "c", "", "`<Path>` to the YAML scenario, the default scenario if empty")
	runCmd.Flags().StringP("out", "o", "kalman_filter.png", "`<Path>` of the chart, format chosen by extension")
	runCmd.Flags().String("csv", "", "`<Path>` of the CSV export of the estimates")
	runCmd.Flags().Uint64("seed", 0, "`<Seed>` of the measurement noise, time based if 0")

	rootCmd.AddCommand(runCmd)

	return rootCmd
}

func doRun(cmd *cobra.Command, args []string) error {
	level, err := cmd.Flags().GetString("log-level")
	if err != nil {
		return err
	}
	logFile, err := cmd.Flags().GetString("log-file")
	if err != nil {
		return err
	}
	config, err := cmd.Flags().GetString("config")
	if err != nil {
		return err
	}
	out, err := cmd.Flags().GetString("out")
	if err != nil {
		return err
	}
	csvPath, err := cmd.Flags().GetString("csv")
	if err != nil {
		return err
	}
	seed, err := cmd.Flags().GetUint64("seed")
	if err != nil {
		return err
	}

	log, closeLog, err := newLogger(cmd.ErrOrStderr(), level, logFile)
	if err != nil {
		return err
	}
	defer closeLog()

	scenario := DefaultScenario()
	if config != "" {
		if scenario, err = LoadScenario(config); err != nil {
			return err
		}
	}

	traj := scenario.SimTrajectory()
	truth, err := traj.Generate()
	if err != nil {
		return err
	}

	mn, err := scenario.NewMeasurementNoise(seed)
	if err != nil {
		return err
	}

	zs, err := truth.Measure(mn)
	if err != nil {
		return err
	}

	f, err := scenario.NewFilter()
	if err != nil {
		return err
	}

	log.Info("running filter", "config", config, "steps", len(zs), "seed", seed)

	res, err := sim.Run(f, zs, log)
	if err != nil {
		return err
	}

	mean, std, rmse, err := res.Errors(0, truth.Position)
	if err != nil {
		return err
	}
	log.Info("position error", "mean", mean, "std", std, "rmse", rmse)

	chart, err := sim.NewChart(res, truth.Position, zs)
	if err != nil {
		return err
	}

	if err := sim.SaveChart(chart, out, 0, 0); err != nil {
		return fmt.Errorf("failed to save chart: %w", err)
	}
	log.Info("chart saved", "path", out)

	if csvPath != "" {
		if err := writeCSV(csvPath, res, truth, zs, traj.Dt()); err != nil {
			return fmt.Errorf("failed to export estimates: %w", err)
		}
		log.Info("estimates exported", "path", csvPath)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "steps: %d skipped: %d rmse: %.6f\n", res.Len(), len(res.Skipped), rmse)

	return nil
}

func writeCSV(path string, res *sim.Result, truth *sim.Truth, zs []mat.Vector, dt float64) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	if err := sim.WriteCSV(f, res, truth.Position, zs, dt); err != nil {
		f.Close()
		return err
	}

	return f.Close()
}
