package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"quadloop/internal/analysis"
	"quadloop/internal/canlink"
	"quadloop/internal/config"
	"quadloop/internal/loop"
	"quadloop/internal/metrics"
	"quadloop/internal/plant"
	"quadloop/internal/robot"
	"quadloop/internal/storage"
	"quadloop/internal/viz"
)

var (
	dataDir    string
	configFile string
	preset     string
	dt         float64
	duration   float64
	velocityX  float64
	canIface   string
	frameRate  int
	plotRow    int
	plotWidth  int
	plotHeight int
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "quadloop",
		Short: "quadruped locomotion control lab",
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".quadloop", "data directory")

	runCmd := &cobra.Command{
		Use:   "run [gait]",
		Short: "run the control loop against the test stand",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLoop,
	}
	runCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	runCmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	runCmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "control timestep")
	runCmd.Flags().Float64Var(&duration, "time", 5.0, "duration")
	runCmd.Flags().Float64Var(&velocityX, "vx", 0.0, "forward velocity command")
	runCmd.Flags().StringVar(&canIface, "can", "", "CAN interface for telemetry (e.g. vcan0)")

	liveCmd := &cobra.Command{
		Use:   "live [gait]",
		Short: "run the loop with live visualization",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	liveCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	liveCmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	liveCmd.Flags().Float64Var(&velocityX, "vx", 0.0, "forward velocity command")
	liveCmd.Flags().IntVar(&frameRate, "fps", 30, "frame rate")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id] [channel]",
		Short: "plot one logged channel",
		Args:  cobra.ExactArgs(2),
		RunE:  plotChannel,
	}
	plotCmd.Flags().IntVar(&plotRow, "row", -1, "plot a single row instead of all")
	plotCmd.Flags().IntVar(&plotWidth, "width", 80, "plot width")
	plotCmd.Flags().IntVar(&plotHeight, "height", 10, "plot height")

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run metadata",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id] [channel]",
		Short: "frequency analysis of one logged channel row",
		Args:  cobra.ExactArgs(2),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().IntVar(&plotRow, "row", 0, "channel row to analyze")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tGAIT\tVX\tPERIOD")
			for _, name := range config.ListPresets() {
				cfg := config.GetPreset(name)
				fmt.Fprintf(w, "%s\t%s\t%.2f\t%.2fs\n",
					name, cfg.Gait.Planner, cfg.Gait.VelocityX, cfg.Gait.Period)
			}
			return w.Flush()
		},
	}

	rootCmd.AddCommand(runCmd, liveCmd, listCmd, plotCmd, exportCmd, analyzeCmd, presetsCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// resolveConfig layers preset, config file and CLI flags, flags winning.
func resolveConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		p := config.GetPreset(preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
		cfg = p
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	if len(args) > 0 {
		cfg.Gait.Planner = args[0]
	}
	if cmd.Flags().Changed("dt") {
		cfg.Loop.Dt = dt
	}
	if cmd.Flags().Changed("vx") {
		cfg.Gait.VelocityX = velocityX
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runLoop(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}

	ctx := context.Background()

	st := storage.New(dataDir)
	if err := st.Init(ctx); err != nil {
		return err
	}
	defer st.Close()

	var pub *canlink.Publisher
	if canIface != "" {
		w, err := canlink.Dial(ctx, canIface)
		if err != nil {
			return err
		}
		pub = canlink.NewPublisher(w)
		defer pub.Close()
	}

	l, err := loop.Build(cfg)
	if err != nil {
		return err
	}
	pl := plant.New(cfg.Robot, cfg.Loop.Dt)

	ticks := int(duration / cfg.Loop.Dt)
	torques := make(robot.Vec, robot.NumJoints)

	fmt.Printf("running %s gait for %.2fs (%d ticks)...\n", cfg.Gait.Planner, duration, ticks)
	start := time.Now()

	for i := 0; i < ticks; i++ {
		sensors := pl.Step(torques)
		torques, err = l.Tick(sensors)
		if err != nil {
			return fmt.Errorf("tick %d: %w", i, err)
		}
		if pub != nil {
			snap := l.DebugSnapshot()
			if err := pub.PublishTick(ctx, torques, snap.Position, snap.Euler); err != nil {
				return err
			}
		}
	}
	elapsed := time.Since(start)

	log := l.FlushLog()
	runID, err := st.Save(ctx, cfg.Gait.Planner, cfg.Loop.Dt, log)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("ticks: %d\n\n", l.Ticks())
	l.DebugSnapshot().Print(os.Stdout)

	summary, err := metrics.Summarize(log, cfg.Loop.Dt)
	if err != nil {
		return err
	}
	fmt.Println("\nmetrics:")
	fmt.Printf("  mean |torque|: %.3f Nm\n", summary.MeanAbsTorque)
	fmt.Printf("  peak torque:   %.3f Nm\n", summary.PeakTorque)
	fmt.Printf("  peak force:    %.3f N\n", summary.PeakForce)
	for leg, d := range summary.DutyFactors {
		fmt.Printf("  duty leg %d:    %.2f\n", leg, d)
	}
	if summary.StrideFrequency > 0 {
		fmt.Printf("  stride:        %.2f Hz\n", summary.StrideFrequency)
	}
	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	runID, channel := args[0], args[1]

	st := storage.New(dataDir)
	meta, err := st.Metadata(runID)
	if err != nil {
		return err
	}
	data, err := st.LoadChannel(runID, channel)
	if err != nil {
		return err
	}
	if plotRow < 0 || plotRow >= len(data) {
		return fmt.Errorf("channel %s has no row %d", channel, plotRow)
	}

	row := data[plotRow]
	spectrum := analysis.Spectrum(row)
	out, err := viz.PlotChannel(fmt.Sprintf("%s[%d] spectrum", channel, plotRow),
		[][]float64{spectrum[:len(spectrum)/4]}, plotWidth, plotHeight)
	if err != nil {
		return err
	}
	fmt.Println(out)

	freq, err := analysis.DominantFrequency(row, meta.Dt)
	if err != nil {
		return err
	}
	fmt.Printf("dominant frequency: %.3f hz\n", freq)
	if freq > 0 {
		fmt.Printf("period: %.3f s\n", 1/freq)
	}
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}

	m, err := viz.NewModel(cfg, frameRate)
	if err != nil {
		return err
	}
	_, err = tea.NewProgram(m).Run()
	return err
}

func listRuns(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	st := storage.New(dataDir)
	if err := st.Init(ctx); err != nil {
		return err
	}
	defer st.Close()

	runs, err := st.List(ctx)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tGAIT\tTIME\tDT\tTICKS")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.4fs\t%d\n",
			run.ID,
			run.Gait,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Dt,
			run.Ticks,
		)
	}
	return w.Flush()
}

func plotChannel(cmd *cobra.Command, args []string) error {
	runID, channel := args[0], args[1]

	st := storage.New(dataDir)
	data, err := st.LoadChannel(runID, channel)
	if err != nil {
		return err
	}

	var out string
	if plotRow >= 0 {
		out, err = viz.PlotRow(channel, data, plotRow, plotWidth, plotHeight)
	} else {
		out, err = viz.PlotChannel(channel, data, plotWidth, plotHeight)
	}
	if err != nil {
		return err
	}
	fmt.Println(out)
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Metadata(args[0])
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}
