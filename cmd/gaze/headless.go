package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/teslashibe/go-gaze/internal/config"
	"github.com/teslashibe/go-gaze/internal/log"
)

var headlessCmd = &cobra.Command{
	Use:   "headless [robot-ip]",
	Short: "Gaze control without the dashboard",
	Long: `Headless calibrates for 20 frames, shows progress in the terminal and
logs every direction change while commanding the robot.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runHeadless,
}

func init() {
	rootCmd.AddCommand(headlessCmd)
	addEngineFlags(headlessCmd)
	addRobotFlags(headlessCmd)
	addSourceFlags(headlessCmd)
}

func runHeadless(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, config.Default(), robotArg(args))
	if err != nil {
		return err
	}
	if err := cfg.RequireRobot(); err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	src, err := openCameraSource(ctx, cfg, mustGetString(cmd, "record"))
	if err != nil {
		return err
	}
	p, err := newPipeline(ctx, cfg, src)
	if err != nil {
		src.Close()
		return err
	}
	defer p.Close()

	p.tracker.OnCalibrationProgress(calibrationBar(cfg.Engine.NumCalibrationFrames))

	log.Info("headless gaze control starting", "robot", cfg.Robot.IP, "dry_run", cfg.Robot.DryRun)
	if err := p.tracker.Run(ctx); err != nil {
		return err
	}

	stats := p.tracker.Stats()
	fmt.Printf("\nframes=%d no_face=%d commands=%d errors=%d\n",
		stats.Frames, stats.NoFaceFrames, stats.Commands, stats.Errors)
	return nil
}
