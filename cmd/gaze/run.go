package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/teslashibe/go-gaze/internal/config"
	"github.com/teslashibe/go-gaze/internal/log"
	"github.com/teslashibe/go-gaze/pkg/web"
)

var runCmd = &cobra.Command{
	Use:   "run [robot-ip]",
	Short: "Interactive gaze control with the web dashboard",
	Long: `Run opens the camera, calibrates for 200 frames while you look straight
ahead and then drives the robot from your smoothed gaze direction.

The dashboard shows the current direction and lets you recalibrate, toggle
gaze control and send manual commands.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInteractive,
}

func init() {
	rootCmd.AddCommand(runCmd)
	addEngineFlags(runCmd)
	addRobotFlags(runCmd)
	addSourceFlags(runCmd)
	runCmd.Flags().Int("port", config.DefaultDashboardPort, "Dashboard port")
}

func runInteractive(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, config.Interactive(), robotArg(args))
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

	if cfg.Dashboard.Enabled {
		server := web.NewServer(cfg.Dashboard.Port, p.engine, p.dispatcher)
		server.StartAsync(ctx)
		defer server.Shutdown()
		p.tracker.SetStateUpdater(server)
		fmt.Fprintf(os.Stderr, "Dashboard: http://localhost:%d\n", cfg.Dashboard.Port)
	}

	log.Info("gaze control starting",
		"robot", cfg.Robot.IP,
		"dry_run", cfg.Robot.DryRun,
		"calibration_frames", cfg.Engine.NumCalibrationFrames)

	return p.tracker.Run(ctx)
}

func robotArg(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return ""
}
