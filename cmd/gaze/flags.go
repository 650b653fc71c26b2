package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/teslashibe/go-gaze/internal/config"
	"github.com/teslashibe/go-gaze/internal/log"
	"github.com/teslashibe/go-gaze/pkg/camera"
)

// mustGetBool gets a bool flag value or panics if the flag doesn't exist.
// This is appropriate for flags defined in init() - errors indicate programming bugs.
func mustGetBool(cmd *cobra.Command, name string) bool {
	val, err := cmd.Flags().GetBool(name)
	if err != nil {
		panic(fmt.Sprintf("flag error for --%s: %v", name, err))
	}
	return val
}

// mustGetInt gets an int flag value or panics if the flag doesn't exist.
func mustGetInt(cmd *cobra.Command, name string) int {
	val, err := cmd.Flags().GetInt(name)
	if err != nil {
		panic(fmt.Sprintf("flag error for --%s: %v", name, err))
	}
	return val
}

// mustGetString gets a string flag value or panics if the flag doesn't exist.
func mustGetString(cmd *cobra.Command, name string) string {
	val, err := cmd.Flags().GetString(name)
	if err != nil {
		panic(fmt.Sprintf("flag error for --%s: %v", name, err))
	}
	return val
}

// changed reports whether the user set the flag.
func changed(cmd *cobra.Command, name string) bool {
	f := cmd.Flags().Lookup(name)
	return f != nil && f.Changed
}

// addEngineFlags registers the gaze engine overrides.
func addEngineFlags(cmd *cobra.Command) {
	cmd.Flags().Int("calibration-frames", 0, "Frames per calibration cycle (default depends on mode)")
	cmd.Flags().Int("buffer", 0, "Majority vote window size (default 20)")
	cmd.Flags().String("combine", "", "How eye labels enter the window: per_eye, agreement")
}

// addRobotFlags registers the actuation flags.
func addRobotFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("dry-run", false, "Log commands instead of sending them to the robot")
	cmd.Flags().Int("cmd-dur", 250, "Duration of each command (ms)")
	cmd.Flags().Int("velocity", 150, "Motor velocity (0-255)")
}

// addSourceFlags registers the camera and landmark service flags.
func addSourceFlags(cmd *cobra.Command) {
	cmd.Flags().Int("camera", 0, "Camera device index")
	cmd.Flags().String("camera-preset", "", "Camera preset: default, low, 720p, 1080p")
	cmd.Flags().String("landmarker", "", "Landmark service WebSocket URL")
	cmd.Flags().String("record", "", "Record landmark frames to this JSONL file")
	cmd.Flags().String("redis", "", "Redis address for gaze events (host:port)")
}

// loadConfig merges defaults, file, environment and the flags the user set,
// then initializes logging.
func loadConfig(cmd *cobra.Command, base config.Config, robotIP string) (*config.Config, error) {
	cfg, err := config.Load(configPath, base)
	if err != nil {
		return nil, err
	}
	if robotIP != "" {
		cfg.Robot.IP = robotIP
	}

	if err := applyFlags(cmd, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log.InitFile(cfg.Log.Level, cfg.Log.File)
	return cfg, nil
}

func applyFlags(cmd *cobra.Command, cfg *config.Config) error {
	if changed(cmd, "log-level") {
		cfg.Log.Level = mustGetString(cmd, "log-level")
	}
	if changed(cmd, "log-file") {
		cfg.Log.File = mustGetString(cmd, "log-file")
	}

	if changed(cmd, "calibration-frames") {
		cfg.Engine.NumCalibrationFrames = mustGetInt(cmd, "calibration-frames")
	}
	if changed(cmd, "buffer") {
		cfg.Engine.BufferSize = mustGetInt(cmd, "buffer")
	}
	if changed(cmd, "combine") {
		cfg.Engine.Combine = mustGetString(cmd, "combine")
	}

	if changed(cmd, "dry-run") {
		cfg.Robot.DryRun = mustGetBool(cmd, "dry-run")
	}
	if changed(cmd, "cmd-dur") {
		cfg.Robot.CommandDuration = time.Duration(mustGetInt(cmd, "cmd-dur")) * time.Millisecond
	}
	if changed(cmd, "velocity") {
		cfg.Robot.Velocity = mustGetInt(cmd, "velocity")
	}

	if changed(cmd, "camera-preset") {
		name := mustGetString(cmd, "camera-preset")
		preset := camera.GetPreset(name)
		if preset == nil {
			return fmt.Errorf("unknown camera preset %q", name)
		}
		preset.Device = cfg.Camera.Device
		cfg.Camera = *preset
	}
	if changed(cmd, "camera") {
		cfg.Camera.Device = mustGetInt(cmd, "camera")
	}
	if changed(cmd, "landmarker") {
		cfg.Landmarker.URL = mustGetString(cmd, "landmarker")
	}
	if changed(cmd, "redis") {
		cfg.Redis.Address = mustGetString(cmd, "redis")
	}
	if changed(cmd, "port") {
		cfg.Dashboard.Port = mustGetInt(cmd, "port")
	}
	return nil
}
