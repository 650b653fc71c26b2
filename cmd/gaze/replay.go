package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/teslashibe/go-gaze/internal/config"
	"github.com/teslashibe/go-gaze/pkg/gaze"
	"github.com/teslashibe/go-gaze/pkg/landmark"
	"github.com/teslashibe/go-gaze/pkg/tracking"
)

var replayCmd = &cobra.Command{
	Use:   "replay <file.jsonl>",
	Short: "Run recorded landmark frames through the engine",
	Long: `Replay feeds a landmark recording (one JSON frame per line, as written by
--record) through the gaze engine as fast as possible and prints every
direction change. No robot commands are sent.`,
	Args: cobra.ExactArgs(1),
	RunE: runReplay,
}

func init() {
	rootCmd.AddCommand(replayCmd)
	addEngineFlags(replayCmd)
	replayCmd.Flags().Bool("quiet", false, "Hide the calibration progress bar")
}

// changePrinter prints the frame number of every direction change.
type changePrinter struct {
	w       io.Writer
	tracker *tracking.Tracker
	last    gaze.Direction
	changes int
}

func (p *changePrinter) UpdateGaze(snap gaze.Snapshot) {
	if snap.Direction == p.last {
		return
	}
	p.changes++
	fmt.Fprintf(p.w, "frame %6d  %-8s -> %s\n", p.tracker.Stats().Frames, p.last, snap.Direction)
	p.last = snap.Direction
}

func (p *changePrinter) AddLog(logType, message string) {
	fmt.Fprintf(p.w, "frame %6d  [%s] %s\n", p.tracker.Stats().Frames, logType, message)
}

func runReplay(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, config.Default(), "")
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	src, err := landmark.OpenReplay(args[0])
	if err != nil {
		return err
	}
	defer src.Close()

	engine, err := gaze.New(cfg.Engine)
	if err != nil {
		return err
	}

	tracker := tracking.New(tracking.ReplayConfig(), engine, src)
	printer := &changePrinter{w: os.Stdout, tracker: tracker, last: gaze.Unknown}
	tracker.SetStateUpdater(printer)
	if !mustGetBool(cmd, "quiet") {
		tracker.OnCalibrationProgress(calibrationBar(cfg.Engine.NumCalibrationFrames))
	}

	if err := tracker.Run(ctx); err != nil {
		return err
	}

	stats := tracker.Stats()
	snap := engine.Snapshot()
	fmt.Printf("\n%d frames, %d without a face, %d direction changes, final %s (%s)\n",
		stats.Frames, stats.NoFaceFrames, printer.changes, snap.Direction, snap.State)
	return nil
}
