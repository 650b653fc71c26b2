package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/teslashibe/go-gaze/internal/config"
	"github.com/teslashibe/go-gaze/internal/httpc"
	"github.com/teslashibe/go-gaze/pkg/robot"
)

var sendCmd = &cobra.Command{
	Use:   "send <robot-ip> <command>",
	Short: "Send one command to the robot",
	Long: `Send issues a single movement command and waits for the robot to answer.

Commands:
  MF  forward      MB  backward
  TL  turn left    TR  turn right
  P   park`,
	Example: `  gaze send 192.168.1.50 MF
  gaze send 192.168.1.50 left --dur 500 --vel 200`,
	Args: cobra.ExactArgs(2),
	RunE: runSend,
}

func init() {
	rootCmd.AddCommand(sendCmd)
	sendCmd.Flags().Int("dur", int(robot.DefaultDuration/time.Millisecond), "Command duration (ms)")
	sendCmd.Flags().Int("vel", robot.DefaultVelocity, "Motor velocity (0-255)")
	sendCmd.Flags().Bool("dry-run", false, "Print the command instead of sending it")
}

func runSend(cmd *cobra.Command, args []string) error {
	if _, err := loadConfig(cmd, config.Default(), args[0]); err != nil {
		return err
	}

	command, err := robot.ParseCommand(args[1])
	if err != nil {
		return err
	}
	dur := time.Duration(mustGetInt(cmd, "dur")) * time.Millisecond
	vel := mustGetInt(cmd, "vel")
	if dur <= 0 {
		return fmt.Errorf("--dur must be positive")
	}
	if vel < 0 || vel > robot.MaxVelocity {
		return fmt.Errorf("--vel must be between 0 and %d", robot.MaxVelocity)
	}

	var a robot.Actuator
	if mustGetBool(cmd, "dry-run") {
		a = robot.NewDryRunController()
	} else {
		a = robot.NewHTTPController(args[0])
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), httpc.DefaultTimeout)
	defer cancel()
	if err := a.Send(ctx, command, dur, vel); err != nil {
		return err
	}
	fmt.Printf("%s (%s) sent to %s\n", command, command.Description(), args[0])
	return nil
}
