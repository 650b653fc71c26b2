package main

import (
	"context"
	"fmt"
	"os"

	"github.com/teslashibe/go-gaze/internal/config"
	"github.com/teslashibe/go-gaze/internal/log"
	"github.com/teslashibe/go-gaze/pkg/camera"
	"github.com/teslashibe/go-gaze/pkg/gaze"
	"github.com/teslashibe/go-gaze/pkg/landmark"
	"github.com/teslashibe/go-gaze/pkg/robot"
	"github.com/teslashibe/go-gaze/pkg/telemetry"
	"github.com/teslashibe/go-gaze/pkg/tracking"
)

// pipeline is the wired runtime shared by run and headless.
type pipeline struct {
	engine     *gaze.Engine
	source     landmark.Source
	dispatcher *robot.Dispatcher
	publisher  telemetry.Publisher
	tracker    *tracking.Tracker
}

// newActuator picks the HTTP or dry-run controller.
func newActuator(cfg *config.Config) robot.Actuator {
	if cfg.Robot.DryRun {
		log.Info("dry run: commands will not be sent to the robot")
		return robot.NewDryRunController()
	}
	return robot.NewHTTPController(cfg.Robot.IP)
}

// newPublisher connects to redis when configured.
func newPublisher(ctx context.Context, cfg *config.Config) telemetry.Publisher {
	if cfg.Redis.Address == "" {
		return telemetry.NopPublisher{}
	}
	return telemetry.NewRedisPublisher(ctx, telemetry.RedisOptions{
		Address:     cfg.Redis.Address,
		Password:    cfg.Redis.Password,
		DB:          cfg.Redis.DB,
		Channel:     cfg.Redis.Channel,
		BaselineKey: cfg.Redis.BaselineKey,
	})
}

// openCameraSource opens the webcam and connects to the landmark service.
func openCameraSource(ctx context.Context, cfg *config.Config, recordPath string) (landmark.Source, error) {
	cam, err := camera.Open(cfg.Camera)
	if err != nil {
		return nil, err
	}
	det, err := landmark.DialWS(ctx, cfg.Landmarker.URL, cfg.Landmarker.Timeout)
	if err != nil {
		cam.Close()
		return nil, err
	}
	var src landmark.Source = landmark.NewCameraSource(cam, det)

	if recordPath != "" {
		f, err := os.Create(recordPath)
		if err != nil {
			src.Close()
			return nil, fmt.Errorf("create recording: %w", err)
		}
		log.Info("recording landmarks", "path", recordPath)
		src = landmark.NewRecorder(src, f)
	}
	return src, nil
}

// newPipeline wires engine, source, actuation and telemetry.
func newPipeline(ctx context.Context, cfg *config.Config, src landmark.Source) (*pipeline, error) {
	engine, err := gaze.New(cfg.Engine)
	if err != nil {
		return nil, err
	}

	dispatcher := robot.NewDispatcher(newActuator(cfg), robot.DispatcherConfig{
		Duration: cfg.Robot.CommandDuration,
		Velocity: cfg.Robot.Velocity,
		Enabled:  cfg.Robot.ControlEnabled,
	})
	publisher := newPublisher(ctx, cfg)

	tcfg := tracking.DefaultConfig()
	tcfg.FrameInterval = cfg.FrameInterval
	tracker := tracking.New(tcfg, engine, src)
	tracker.SetDispatcher(dispatcher)
	tracker.SetPublisher(publisher)

	return &pipeline{
		engine:     engine,
		source:     src,
		dispatcher: dispatcher,
		publisher:  publisher,
		tracker:    tracker,
	}, nil
}

// Close drains in-flight commands and releases every resource.
func (p *pipeline) Close() {
	p.dispatcher.Wait()
	if err := p.source.Close(); err != nil {
		log.Warn("close source", "error", err)
	}
	if err := p.publisher.Close(); err != nil {
		log.Warn("close publisher", "error", err)
	}
}
