// Package web provides the gaze dashboard API
package web

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/websocket/v2"
	jsoniter "github.com/json-iterator/go"

	"github.com/teslashibe/go-gaze/internal/log"
	"github.com/teslashibe/go-gaze/pkg/gaze"
	"github.com/teslashibe/go-gaze/pkg/hub"
	"github.com/teslashibe/go-gaze/pkg/robot"
)

// maxLogs is the dashboard log buffer length
const maxLogs = 500

// GazeEngine is the engine surface the dashboard needs.
// Satisfied by *gaze.Engine.
type GazeEngine interface {
	Snapshot() gaze.Snapshot
	Baseline() (gaze.Baseline, bool)
	Recalibrate()
}

// RobotControl is the actuation surface the dashboard needs.
// Satisfied by *robot.Dispatcher.
type RobotControl interface {
	Enabled() bool
	SetEnabled(on bool)
	Toggle() bool
	Manual(ctx context.Context, cmd robot.Command) error
	Stats() robot.DispatchStats
}

// LogEntry represents a log line for the dashboard
type LogEntry struct {
	Time    string `json:"time"`
	Type    string `json:"type"` // calibration, control, command, error
	Message string `json:"message"`
}

// Server is the web dashboard server
type Server struct {
	app    *fiber.App
	port   int
	logger *slog.Logger

	engine GazeEngine
	robot  RobotControl

	// State
	state   GazeState
	stateMu sync.RWMutex

	// Log buffer (last maxLogs entries)
	logs   []LogEntry
	logsMu sync.RWMutex

	// Websocket fan-out for status and log topics
	hub *hub.Hub
}

// NewServer creates a dashboard for engine. rc may be nil when actuation is
// off.
func NewServer(port int, engine GazeEngine, rc RobotControl) *Server {
	s := &Server{
		port:   port,
		logger: log.With("component", "web"),
		engine: engine,
		robot:  rc,
		logs:   make([]LogEntry, 0, maxLogs),
		hub:    hub.New(),
	}
	s.state = NewGazeState(engine.Snapshot(), s.controlEnabled())

	app := fiber.New(fiber.Config{
		AppName:               "Gaze Dashboard",
		DisableStartupMessage: true,
		JSONEncoder:           jsoniter.Marshal,
		JSONDecoder:           jsoniter.Unmarshal,
	})

	// CORS for local development
	app.Use(cors.New())

	// API routes
	api := app.Group("/api")
	api.Get("/status", s.handleStatus)
	api.Get("/baseline", s.handleBaseline)
	api.Post("/calibrate", s.handleCalibrate)
	api.Post("/control", s.handleControl)
	api.Post("/commands/:cmd", s.handleCommand)
	api.Get("/logs", s.handleGetLogs)

	// WebSocket upgrade middleware
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	// WebSocket routes
	app.Get("/ws/status", websocket.New(s.handleStatusWS))
	app.Get("/ws/logs", websocket.New(s.handleLogsWS))

	s.app = app
	return s
}

// Start runs the hub and serves until ctx is done.
func (s *Server) Start(ctx context.Context) error {
	go s.hub.Run(ctx)

	go func() {
		<-ctx.Done()
		if err := s.app.ShutdownWithTimeout(5 * time.Second); err != nil {
			s.logger.Warn("shutdown failed", "error", err)
		}
	}()

	s.logger.Info("dashboard listening", "url", fmt.Sprintf("http://localhost:%d", s.port))
	return s.app.Listen(fmt.Sprintf(":%d", s.port))
}

// StartAsync starts the web server in a goroutine
func (s *Server) StartAsync(ctx context.Context) {
	go func() {
		if err := s.Start(ctx); err != nil {
			s.logger.Error("web server error", "error", err)
		}
	}()
}

// UpdateGaze refreshes the status from an engine snapshot and broadcasts it.
func (s *Server) UpdateGaze(snap gaze.Snapshot) {
	s.setState(NewGazeState(snap, s.controlEnabled()))
}

// refresh re-reads the engine, for changes made from the dashboard itself.
func (s *Server) refresh() GazeState {
	return s.setState(NewGazeState(s.engine.Snapshot(), s.controlEnabled()))
}

func (s *Server) setState(st GazeState) GazeState {
	s.stateMu.Lock()
	s.state = st
	s.stateMu.Unlock()

	if err := s.hub.PublishJSON(hub.TopicStatus, st); err != nil {
		s.logger.Warn("status broadcast failed", "error", err)
	}
	return st
}

// State returns the current dashboard state.
func (s *Server) State() GazeState {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()
	return s.state
}

// AddLog adds a log entry and broadcasts to clients
func (s *Server) AddLog(logType, message string) {
	entry := LogEntry{
		Time:    time.Now().Format("15:04:05"),
		Type:    logType,
		Message: message,
	}

	s.logsMu.Lock()
	s.logs = append(s.logs, entry)
	if len(s.logs) > maxLogs {
		s.logs = s.logs[1:]
	}
	s.logsMu.Unlock()

	if err := s.hub.PublishJSON(hub.TopicLogs, entry); err != nil {
		s.logger.Warn("log broadcast failed", "error", err)
	}
}

func (s *Server) controlEnabled() bool {
	return s.robot != nil && s.robot.Enabled()
}

// Shutdown gracefully stops the web server
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}
