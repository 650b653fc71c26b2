package web

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/teslashibe/go-gaze/pkg/hub"
	"github.com/teslashibe/go-gaze/pkg/robot"
)

// handleStatus returns the current gaze state
func (s *Server) handleStatus(c *fiber.Ctx) error {
	return c.JSON(s.State())
}

// handleBaseline returns the active baseline by feature name
func (s *Server) handleBaseline(c *fiber.Ctx) error {
	b, ok := s.engine.Baseline()
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "not calibrated yet",
		})
	}
	return c.JSON(b.Map())
}

// handleCalibrate starts a new calibration cycle
func (s *Server) handleCalibrate(c *fiber.Ctx) error {
	s.engine.Recalibrate()
	s.AddLog("calibration", "Recalibration requested")
	return c.JSON(s.refresh())
}

// ControlRequest sets the control toggle. An empty body flips it.
type ControlRequest struct {
	Enabled *bool `json:"enabled"`
}

// handleControl toggles gaze-driven robot control
func (s *Server) handleControl(c *fiber.Ctx) error {
	if s.robot == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "robot control not configured",
		})
	}

	var req ControlRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid body",
			})
		}
	}

	var on bool
	if req.Enabled != nil {
		on = *req.Enabled
		s.robot.SetEnabled(on)
	} else {
		on = s.robot.Toggle()
	}

	msg := "Control disabled"
	if on {
		msg = "Control enabled"
	}
	s.AddLog("control", msg)
	return c.JSON(s.refresh())
}

// handleCommand sends a manual robot command
func (s *Server) handleCommand(c *fiber.Ctx) error {
	if s.robot == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "robot control not configured",
		})
	}

	cmd, err := robot.ParseCommand(c.Params("cmd"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	if err := s.robot.Manual(c.UserContext(), cmd); err != nil {
		status := fiber.StatusInternalServerError
		if errors.Is(err, robot.ErrUnknownCommand) {
			status = fiber.StatusBadRequest
		}
		return c.Status(status).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	s.AddLog("command", "Manual: "+cmd.Description())
	return c.JSON(fiber.Map{
		"command": string(cmd),
		"action":  cmd.Description(),
		"stats":   s.robot.Stats(),
	})
}

// handleGetLogs returns recent log entries
func (s *Server) handleGetLogs(c *fiber.Ctx) error {
	s.logsMu.RLock()
	defer s.logsMu.RUnlock()
	return c.JSON(s.logs)
}

// handleStatusWS streams status changes. The hub replays the latest state
// on connect.
func (s *Server) handleStatusWS(c *websocket.Conn) {
	hub.NewClient(s.hub, c, hub.TopicStatus).Serve()
}

// handleLogsWS streams new log entries
func (s *Server) handleLogsWS(c *websocket.Conn) {
	hub.NewClient(s.hub, c, hub.TopicLogs).Serve()
}
