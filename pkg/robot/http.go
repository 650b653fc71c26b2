package robot

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/teslashibe/go-gaze/internal/httpc"
	"github.com/teslashibe/go-gaze/internal/log"
)

// DefaultTimeout bounds a single command request. The firmware answers
// immediately and runs the motors afterwards.
const DefaultTimeout = 2 * time.Second

// HTTPController sends commands to the robot firmware over HTTP.
type HTTPController struct {
	BaseURL string
	client  *http.Client
}

// NewHTTPController creates a controller for the robot at host (IP, host:port
// or URL).
func NewHTTPController(host string) *HTTPController {
	return &HTTPController{
		BaseURL: httpc.BaseURL(host),
		client:  httpc.NewClient(DefaultTimeout),
	}
}

// WithClient replaces the HTTP client. Used by tests.
func (r *HTTPController) WithClient(c *http.Client) *HTTPController {
	r.client = c
	return r
}

// Send issues GET {base}?cmd=..&dur=..&vel=.. and waits for the response.
// Only transport failures are errors; the firmware's reply is not checked.
func (r *HTTPController) Send(ctx context.Context, cmd Command, dur time.Duration, velocity int) error {
	if !cmd.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownCommand, cmd)
	}

	params := url.Values{}
	params.Set("cmd", string(cmd))
	params.Set("dur", strconv.FormatInt(dur.Milliseconds(), 10))
	params.Set("vel", strconv.Itoa(clampVelocity(velocity)))

	_, err := httpc.GetQuery(ctx, r.client, r.BaseURL, params)
	var status *httpc.StatusError
	if errors.As(err, &status) {
		log.Debug("robot replied with non-2xx status", "cmd", string(cmd), "status", status.Code)
		return nil
	}
	if err != nil {
		return fmt.Errorf("send %s: %w", cmd, err)
	}
	return nil
}
