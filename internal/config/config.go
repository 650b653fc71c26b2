// Package config loads the go-gaze application configuration.
//
// Sources in increasing precedence: built-in defaults, an optional YAML
// file, environment variables (a .env file is loaded by the CLI), and
// command-line flags applied by the caller.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/teslashibe/go-gaze/pkg/camera"
	"github.com/teslashibe/go-gaze/pkg/gaze"
)

// Default service settings.
const (
	DefaultDashboardPort = 8080
	DefaultRedisChannel  = "gaze:events"
	DefaultBaselineKey   = "gaze:baseline"
	DefaultLandmarkerURL = "ws://localhost:8765/landmarks"
	DefaultFrameInterval = 10 * time.Millisecond
)

type Config struct {
	Engine     gaze.Config      `yaml:"engine"`
	Robot      RobotConfig      `yaml:"robot"`
	Camera     camera.Config    `yaml:"camera"`
	Landmarker LandmarkerConfig `yaml:"landmarker"`
	Dashboard  DashboardConfig  `yaml:"dashboard"`
	Redis      RedisConfig      `yaml:"redis"`
	Log        LogConfig        `yaml:"log"`

	// FrameInterval is the pause between frames. Zero runs as fast as the
	// source delivers.
	FrameInterval time.Duration `yaml:"frame_interval" validate:"gte=0"`
}

type RobotConfig struct {
	IP              string        `yaml:"ip"`
	CommandDuration time.Duration `yaml:"command_duration" validate:"gt=0"`
	Velocity        int           `yaml:"velocity" validate:"gte=0,lte=255"`
	DryRun          bool          `yaml:"dry_run"`
	ControlEnabled  bool          `yaml:"control_enabled"`
}

type LandmarkerConfig struct {
	URL     string        `yaml:"url" validate:"omitempty,url"`
	Timeout time.Duration `yaml:"timeout" validate:"gte=0"`
}

type DashboardConfig struct {
	Enabled bool `yaml:"enabled"`
	Port    int  `yaml:"port" validate:"gte=0,lte=65535"`
}

// RedisConfig enables event publishing when Address is set.
type RedisConfig struct {
	Address     string `yaml:"address" validate:"omitempty,hostname_port"`
	Password    string `yaml:"password"`
	DB          int    `yaml:"db" validate:"gte=0"`
	Channel     string `yaml:"channel"`
	BaselineKey string `yaml:"baseline_key"`
}

type LogConfig struct {
	Level string `yaml:"level" validate:"oneof=debug info warn error"`
	File  string `yaml:"file"`
}

// Default returns the headless defaults.
func Default() Config {
	return Config{
		Engine: gaze.DefaultConfig(),
		Robot: RobotConfig{
			CommandDuration: 250 * time.Millisecond,
			Velocity:        150,
			ControlEnabled:  true,
		},
		Camera: camera.DefaultConfig(),
		Landmarker: LandmarkerConfig{
			URL:     DefaultLandmarkerURL,
			Timeout: 2 * time.Second,
		},
		Dashboard: DashboardConfig{
			Port: DefaultDashboardPort,
		},
		Redis: RedisConfig{
			Channel:     DefaultRedisChannel,
			BaselineKey: DefaultBaselineKey,
		},
		Log: LogConfig{
			Level: "info",
		},
		FrameInterval: DefaultFrameInterval,
	}
}

// Interactive returns the defaults for the dashboard mode: 200 calibration
// frames and the dashboard on.
func Interactive() Config {
	cfg := Default()
	cfg.Engine = gaze.InteractiveConfig()
	cfg.Dashboard.Enabled = true
	return cfg
}

// Load overlays the YAML file at path (if non-empty) and the environment
// onto base.
func Load(path string, base Config) (*Config, error) {
	cfg := base
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyEnv() error {
	c.Robot.IP = envString("ROBOT_IP", c.Robot.IP)
	c.Landmarker.URL = envString("LANDMARKER_URL", c.Landmarker.URL)
	c.Redis.Address = envString("REDIS_ADDRESS", c.Redis.Address)
	c.Redis.Password = envString("REDIS_PASSWORD", c.Redis.Password)
	c.Log.Level = strings.ToLower(envString("LOG_LEVEL", c.Log.Level))
	c.Log.File = envString("LOG_FILE", c.Log.File)
	c.Dashboard.Port = envInt("DASHBOARD_PORT", c.Dashboard.Port)

	d, err := envDuration("CMD_DURATION", c.Robot.CommandDuration)
	if err != nil {
		return err
	}
	c.Robot.CommandDuration = d
	return nil
}

var validate = validator.New()

// Validate checks every section.
func (c *Config) Validate() error {
	var errs []error
	if err := validate.Struct(c); err != nil {
		errs = append(errs, err)
	}
	if err := c.Engine.Validate(); err != nil {
		errs = append(errs, err)
	}
	if camErrs := c.Camera.Validate(); len(camErrs) > 0 {
		errs = append(errs, fmt.Errorf("camera: %s", strings.Join(camErrs, "; ")))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// RequireRobot reports an error when actuation is on but no robot address
// is configured.
func (c *Config) RequireRobot() error {
	if c.Robot.IP == "" && !c.Robot.DryRun {
		return errors.New("robot IP is required (argument or ROBOT_IP), or use --dry-run")
	}
	return nil
}
