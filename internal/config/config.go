// Package config loads the scanner's settings from a YAML file and the
// environment.
package config

import (
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/ironsheep/text-scanner-mcp/internal/imaging"
	"github.com/ironsheep/text-scanner-mcp/internal/ocr"
	"github.com/ironsheep/text-scanner-mcp/internal/roi"
)

// Environment variables that override the file.
const (
	EnvLogLevel       = "SCANNER_LOG_LEVEL"
	EnvTessdataPrefix = "TESSDATA_PREFIX"
)

// DefaultSavePath is where save_result writes when no path is given.
const DefaultSavePath = "ocr_result.png"

// Config holds runtime configuration for the scanner.
type Config struct {
	LogLevel string `yaml:"log_level"`

	Display    DisplayConfig             `yaml:"display"`
	Camera     CameraConfig              `yaml:"camera"`
	OCR        OCRConfig                 `yaml:"ocr"`
	Preprocess imaging.PreprocessOptions `yaml:"preprocess"`
	Overlay    OverlayConfig             `yaml:"overlay"`
	Scan       ScanConfig                `yaml:"scan"`
	Output     OutputConfig              `yaml:"output"`
}

// DisplayConfig is the viewport the frame is scaled into. Drag coordinates
// sent by clients are in this space.
type DisplayConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// CameraConfig selects the live feed.
type CameraConfig struct {
	// Source is a camera spec, see source.New.
	Source       string        `yaml:"source"`
	PollInterval time.Duration `yaml:"poll_interval"`
	// Loop restarts finite feeds when they run out.
	Loop bool `yaml:"loop"`
}

// OCRConfig configures the recognizer.
type OCRConfig struct {
	Language       string `yaml:"language"`
	Config         string `yaml:"config"`
	MinConfidence  int    `yaml:"min_confidence"`
	TessdataPrefix string `yaml:"tessdata_prefix"`
}

// OverlayConfig styles everything drawn over the frame.
type OverlayConfig struct {
	Colors     imaging.StyleColors `yaml:"colors"`
	LineWidth  int                 `yaml:"line_width"`
	LabelRunes int                 `yaml:"label_runes"`
}

// ScanConfig tunes continuous scanning.
type ScanConfig struct {
	// HashDistance is how many bits the ROI's difference hash must move
	// before the next frame is scanned again.
	HashDistance int `yaml:"hash_distance"`
}

// OutputConfig controls saving.
type OutputConfig struct {
	DefaultPath string `yaml:"default_path"`
}

// Default returns a Config populated with standard defaults.
func Default() *Config {
	return &Config{
		LogLevel: "info",
		Display:  DisplayConfig{Width: 720, Height: 540},
		Camera: CameraConfig{
			Source:       "screen",
			PollInterval: 30 * time.Millisecond,
		},
		OCR: OCRConfig{
			Language:      "eng",
			Config:        ocr.DefaultConfig,
			MinConfidence: ocr.DefaultMinConfidence,
		},
		Preprocess: imaging.DefaultPreprocessOptions(),
		Overlay: OverlayConfig{
			LineWidth:  3,
			LabelRunes: 30,
		},
		Scan:   ScanConfig{HashDistance: 6},
		Output: OutputConfig{DefaultPath: DefaultSavePath},
	}
}

// Load reads the YAML file at path over the defaults. An empty path
// returns the defaults. The result is validated.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, cfg.Validate()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read config")
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrapf(err, "parse config %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrapf(err, "config %s", path)
	}
	return cfg, nil
}

// ApplyEnv overrides fields from the environment. getenv is usually
// os.Getenv.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if v := getenv(EnvLogLevel); v != "" {
		c.LogLevel = v
	}
	if v := getenv(EnvTessdataPrefix); v != "" && c.OCR.TessdataPrefix == "" {
		c.OCR.TessdataPrefix = v
	}
}

// Validate clamps numeric values to safe ranges and rejects settings that
// cannot be used.
func (c *Config) Validate() error {
	d := Default()

	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	if c.LogLevel == "" {
		c.LogLevel = d.LogLevel
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return errors.Wrap(err, "log_level")
	}

	if c.Display.Width <= 0 {
		c.Display.Width = d.Display.Width
	}
	if c.Display.Height <= 0 {
		c.Display.Height = d.Display.Height
	}

	if c.Camera.Source == "" {
		c.Camera.Source = d.Camera.Source
	}
	if c.Camera.PollInterval <= 0 {
		c.Camera.PollInterval = d.Camera.PollInterval
	}

	if c.OCR.Language == "" {
		c.OCR.Language = d.OCR.Language
	}
	if c.OCR.MinConfidence < -1 || c.OCR.MinConfidence > 100 {
		c.OCR.MinConfidence = d.OCR.MinConfidence
	}
	if _, err := ocr.ParseOptions(c.OCR.Config, c.OCR.Language); err != nil {
		return errors.Wrap(err, "ocr.config")
	}

	if c.Preprocess.DenoiseRadius < 0 {
		c.Preprocess.DenoiseRadius = 0
	}
	if c.Preprocess.BlockSize < 3 {
		c.Preprocess.BlockSize = d.Preprocess.BlockSize
	}
	if c.Preprocess.BlockSize%2 == 0 {
		c.Preprocess.BlockSize++
	}

	if c.Overlay.LineWidth <= 0 {
		c.Overlay.LineWidth = d.Overlay.LineWidth
	}
	if c.Overlay.LabelRunes <= 0 {
		c.Overlay.LabelRunes = d.Overlay.LabelRunes
	}
	if _, err := c.Style(); err != nil {
		return err
	}

	if c.Scan.HashDistance < 0 {
		c.Scan.HashDistance = d.Scan.HashDistance
	}
	if c.Output.DefaultPath == "" {
		c.Output.DefaultPath = d.Output.DefaultPath
	}
	return nil
}

// Viewport returns the display size.
func (c *Config) Viewport() roi.Size {
	return roi.Size{W: c.Display.Width, H: c.Display.Height}
}

// Style returns the overlay style.
func (c *Config) Style() (imaging.Style, error) {
	s, err := imaging.ParseStyle(c.Overlay.Colors, c.Overlay.LineWidth, c.Overlay.LabelRunes)
	if err != nil {
		return imaging.Style{}, errors.Wrap(err, "overlay")
	}
	return s, nil
}

// OCROptions parses the engine configuration string.
func (c *Config) OCROptions() (ocr.Options, error) {
	return ocr.ParseOptions(c.OCR.Config, c.OCR.Language)
}

// Level returns the logrus level, defaulting to info.
func (c *Config) Level() logrus.Level {
	lvl, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return logrus.InfoLevel
	}
	return lvl
}
