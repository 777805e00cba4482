package types

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// maxConfigSize bounds the config file we are willing to parse
const maxConfigSize = 1 << 20

// FeatureConfig holds the feature track manager parameters
type FeatureConfig struct {
	// LowWaterMark triggers replenishment when the track count drops to or
	// below it
	LowWaterMark int `yaml:"low_water_mark"`
	// MaxCorners bounds the number of candidates per replenishment
	MaxCorners int `yaml:"max_corners"`
	// QualityLevel is the minimum corner quality relative to the best corner
	QualityLevel float64 `yaml:"quality_level"`
	// MinDistance is the minimum pixel separation between candidates
	MinDistance float64 `yaml:"min_distance"`
	// MinDisplacement is the Manhattan distance a track must exceed between
	// frames to be kept
	MinDisplacement float64 `yaml:"min_displacement"`
}

// DefaultFeatureConfig returns the default feature tracking configuration
func DefaultFeatureConfig() FeatureConfig {
	return FeatureConfig{
		LowWaterMark:    10,
		MaxCorners:      200,
		QualityLevel:    0.001,
		MinDistance:     5,
		MinDisplacement: 2,
	}
}

// TemplateConfig holds template localizer parameters
type TemplateConfig struct {
	// Metric names the similarity metric, see matching.ParseMetric
	Metric string `yaml:"metric"`
	// NormalizeLow and NormalizeHigh is the range the similarity surface is
	// stretched to before the optimum is searched
	NormalizeLow  float64 `yaml:"normalize_low"`
	NormalizeHigh float64 `yaml:"normalize_high"`
}

// DefaultTemplateConfig returns the default template matching configuration
func DefaultTemplateConfig() TemplateConfig {
	return TemplateConfig{
		Metric:        "sqdiff_normed",
		NormalizeLow:  0,
		NormalizeHigh: 1,
	}
}

// VideoConfig holds video recording configuration
type VideoConfig struct {
	FPS       float64  `yaml:"fps"`
	Codecs    []string `yaml:"codecs"`
	OutputDir string   `yaml:"output_dir"`
}

// DefaultVideoConfig returns the default video configuration
func DefaultVideoConfig() VideoConfig {
	return VideoConfig{
		FPS:       30.0,
		Codecs:    []string{"H264", "avc1", "x264", "mp4v"},
		OutputDir: ".",
	}
}

// UIConfig holds UI configuration constants
type UIConfig struct {
	HelpFontSize   float64 `yaml:"help_font_size"`
	StatusFontSize float64 `yaml:"status_font_size"`
	HelpOffsetY    int     `yaml:"help_offset_y"`
	MaxDebugLogs   int     `yaml:"max_debug_logs"`
	DebugFontSize  float64 `yaml:"debug_font_size"`
	MarkerRadius   int     `yaml:"marker_radius"`
}

// DefaultUIConfig returns the default UI configuration
func DefaultUIConfig() UIConfig {
	return UIConfig{
		HelpFontSize:   0.9,
		StatusFontSize: 1.5,
		HelpOffsetY:    60,
		MaxDebugLogs:   10,
		DebugFontSize:  0.8,
		MarkerRadius:   3,
	}
}

// Config aggregates all configuration sections
type Config struct {
	Features FeatureConfig  `yaml:"features"`
	Template TemplateConfig `yaml:"template"`
	Video    VideoConfig    `yaml:"video"`
	UI       UIConfig       `yaml:"ui"`
}

// DefaultConfig returns the configuration used when no file is given
func DefaultConfig() Config {
	return Config{
		Features: DefaultFeatureConfig(),
		Template: DefaultTemplateConfig(),
		Video:    DefaultVideoConfig(),
		UI:       DefaultUIConfig(),
	}
}

// LoadConfig reads a YAML file on top of DefaultConfig. Keys missing from the
// file keep their default values, so partial files are fine.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".yaml" && ext != ".yml" {
		return cfg, errors.Errorf("config file must have .yaml or .yml extension, got %q", ext)
	}

	info, err := os.Stat(cleanPath)
	if err != nil {
		return cfg, errors.Wrap(err, "failed to stat config file")
	}
	if info.Size() > maxConfigSize {
		return cfg, errors.Errorf("config file too large: %d bytes (max %d)", info.Size(), maxConfigSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return cfg, errors.Wrap(err, "failed to read config file")
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrapf(err, "failed to parse %s", cleanPath)
	}

	return cfg, cfg.Validate()
}

// Validate reports the first out-of-range parameter
func (c Config) Validate() error {
	f := c.Features
	switch {
	case f.LowWaterMark < 0:
		return errors.Errorf("features.low_water_mark must be >= 0, got %d", f.LowWaterMark)
	case f.MaxCorners <= 0:
		return errors.Errorf("features.max_corners must be > 0, got %d", f.MaxCorners)
	case f.QualityLevel <= 0 || f.QualityLevel > 1:
		return errors.Errorf("features.quality_level must be in (0, 1], got %g", f.QualityLevel)
	case f.MinDistance < 0:
		return errors.Errorf("features.min_distance must be >= 0, got %g", f.MinDistance)
	case f.MinDisplacement < 0:
		return errors.Errorf("features.min_displacement must be >= 0, got %g", f.MinDisplacement)
	}

	if c.Template.NormalizeHigh <= c.Template.NormalizeLow {
		return errors.Errorf("template normalize range is empty: [%g, %g]",
			c.Template.NormalizeLow, c.Template.NormalizeHigh)
	}

	if c.Video.FPS <= 0 {
		return errors.Errorf("video.fps must be > 0, got %g", c.Video.FPS)
	}
	if len(c.Video.Codecs) == 0 {
		return errors.New("video.codecs must list at least one fourcc")
	}

	return nil
}
