package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/geoframe/pkg/coord"
	"github.com/kailas-cloud/geoframe/pkg/ellipsoid"
	"github.com/kailas-cloud/geoframe/pkg/spherical"
)

// Config holds the geoframe service configuration.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Auth      AuthConfig      `yaml:"auth"`
	Surface   SurfaceConfig   `yaml:"surface"`
	Reference ReferenceConfig `yaml:"reference"`
	SelfCheck SelfCheckConfig `yaml:"selfcheck"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys      []string `yaml:"api_keys"`      // empty disables auth
	ExemptPaths  []string `yaml:"exempt_paths"`  // default: /healthz, /metrics
	ProtectReads bool     `yaml:"protect_reads"` // require a token on GET/HEAD too
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// SurfaceConfig selects the ellipsoid.
type SurfaceConfig struct {
	Type           string  `yaml:"type"`            // EARTH_WGS84, MOON_SCS, CUSTOM_SURFACE (default: EARTH_WGS84)
	AxisEquatorial float64 `yaml:"axis_equatorial"` // meters, CUSTOM_SURFACE only
	AxisPolar      float64 `yaml:"axis_polar"`      // meters, CUSTOM_SURFACE only
}

// ReferenceConfig anchors the local frames.
type ReferenceConfig struct {
	LatitudeDeg  float64 `yaml:"latitude_deg"`
	LongitudeDeg float64 `yaml:"longitude_deg"`
	ElevationM   float64 `yaml:"elevation_m"`
	HeadingDeg   float64 `yaml:"heading_deg"`
}

// SelfCheckConfig drives the startup and health self-check.
type SelfCheckConfig struct {
	Probes     []ProbeConfig `yaml:"probes"`
	ToleranceM float64       `yaml:"tolerance_m"`
}

// ProbeConfig is a point in the local frame, meters.
type ProbeConfig struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
	Z float64 `yaml:"z"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	return Parse(data)
}

// Parse decodes, defaults and validates a YAML document.
func Parse(data []byte) (Config, error) {
	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 10
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Auth.ExemptPaths == nil {
		c.Auth.ExemptPaths = []string{"/healthz", "/metrics"}
	}
	if c.Surface.Type == "" {
		c.Surface.Type = ellipsoid.EarthWGS84.String()
	}
	if c.SelfCheck.ToleranceM <= 0 {
		c.SelfCheck.ToleranceM = 1e-3
	}
	if len(c.SelfCheck.Probes) == 0 {
		c.SelfCheck.Probes = []ProbeConfig{
			{X: 0, Y: 0, Z: 0},
			{X: 1, Y: 2, Z: -4},
			{X: 2243.52334, Y: 556.35, Z: 435.6553},
		}
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	surface, err := ellipsoid.ParseSurface(c.Surface.Type)
	if err != nil {
		return fmt.Errorf("surface.type: %w", err)
	}
	if surface == ellipsoid.Custom {
		if _, err := ellipsoid.NewCustom(c.Surface.AxisEquatorial, c.Surface.AxisPolar); err != nil {
			return fmt.Errorf("surface: %w", err)
		}
	}
	if !spherical.ValidCoordinates(c.Reference.LatitudeDeg, c.Reference.LongitudeDeg) {
		return fmt.Errorf("reference: latitude must be in [-90,90] and longitude in [-180,180], got %g, %g",
			c.Reference.LatitudeDeg, c.Reference.LongitudeDeg)
	}
	if math.IsNaN(c.Reference.ElevationM) || math.IsInf(c.Reference.ElevationM, 0) {
		return errors.New("reference.elevation_m must be finite")
	}
	for _, p := range c.Auth.ExemptPaths {
		if !strings.HasPrefix(p, "/") {
			return fmt.Errorf("auth.exempt_paths: %q must start with /", p)
		}
	}
	return nil
}

// SurfaceType returns the configured surface selector.
func (c *Config) SurfaceType() ellipsoid.Surface {
	s, _ := ellipsoid.ParseSurface(c.Surface.Type)
	return s
}

// ReferenceFrame converts the reference section to radians.
func (c *Config) ReferenceFrame() spherical.Reference {
	return spherical.Reference{
		Latitude:  coord.Degrees(c.Reference.LatitudeDeg),
		Longitude: coord.Degrees(c.Reference.LongitudeDeg),
		Elevation: c.Reference.ElevationM,
		Heading:   coord.Degrees(c.Reference.HeadingDeg),
	}
}

// BuildTransformer constructs the transformer described by the configuration.
func (c *Config) BuildTransformer(logger *zap.Logger) *spherical.Transformer {
	opts := []spherical.Option{
		spherical.WithLogger(logger),
		spherical.WithReference(c.ReferenceFrame()),
	}
	if s := c.SurfaceType(); s == ellipsoid.Custom {
		opts = append(opts, spherical.WithCustomSurface(c.Surface.AxisEquatorial, c.Surface.AxisPolar))
	} else {
		opts = append(opts, spherical.WithSurface(s))
	}
	return spherical.New(opts...)
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
