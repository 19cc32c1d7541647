package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	common "github.com/harryknee/NewsDiffusion/common"
)

// SimulationConfig is everything a run is built from.
type SimulationConfig struct {
	// Grid
	Width            int  `yaml:"width"`
	Height           int  `yaml:"height"`
	Torus            bool `yaml:"torus"`
	MaxAgentsPerCell int  `yaml:"max_agents_per_cell"`
	// Radius of the neighbourhood news is sent to.
	Radius int `yaml:"radius"`

	// Population
	NumSusceptible int `yaml:"n_susceptible"`
	NumSkeptic     int `yaml:"n_skeptic"`
	NumBots        int `yaml:"n_bots"`
	NumNewsReels   int `yaml:"n_news_reels"`

	// News
	InitialNews   int `yaml:"n_initial_news"`
	NewsPerSource int `yaml:"news_per_source"`
	// SourceInterval makes every source mint and broadcast again each
	// SourceInterval steps. Zero disables it.
	SourceInterval int `yaml:"source_interval"`

	Diffusion common.DiffusionParams `yaml:"diffusion"`

	Seed uint64 `yaml:"seed"`

	// Driver
	Iterations       int           `yaml:"iterations"`
	Turns            int           `yaml:"turns"`
	MaxDuration      time.Duration `yaml:"max_duration"`
	MessageBandwidth int           `yaml:"message_bandwidth"`

	OutputDir string `yaml:"output_dir"`
}

func Default() SimulationConfig {
	return SimulationConfig{
		Width:            20,
		Height:           20,
		Torus:            true,
		MaxAgentsPerCell: 1,
		Radius:           1,
		NumSusceptible:   20,
		NumSkeptic:       10,
		NumBots:          1,
		NumNewsReels:     1,
		InitialNews:      5,
		NewsPerSource:    1,
		Diffusion:        common.DefaultDiffusionParams(),
		Seed:             42,
		Iterations:       1,
		Turns:            50,
		MaxDuration:      50 * time.Millisecond,
		MessageBandwidth: 10,
		OutputDir:        "visualization_output",
	}
}

// Population is the number of agents that need a place on the grid.
func (c SimulationConfig) Population() int {
	return c.NumSusceptible + c.NumSkeptic + c.NumBots + c.NumNewsReels
}

func (c SimulationConfig) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf("%w: "+format, append([]any{common.ErrInvalidConfig}, args...)...))
		}
	}
	check(c.Width > 0 && c.Height > 0, "grid must be at least 1x1, got %dx%d", c.Width, c.Height)
	check(c.MaxAgentsPerCell > 0, "max_agents_per_cell must be positive, got %d", c.MaxAgentsPerCell)
	check(c.Radius >= 0, "radius must not be negative, got %d", c.Radius)
	check(c.NumSusceptible >= 0 && c.NumSkeptic >= 0 && c.NumBots >= 0 && c.NumNewsReels >= 0,
		"population counts must not be negative")
	check(c.InitialNews >= 0 && c.NewsPerSource >= 0 && c.SourceInterval >= 0,
		"news counts and source interval must not be negative")
	check(c.Diffusion.Alpha >= 0 && c.Diffusion.Alpha <= 1, "alpha must be in [0,1], got %v", c.Diffusion.Alpha)
	check(c.Diffusion.ThresholdToSkeptic < c.Diffusion.ThresholdToSusceptible,
		"threshold_to_skeptic (%v) must be below threshold_to_susceptible (%v)",
		c.Diffusion.ThresholdToSkeptic, c.Diffusion.ThresholdToSusceptible)
	check(c.Iterations > 0 && c.Turns >= 0, "need at least one iteration and non-negative turns")
	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	if capacity := c.Width * c.Height * c.MaxAgentsPerCell; c.Population() > capacity {
		return fmt.Errorf("%w: %d agents on a %dx%d grid holding %d per cell (capacity %d)",
			common.ErrGridCapacity, c.Population(), c.Width, c.Height, c.MaxAgentsPerCell, capacity)
	}
	return nil
}

// Load builds a configuration from defaults, an optional YAML file, the
// .env file named by NEWSDIFF_ENV (".env" by default) and NEWSDIFF_*
// environment variables, in that order.
func Load(path string) (SimulationConfig, error) {
	cfg := Default()
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err := decodeYAML(raw, &cfg); err != nil {
			return cfg, err
		}
	}

	envFile := os.Getenv("NEWSDIFF_ENV")
	if envFile == "" {
		envFile = ".env"
	}
	// a missing .env file is fine
	_ = godotenv.Load(envFile)

	if err := applyEnv(&cfg); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func decodeYAML(raw []byte, cfg *SimulationConfig) error {
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: %v", common.ErrInvalidConfig, err)
	}
	return nil
}

func applyEnv(cfg *SimulationConfig) error {
	ints := map[string]*int{
		"NEWSDIFF_WIDTH":          &cfg.Width,
		"NEWSDIFF_HEIGHT":         &cfg.Height,
		"NEWSDIFF_RADIUS":         &cfg.Radius,
		"NEWSDIFF_N_SUSCEPTIBLE":  &cfg.NumSusceptible,
		"NEWSDIFF_N_SKEPTIC":      &cfg.NumSkeptic,
		"NEWSDIFF_N_BOTS":         &cfg.NumBots,
		"NEWSDIFF_N_NEWS_REELS":   &cfg.NumNewsReels,
		"NEWSDIFF_N_INITIAL_NEWS": &cfg.InitialNews,
		"NEWSDIFF_TURNS":          &cfg.Turns,
		"NEWSDIFF_ITERATIONS":     &cfg.Iterations,
	}
	for key, dst := range ints {
		v, ok := os.LookupEnv(key)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %s=%q is not an integer", common.ErrInvalidConfig, key, v)
		}
		*dst = n
	}

	if v, ok := os.LookupEnv("NEWSDIFF_SEED"); ok {
		seed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%w: NEWSDIFF_SEED=%q is not an unsigned integer", common.ErrInvalidConfig, v)
		}
		cfg.Seed = seed
	}
	if v, ok := os.LookupEnv("NEWSDIFF_ALPHA"); ok {
		alpha, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%w: NEWSDIFF_ALPHA=%q is not a number", common.ErrInvalidConfig, v)
		}
		cfg.Diffusion.Alpha = alpha
	}
	if v, ok := os.LookupEnv("NEWSDIFF_OUTPUT_DIR"); ok {
		cfg.OutputDir = v
	}
	return nil
}
