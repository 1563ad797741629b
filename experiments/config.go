package experiments

import (
	"bandit/env"
	"bandit/meta"
	"bandit/policy"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

var validate = validator.New()

type PolicyConfig struct {
	Name        string   `yaml:"name" validate:"required"`
	Epsilon     *float64 `yaml:"epsilon,omitempty" validate:"omitempty,gte=0,lte=1"`
	Exploration *float64 `yaml:"exploration,omitempty" validate:"omitempty,gt=0"` // UCB1 c^2
}

// Spec resolves the policy name and fills in default parameters.
func (p PolicyConfig) Spec() (policy.Spec, error) {
	name, err := policy.ParseName(p.Name)
	if err != nil {
		return policy.Spec{}, err
	}
	spec := policy.Spec{Name: name}
	switch name {
	case policy.EpsilonGreedy:
		spec.Epsilon = meta.DEFAULT_EPSILON
		if p.Epsilon != nil {
			spec.Epsilon = *p.Epsilon
		}
	case policy.UCB1:
		spec.Exploration = meta.UCB_C_SQUARED
		if p.Exploration != nil {
			spec.Exploration = *p.Exploration
		}
	}
	return spec, spec.Validate()
}

type Config struct {
	NumArms      int            `yaml:"numArms" validate:"gte=3,lte=5"`
	ArmMeans     []float64      `yaml:"armMeans"`
	ArmNames     []string       `yaml:"armNames,omitempty"`
	ArmsFile     string         `yaml:"armsFile,omitempty"`
	Horizon      int            `yaml:"horizon" validate:"gt=0"`
	NumTrials    int            `yaml:"numTrials" validate:"gte=1"`
	Policies     []PolicyConfig `yaml:"policies" validate:"min=1,dive"`
	RandomSeed   *int64         `yaml:"randomSeed,omitempty"`
	RewardModel  string         `yaml:"rewardModel,omitempty" validate:"omitempty,oneof=bernoulli gaussian"`
	RewardStdDev float64        `yaml:"rewardStdDev,omitempty" validate:"gte=0"`
	Workers      int            `yaml:"workers,omitempty" validate:"gte=0"`
}

// DefaultConfig compares all three policies on the click-through rates of
// three ad banners.
func DefaultConfig() Config {
	epsilon := meta.DEFAULT_EPSILON
	return Config{
		NumArms:   3,
		ArmMeans:  []float64{0.05, 0.12, 0.08},
		Horizon:   meta.DEFAULT_HORIZON,
		NumTrials: meta.DEFAULT_TRIALS,
		Policies: []PolicyConfig{
			{Name: string(policy.EpsilonGreedy), Epsilon: &epsilon},
			{Name: string(policy.UCB1)},
			{Name: string(policy.ThompsonSampling)},
		},
		RewardModel: string(env.Bernoulli),
	}
}

// LoadConfig reads a YAML file over the defaults. Arms listed in an ad
// dataset replace the configured means; a relative armsFile is resolved
// against the directory of the config file.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("%w: failed to parse %s: %v", meta.ErrInvalidConfiguration, path, err)
	}
	if cfg.ArmsFile != "" {
		if !filepath.IsAbs(cfg.ArmsFile) {
			cfg.ArmsFile = filepath.Join(filepath.Dir(path), cfg.ArmsFile)
		}
		if err := cfg.loadArmsFile(); err != nil {
			return cfg, err
		}
	}
	return cfg, cfg.Validate()
}

func (c *Config) loadArmsFile() error {
	arms, err := env.LoadArmsFile(c.ArmsFile)
	if err != nil {
		return err
	}
	c.NumArms = len(arms)
	c.ArmMeans = make([]float64, len(arms))
	c.ArmNames = make([]string, len(arms))
	for i, arm := range arms {
		c.ArmMeans[i] = arm.Mean
		c.ArmNames[i] = arm.Name
	}
	return nil
}

func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", meta.ErrInvalidConfiguration, err)
	}
	if c.Horizon > meta.MAX_HORIZON {
		return fmt.Errorf("%w: horizon %d above %d", meta.ErrInvalidConfiguration, c.Horizon, meta.MAX_HORIZON)
	}
	if len(c.ArmMeans) != c.NumArms {
		return fmt.Errorf("%w: %d arm means for %d arms", meta.ErrInvalidConfiguration, len(c.ArmMeans), c.NumArms)
	}
	if len(c.ArmNames) != 0 && len(c.ArmNames) != c.NumArms {
		return fmt.Errorf("%w: %d arm names for %d arms", meta.ErrInvalidConfiguration, len(c.ArmNames), c.NumArms)
	}
	if c.model() == env.Bernoulli {
		for i, mean := range c.ArmMeans {
			if mean < 0 || mean > 1 {
				return fmt.Errorf("%w: arm %d has mean %v outside [0,1]", meta.ErrInvalidConfiguration, i, mean)
			}
		}
	}
	for _, p := range c.Policies {
		if _, err := p.Spec(); err != nil {
			return err
		}
	}
	return nil
}

func (c Config) model() env.RewardModel {
	if c.RewardModel == "" {
		return env.Bernoulli
	}
	return env.RewardModel(c.RewardModel)
}

func (c Config) Arms() []env.Arm {
	return env.ArmsFromMeans(c.ArmMeans, c.ArmNames)
}

func (c Config) EnvOptions() []env.Option {
	if c.model() == env.Gaussian {
		return []env.Option{env.WithGaussianRewards(c.RewardStdDev)}
	}
	return nil
}

// Specs returns the policies in configuration order. Call Validate first.
func (c Config) Specs() []policy.Spec {
	specs := make([]policy.Spec, 0, len(c.Policies))
	for _, p := range c.Policies {
		spec, err := p.Spec()
		if err != nil {
			panic(fmt.Sprintf("unvalidated policy config: %v", err))
		}
		specs = append(specs, spec)
	}
	return specs
}
