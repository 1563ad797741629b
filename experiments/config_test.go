package experiments

import (
	"bandit/meta"
	"bandit/policy"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestConfigValidate(t *testing.T) {
	t.Run("accepting the defaults", func(t *testing.T) {
		require.NoError(t, DefaultConfig().Validate())
	})

	invalid := map[string]func(c *Config){
		"too few arms": func(c *Config) {
			c.NumArms, c.ArmMeans = 2, []float64{0.1, 0.2}
		},
		"too many arms": func(c *Config) {
			c.NumArms, c.ArmMeans = 6, []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6}
		},
		"means length mismatch": func(c *Config) {
			c.ArmMeans = []float64{0.1, 0.2}
		},
		"names length mismatch": func(c *Config) {
			c.ArmNames = []string{"a"}
		},
		"mean outside [0,1]": func(c *Config) {
			c.ArmMeans = []float64{0.1, 1.2, 0.3}
		},
		"zero horizon": func(c *Config) {
			c.Horizon = 0
		},
		"huge horizon": func(c *Config) {
			c.Horizon = meta.MAX_HORIZON + 1
		},
		"zero trials": func(c *Config) {
			c.NumTrials = 0
		},
		"no policies": func(c *Config) {
			c.Policies = nil
		},
		"epsilon outside [0,1]": func(c *Config) {
			epsilon := 1.5
			c.Policies = []PolicyConfig{{Name: "epsilon-greedy", Epsilon: &epsilon}}
		},
		"unknown policy": func(c *Config) {
			c.Policies = []PolicyConfig{{Name: "softmax"}}
		},
		"unnamed policy": func(c *Config) {
			c.Policies = []PolicyConfig{{}}
		},
		"unknown reward model": func(c *Config) {
			c.RewardModel = "poisson"
		},
		"negative standard deviation": func(c *Config) {
			c.RewardModel, c.RewardStdDev = "gaussian", -1
		},
	}
	for name, mutate := range invalid {
		t.Run("rejecting "+name, func(t *testing.T) {
			cfg := DefaultConfig()
			mutate(&cfg)

			require.ErrorIs(t, cfg.Validate(), meta.ErrInvalidConfiguration)
		})
	}

	t.Run("accepting gaussian means outside [0,1]", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.RewardModel, cfg.RewardStdDev = "gaussian", 1
		cfg.ArmMeans = []float64{-1, 2, 5}

		require.NoError(t, cfg.Validate())
		require.Len(t, cfg.EnvOptions(), 1)
	})
}

func TestPolicyConfigSpec(t *testing.T) {
	t.Run("filling defaults", func(t *testing.T) {
		spec, err := PolicyConfig{Name: "epsilon-greedy"}.Spec()
		require.NoError(t, err)
		require.Equal(t, policy.Spec{Name: policy.EpsilonGreedy, Epsilon: meta.DEFAULT_EPSILON}, spec)

		spec, err = PolicyConfig{Name: "ucb1"}.Spec()
		require.NoError(t, err)
		require.Equal(t, policy.Spec{Name: policy.UCB1, Exploration: meta.UCB_C_SQUARED}, spec)
	})

	t.Run("keeping explicit parameters", func(t *testing.T) {
		epsilon, exploration := 0.0, 0.5

		spec, err := PolicyConfig{Name: "epsilon-greedy", Epsilon: &epsilon}.Spec()
		require.NoError(t, err)
		require.Equal(t, 0.0, spec.Epsilon)

		spec, err = PolicyConfig{Name: "ucb1", Exploration: &exploration}.Spec()
		require.NoError(t, err)
		require.Equal(t, 0.5, spec.Exploration)
	})
}

func TestLoadConfig(t *testing.T) {
	t.Run("reading yaml over defaults", func(t *testing.T) {
		path := writeFile(t, "config.yaml", `
numArms: 4
armMeans: [0.1, 0.2, 0.3, 0.4]
horizon: 200
numTrials: 5
randomSeed: 7
policies:
  - name: epsilon-greedy
    epsilon: 0.2
  - name: thompson-sampling
`)

		cfg, err := LoadConfig(path)

		require.NoError(t, err)
		require.Equal(t, 4, cfg.NumArms)
		require.Equal(t, 200, cfg.Horizon)
		require.Equal(t, 5, cfg.NumTrials)
		require.Equal(t, int64(7), *cfg.RandomSeed)
		require.Equal(t, []policy.Spec{
			{Name: policy.EpsilonGreedy, Epsilon: 0.2},
			{Name: policy.ThompsonSampling},
		}, cfg.Specs())
		require.Equal(t, "bernoulli", cfg.RewardModel, "Unset fields should keep defaults")
	})

	t.Run("reading arms from an ad dataset", func(t *testing.T) {
		dataset := writeFile(t, "ads.csv", "Ad,CTR\nSummer Sale,0.04\nFree Shipping,0.11\nNew Arrivals,0.07\n")
		path := writeFile(t, "config.yaml", "armsFile: "+dataset+"\nhorizon: 100\n")

		cfg, err := LoadConfig(path)

		require.NoError(t, err)
		require.Equal(t, 3, cfg.NumArms)
		require.Equal(t, []float64{0.04, 0.11, 0.07}, cfg.ArmMeans)
		require.Equal(t, "Free Shipping", cfg.Arms()[1].Name)
	})

	t.Run("resolving a relative arms file next to the config", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "ads.csv"), []byte("Ad,CTR\nSummer Sale,0.04\nFree Shipping,0.11\nNew Arrivals,0.07\n"), 0644))
		path := filepath.Join(dir, "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("armsFile: ads.csv\nhorizon: 100\n"), 0644))

		cfg, err := LoadConfig(path)

		require.NoError(t, err, "Should not depend on the working directory")
		require.Equal(t, filepath.Join(dir, "ads.csv"), cfg.ArmsFile)
		require.Equal(t, []float64{0.04, 0.11, 0.07}, cfg.ArmMeans)
	})

	t.Run("rejecting invalid yaml", func(t *testing.T) {
		path := writeFile(t, "config.yaml", "horizon: [1, 2\n")

		_, err := LoadConfig(path)

		require.ErrorIs(t, err, meta.ErrInvalidConfiguration)
	})

	t.Run("rejecting invalid values", func(t *testing.T) {
		path := writeFile(t, "config.yaml", "numArms: 7\n")

		_, err := LoadConfig(path)

		require.ErrorIs(t, err, meta.ErrInvalidConfiguration)
	})

	t.Run("rejecting a horizon above the cap", func(t *testing.T) {
		path := writeFile(t, "config.yaml", "horizon: 10000001\n")

		_, err := LoadConfig(path)

		require.ErrorIs(t, err, meta.ErrInvalidConfiguration)
		require.ErrorContains(t, err, "above")
	})

	t.Run("failing on a missing file", func(t *testing.T) {
		_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))

		require.ErrorIs(t, err, os.ErrNotExist)
	})
}
