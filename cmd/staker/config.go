// Copyright (c) 2025 The TruStake developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"math/big"
	"os"
	"path/filepath"
	"runtime"

	"github.com/pkg/errors"
	yaml "gopkg.in/yaml.v3"

	"github.com/trustake/staker/near"
)

// Config is the YAML vault configuration.
type Config struct {
	Owner       string   `yaml:"owner"`
	Treasury    string   `yaml:"treasury"`
	DefaultPool string   `yaml:"defaultPool"`
	Pools       []string `yaml:"pools"`

	// Fee and DistributionFee are in basis points of near.FeePrecision.
	Fee             uint64 `yaml:"fee"`
	DistributionFee uint64 `yaml:"distributionFee"`

	// MinDeposit is a decimal yocto amount. Empty selects the default.
	MinDeposit string `yaml:"minDeposit"`
}

func loadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WithMessage(err, "read config")
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.WithMessage(err, "parse config")
	}
	return &cfg, cfg.validate()
}

func (cfg *Config) validate() error {
	switch {
	case cfg.Owner == "":
		return errors.New("config: owner required")
	case cfg.Treasury == "":
		return errors.New("config: treasury required")
	case len(cfg.Pools) == 0:
		return errors.New("config: at least one pool required")
	case cfg.Fee >= near.FeePrecision:
		return errors.Errorf("config: fee must be below %d", near.FeePrecision)
	case cfg.DistributionFee >= near.FeePrecision:
		return errors.Errorf("config: distribution fee must be below %d", near.FeePrecision)
	}
	if cfg.DefaultPool == "" {
		cfg.DefaultPool = cfg.Pools[0]
	}
	found := false
	for _, id := range cfg.Pools {
		if id == cfg.DefaultPool {
			found = true
			break
		}
	}
	if !found {
		return errors.Errorf("config: default pool %q not in pool list", cfg.DefaultPool)
	}
	return nil
}

func (cfg *Config) minDeposit() (*big.Int, error) {
	if cfg.MinDeposit == "" {
		return nil, nil
	}
	v, ok := new(big.Int).SetString(cfg.MinDeposit, 10)
	if !ok || v.Sign() <= 0 {
		return nil, errors.Errorf("config: invalid minDeposit %q", cfg.MinDeposit)
	}
	return v, nil
}

// soloConfig is the built-in configuration for local development.
func soloConfig() *Config {
	return &Config{
		Owner:       "owner.test",
		Treasury:    "treasury.test",
		DefaultPool: "pool.test",
		Pools:       []string{"pool.test"},
		Fee:         500,
	}
}

func defaultDataDir() string {
	if home, err := os.UserHomeDir(); err == nil {
		switch runtime.GOOS {
		case "darwin":
			return filepath.Join(home, "Library", "Application Support", "org.trustake.staker")
		case "windows":
			return filepath.Join(home, "AppData", "Roaming", "Staker")
		default:
			return filepath.Join(home, ".org.trustake.staker")
		}
	}
	return ""
}
