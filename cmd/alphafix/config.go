package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/setanarut/alphafix"
)

// fileConfig is the optional YAML configuration. Flags set on the command
// line take precedence.
type fileConfig struct {
	Policy        string `yaml:"policy"`
	Workers       int    `yaml:"workers"`
	Matte         string `yaml:"matte"`
	MaskDir       string `yaml:"maskDir"`
	CoupleFormats bool   `yaml:"coupleFormats"`
	Debug         bool   `yaml:"debug"`
	Info          bool   `yaml:"info"`
	Human         bool   `yaml:"human"`
}

func loadFileConfig(path string) (fileConfig, error) {
	var fc fileConfig
	if path == "" {
		return fc, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fc, fmt.Errorf("parse %s: %w", path, err)
	}
	return fc, nil
}

// merge folds the file configuration under the command line flags.
func (c *cli) merge(fc fileConfig) {
	if c.Policy == "" {
		c.Policy = fc.Policy
	}
	if c.Workers == 0 {
		c.Workers = fc.Workers
	}
	if c.Matte == "" {
		c.Matte = fc.Matte
	}
	if c.MaskDir == "" {
		c.MaskDir = fc.MaskDir
	}
	fallback(&c.CoupleFormats, fc.CoupleFormats)
	fallback(&c.Debug, fc.Debug)
	fallback(&c.Info, fc.Info)
	fallback(&c.Human, fc.Human)
}

// fallback sets *flag to v unless the flag was given on the command line.
func fallback(flag **bool, v bool) {
	if *flag == nil {
		*flag = &v
	}
}

func isSet(flag *bool) bool {
	return flag != nil && *flag
}

func (c *cli) config() (alphafix.Config, error) {
	policy := alphafix.PolicyGuarded
	if c.Policy != "" {
		p, err := alphafix.ParsePolicy(c.Policy)
		if err != nil {
			return alphafix.Config{}, err
		}
		policy = p
	}
	matte, err := alphafix.ParseMatte(c.Matte)
	if err != nil {
		return alphafix.Config{}, err
	}
	cfg := alphafix.DefaultConfig(policy)
	if c.Workers > 0 {
		cfg.Workers = c.Workers
	}
	cfg.Matte = matte
	cfg.CoupleFormats = isSet(c.CoupleFormats)
	return cfg, nil
}
