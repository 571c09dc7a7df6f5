package main

import (
	"fmt"

	flag "github.com/spf13/pflag"

	"github.com/avrile/go-html2docbook/internal/yamlutil"
)

// runConfigCmd prints the effective configuration as YAML, after the
// config file and environment overrides are applied. Useful for checking
// what a conversion run would actually use.
func runConfigCmd(args []string, env *Environment) error {
	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	var common commonFlags
	common.register(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	envCfg := loadEnvConfig()
	cfg, err := loadEffectiveConfig(common.config, envCfg)
	if err != nil {
		return err
	}
	applyEnvConfig(envCfg, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	out, err := yamlutil.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("rendering config: %w", err)
	}
	fmt.Fprint(env.Stdout, string(out))
	return nil
}
