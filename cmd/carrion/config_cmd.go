package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/pelletier/go-toml"
	"github.com/praxos/carrion/pkg/config"
	"github.com/urfave/cli/v2"
)

func configCmd() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Configuration management commands",
		Subcommands: []*cli.Command{
			{
				Name:  "validate",
				Usage: "Validate a configuration file",
				Description: `Validates a carrion configuration file for syntax errors and
invalid values. Without --config, the standard locations are checked.`,
				Action: runConfigValidate,
			},
			{
				Name:   "show",
				Usage:  "Show the effective configuration",
				Action: runConfigShow,
			},
		},
	}
}

func runConfigValidate(c *cli.Context) error {
	if path := c.String("config"); path != "" {
		if _, err := config.Load(path); err != nil {
			color.Red("Configuration validation failed:")
			fmt.Printf("  - %s\n", err)
			return err
		}
		color.Green("Configuration valid: %s", path)
		return nil
	}

	// LoadOrDefault falls back silently, so a default result just means no
	// file was found anywhere.
	cfg := config.LoadOrDefault()
	if err := cfg.Validate(); err != nil {
		color.Red("Configuration validation failed:")
		fmt.Printf("  - %s\n", err)
		return err
	}
	color.Green("Configuration valid")
	return nil
}

func runConfigShow(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	content, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	fmt.Print(string(content))
	return nil
}
