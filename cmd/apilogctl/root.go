// Copyright 2025 The Rivaas Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"rivaas.dev/apilog"
	"rivaas.dev/apilog/config"
	"rivaas.dev/apilog/logging"
	"rivaas.dev/apilog/model"
)

// cli holds the flags shared by every command.
type cli struct {
	files     []string
	envPrefix string
	consulKey string
	logFormat string
	debug     bool

	logger *logging.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:   "apilogctl",
		Short: "Check and print apilog settings",
		Long: `apilogctl loads apilog settings from files, environment variables and
Consul, validates them and prints the effective result.

Sources are applied in order: files as given, then Consul, then the
environment. Later sources win.`,
		Version:       apilog.Version,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			handler, err := logging.ParseHandlerType(c.logFormat)
			if err != nil {
				return err
			}
			opts := []logging.Option{
				logging.WithHandlerType(handler),
				logging.WithOutput(cmd.ErrOrStderr()),
				logging.WithServiceName("apilogctl"),
				logging.WithServiceVersion(apilog.Version),
			}
			if c.debug {
				opts = append(opts, logging.WithDebugLevel())
			}
			c.logger, err = logging.New(opts...)
			return err
		},
	}

	flags := root.PersistentFlags()
	flags.StringArrayVarP(&c.files, "file", "f", nil, "settings file (yaml, yml, json or toml); repeatable")
	flags.StringVar(&c.envPrefix, "env-prefix", "APILOG_", "prefix of the environment variables to load; empty disables them")
	flags.StringVar(&c.consulKey, "consul", "", "Consul key to load, used when CONSUL_HTTP_ADDR is set")
	flags.StringVar(&c.logFormat, "log-format", string(logging.ConsoleHandler), "diagnostic log format: console, json or text")
	flags.BoolVar(&c.debug, "debug", false, "enable debug logging")

	root.AddCommand(newValidateCmd(c), newDumpCmd(c), newSchemaCmd())

	return root
}

func (c *cli) log() *slog.Logger {
	if c.logger == nil {
		return slog.Default()
	}

	return c.logger.Logger()
}

// sourceOptions returns the loader options for the configured sources.
func (c *cli) sourceOptions() []config.Option {
	opts := make([]config.Option, 0, len(c.files)+2)
	for _, f := range c.files {
		opts = append(opts, config.WithFile(f))
	}
	if c.consulKey != "" {
		opts = append(opts, config.WithConsul(c.consulKey))
	}
	if c.envPrefix != "" {
		opts = append(opts, config.WithEnv(c.envPrefix))
	}

	return opts
}

// load builds a loader with the configured sources plus extra and loads
// the settings.
func (c *cli) load(cmd *cobra.Command, extra ...config.Option) (*config.Loader, *model.Settings, error) {
	loader, err := config.New(append(c.sourceOptions(), extra...)...)
	if err != nil {
		return nil, nil, err
	}

	c.log().Debug("loading settings", "files", c.files, "env_prefix", c.envPrefix, "consul", c.consulKey)
	settings, err := loader.Load(cmd.Context())
	if err != nil {
		return nil, nil, fmt.Errorf("load settings: %w", err)
	}

	return loader, settings, nil
}
