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
	"strings"

	"github.com/spf13/cobra"

	"rivaas.dev/apilog/config"
	"rivaas.dev/apilog/config/codec"
	"rivaas.dev/apilog/config/dumper"
)

func newDumpCmd(c *cli) *cobra.Command {
	var (
		format string
		output string
	)

	formats := make([]string, 0, 3)
	for _, t := range codec.EncoderTypes() {
		formats = append(formats, string(t))
	}

	cmd := &cobra.Command{
		Use:   "dump",
		Short: "Print the effective settings",
		Long: `Load the settings and print them with every default filled in. The
output is itself a valid settings file.

Examples:
  apilogctl dump -f apilog.yaml
  apilogctl dump -f apilog.yaml --format json -o effective.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var target config.Option
			if output != "" {
				target = config.WithFileDumperAs(output, codec.Type(format))
			} else {
				encoder, err := codec.GetEncoder(codec.Type(format))
				if err != nil {
					return fmt.Errorf("unsupported format %q, want one of %s", format, strings.Join(formats, ", "))
				}
				target = config.WithDumper(dumper.NewWriter(cmd.OutOrStdout(), encoder))
			}

			loader, _, err := c.load(cmd, target)
			if err != nil {
				return err
			}
			if err = loader.Dump(cmd.Context()); err != nil {
				return err
			}
			if output != "" {
				c.log().Info("settings written", "path", output, "format", format)
			}

			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", string(codec.TypeYAML), "output format: "+strings.Join(formats, ", "))
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to this file instead of stdout")

	return cmd
}

func newSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON schema effective settings are checked against",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := cmd.OutOrStdout().Write(config.SettingsSchema())
			return err
		},
	}
}
