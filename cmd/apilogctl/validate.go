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
	"io"
	"maps"
	"slices"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"rivaas.dev/apilog"
	"rivaas.dev/apilog/config"
	"rivaas.dev/apilog/model"
)

func newValidateCmd(c *cli) *cobra.Command {
	var quiet bool

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate settings and print a summary",
		Long: `Load the settings, check them against the settings schema and build an
interceptor from them. Force patterns and filter patterns are compiled, so
a pattern that would fail at startup fails here.

Examples:
  apilogctl validate -f apilog.yaml
  apilogctl validate -f base.yaml -f prod.toml --env-prefix ""`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, settings, err := c.load(cmd)
			if err != nil {
				return err
			}

			if _, err = apilog.New(apilog.WithSettings(*settings), apilog.WithLogger(c.log())); err != nil {
				return fmt.Errorf("settings rejected: %w", err)
			}
			c.log().Info("settings valid", "enabled", settings.Enabled, "log_mode", settings.LogMode)

			if quiet {
				return nil
			}

			return printSummary(cmd.OutOrStdout(), *settings)
		},
	}
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "only report errors")

	return cmd
}

func printSummary(w io.Writer, s model.Settings) error {
	values, err := config.SettingsMap(s)
	if err != nil {
		return err
	}

	flat := make(map[string]string)
	flatten("", values, flat)

	keyStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("245")).PaddingRight(1)
	valueStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("15")).PaddingLeft(1)
	headerStyle := lipgloss.NewStyle().Bold(true).Padding(0, 1)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("240"))).
		Headers("SETTING", "VALUE").
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col == 0:
				return keyStyle
			}
			return valueStyle
		})
	for _, key := range slices.Sorted(maps.Keys(flat)) {
		t.Row(key, flat[key])
	}

	_, err = fmt.Fprintln(w, t.Render())

	return err
}

// flatten writes nested settings as dotted keys.
func flatten(prefix string, values map[string]any, out map[string]string) {
	for k, v := range values {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if nested, ok := v.(map[string]any); ok {
			flatten(key, nested, out)
			continue
		}
		out[key] = fmt.Sprint(v)
	}
}
