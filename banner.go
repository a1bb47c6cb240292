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

package apilog

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/colorprofile"
	"github.com/charmbracelet/lipgloss"
	"github.com/common-nighthawk/go-figure"

	"rivaas.dev/apilog/internal/typename"
	"rivaas.dev/apilog/model"
)

// printBanner writes the startup banner. Colors are downsampled to what w
// supports and stripped when w is not a terminal.
func (ic *Interceptor) printBanner(w io.Writer) {
	cpw := colorprofile.NewWriter(w, os.Environ())

	art := figure.NewFigure("apilog", "", false).Slicify()
	gradient := []string{"12", "14", "10", "11"}

	var styledArt strings.Builder
	for _, line := range art {
		if strings.TrimSpace(line) == "" {
			styledArt.WriteString("\n")
			continue
		}
		for i, char := range line {
			style := lipgloss.NewStyle().
				Foreground(lipgloss.Color(gradient[i%len(gradient)])).
				Bold(true)
			styledArt.WriteString(style.Render(string(char)))
		}
		styledArt.WriteString("\n")
	}

	categoryStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Bold(true)
	labelStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("240")).
		Width(16).
		PaddingLeft(2).
		Align(lipgloss.Left)
	valueStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Bold(true)
	disabledStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))

	line := func(label, value string) string {
		if value == "" {
			return labelStyle.Render(label) + "  " + disabledStyle.Render("None") + "\n"
		}
		return labelStyle.Render(label) + "  " + valueStyle.Render(value) + "\n"
	}

	s := ic.settings
	pre, post := ic.filters.Len()

	var out strings.Builder
	out.WriteString(categoryStyle.Render("API logging is ENABLED") + "\n")
	out.WriteString(line("Version:", Version))
	out.WriteString(line("Log mode:", string(s.LogMode)))
	out.WriteString(line("Max payload:", payloadLimit(s.MaxPayloadLength)))
	out.WriteString(line("Sink:", typename.Simple(ic.sink)))

	out.WriteString("\n" + categoryStyle.Render("Decisions") + "\n")
	out.WriteString(line("Triggers:", strings.Join(s.Triggers, ", ")))
	out.WriteString(line("Force patterns:", strings.Join(s.ForceDetailedLogPatterns, ", ")))
	out.WriteString(line("Filters:", fmt.Sprintf("%d pre, %d post", pre, post)))
	out.WriteString(line("Status codes:", joinInts(s.DetailedLogOnStatusCodes)))

	out.WriteString("\n" + categoryStyle.Render("Redaction") + "\n")
	out.WriteString(line("Arguments:", strings.Join(s.Sensitive.ArgNames, ", ")))
	out.WriteString(line("Headers:", strings.Join(s.Sensitive.RequestHeaders, ", ")))
	out.WriteString(line("Stack lines:", stackSummary(s)))

	_, _ = fmt.Fprintln(cpw)
	_, _ = fmt.Fprint(cpw, styledArt.String())
	_, _ = fmt.Fprintln(cpw)
	_, _ = fmt.Fprint(cpw, out.String())
	_, _ = fmt.Fprintln(cpw)
}

func payloadLimit(n int) string {
	switch {
	case n < 0:
		return "unlimited"
	case n == 0:
		return "omitted"
	}

	return strconv.Itoa(n) + " chars"
}

func stackSummary(s model.Settings) string {
	if !s.ExceptionStack.Enabled {
		return "detailed only, max " + strconv.Itoa(s.ExceptionStack.MaxLines)
	}

	return "always, max " + strconv.Itoa(s.ExceptionStack.MaxLines)
}

func joinInts(codes []int) string {
	parts := make([]string, len(codes))
	for i, c := range codes {
		parts[i] = strconv.Itoa(c)
	}

	return strings.Join(parts, ", ")
}
