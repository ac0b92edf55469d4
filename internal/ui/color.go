// Copyright 2025 KrakLabs
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// For commercial licensing, contact: licensing@kraklabs.com
//
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ui provides color output helpers for the Scout CLI.
//
// Helpers respect the --no-color flag and the NO_COLOR environment
// variable, and colors are disabled automatically when output is not a
// TTY (e.g. when piped).
//
// Color usage guidelines:
//   - Red: errors, failures
//   - Yellow: warnings, pending migrations
//   - Green: success, completions
//   - Cyan: info, neutral messages
//   - Bold: headers, labels
//   - Dim: paths and other secondary details
package ui

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
)

// Pre-configured color instances for consistent CLI output.
var (
	Red    = color.New(color.FgRed)
	Yellow = color.New(color.FgYellow)
	Green  = color.New(color.FgGreen)
	Cyan   = color.New(color.FgCyan)
	Bold   = color.New(color.Bold)
	Dim    = color.New(color.Faint)
)

// InitColors configures global color output based on the noColor flag.
// Call it early in main() after parsing flags; the fatih/color library
// handles NO_COLOR on its own, this adds the explicit CLI switch.
func InitColors(noColor bool) {
	color.NoColor = noColor
}

// Success prints a green message with a checkmark prefix.
//
// Example output: "✓ Container stopped"
func Success(msg string) {
	_, _ = Green.Println("✓ " + msg)
}

// Successf prints a formatted green message with a checkmark prefix.
func Successf(format string, args ...any) {
	_, _ = Green.Printf("✓ "+format+"\n", args...)
}

// Warning prints a yellow message with a warning symbol prefix.
//
// Example output: "⚠ Migration needed"
func Warning(msg string) {
	_, _ = Yellow.Println("⚠ " + msg)
}

// Warningf prints a formatted yellow message with a warning symbol prefix.
func Warningf(format string, args ...any) {
	_, _ = Yellow.Printf("⚠ "+format+"\n", args...)
}

// Error prints a red message with an X prefix.
//
// Example output: "✗ Docker is not running"
func Error(msg string) {
	_, _ = Red.Println("✗ " + msg)
}

// Info prints a cyan message with an info symbol prefix.
//
// Example output: "ℹ Waiting for vector store..."
func Info(msg string) {
	_, _ = Cyan.Println("ℹ " + msg)
}

// Header prints a bold header with an underline separator.
//
// Example output:
//
//	Scout Storage Status
//	====================
func Header(text string) {
	_, _ = Bold.Println(text)
	fmt.Println(strings.Repeat("=", len(text)))
}

// SubHeader prints a bold sub-header without an underline.
//
// Example output: "Legacy collections:"
func SubHeader(text string) {
	_, _ = Bold.Println(text)
}

// Label returns a bold-formatted label string for inline use.
//
// Example: fmt.Printf("%s %s\n", ui.Label("Project ID:"), projectID)
func Label(text string) string {
	return Bold.Sprint(text)
}

// DimText returns a dim-formatted string for secondary text.
//
// Example: fmt.Printf("Data stored in: %s\n", ui.DimText(dataDir))
func DimText(text string) string {
	return Dim.Sprint(text)
}
