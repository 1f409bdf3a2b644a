// Package cli provides shared formatting helpers for canon's CLI output.
package cli

import (
	"fmt"
	"os"
	"strings"
)

// ANSI color constants.
const (
	Green  = "\033[32m"
	Yellow = "\033[33m"
	Red    = "\033[31m"
	Cyan   = "\033[36m"
	Dim    = "\033[2m"
	Bold   = "\033[1m"
	Reset  = "\033[0m"
)

// boxWidth is the inner content width (between the border characters).
const boxWidth = 40

// margin is the left indent for all boxed output.
const margin = "  "

// ShortenHome replaces a $HOME prefix with ~, used when printing a corpus
// or cache root path back to the caller.
func ShortenHome(path string) string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return path
	}
	if strings.HasPrefix(path, home) {
		return "~" + path[len(home):]
	}
	return path
}

// Header prints a heavy-border box with a title, used by commands that
// want a section banner (e.g. `canon catalog`).
func Header(title string) {
	fmt.Println()
	heavyTop := margin + "┏" + strings.Repeat("━", boxWidth) + "┓"
	heavyBottom := margin + "┗" + strings.Repeat("━", boxWidth) + "┛"

	content := "  " + title
	padded := padRight(content, boxWidth)

	fmt.Printf("%s%s%s\n", Cyan, heavyTop, Reset)
	fmt.Printf("%s%s┃%s┃%s\n", Cyan, margin, padded, Reset)
	fmt.Printf("%s%s%s\n", Cyan, heavyBottom, Reset)
}

// Section prints a section divider line: ── Name ─────────────────
func Section(name string) {
	prefix := "── " + name + " "
	remaining := boxWidth + 2 - runeLen(prefix)
	if remaining < 0 {
		remaining = 0
	}
	rule := prefix + strings.Repeat("─", remaining)
	fmt.Printf("\n%s%s%s\n\n", Cyan, rule, Reset)
}

// Warnf prints a debug-block warning in dim text, the shape every action
// subcommand uses for env.Debug.Warnings.
func Warnf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "  %s[warn] %s%s\n", Dim, fmt.Sprintf(format, args...), Reset)
}

// padRight pads s with spaces to exactly width characters, truncating if
// s is already longer.
func padRight(s string, width int) string {
	n := runeLen(s)
	if n >= width {
		r := []rune(s)
		return string(r[:width])
	}
	return s + strings.Repeat(" ", width-n)
}

func runeLen(s string) int {
	return len([]rune(s))
}
