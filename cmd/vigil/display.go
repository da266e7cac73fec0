package main

import (
	"fmt"
	"os"
	"strings"
)

// displayMode is how doctor progress reaches the user.
type displayMode uint8

const (
	// displayTUI renders the live Bubble Tea view.
	displayTUI displayMode = iota
	// displayPlain prints one line per state change.
	displayPlain
)

// resolveDisplay picks the renderer from the --ui value and the CI signal.
// CI always wins: a non-interactive run gets plain output even with --ui on.
func resolveDisplay(value string, ci bool) (displayMode, error) {
	mode := strings.TrimSpace(strings.ToLower(value))
	switch mode {
	case "", "auto", "on", "off":
	default:
		return displayPlain, fmt.Errorf("invalid --ui value %q (expected auto|on|off)", value)
	}
	switch {
	case ci || mode == "off":
		return displayPlain, nil
	case mode == "on":
		return displayTUI, nil
	case isTerminal(os.Stdout):
		return displayTUI, nil
	default:
		return displayPlain, nil
	}
}
