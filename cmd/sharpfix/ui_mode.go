package main

import (
	"fmt"
	"os"
	"strings"

	"sharpfix/internal/config"
)

type uiMode string

const (
	uiModeAuto uiMode = "auto"
	uiModeOn   uiMode = "on"
	uiModeOff  uiMode = "off"
)

// uiEnv overrides [run].ui; an explicit --ui wins over both.
const uiEnv = "SHARPFIX_UI"

func readUIMode(value string) (uiMode, error) {
	switch strings.TrimSpace(strings.ToLower(value)) {
	case "", "auto":
		return uiModeAuto, nil
	case "on":
		return uiModeOn, nil
	case "off":
		return uiModeOff, nil
	default:
		return "", fmt.Errorf("invalid ui mode %q (expected auto|on|off)", value)
	}
}

// resolveUIMode picks the progress view mode: the --ui flag when given, then
// SHARPFIX_UI, then [run].ui from sharpfix.toml.
func resolveUIMode(flag string, flagSet bool, cfg *config.Config) (uiMode, error) {
	if flagSet {
		return readUIMode(flag)
	}
	if env, ok := os.LookupEnv(uiEnv); ok && strings.TrimSpace(env) != "" {
		mode, err := readUIMode(env)
		if err != nil {
			return "", fmt.Errorf("%s: %w", uiEnv, err)
		}
		return mode, nil
	}
	if cfg != nil {
		return readUIMode(cfg.Run.UI)
	}
	return uiModeAuto, nil
}

// shouldUseTUI decides for auto mode: the view draws on stderr, so that is the
// stream that must be a terminal. --quiet turns auto off.
func shouldUseTUI(mode uiMode, quiet bool, stderr *os.File) bool {
	switch mode {
	case uiModeOn:
		return true
	case uiModeOff:
		return false
	default:
		return !quiet && stderr != nil && isTerminal(stderr)
	}
}
