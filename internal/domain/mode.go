package domain

import (
	"fmt"
	"strings"
)

// SystemMode selects live or test data on the backend. The zero value is
// treated as test.
type SystemMode string

const (
	ModeLive SystemMode = "live"
	ModeTest SystemMode = "test"
)

func ParseSystemMode(s string) (SystemMode, error) {
	switch SystemMode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeLive:
		return ModeLive, nil
	case ModeTest:
		return ModeTest, nil
	}
	return "", fmt.Errorf("unknown system mode %q (want live or test)", s)
}

func (m SystemMode) Normalize() SystemMode {
	if m == ModeLive {
		return ModeLive
	}
	return ModeTest
}

func (m SystemMode) IsLive() bool { return m == ModeLive }

func (m SystemMode) Other() SystemMode {
	if m.IsLive() {
		return ModeTest
	}
	return ModeLive
}
