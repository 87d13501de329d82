package summary

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseScore validates the satisfaction-score response: after trimming it
// must be a bare integer in [0, 100]. Anything else is rejected.
func ParseScore(response string) (int, error) {
	trimmed := strings.TrimSpace(response)
	if trimmed == "" {
		return 0, fmt.Errorf("empty score response")
	}
	score, err := strconv.Atoi(trimmed)
	if err != nil {
		return 0, fmt.Errorf("score response is not an integer: %q", trimmed)
	}
	if score < 0 || score > 100 {
		return 0, fmt.Errorf("score %d out of range [0, 100]", score)
	}
	return score, nil
}
