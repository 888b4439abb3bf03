package param

import (
	"fmt"
	"strconv"
	"strings"
)

// Common parameter formatters and parsers

// DecibelFormatter formats dB values
func DecibelFormatter(db float64) string {
	return fmt.Sprintf("%.1f dB", db)
}

// DecibelParser parses dB strings
func DecibelParser(str string) (float64, error) {
	str = strings.TrimSuffix(strings.TrimSpace(str), "dB")
	str = strings.TrimSuffix(strings.TrimSpace(str), "db")
	return parseFloat(str)
}

// PercentFormatter formats percentage values
func PercentFormatter(value float64) string {
	return fmt.Sprintf("%.0f%%", value)
}

// PercentParser parses percentage strings
func PercentParser(str string) (float64, error) {
	str = strings.TrimSuffix(strings.TrimSpace(str), "%")
	return parseFloat(str)
}

// TimeFormatter formats millisecond values with appropriate units
func TimeFormatter(ms float64) string {
	if ms >= 1000 {
		return fmt.Sprintf("%.2f s", ms/1000)
	}
	return fmt.Sprintf("%.2f ms", ms)
}

// TimeParser parses time strings into milliseconds
func TimeParser(str string) (float64, error) {
	str = strings.ToLower(strings.TrimSpace(str))

	// Handle seconds
	if strings.HasSuffix(str, "s") && !strings.HasSuffix(str, "ms") {
		val, err := parseFloat(strings.TrimSuffix(str, "s"))
		if err != nil {
			return 0, err
		}
		return val * 1000, nil // Convert to ms
	}

	// Handle milliseconds (default)
	return parseFloat(strings.TrimSuffix(str, "ms"))
}

// ChoiceParser returns a parser that accepts option names (case-insensitive)
// or a plain option index.
func ChoiceParser(options []string) func(string) (float64, error) {
	return func(str string) (float64, error) {
		str = strings.TrimSpace(str)
		for i, opt := range options {
			if strings.EqualFold(str, opt) {
				return float64(i), nil
			}
		}
		if v, err := strconv.Atoi(str); err == nil && v >= 0 && v < len(options) {
			return float64(v), nil
		}
		return 0, fmt.Errorf("unknown option: %s", str)
	}
}

func parseFloat(s string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}
