package app

import (
	"fmt"
	"strings"
)

// parseRules splits "a, b, c" entries into casbin rules of exactly n fields.
func parseRules(lines []string, n int) ([][]string, error) {
	rules := make([][]string, 0, len(lines))
	for _, line := range lines {
		fields := strings.Split(line, ",")
		if len(fields) != n {
			return nil, fmt.Errorf("rule %q: want %d fields, got %d", line, n, len(fields))
		}
		for i := range fields {
			fields[i] = strings.TrimSpace(fields[i])
			if fields[i] == "" {
				return nil, fmt.Errorf("rule %q: empty field %d", line, i)
			}
		}
		rules = append(rules, fields)
	}
	return rules, nil
}
