package strategy

import (
	"fmt"
	"strings"
)

// positionLabel names a 0-indexed board position the way players count it.
func positionLabel(index int) string {
	return fmt.Sprintf("Position %d", index+1)
}

// formatValues renders the remaining numbers, or "nothing" once none remain.
func formatValues(values []int) string {
	if len(values) == 0 {
		return "nothing"
	}
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = fmt.Sprintf("%d", v)
	}
	return "[" + strings.Join(parts, " ") + "]"
}

func signed(v int) string {
	if v > 0 {
		return fmt.Sprintf("+%d", v)
	}
	return fmt.Sprintf("%d", v)
}
