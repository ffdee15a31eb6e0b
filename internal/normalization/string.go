package normalization

import (
	"strings"
)

func ParseInputString(input string) string {
	return strings.ToLower(strings.TrimSpace(input))
}

func TrimInputString(input string) string {
	return strings.TrimSpace(input)
}
