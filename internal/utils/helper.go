package utils

import (
	"strconv"

	"github.com/google/uuid"
)

func ParseUUID(s string) (uuid.UUID, error) {
	return uuid.Parse(s)
}

func Contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}

// ParseLimit reads a positive page size, falling back to def when s is
// empty and capping the result at ceiling.
func ParseLimit(s string, def, ceiling int) (int, error) {
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, strconv.ErrSyntax
	}
	if n > ceiling {
		n = ceiling
	}
	return n, nil
}
