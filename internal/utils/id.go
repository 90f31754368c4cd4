package utils

import (
	"strings"

	"github.com/google/uuid"
)

// ShortID returns an n-character opaque identifier.
func ShortID(n int) string {
	s := strings.ReplaceAll(uuid.NewString(), "-", "")
	if n > len(s) {
		n = len(s)
	}
	return s[:n]
}
