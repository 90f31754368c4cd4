package utils

import "os"

// Env returns the environment variable value for key, or fallback if empty.
func Env(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}
