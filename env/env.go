// Package env reads typed values from environment variables.
// Keys are compared case-insensitive, and blank values are treated as unset.
package env

import (
	"os"
	"strconv"
	"strings"
	"time"
)

var (
	DefaultTrue  = []string{"1", "yes", "true", "on"}  // DefaultTrue are the values considered "true" by [Bool], and can be changed.
	DefaultFalse = []string{"0", "no", "false", "off"} // DefaultFalse are the values considered "false" by [Bool], and can be changed.
)

// Lookup finds the trimmed value of an environment variable, reporting whether it was set to something non-blank.
func Lookup(key string) (string, bool) {
	for _, kv := range os.Environ() {
		k, v, found := strings.Cut(kv, "=")
		if !found || !strings.EqualFold(k, key) {
			continue
		}
		v = strings.TrimSpace(v)
		return v, len(v) > 0
	}
	return "", false
}

// Val returns the value of an environment variable, or defaultVal if it isn't set or is blank.
func Val(key string, defaultVal string) string {
	if val, ok := Lookup(key); ok {
		return val
	}
	return defaultVal
}

func parsed[T any](key string, defaultVal T, parse func(string) (T, error)) T {
	sval, ok := Lookup(key)
	if !ok {
		return defaultVal
	}
	val, err := parse(sval)
	if err != nil {
		return defaultVal
	}
	return val
}

// Bool interprets an environment variable using [DefaultTrue] and [DefaultFalse].
// The defaultVal is returned if the variable isn't set, is blank, or isn't one of those values.
func Bool(key string, defaultVal bool) bool {
	sval, ok := Lookup(key)
	if !ok {
		return defaultVal
	}
	for _, t := range DefaultTrue {
		if strings.EqualFold(sval, t) {
			return true
		}
	}
	for _, f := range DefaultFalse {
		if strings.EqualFold(sval, f) {
			return false
		}
	}
	return defaultVal
}

// Int interprets an environment variable as a base 10 integer, returning defaultVal if it's missing or invalid.
func Int(key string, defaultVal int64) int64 {
	return parsed(key, defaultVal, func(s string) (int64, error) {
		return strconv.ParseInt(s, 10, 64)
	})
}

// Duration interprets an environment variable with [time.ParseDuration], returning defaultVal if it's missing or invalid.
func Duration(key string, defaultVal time.Duration) time.Duration {
	return parsed(key, defaultVal, time.ParseDuration)
}
