package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"mapscout/internal/logger"
)

// env is a namespaced view over environment variables
type env struct{ prefix string }

func newEnv(prefix string) env { return env{prefix: prefix} }

// Prefix returns a child view with an additional prefix
func (e env) Prefix(p string) env { return env{prefix: e.prefix + p} }

func (e env) key(k string) string { return e.prefix + k }

func (e env) lookup(k string) string { return strings.TrimSpace(os.Getenv(e.key(k))) }

// MayString returns the value or def if missing/empty
func (e env) MayString(k, def string) string {
	if v := e.lookup(k); v != "" {
		return v
	}
	return def
}

// MayInt returns the value or def if missing/empty; logs and returns def if invalid
func (e env) MayInt(k string, def int) int {
	s := e.lookup(k)
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		logger.Get().Warn().Str("key", e.key(k)).Str("value", s).Int("default", def).Msg("invalid int; using default")
		return def
	}
	return v
}

// MayBool returns the value or def if missing/empty; logs and returns def if invalid
func (e env) MayBool(k string, def bool) bool {
	s := e.lookup(k)
	if s == "" {
		return def
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		logger.Get().Warn().Str("key", e.key(k)).Str("value", s).Bool("default", def).Msg("invalid bool; using default")
		return def
	}
	return v
}

// MayDuration accepts Go durations ("1500ms", "2s") or bare milliseconds
func (e env) MayDuration(k string, def time.Duration) time.Duration {
	s := e.lookup(k)
	if s == "" {
		return def
	}
	if d, err := time.ParseDuration(s); err == nil {
		return d
	}
	if ms, err := strconv.Atoi(s); err == nil && ms >= 0 {
		return time.Duration(ms) * time.Millisecond
	}
	logger.Get().Warn().Str("key", e.key(k)).Str("value", s).Dur("default", def).Msg("invalid duration; using default")
	return def
}
