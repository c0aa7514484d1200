package featureflags

import (
	"os"
	"strings"
)

const (
	// OptimisticBookings applies confirm/reject locally before the server answers
	OptimisticBookings = "optimistic_bookings"
	// PushJournal records every realtime event in the journal when one is configured
	PushJournal = "push_journal"
)

var defaults = map[string]bool{
	OptimisticBookings: true,
	PushJournal:        true,
}

// Enabled reads FLAG_<NAME>=true/1/yes/on (case-insensitive).
// An unset flag falls back to its registered default, and unknown flags are off.
func Enabled(name string) bool {
	v, ok := os.LookupEnv("FLAG_" + strings.ToUpper(name))
	if !ok || v == "" {
		return defaults[name]
	}
	switch strings.ToLower(v) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}
