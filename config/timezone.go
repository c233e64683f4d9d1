package config

import (
	"log"
	"os"
	"strings"
	"sync"
	"time"
)

// The billing month boundary follows one fixed wall clock, not the clock of
// whichever machine (or container) happens to serve the request.
const defaultReferenceTimezone = "Europe/Paris"

var (
	refLocOnce sync.Once
	refLoc     *time.Location
)

// ReferenceLocation returns the timezone in which month keys are computed.
// Env override: REFERENCE_TIMEZONE (IANA name).
func ReferenceLocation() *time.Location {
	refLocOnce.Do(func() {
		name := strings.TrimSpace(os.Getenv("REFERENCE_TIMEZONE"))
		if name == "" {
			name = defaultReferenceTimezone
		}
		loc, err := time.LoadLocation(name)
		if err != nil {
			log.Printf("invalid REFERENCE_TIMEZONE %q: %v; falling back to UTC", name, err)
			loc = time.UTC
		}
		refLoc = loc
	})
	return refLoc
}
