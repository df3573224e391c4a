package device

import (
	"regexp"
	"strings"
)

var idSeparators = regexp.MustCompile(`[^a-zA-Z0-9]+`)

// DeriveID derives the device identity from a hostname: every run of
// non-alphanumeric characters collapses to a single underscore and the
// result is lower-cased. External callers key entities and pipeline
// configuration off this exact transform, so it must stay stable.
//
//	DeriveID("Living Room!!Pi") == "living_room_pi"
//
// The transform is deterministic and idempotent.
func DeriveID(hostname string) string {
	return strings.ToLower(idSeparators.ReplaceAllString(hostname, "_"))
}
