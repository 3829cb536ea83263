package uptime

import "time"

// DefaultTimezone is the fallback for stores with no declared timezone.
// Fixed business default carried over from the source data; changing it
// would silently change historical report output.
const DefaultTimezone = "America/Chicago"

// ResolveLocation resolves a declared IANA timezone name, falling back to
// DefaultTimezone when the name is empty or unknown. Resolution never fails:
// if even the default cannot be loaded the store is scored in UTC.
func ResolveLocation(name string) *time.Location {
	if name != "" {
		if loc, err := time.LoadLocation(name); err == nil {
			return loc
		}
	}
	loc, err := time.LoadLocation(DefaultTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
