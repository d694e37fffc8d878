// Vesseltrack - Vessel Position Ingestion and Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vesseltrack

package models

import (
	"fmt"
	"strings"
)

// NavigationStatus is the AIS navigational status of a vessel.
type NavigationStatus int

// AIS navigational status codes.
const (
	UnderwayUsingEngine           NavigationStatus = 0
	AtAnchor                      NavigationStatus = 1
	NotUnderCommand               NavigationStatus = 2
	RestrictedManeuverability     NavigationStatus = 3
	ConstrainedByHerDraught       NavigationStatus = 4
	Moored                        NavigationStatus = 5
	Aground                       NavigationStatus = 6
	EngagedInFishing              NavigationStatus = 7
	UnderWaySailing               NavigationStatus = 8
	Reserved1                     NavigationStatus = 9
	Reserved2                     NavigationStatus = 10
	PowerDrivenVesselTowingAstern NavigationStatus = 11
	PowerDrivenVesselPushingAhead NavigationStatus = 12
	Reserved3                     NavigationStatus = 13
	AISSART                       NavigationStatus = 14
	Undefined                     NavigationStatus = 15
)

var navigationStatusNames = [...]string{
	"UNDERWAY_USING_ENGINE",
	"AT_ANCHOR",
	"NOT_UNDER_COMMAND",
	"RESTRICTED_MANEUVERABILITY",
	"CONSTRAINED_BY_HER_DRAUGHT",
	"MOORED",
	"AGROUND",
	"ENGAGED_IN_FISHING",
	"UNDER_WAY_SAILING",
	"RESERVED_1",
	"RESERVED_2",
	"POWER_DRIVEN_VESSEL_TOWING_ASTERN",
	"POWER_DRIVEN_VESSEL_PUSHING_AHEAD",
	"RESERVED_3",
	"AIS_SART",
	"UNDEFINED",
}

// NavigationStatusFromCode maps a raw AIS code to a status.
// Codes outside 0..15 map to Undefined.
func NavigationStatusFromCode(code int) NavigationStatus {
	if code < int(UnderwayUsingEngine) || code > int(Undefined) {
		return Undefined
	}
	return NavigationStatus(code)
}

// Valid reports whether s is one of the enumerated statuses.
func (s NavigationStatus) Valid() bool {
	return s >= UnderwayUsingEngine && s <= Undefined
}

// String returns the upper snake case status name.
func (s NavigationStatus) String() string {
	if !s.Valid() {
		return navigationStatusNames[Undefined]
	}
	return navigationStatusNames[s]
}

// MarshalText implements encoding.TextMarshaler.
func (s NavigationStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *NavigationStatus) UnmarshalText(text []byte) error {
	status, err := ParseNavigationStatus(string(text))
	if err != nil {
		return err
	}
	*s = status
	return nil
}

// ParseNavigationStatus parses a status name, case-insensitively.
func ParseNavigationStatus(name string) (NavigationStatus, error) {
	upper := strings.ToUpper(strings.TrimSpace(name))
	for i, n := range navigationStatusNames {
		if n == upper {
			return NavigationStatus(i), nil
		}
	}
	return Undefined, fmt.Errorf("unknown navigation status %q", name)
}
