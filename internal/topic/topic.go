// Package topic is the single source of truth for topic-name construction.
// Older client builds still join rooms by these exact strings, so the grammar
// here must not change:
//
//	inbox:driver:<id>
//	inbox:user:<id>
//	pair:user_<uid>_driver_<did>
//	vehicle:<id>
package topic

import (
	"fmt"
	"strconv"
	"strings"
)

const pairPrefix = "pair:"

// DriverInbox is a driver's personal topic.
func DriverInbox(userID int64) string {
	return fmt.Sprintf("inbox:driver:%d", userID)
}

// UserInbox is a passenger's personal topic.
func UserInbox(userID int64) string {
	return fmt.Sprintf("inbox:user:%d", userID)
}

// Vehicle is the per-bus location feed.
func Vehicle(busID int64) string {
	return fmt.Sprintf("vehicle:%d", busID)
}

// Pair is the legacy paired room for a (passenger, driver) conversation.
// The passenger always occupies the user slot.
func Pair(userID, driverID int64) string {
	return pairPrefix + PairToken(userID, driverID)
}

// PairToken builds the bare room token without the topic prefix, as legacy
// clients send it during connect.
func PairToken(userID, driverID int64) string {
	return fmt.Sprintf("user_%d_driver_%d", userID, driverID)
}

// FromPairToken wraps a client-supplied room token into its topic name.
func FromPairToken(token string) string {
	return pairPrefix + token
}

// ParsePairToken splits a legacy room token into its user and driver ids.
// Returns ok=false for anything that does not match user_<uid>_driver_<did>.
func ParsePairToken(token string) (userID, driverID int64, ok bool) {
	rest, found := strings.CutPrefix(token, "user_")
	if !found {
		return 0, 0, false
	}
	uidStr, didStr, found := strings.Cut(rest, "_driver_")
	if !found {
		return 0, 0, false
	}
	uid, err := strconv.ParseInt(uidStr, 10, 64)
	if err != nil {
		return 0, 0, false
	}
	did, err := strconv.ParseInt(didStr, 10, 64)
	if err != nil {
		return 0, 0, false
	}
	return uid, did, true
}
