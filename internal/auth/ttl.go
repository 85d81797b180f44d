// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Template Stack Contributors

package auth

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/samber/oops"
)

const (
	day  = 24 * time.Hour
	week = 7 * day
	// A year is 365.25 days.
	year = day*365 + day/4
)

var ttlPattern = regexp.MustCompile(
	`(?i)^(\d+)(\s*)(years?|yrs?|y|weeks?|w|days?|d|hours?|hrs?|hr?|h|minutes?|mins?|min?|m|seconds?|secs?|sec?|s|milliseconds?|msecs?|msec?|ms)$`)

// ParseTTL parses a duration string such as "7d", "12h", "30 minutes" or
// "1y". The value must be a positive integer followed by a unit, with no
// surrounding whitespace.
func ParseTTL(s string) (time.Duration, error) {
	m := ttlPattern.FindStringSubmatch(s)
	if m == nil {
		return 0, invalidTTL(s, oops.Code("AUTH_INVALID_TTL").With("ttl", s).Errorf("unrecognised duration format"))
	}

	n, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return 0, invalidTTL(s, oops.Code("AUTH_INVALID_TTL").With("ttl", s).Wrap(err))
	}
	if n == 0 {
		return 0, invalidTTL(s, oops.Code("AUTH_INVALID_TTL").With("ttl", s).Errorf("duration must be positive"))
	}

	unit := ttlUnit(strings.ToLower(m[3]))
	if n > math.MaxInt64/int64(unit) {
		return 0, invalidTTL(s, oops.Code("AUTH_INVALID_TTL").With("ttl", s).Errorf("duration overflows"))
	}
	return time.Duration(n) * unit, nil
}

func invalidTTL(s string, cause error) error {
	return Configuration("invalid token lifetime "+strconv.Quote(s), cause)
}

func ttlUnit(u string) time.Duration {
	switch u {
	case "years", "year", "yrs", "yr", "y":
		return year
	case "weeks", "week", "w":
		return week
	case "days", "day", "d":
		return day
	case "hours", "hour", "hrs", "hr", "h":
		return time.Hour
	case "minutes", "minute", "mins", "min", "mi", "m":
		return time.Minute
	case "seconds", "second", "secs", "sec", "se", "s":
		return time.Second
	default:
		return time.Millisecond
	}
}
