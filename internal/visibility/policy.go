// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package visibility decides when a listing date may be published. A date D
// becomes visible at D + DelayDays, ReleaseHour:ReleaseMinute in Location.
package visibility

import (
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/rs/zerolog"

	"github.com/pdiddy/papers-archive/pkg/types"
)

// Defaults and bounds for the release schedule.
const (
	DefaultTimezone  = "Asia/Shanghai"
	DefaultHour      = 8
	DefaultMinute    = 0
	DefaultDelayDays = 1
	MaxDelayDays     = 7
)

// naiveLayouts are accepted for a "now" override without a UTC offset; the
// value is read in the policy's zone.
var naiveLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04",
	"2006-01-02",
}

// Policy is a resolved release schedule with a fixed "now".
type Policy struct {
	Location      *time.Location
	ReleaseHour   int
	ReleaseMinute int
	DelayDays     int
	Now           time.Time
}

// NewPolicy resolves cfg. An unknown zone falls back to UTC, out-of-range
// schedule values fall back to their defaults, and a malformed Now
// override falls back to the clock; each fallback is logged.
func NewPolicy(cfg types.VisibilityConfig, log zerolog.Logger) Policy {
	name := strings.TrimSpace(cfg.Timezone)
	if name == "" {
		name = DefaultTimezone
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		log.Warn().Str("timezone", name).Msg("unknown timezone, using UTC")
		loc = time.UTC
	}

	p := Policy{
		Location:      loc,
		ReleaseHour:   bounded(cfg.ReleaseHour, 0, 23, DefaultHour, "release_hour", log),
		ReleaseMinute: bounded(cfg.ReleaseMinute, 0, 59, DefaultMinute, "release_minute", log),
		DelayDays:     bounded(cfg.DelayDays, 0, MaxDelayDays, DefaultDelayDays, "delay_days", log),
	}
	p.Now = ResolveNow(cfg.Now, loc, time.Now, log)

	log.Info().
		Str("timezone", loc.String()).
		Int("release_hour", p.ReleaseHour).
		Int("release_minute", p.ReleaseMinute).
		Int("delay_days", p.DelayDays).
		Time("now", p.Now).
		Msg("visibility policy")
	return p
}

func bounded(v, lo, hi, def int, name string, log zerolog.Logger) int {
	if v < lo || v > hi {
		log.Warn().Str("setting", name).Int("value", v).Int("min", lo).Int("max", hi).Int("default", def).
			Msg("out-of-range setting, using default")
		return def
	}
	return v
}

// ResolveNow parses an ISO 8601 override in loc. A trailing "Z" or an
// explicit offset is honoured; naive values are read in loc. An empty or
// malformed override returns clock() in loc.
func ResolveNow(override string, loc *time.Location, clock func() time.Time, log zerolog.Logger) time.Time {
	raw := strings.TrimSpace(override)
	if raw == "" {
		return clock().In(loc)
	}
	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return t.In(loc)
	}
	for _, layout := range naiveLayouts {
		if t, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return t
		}
	}
	log.Warn().Str("now", raw).Msg("invalid now override, using current time")
	return clock().In(loc)
}

// ReleaseAt returns the instant date becomes visible. ok is false when
// date is not a YYYY-MM-DD date.
func (p Policy) ReleaseAt(date string) (t time.Time, ok bool) {
	day, err := time.Parse("2006-01-02", strings.TrimSpace(date))
	if err != nil {
		return time.Time{}, false
	}
	return time.Date(day.Year(), day.Month(), day.Day()+p.DelayDays, p.ReleaseHour, p.ReleaseMinute, 0, 0, p.Location), true
}

// Visible reports whether date is published at p.Now. The release instant
// itself is visible. Malformed dates are always visible.
func (p Policy) Visible(date string) bool {
	release, ok := p.ReleaseAt(date)
	if !ok {
		return true
	}
	return !p.Now.Before(release)
}
