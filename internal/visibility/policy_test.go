// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package visibility

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/papers-archive/pkg/types"
)

func utcPolicy(t *testing.T, now string) Policy {
	t.Helper()
	return NewPolicy(types.VisibilityConfig{
		Timezone:      "UTC",
		ReleaseHour:   8,
		ReleaseMinute: 0,
		DelayDays:     1,
		Now:           now,
	}, zerolog.Nop())
}

func TestVisible_Boundary(t *testing.T) {
	assert.False(t, utcPolicy(t, "2024-01-02T07:59:59Z").Visible("2024-01-01"))
	assert.True(t, utcPolicy(t, "2024-01-02T08:00:00Z").Visible("2024-01-01"))
	assert.True(t, utcPolicy(t, "2024-01-03T00:00:00Z").Visible("2024-01-01"))
}

func TestVisible_MalformedDateIsVisible(t *testing.T) {
	p := utcPolicy(t, "2000-01-01T00:00:00Z")
	assert.True(t, p.Visible("not-a-date"))
	assert.True(t, p.Visible(""))
	assert.False(t, p.Visible("2024-01-01"))
}

func TestVisible_ZoneMatters(t *testing.T) {
	cfg := types.VisibilityConfig{
		Timezone:    "Asia/Shanghai",
		ReleaseHour: 8,
		DelayDays:   1,
		// 08:00 in Shanghai is 00:00 UTC.
		Now: "2024-01-02T00:00:00Z",
	}
	p := NewPolicy(cfg, zerolog.Nop())
	assert.True(t, p.Visible("2024-01-01"))

	cfg.Now = "2024-01-01T23:59:59Z"
	assert.False(t, NewPolicy(cfg, zerolog.Nop()).Visible("2024-01-01"))
}

func TestVisible_ZeroDelay(t *testing.T) {
	p := NewPolicy(types.VisibilityConfig{Timezone: "UTC", ReleaseHour: 0, DelayDays: 0, Now: "2024-01-01T00:00:00Z"}, zerolog.Nop())
	assert.True(t, p.Visible("2024-01-01"))
	assert.False(t, p.Visible("2024-01-02"))
}

func TestNewPolicy_Fallbacks(t *testing.T) {
	p := NewPolicy(types.VisibilityConfig{
		Timezone:      "Mars/Olympus",
		ReleaseHour:   30,
		ReleaseMinute: -1,
		DelayDays:     9,
		Now:           "2024-01-01T00:00:00Z",
	}, zerolog.Nop())

	assert.Equal(t, time.UTC, p.Location)
	assert.Equal(t, DefaultHour, p.ReleaseHour)
	assert.Equal(t, DefaultMinute, p.ReleaseMinute)
	assert.Equal(t, DefaultDelayDays, p.DelayDays)
}

func TestResolveNow(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Shanghai")
	require.NoError(t, err)
	clock := func() time.Time { return time.Date(2030, 5, 5, 5, 5, 5, 0, time.UTC) }

	tests := []struct {
		in   string
		want time.Time
	}{
		{"2024-01-02T08:00:00Z", time.Date(2024, 1, 2, 8, 0, 0, 0, time.UTC)},
		{"2024-01-02T08:00:00+08:00", time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)},
		{"2024-01-02T08:00:00", time.Date(2024, 1, 2, 8, 0, 0, 0, loc)},
		{"2024-01-02 08:30", time.Date(2024, 1, 2, 8, 30, 0, 0, loc)},
		{"2024-01-02", time.Date(2024, 1, 2, 0, 0, 0, 0, loc)},
		{"garbage", clock()},
		{"", clock()},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := ResolveNow(tt.in, loc, clock, zerolog.Nop())
			assert.True(t, tt.want.Equal(got), "got %s want %s", got, tt.want)
			assert.Equal(t, loc, got.Location())
		})
	}
}

func TestReleaseAt(t *testing.T) {
	p := utcPolicy(t, "2024-01-01T00:00:00Z")
	at, ok := p.ReleaseAt("2024-01-31")
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 2, 1, 8, 0, 0, 0, time.UTC), at)

	_, ok = p.ReleaseAt("2024-13-01")
	assert.False(t, ok)
}
