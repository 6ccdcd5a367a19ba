package dto

import (
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatsQuery(t *testing.T) {
	values := url.Values{
		"date_from": {"2026-01-15"},
		"date_to":   {"2026-02-01T12:00:00Z"},
		"time_from": {"08:30"},
		"time_to":   {"16:00"},
	}
	q := ParseStatsQuery(values)

	require.NotNil(t, q.DateFrom)
	assert.Equal(t, time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC), *q.DateFrom)
	require.NotNil(t, q.DateTo)
	assert.Equal(t, 12, q.DateTo.Hour())
	require.NotNil(t, q.TimeFrom)
	assert.Equal(t, 8*60+30, *q.TimeFrom)
	require.NotNil(t, q.TimeTo)
	assert.Equal(t, 16*60, *q.TimeTo)
}

func TestParseStatsQueryDropsMalformedValues(t *testing.T) {
	values := url.Values{
		"date_from": {"last tuesday"},
		"time_from": {"25:00"},
		"time_to":   {"08:99"},
	}
	q := ParseStatsQuery(values)

	assert.Nil(t, q.DateFrom)
	assert.Nil(t, q.TimeFrom)
	assert.Nil(t, q.TimeTo)
}

func TestCacheKeyPart(t *testing.T) {
	assert.Empty(t, StatsQuery{}.CacheKeyPart())

	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	tf := 480
	q := StatsQuery{DateFrom: &from, TimeFrom: &tf}
	assert.Equal(t, "df=2026-01-01T00:00:00Z,tf=480", q.CacheKeyPart())
}
