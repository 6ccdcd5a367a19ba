package dto

import (
	"net/url"
	"strconv"
	"strings"
	"time"
)

// StatsQuery carries the optional range filters of a statistics request.
// TimeFrom/TimeTo are minutes after midnight of the UTC rendering of
// chosen_at and may describe a wrap-around range (e.g. 22:00 to 06:00).
type StatsQuery struct {
	DateFrom *time.Time
	DateTo   *time.Time
	TimeFrom *int
	TimeTo   *int
}

// ParseStatsQuery reads filter parameters from the query string.
// Malformed values drop the corresponding filter instead of failing the
// request.
func ParseStatsQuery(values url.Values) StatsQuery {
	q := StatsQuery{}
	if t := parseDateParam(values.Get("date_from")); t != nil {
		q.DateFrom = t
	}
	if t := parseDateParam(values.Get("date_to")); t != nil {
		q.DateTo = t
	}
	if m := parseClockParam(values.Get("time_from")); m != nil {
		q.TimeFrom = m
	}
	if m := parseClockParam(values.Get("time_to")); m != nil {
		q.TimeTo = m
	}
	return q
}

// CacheKeyPart renders the filters into a stable cache key fragment.
func (q StatsQuery) CacheKeyPart() string {
	parts := make([]string, 0, 4)
	if q.DateFrom != nil {
		parts = append(parts, "df="+q.DateFrom.UTC().Format(time.RFC3339))
	}
	if q.DateTo != nil {
		parts = append(parts, "dt="+q.DateTo.UTC().Format(time.RFC3339))
	}
	if q.TimeFrom != nil {
		parts = append(parts, "tf="+strconv.Itoa(*q.TimeFrom))
	}
	if q.TimeTo != nil {
		parts = append(parts, "tt="+strconv.Itoa(*q.TimeTo))
	}
	return strings.Join(parts, ",")
}

func parseDateParam(raw string) *time.Time {
	if raw == "" {
		return nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return &t
	}
	return nil
}

// parseClockParam turns "HH:MM" into minutes after midnight.
func parseClockParam(raw string) *int {
	if raw == "" {
		return nil
	}
	parts := strings.SplitN(raw, ":", 2)
	if len(parts) != 2 {
		return nil
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return nil
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return nil
	}
	total := hour*60 + minute
	return &total
}
