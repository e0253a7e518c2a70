package engine

import (
	"time"

	"weatherguard/internal/types"
)

// upcomingWindowDays bounds how far ahead a future alert still colors the
// site yellow.
const upcomingWindowDays = 3

// CalculateSiteStatus derives a traffic-light status for a building from its
// most recent batch of observations:
//
//	red    an alert is active today
//	yellow an alert is forecast within the next three days
//	purple an alert triggered yesterday but nothing is active or upcoming
//	green  no alerts in the recent past or near future
//
// Day boundaries follow now's location.
func CalculateSiteStatus(observations []types.Observation, now time.Time) types.SiteStatus {
	today := truncateToDay(now)
	yesterday := today.AddDate(0, 0, -1)
	horizon := today.AddDate(0, 0, upcomingWindowDays+1)

	var alertToday, alertUpcoming, alertYesterday bool
	for _, o := range observations {
		if !o.Triggered() {
			continue
		}
		day := truncateToDay(o.Timestamp.In(now.Location()))
		switch {
		case day.Equal(today):
			alertToday = true
		case day.After(today) && day.Before(horizon):
			alertUpcoming = true
		case day.Equal(yesterday):
			alertYesterday = true
		}
	}

	switch {
	case alertToday:
		return types.SiteStatusRed
	case alertUpcoming:
		return types.SiteStatusYellow
	case alertYesterday:
		return types.SiteStatusPurple
	default:
		return types.SiteStatusGreen
	}
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
