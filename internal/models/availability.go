package models

import (
	"time"

	"github.com/bestsecurity/meeting-scheduler/internal/interval"
)

// DayAvailability is the computed availability picture of one resource
// on one calendar date. Free and Busy are disjoint merged span sets;
// Busy carries blocks and bookings, Background adds the non-working
// remainder of the day window so the calendar can paint closed time.
type DayAvailability struct {
	ResourceID      string          `json:"resource_id"`
	Date            string          `json:"date"`
	WholeDayBlocked bool            `json:"whole_day_blocked"`
	Working         []interval.Span `json:"working"`
	Busy            []interval.Span `json:"busy"`
	Free            []interval.Span `json:"free"`
	Background      []interval.Span `json:"background"`
}

// HasFreeMinutes reports whether any bookable time remains.
func (d DayAvailability) HasFreeMinutes() bool {
	return interval.Total(d.Free) > 0
}

// TeamSlot is one bookable candidate window shared by every requested
// resource.
type TeamSlot struct {
	Date       string        `json:"date"`
	Span       interval.Span `json:"span"`
	StartClock string        `json:"start_clock"`
	EndClock   string        `json:"end_clock"`
	Resources  []string      `json:"resources"`
}

// AvailableDate summarises one date of a month query.
type AvailableDate struct {
	Date      string `json:"date"`
	SlotCount int    `json:"slot_count"`
}

// AvailabilityQuery describes a single-resource availability request.
type AvailabilityQuery struct {
	ResourceID string
	Date       string
	Now        time.Time
}

// TeamSlotQuery describes a multi-resource slot request.
type TeamSlotQuery struct {
	ResourceIDs []string
	Date        string
	Duration    time.Duration
	Now         time.Time
}

// MonthQuery describes an available-dates request for one month.
type MonthQuery struct {
	ResourceIDs []string
	Year        int
	Month       time.Month
	Duration    time.Duration
	Now         time.Time
}
