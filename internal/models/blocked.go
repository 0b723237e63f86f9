package models

import "time"

// BlockedInterval marks part of a resource's day as unbookable. Blocks
// take priority over working hours and overrides, always carry a
// reason, and never overlap another block of the same resource.
type BlockedInterval struct {
	ID         string    `db:"id" json:"id"`
	ResourceID string    `db:"resource_id" json:"resource_id"`
	Date       string    `db:"date" json:"date"`
	StartClock string    `db:"start_clock" json:"start_clock"`
	EndClock   string    `db:"end_clock" json:"end_clock"`
	Reason     string    `db:"reason" json:"reason"`
	CreatedBy  string    `db:"created_by" json:"created_by"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// CreateBlockedIntervalRequest payload for adding a block.
type CreateBlockedIntervalRequest struct {
	ResourceID string `json:"resource_id" validate:"required"`
	Date       string `json:"date" validate:"required,datetime=2006-01-02"`
	StartClock string `json:"start_clock" validate:"required"`
	EndClock   string `json:"end_clock" validate:"required"`
	Reason     string `json:"reason" validate:"required,min=3"`
}

// UpdateBlockedIntervalRequest payload for editing a block in place.
type UpdateBlockedIntervalRequest struct {
	Date       *string `json:"date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	StartClock *string `json:"start_clock,omitempty"`
	EndClock   *string `json:"end_clock,omitempty"`
	Reason     *string `json:"reason,omitempty" validate:"omitempty,min=3"`
}

// BlockedIntervalFilter constrains block listing queries.
type BlockedIntervalFilter struct {
	ResourceID string
	DateFrom   string
	DateTo     string
	Page       int
	PageSize   int
}
