package model

import (
	"fmt"
	"time"
)

// VolunteerLogStatus tracks admin review of a logged hours entry.
type VolunteerLogStatus string

const (
	VolunteerLogPending  VolunteerLogStatus = "pending"
	VolunteerLogApproved VolunteerLogStatus = "approved"
	VolunteerLogRejected VolunteerLogStatus = "rejected"
)

func ParseVolunteerLogStatus(s string) (VolunteerLogStatus, error) {
	st := VolunteerLogStatus(s)
	switch st {
	case VolunteerLogPending, VolunteerLogApproved, VolunteerLogRejected:
		return st, nil
	}
	return "", fmt.Errorf("unknown volunteer log status %q", s)
}

type VolunteerLog struct {
	ID            int64              `json:"id"`
	UserID        int64              `json:"user_id"`
	OpportunityID *int64             `json:"opportunity_id"`
	Hours         float64            `json:"hours"`
	Date          time.Time          `json:"date"`
	Description   string             `json:"description"`
	Status        VolunteerLogStatus `json:"status"`
	ReviewedBy    *int64             `json:"reviewed_by"`
	ReviewedAt    *time.Time         `json:"reviewed_at"`
	CreatedAt     time.Time          `json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`
}
