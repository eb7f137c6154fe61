package model

import (
	"fmt"
	"time"
)

// RegistrationStatus is the lifecycle of a volunteer's signup for an
// opportunity.
type RegistrationStatus string

const (
	RegistrationPending   RegistrationStatus = "pending"
	RegistrationConfirmed RegistrationStatus = "confirmed"
	RegistrationCancelled RegistrationStatus = "cancelled"
)

func ParseRegistrationStatus(s string) (RegistrationStatus, error) {
	st := RegistrationStatus(s)
	switch st {
	case RegistrationPending, RegistrationConfirmed, RegistrationCancelled:
		return st, nil
	}
	return "", fmt.Errorf("unknown registration status %q", s)
}

type Registration struct {
	ID            int64              `json:"id"`
	UserID        int64              `json:"user_id"`
	OpportunityID int64              `json:"opportunity_id"`
	Status        RegistrationStatus `json:"status"`
	CreatedAt     time.Time          `json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`
}
