package model

import (
	"fmt"
	"time"
)

// EmailStatus is the delivery state of a logged send attempt. An entry is
// created pending before the transport attempt and moved to sent or failed
// afterward.
type EmailStatus string

const (
	EmailPending EmailStatus = "pending"
	EmailSent    EmailStatus = "sent"
	EmailFailed  EmailStatus = "failed"
)

func ParseEmailStatus(s string) (EmailStatus, error) {
	st := EmailStatus(s)
	switch st {
	case EmailPending, EmailSent, EmailFailed:
		return st, nil
	}
	return "", fmt.Errorf("unknown email status %q", s)
}

type EmailLog struct {
	ID        int64       `json:"id"`
	Recipient string      `json:"recipient"`
	Template  string      `json:"template"`
	Subject   string      `json:"subject"`
	Payload   string      `json:"payload"`
	Status    EmailStatus `json:"status"`
	Error     string      `json:"error"`
	CreatedAt time.Time   `json:"created_at"`
	SentAt    *time.Time  `json:"sent_at"`
}
