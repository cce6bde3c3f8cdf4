package entity

import "time"

// AccessStatus is the outcome of one login attempt.
type AccessStatus string

const (
	AccessSuccess AccessStatus = "success"
	AccessFailed  AccessStatus = "failed"
)

// AccessLog is one immutable audit record of a login attempt.
//
// UserID is set whenever the attempt resolved to a known account. Email is
// only kept for attempts against unknown addresses so failed probes still
// leave a forensic trail.
type AccessLog struct {
	ID        string       `json:"id"`
	Timestamp time.Time    `json:"timestamp"`
	UserID    string       `json:"user_id,omitempty"`
	Email     string       `json:"email,omitempty"`
	IPAddress string       `json:"ip_address"`
	UserAgent string       `json:"user_agent,omitempty"`
	Status    AccessStatus `json:"status"`
	User      *PublicUser  `json:"user,omitempty"`
}

// AccessLogInput carries the fields a caller supplies when recording an attempt.
type AccessLogInput struct {
	UserID    string
	Email     string
	IPAddress string
	UserAgent string
	Status    AccessStatus
}
