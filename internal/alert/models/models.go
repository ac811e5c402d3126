// Package models defines emergency alert records.
package models

import (
	"time"

	id "lifeline/pkg/domain"
)

// Severity grades how urgently an alert needs attention.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// ParseSeverity defaults empty input to info rather than rejecting it;
// alerts raised during an emergency should not bounce on a missing field.
func ParseSeverity(s string) Severity {
	switch Severity(s) {
	case SeverityWarning, SeverityCritical:
		return Severity(s)
	default:
		return SeverityInfo
	}
}

// Alert is a broadcast notice shown to every user, typically a shortage of
// one blood group. Alerts are deactivated, never hard-deleted, so the trail
// of what was announced survives.
type Alert struct {
	ID        id.AlertID
	Title     string
	Message   string
	Severity  Severity
	BloodType id.BloodType
	CreatedBy id.UserID
	Active    bool
	CreatedAt time.Time
}
