package models

import (
	"strings"
	"time"
)

type IssueSeverity string

const (
	IssueSeverityMinor    IssueSeverity = "minor"
	IssueSeverityModerate IssueSeverity = "moderate"
	IssueSeverityCritical IssueSeverity = "critical"
)

func IsValidIssueSeverity(s IssueSeverity) bool {
	switch s {
	case IssueSeverityMinor, IssueSeverityModerate, IssueSeverityCritical:
		return true
	}
	return false
}

type IssueStatus string

const (
	IssueStatusOpen       IssueStatus = "open"
	IssueStatusInProgress IssueStatus = "in_progress"
	IssueStatusResolved   IssueStatus = "resolved"
)

func IsValidIssueStatus(s IssueStatus) bool {
	switch s {
	case IssueStatusOpen, IssueStatusInProgress, IssueStatusResolved:
		return true
	}
	return false
}

type IssueReport struct {
	ID             string        `json:"id" db:"id"`
	EquipmentID    string        `json:"equipment_id" db:"equipment_id"`
	ReportedBy     string        `json:"reported_by" db:"reported_by"`
	DateTime       time.Time     `json:"date_time" db:"date_time"`
	Description    string        `json:"description" db:"description"`
	Severity       IssueSeverity `json:"severity" db:"severity"`
	Status         IssueStatus   `json:"status" db:"status"`
	AttachmentPath *string       `json:"attachment_path,omitempty" db:"attachment_path"`
}

func NormalizeIssueSeverity(raw string) IssueSeverity {
	return IssueSeverity(strings.ToLower(strings.TrimSpace(raw)))
}
