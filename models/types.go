// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import "time"

// Option key constants
const (
	OptionA = "A"
	OptionB = "B"
	OptionC = "C"
	OptionD = "D"
)

// Settings keys
const (
	SettingSpreadsheetID = "sheets_spreadsheet_id"
	SettingSheetsEnabled = "sheets_enabled"
)

// Event kinds published on the fanout hub
const (
	EventRawScan        = "raw_scan"
	EventScanRejected   = "scan_rejected"
	EventScanAuthorized = "scan_authorized"
	EventVoteCommitted  = "vote_committed"
)

// Request types

type CreateSessionRequest struct {
	Question  string    `json:"question"`
	OptionA   string    `json:"option_a"`
	OptionB   string    `json:"option_b"`
	OptionC   string    `json:"option_c,omitempty"`
	OptionD   string    `json:"option_d,omitempty"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
}

type UpdateSessionRequest struct {
	CreateSessionRequest
	IsActive bool `json:"is_active"`
}

type EnrollCardRequest struct {
	UID   string `json:"uid"`
	Label string `json:"label,omitempty"`
}

type SubmitVoteRequest struct {
	Token  string `json:"token"`
	Option string `json:"option"`
}

type AdminLoginRequest struct {
	Password string `json:"password"`
}

type UpdateSettingsRequest struct {
	SpreadsheetID string `json:"spreadsheet_id"`
	SheetsEnabled bool   `json:"sheets_enabled"`
}

// Response types

type AdminLoginResponse struct {
	AdminToken string `json:"admin_token"`
}

type SubmitVoteResponse struct {
	SessionID int64  `json:"session_id"`
	Message   string `json:"message"`
}

type BallotResponse struct {
	Session Session        `json:"session"`
	Options []OptionChoice `json:"options"`
	Token   string         `json:"token"`
}

type ResultsResponse struct {
	SessionID int64         `json:"session_id"`
	Counts    []OptionCount `json:"counts"`
	Total     int           `json:"total"`
}

type SyncResponse struct {
	Success bool   `json:"success"`
	Total   int    `json:"total,omitempty"`
	Error   string `json:"error,omitempty"`
}

type SettingsResponse struct {
	SpreadsheetID string `json:"spreadsheet_id"`
	SheetsEnabled bool   `json:"sheets_enabled"`
}

// Domain types

type Session struct {
	ID        int64     `json:"id"`
	Question  string    `json:"question"`
	OptionA   string    `json:"option_a"`
	OptionB   string    `json:"option_b"`
	OptionC   *string   `json:"option_c,omitempty"`
	OptionD   *string   `json:"option_d,omitempty"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// OptionChoice is one selectable (key, label) pair of a session.
type OptionChoice struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

// Options returns the session's choices in display order. C and D are
// included only when the session defines them.
func (s Session) Options() []OptionChoice {
	opts := []OptionChoice{
		{Key: OptionA, Label: s.OptionA},
		{Key: OptionB, Label: s.OptionB},
	}
	if s.OptionC != nil && *s.OptionC != "" {
		opts = append(opts, OptionChoice{Key: OptionC, Label: *s.OptionC})
	}
	if s.OptionD != nil && *s.OptionD != "" {
		opts = append(opts, OptionChoice{Key: OptionD, Label: *s.OptionD})
	}
	return opts
}

// HasOption reports whether key is a valid choice for the session.
func (s Session) HasOption(key string) bool {
	for _, opt := range s.Options() {
		if opt.Key == key {
			return true
		}
	}
	return false
}

type Card struct {
	ID         int64     `json:"id"`
	UID        string    `json:"uid"`
	Label      *string   `json:"label,omitempty"`
	EnrolledAt time.Time `json:"enrolled_at"`
	IsActive   bool      `json:"is_active"`
}

type Vote struct {
	ID        string    `json:"id"`
	SessionID int64     `json:"session_id"`
	Option    string    `json:"option"`
	VotedAt   time.Time `json:"voted_at"`
}

type OptionCount struct {
	Option string `json:"option"`
	Label  string `json:"label"`
	Count  int    `json:"count"`
}

// ExportVote is one detail row of an export. Card UIDs are deliberately
// absent so exports cannot be traced back to a voter.
type ExportVote struct {
	VotedAt time.Time `json:"voted_at"`
	Option  string    `json:"option"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
