package models

import "time"

// DeleteRequest represents a row of delete_requests.
type DeleteRequest struct {
	RequestID   string     `db:"request_id"`
	EntryID     string     `db:"entry_id"`
	CashbookID  string     `db:"cashbook_id"`
	RequesterID string     `db:"requester_id"`
	Reason      string     `db:"reason"`
	Status      string     `db:"status"`
	ReviewerID  *string    `db:"reviewer_id"`
	ReviewNote  *string    `db:"review_note"`
	ReviewedAt  *time.Time `db:"reviewed_at"`
	CreatedAt   time.Time  `db:"created_at"`
}
