// Package audit keeps a local journal of account lifecycle events in SQLite.
//
// Only non-secret facts are recorded: the event type, the account address
// when known and a short detail such as an error kind.
package audit

import "time"

// Type names a lifecycle event.
type Type string

const (
	SignupBuilt     Type = "signup_built"
	LoginSucceeded  Type = "login_succeeded"
	LoginFailed     Type = "login_failed"
	LoginCancelled  Type = "login_cancelled"
	Logout          Type = "logout"
	AccountImported Type = "account_imported"
)

// Event is one journal row. IDs are ULIDs, so they sort by time.
type Event struct {
	ID        string    `json:"id"`
	Type      Type      `json:"type"`
	Address   string    `json:"address,omitempty"`
	Detail    string    `json:"detail,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
