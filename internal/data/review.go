package data

import (
	"database/sql"
	"time"
)

// ReviewEntry is one row of the append-only proof-review audit journal.
type ReviewEntry struct {
	OrderID   int64          `structs:"order_id" db:"order_id"`
	Action    string         `structs:"action" db:"action"` // "accepted" or "rejected"
	Verdict   string         `structs:"verdict" db:"verdict"`
	Reason    sql.NullString `structs:"reason,omitempty,omitnested" db:"reason"`
	TxHash    string         `structs:"tx_hash" db:"tx_hash"`
	CreatedAt time.Time      `structs:"created_at,omitnested" db:"created_at"`
}

type ReviewJournal interface {
	Insert(ReviewEntry) error
}
