package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the calendar-date format bills are submitted and rendered in.
const DateLayout = "2006-01-02"

// Bill is a stored bill record. StorageKey points at exactly one object in
// the object store and never changes after creation.
type Bill struct {
	ID         string          `db:"id"`
	Title      string          `db:"title"`
	Amount     decimal.Decimal `db:"amount"`
	Date       time.Time       `db:"bill_date"`
	StorageKey string          `db:"storage_key"`
	CreatedAt  time.Time       `db:"created_at"`
}
