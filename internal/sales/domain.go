package sales

import (
	"errors"
	"time"

	"github.com/atelier-pos/atelier/internal/catalog"
)

// Type enumerates transaction kinds.
type Type string

const (
	// TypeSale is a point-of-sale transaction carrying items.
	TypeSale Type = "sale"
	// TypeIn is a manual cash inflow entry.
	TypeIn Type = "in"
	// TypeOut is a manual cash outflow entry.
	TypeOut Type = "out"
)

// Valid reports whether the type is known.
func (t Type) Valid() bool {
	return t == TypeSale || t == TypeIn || t == TypeOut
}

// Status enumerates sale states. Rows predating the status column carry an
// empty status and count as completed.
type Status string

const (
	// StatusCompleted marks a settled transaction.
	StatusCompleted Status = "completed"
	// StatusReserved marks a sale whose stock is held but whose payment and
	// final item set are not locked in yet.
	StatusReserved Status = "reserved"
)

// Transaction is a ledger entry: a sale or a manual cash movement.
type Transaction struct {
	ID            string    `json:"id"`
	Type          Type      `json:"type"`
	Status        Status    `json:"status,omitempty"`
	Total         float64   `json:"total"`
	PaymentMethod string    `json:"payment_method,omitempty"`
	Description   string    `json:"description,omitempty"`
	CreatedBy     string    `json:"created_by,omitempty"`
	Location      string    `json:"location,omitempty"`
	CreatedAt     time.Time `json:"created_at"`

	Items []Item `json:"items,omitempty"`
}

// Reserved reports whether the transaction still holds an open reservation.
func (t *Transaction) Reserved() bool {
	return t != nil && t.Status == StatusReserved
}

// Item is a transaction line. Color, size and channel are a point-in-time
// snapshot of the variant identity, not a live variant reference; they may
// be empty for items not tied to a specific variant.
type Item struct {
	ID            int64           `json:"id"`
	TransactionID string          `json:"transaction_id"`
	ProductID     int64           `json:"product_id"`
	Color         string          `json:"color,omitempty"`
	Size          string          `json:"size,omitempty"`
	Channel       catalog.Channel `json:"channel,omitempty"`
	Quantity      int             `json:"quantity"`
	UnitPrice     float64         `json:"unit_price"`
}

// HasVariantIdentity reports whether the item can be reconciled against a
// ledger variant.
func (i Item) HasVariantIdentity() bool {
	return i.Color != "" && i.Size != "" && i.Channel != ""
}

// ItemInput describes an item on sale creation.
type ItemInput struct {
	ProductID int64
	Color     string
	Size      string
	Channel   catalog.Channel
	Quantity  int
	UnitPrice float64
}

// CreateInput describes a transaction to record.
type CreateInput struct {
	Type          Type
	Total         float64
	PaymentMethod string
	Description   string
	Items         []ItemInput
	Reserved      bool
	Location      string
	CreatedBy     string
}

// ItemEdit is a replacement row for edit/finalize, keyed by item id.
type ItemEdit struct {
	ItemID    int64
	Quantity  int
	UnitPrice float64
}

// EditInput carries the replacement item set for edit/finalize.
type EditInput struct {
	PaymentMethod *string
	Items         []ItemEdit
}

// HeaderPatch carries mutable header fields; nil fields are untouched.
type HeaderPatch struct {
	Description   *string
	PaymentMethod *string
	Total         *float64
}

var (
	// ErrNotFound indicates an unknown transaction id.
	ErrNotFound = errors.New("sales: transaction not found")
	// ErrInvalidType indicates an unknown transaction type.
	ErrInvalidType = errors.New("sales: type must be sale, in or out")
	// ErrNotSale indicates an item-level operation on a non-sale transaction.
	ErrNotSale = errors.New("sales: operation applies to sale transactions only")
	// ErrReservedSale indicates an edit attempt on an open reservation.
	ErrReservedSale = errors.New("sales: reserved sale must be finalized first")
	// ErrNotReserved indicates finalize on a transaction that is not reserved.
	ErrNotReserved = errors.New("sales: only reserved sales can be finalized")
)
