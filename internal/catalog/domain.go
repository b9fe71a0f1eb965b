package catalog

import (
	"errors"
	"time"
)

// Channel names a sales segment.
type Channel string

const (
	// ChannelSingle is individual retail (sized 36..50).
	ChannelSingle Channel = "single"
	// ChannelWholesale is bulk (sized S/L).
	ChannelWholesale Channel = "wholesale"
)

// Valid reports whether the channel is a known segment.
func (c Channel) Valid() bool {
	return c == ChannelSingle || c == ChannelWholesale
}

// Product is a catalogue entry owning zero or more variants.
type Product struct {
	ID             int64     `json:"id"`
	Name           string    `json:"name"`
	Reference      string    `json:"reference"`
	Category       string    `json:"category"`
	Price          float64   `json:"price"`
	PriceWholesale *float64  `json:"price_wholesale,omitempty"`
	Status         string    `json:"status,omitempty"`
	Trend          string    `json:"trend,omitempty"`
	Season         string    `json:"season,omitempty"`
	Description    string    `json:"description,omitempty"`
	Image          string    `json:"image,omitempty"`
	CreatedAt      time.Time `json:"created_at"`

	Variants []Variant `json:"variants,omitempty"`
}

// Variant is a (color, size, channel) stock keeping unit under a product.
type Variant struct {
	ID        int64   `json:"id"`
	ProductID int64   `json:"product_id"`
	Color     string  `json:"color"`
	Size      string  `json:"size"`
	Channel   Channel `json:"channel"`
	Stock     int     `json:"stock"`
}

// VariantInput is a variant row supplied by a catalogue edit. Entries
// missing color, size or channel are skipped on replace.
type VariantInput struct {
	Color   string  `json:"color"`
	Size    string  `json:"size"`
	Channel Channel `json:"channel"`
	Stock   int     `json:"stock"`
}

// StockSummary aggregates a product's variant stock, total and per channel.
type StockSummary struct {
	Stock          int `json:"stock"`
	StockSingle    int `json:"stock_single"`
	StockWholesale int `json:"stock_wholesale"`
}

// ProductPatch carries partial field updates; nil fields are untouched.
type ProductPatch struct {
	Name           *string
	Category       *string
	Price          *float64
	PriceWholesale *float64
	Status         *string
	Trend          *string
	Season         *string
	Description    *string
	Image          *string
}

var (
	// ErrNotFound indicates a missing product.
	ErrNotFound = errors.New("catalog: product not found")
	// ErrDuplicateReference indicates a reference code uniqueness conflict.
	ErrDuplicateReference = errors.New("catalog: reference code already in use")
	// ErrInvalidInput indicates a rejected field value.
	ErrInvalidInput = errors.New("catalog: invalid input")
)
