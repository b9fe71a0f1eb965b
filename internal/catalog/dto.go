package catalog

// ProductForm is the create/update request payload.
type ProductForm struct {
	Name           string         `json:"name" validate:"required"`
	Reference      string         `json:"reference" validate:"required"`
	Category       string         `json:"category"`
	Price          float64        `json:"price" validate:"gte=0"`
	PriceWholesale *float64       `json:"price_wholesale"`
	Status         string         `json:"status"`
	Trend          string         `json:"trend"`
	Season         string         `json:"season"`
	Description    string         `json:"description"`
	Image          string         `json:"image"`
	Variants       []VariantInput `json:"variants"`
}

// ProductPatchForm carries optional fields for PATCH requests.
type ProductPatchForm struct {
	Name           *string  `json:"name"`
	Category       *string  `json:"category"`
	Price          *float64 `json:"price"`
	PriceWholesale *float64 `json:"price_wholesale"`
	Status         *string  `json:"status"`
	Trend          *string  `json:"trend"`
	Season         *string  `json:"season"`
	Description    *string  `json:"description"`
	Image          *string  `json:"image"`
}

// VariantListForm is the replace-variants request payload.
type VariantListForm struct {
	Variants []VariantInput `json:"variants" validate:"required"`
}
