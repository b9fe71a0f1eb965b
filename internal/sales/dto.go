package sales

import "github.com/atelier-pos/atelier/internal/catalog"

// CreateForm is the POST /transactions payload.
type CreateForm struct {
	Type          string     `json:"type" validate:"required,oneof=sale in out"`
	Total         *float64   `json:"total" validate:"required"`
	PaymentMethod string     `json:"payment_method"`
	Description   string     `json:"description"`
	Items         []ItemForm `json:"items" validate:"dive"`
	Status        string     `json:"status" validate:"omitempty,oneof=completed reserved"`
	Location      string     `json:"location"`
}

// ItemForm is one item row on creation.
type ItemForm struct {
	ProductID int64   `json:"product_id" validate:"required"`
	Color     string  `json:"color"`
	Size      string  `json:"size"`
	Channel   string  `json:"channel" validate:"omitempty,oneof=single wholesale"`
	Quantity  int     `json:"quantity" validate:"required,gt=0"`
	UnitPrice float64 `json:"unit_price" validate:"gte=0"`
}

// EditForm is the PUT /transactions/{id} and finalize payload.
type EditForm struct {
	PaymentMethod *string        `json:"payment_method"`
	Items         []ItemEditForm `json:"items" validate:"dive"`
}

// ItemEditForm is a replacement row keyed by existing item id.
type ItemEditForm struct {
	ItemID    int64   `json:"item_id" validate:"required"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
}

// HeaderForm is the PATCH /transactions/{id} payload.
type HeaderForm struct {
	Description   *string  `json:"description"`
	PaymentMethod *string  `json:"payment_method"`
	Total         *float64 `json:"total"`
}

func (f CreateForm) toInput(createdBy string) CreateInput {
	input := CreateInput{
		Type:          Type(f.Type),
		Total:         *f.Total,
		PaymentMethod: f.PaymentMethod,
		Description:   f.Description,
		Reserved:      f.Status == string(StatusReserved),
		Location:      f.Location,
		CreatedBy:     createdBy,
	}
	for _, item := range f.Items {
		input.Items = append(input.Items, ItemInput{
			ProductID: item.ProductID,
			Color:     item.Color,
			Size:      item.Size,
			Channel:   catalog.Channel(item.Channel),
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		})
	}
	return input
}

func (f EditForm) toInput() EditInput {
	input := EditInput{PaymentMethod: f.PaymentMethod}
	for _, item := range f.Items {
		input.Items = append(input.Items, ItemEdit{
			ItemID:    item.ItemID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		})
	}
	return input
}
