package domain

import "github.com/shopspring/decimal"

// Item is a user-owned record.
type Item struct {
	ID          int64           `json:"id"`
	Title       string          `json:"title"`
	Description *string         `json:"description"`
	Price       decimal.Decimal `json:"price"`
	OwnerID     int64           `json:"owner_id"`
}

// ItemCreate holds the fields of a new item. The owner is supplied by the
// caller's identity, not by the payload.
type ItemCreate struct {
	Title       string           `json:"title"       validate:"required,max=255"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"       validate:"omitempty,gte=0"`
}

// Validate checks the struct tags.
func (i ItemCreate) Validate() error {
	return validateStruct(i)
}

// Fields returns the storable fields; an unset price takes the storage default.
func (i ItemCreate) Fields() Fields {
	f := Fields{
		"title":       i.Title,
		"description": i.Description,
	}
	if i.Price != nil {
		f["price"] = *i.Price
	}
	return f
}

// ItemUpdate is a sparse item update.
type ItemUpdate struct {
	Title       Field[string]          `json:"title"`
	Description Field[*string]         `json:"description"`
	Price       Field[decimal.Decimal] `json:"price"`
}

// Validate checks the present fields only.
func (i ItemUpdate) Validate() error {
	if i.Title.Set {
		if err := validate.Var(i.Title.Value, "required,max=255"); err != nil {
			return NewValidationError("Title", "must be between 1 and 255 characters", nil)
		}
	}
	if i.Price.Set && i.Price.Value.IsNegative() {
		return NewValidationError("Price", "must be greater than or equal to 0", nil)
	}
	return nil
}

// Fields returns the present fields, including those explicitly set to null.
func (i ItemUpdate) Fields() Fields {
	f := Fields{}
	if i.Title.Set {
		f["title"] = i.Title.Value
	}
	if i.Description.Set {
		f["description"] = i.Description.Value
	}
	if i.Price.Set {
		f["price"] = i.Price.Value
	}
	return f
}
