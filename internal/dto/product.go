package dto

import (
	"github.com/shopspring/decimal"

	"github.com/0finn0the0human0/springbootTraining/pkg/ptr"
	"github.com/0finn0the0human0/springbootTraining/pkg/validator"
)

const (
	FieldName        = "name"
	FieldDescription = "description"
	FieldRetailPrice = "retailPrice"
)

// ProductCreateRequest is the inbound payload for creating or replacing a product.
// It carries no vendor price.
type ProductCreateRequest struct {
	Name        string           `json:"name"`
	Description *string          `json:"description"`
	RetailPrice *decimal.Decimal `json:"retailPrice"`
}

// Rules returns the field constraints in evaluation order.
func (r ProductCreateRequest) Rules() []validator.Rule {
	description := ptr.Deref(r.Description)

	return []validator.Rule{
		{Field: FieldName, Value: r.Name, Tag: "notblank", Message: "Product Name is required."},
		{Field: FieldName, Value: r.Name, Tag: "min=1,max=100", Message: "Character length 1-100."},
		{Field: FieldName, Value: r.Name, Tag: "productname", Message: "No special characters allowed."},
		{Field: FieldDescription, Value: description, Tag: "max=1000", Message: "Max character length 1000."},
		{Field: FieldRetailPrice, Value: r.RetailPrice, Tag: "required", Message: "Retail Price is required."},
		{Field: FieldRetailPrice, Value: r.RetailPrice, Tag: "decimalmin=0.00", Message: "Retail Price must be >= $0.00"},
		{Field: FieldRetailPrice, Value: r.RetailPrice, Tag: "digits=5.2", Message: "Retail Price max limit is 99999.99."},
	}
}

// ProductSearchRequest is the inbound search form.
type ProductSearchRequest struct {
	Name string `json:"name"`
}

// Rules returns the field constraints in evaluation order.
func (r ProductSearchRequest) Rules() []validator.Rule {
	return []validator.Rule{
		{Field: FieldName, Value: r.Name, Tag: "notblank", Message: "Enter search text."},
		{Field: FieldName, Value: r.Name, Tag: "min=2,max=255", Message: "Invalid character length, Please try again."},
		{Field: FieldName, Value: r.Name, Tag: "productname", Message: "An invalid character was entered, Please try again."},
	}
}

// ProductView is the outbound representation of a product.
type ProductView struct {
	ID          int64
	Name        string
	Description *string
	RetailPrice decimal.Decimal
}
