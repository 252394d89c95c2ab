// Package mapper translates between persisted products and their wire shapes.
package mapper

import (
	"github.com/shopspring/decimal"

	"github.com/0finn0the0human0/springbootTraining/internal/dto"
	"github.com/0finn0the0human0/springbootTraining/internal/model"
)

// ToView maps a product to its outbound view. A nil product maps to a nil view.
func ToView(p *model.Product) *dto.ProductView {
	if p == nil {
		return nil
	}

	return &dto.ProductView{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		RetailPrice: p.RetailPrice,
	}
}

// ToViews maps products in order.
func ToViews(products []model.Product) []dto.ProductView {
	views := make([]dto.ProductView, 0, len(products))
	for i := range products {
		views = append(views, *ToView(&products[i]))
	}
	return views
}

// FromCreateRequest builds an unpriced product from a validated request.
func FromCreateRequest(req dto.ProductCreateRequest) model.Product {
	return model.Product{
		Name:        req.Name,
		Description: req.Description,
		RetailPrice: retailPrice(req),
	}
}

// ApplyUpdateRequest replaces the client-owned fields of p and clears its
// vendor price so it has to be derived again.
func ApplyUpdateRequest(p model.Product, req dto.ProductCreateRequest) model.Product {
	p.Name = req.Name
	p.Description = req.Description
	p.RetailPrice = retailPrice(req)
	p.VendorPrice = decimal.NullDecimal{}
	return p
}

func retailPrice(req dto.ProductCreateRequest) decimal.Decimal {
	if req.RetailPrice == nil {
		return decimal.Zero
	}
	return *req.RetailPrice
}
