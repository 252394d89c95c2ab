package http

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"

	"github.com/0finn0the0human0/springbootTraining/internal/apperr"
	"github.com/0finn0the0human0/springbootTraining/internal/dto"
	"github.com/0finn0the0human0/springbootTraining/internal/service"
	"github.com/0finn0the0human0/springbootTraining/pkg/validator"
	"github.com/0finn0the0human0/springbootTraining/pkg/zerror"
)

// ProductResponse is the JSON shape of a product. The vendor price is never exposed.
type ProductResponse struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description"`
	// RetailPrice is a JSON number that keeps two fraction digits.
	RetailPrice json.Number `json:"retailPrice"`
}

func toProductResponse(view dto.ProductView) ProductResponse {
	return ProductResponse{
		ID:          view.ID,
		Name:        view.Name,
		Description: view.Description,
		RetailPrice: json.Number(view.RetailPrice.StringFixed(2)),
	}
}

func toProductResponses(views []dto.ProductView) []ProductResponse {
	items := make([]ProductResponse, 0, len(views))
	for _, view := range views {
		items = append(items, toProductResponse(view))
	}
	return items
}

type productHandler struct {
	validator  validator.Validator
	productSvc service.ProductService
}

func newProductHandler(validator validator.Validator, productSvc service.ProductService) *productHandler {
	return &productHandler{
		validator:  validator,
		productSvc: productSvc,
	}
}

func (h *productHandler) ListProducts(w http.ResponseWriter, r *http.Request) error {
	products, err := h.productSvc.ListAll(r.Context())
	if err != nil {
		return fmt.Errorf("product service list all: %w", err)
	}

	return writeJSON(w, http.StatusOK, toProductResponses(products))
}

func (h *productHandler) SearchProducts(w http.ResponseWriter, r *http.Request) error {
	req := dto.ProductSearchRequest{Name: r.URL.Query().Get("name")}
	if err := h.validate(req); err != nil {
		return err
	}

	products, err := h.productSvc.Search(r.Context(), req.Name)
	if err != nil {
		return fmt.Errorf("product service search: %w", err)
	}

	return writeJSON(w, http.StatusOK, toProductResponses(products))
}

func (h *productHandler) GetProduct(w http.ResponseWriter, r *http.Request) error {
	id, err := productIDParam(r)
	if err != nil {
		return err
	}

	product, err := h.productSvc.GetByID(r.Context(), id)
	if err != nil {
		return fmt.Errorf("product service get by id: %w", err)
	}
	if product == nil {
		return apperr.ProductNotFoundErr
	}

	return writeJSON(w, http.StatusOK, toProductResponse(*product))
}

func (h *productHandler) CreateProduct(w http.ResponseWriter, r *http.Request) error {
	var req dto.ProductCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		return err
	}
	if err := h.validate(req); err != nil {
		return err
	}

	product, err := h.productSvc.Create(r.Context(), req)
	if err != nil {
		return fmt.Errorf("product service create: %w", err)
	}

	w.Header().Set("Location", fmt.Sprintf("/api/products/%d", product.ID))
	return writeJSON(w, http.StatusCreated, toProductResponse(product))
}

func (h *productHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) error {
	id, err := productIDParam(r)
	if err != nil {
		return err
	}

	var req dto.ProductCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		return err
	}
	if err := h.validate(req); err != nil {
		return err
	}

	product, err := h.productSvc.Update(r.Context(), id, req)
	if err != nil {
		return fmt.Errorf("product service update: %w", err)
	}
	if product == nil {
		return apperr.ProductNotFoundErr
	}

	return writeJSON(w, http.StatusOK, toProductResponse(*product))
}

func (h *productHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) error {
	id, err := productIDParam(r)
	if err != nil {
		return err
	}

	deleted, err := h.productSvc.Delete(r.Context(), id)
	if err != nil {
		return fmt.Errorf("product service delete: %w", err)
	}
	if !deleted {
		return apperr.ProductNotFoundErr
	}

	w.WriteHeader(http.StatusNoContent)
	return nil
}

func (h *productHandler) validate(req validator.Validatable) error {
	if err := h.validator.Validate(req); err != nil {
		if validator.IsValidationError(err) {
			return apperr.ValidationErr.WrapParent(err)
		}
		return fmt.Errorf("validate request: %w", err)
	}
	return nil
}

func productIDParam(r *http.Request) (int64, error) {
	var id int64
	err := runtime.BindStyledParameterWithOptions("simple", "id", chi.URLParam(r, "id"), &id,
		runtime.BindStyledParameterOptions{
			ParamLocation: runtime.ParamLocationPath,
			Explode:       false,
			Required:      true,
		})
	if err != nil {
		return 0, zerror.NewBadRequest(apperr.InvalidRequestErrorCode, "Invalid format for parameter id").WrapParent(err)
	}
	return id, nil
}
