package apperr

import "github.com/0finn0the0human0/springbootTraining/pkg/zerror"

const (
	ValidationErrorCode         = "VALIDATION_FAILED"
	RetailPriceBelowMarkupCode  = "RETAIL_PRICE_BELOW_MARKUP"
	ProductNameConflictCode     = "PRODUCT_NAME_CONFLICT"
	ConstraintConflictCode      = "CONSTRAINT_VIOLATION"
	ProductNotFoundCode         = "PRODUCT_NOT_FOUND"
	InvalidRequestErrorCode     = "INVALID_REQUEST"
	InternalServerErrorCode     = "INTERNAL_SERVER_ERROR"
	ServiceUnavailableErrorCode = "SERVICE_UNAVAILABLE"
)

var (
	ValidationErr = zerror.NewValidationFailed(ValidationErrorCode, "validation error")

	// RetailPriceBelowMarkupErr is raised when a retail price cannot cover the standard markup.
	RetailPriceBelowMarkupErr = zerror.NewBadRequest(RetailPriceBelowMarkupCode, "Retail Price cannot be less than 10 dollars.")

	ProductNameConflictErr = zerror.NewConflict(ProductNameConflictCode, "A product with this name already exists")
	ConstraintConflictErr  = zerror.NewConflict(ConstraintConflictCode, "Database constraint violation")

	// ProductNotFoundErr is only produced by presentation adapters, the service reports absence with nil.
	ProductNotFoundErr = zerror.NewNotFound(ProductNotFoundCode, "Product not found")

	InvalidRequestErr = zerror.NewBadRequest(InvalidRequestErrorCode, "invalid request")
	UnavailableErr    = zerror.NewZError(nil, zerror.StatusServiceUnavailable, ServiceUnavailableErrorCode, "service unavailable")
)
