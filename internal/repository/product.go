package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/0finn0the0human0/springbootTraining/internal/model"
)

const (
	// ProductNameConstraint is the unique constraint on products.name.
	ProductNameConstraint = "products_name_key"

	productNameField = "name"
)

// ErrProductNotFound is returned by Save when updating a row that no longer exists.
var ErrProductNotFound = errors.New("product not found")

// TxOptions configures a unit of work.
type TxOptions struct {
	ReadOnly bool
}

type ProductRepository interface {
	// FindAll returns every product ordered by id.
	FindAll(ctx context.Context) ([]model.Product, error)
	// FindByID returns nil without error when the product does not exist.
	FindByID(ctx context.Context, id int64) (*model.Product, error)
	// FindByNameContainingIgnoreCase matches term as a literal case-insensitive substring of the name.
	FindByNameContainingIgnoreCase(ctx context.Context, term string) ([]model.Product, error)
	// Save inserts the product when its id is zero and updates it otherwise.
	Save(ctx context.Context, product model.Product) (model.Product, error)
	ExistsByID(ctx context.Context, id int64) (bool, error)
	DeleteByID(ctx context.Context, id int64) error

	// WithinTransaction runs fn against a repository bound to a single transaction.
	// The transaction commits when fn returns nil and rolls back otherwise.
	WithinTransaction(ctx context.Context, opts TxOptions, fn func(ProductRepository) error) error
}

// UniqueViolationError reports a uniqueness constraint collision.
// Field is empty when the constraint does not map to a known product field.
type UniqueViolationError struct {
	Field      string
	Constraint string
	Err        error
}

func (e UniqueViolationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("unique violation on %s (%s): %v", e.Field, e.Constraint, e.Err)
	}
	return fmt.Sprintf("unique violation (%s): %v", e.Constraint, e.Err)
}

func (e UniqueViolationError) Unwrap() error {
	return e.Err
}

// AsUniqueViolation extracts a UniqueViolationError from err.
func AsUniqueViolation(err error) (UniqueViolationError, bool) {
	var uv UniqueViolationError
	ok := errors.As(err, &uv)
	return uv, ok
}

func fieldForConstraint(constraint string) string {
	if constraint == ProductNameConstraint {
		return productNameField
	}
	return ""
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds a LIKE pattern matching term literally anywhere, escaped with '\'.
func containsPattern(term string) string {
	return "%" + likeEscaper.Replace(term) + "%"
}
