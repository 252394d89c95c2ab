package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/0finn0the0human0/springbootTraining/internal/model"
	"github.com/0finn0the0human0/springbootTraining/internal/storage/db"
)

const pgUniqueViolationCode = "23505"

const (
	productColumns = `id, name, description, retail_price, vendor_price`

	productListAllQuery = `SELECT ` + productColumns + ` FROM products ORDER BY id`

	productGetQuery = `SELECT ` + productColumns + ` FROM products WHERE id = @id`

	productSearchQuery = `SELECT ` + productColumns + ` FROM products
WHERE name ILIKE @pattern ESCAPE '\'
ORDER BY id`

	productInsertQuery = `INSERT INTO products (name, description, retail_price, vendor_price)
VALUES (@name, @description, @retail_price, @vendor_price)
RETURNING ` + productColumns

	productUpdateQuery = `UPDATE products
SET name = @name, description = @description, retail_price = @retail_price, vendor_price = @vendor_price
WHERE id = @id
RETURNING ` + productColumns

	productExistsQuery = `SELECT EXISTS (SELECT 1 FROM products WHERE id = @id)`

	productDeleteQuery = `DELETE FROM products WHERE id = @id`
)

type productRow struct {
	ID          int64          `db:"id"`
	Name        string         `db:"name"`
	Description *string        `db:"description"`
	RetailPrice pgtype.Numeric `db:"retail_price"`
	VendorPrice pgtype.Numeric `db:"vendor_price"`
}

type productRepository struct {
	db db.DB
}

// NewProductRepository creates a pgx backed product repository.
func NewProductRepository(db db.DB) ProductRepository {
	return &productRepository{
		db: db,
	}
}

func (r productRepository) WithDB(db db.DB) ProductRepository {
	return &productRepository{
		db: db,
	}
}

func (r productRepository) WithinTransaction(ctx context.Context, opts TxOptions, fn func(ProductRepository) error) error {
	txFunc := func(tx db.DB) error {
		return fn(r.WithDB(tx))
	}

	if opts.ReadOnly {
		return r.db.WithReadOnlyTx(ctx, txFunc)
	}
	return r.db.WithTx(ctx, txFunc)
}

func (r productRepository) FindAll(ctx context.Context) ([]model.Product, error) {
	rows, err := r.db.Query(ctx, productListAllQuery)
	if err != nil {
		return nil, fmt.Errorf("list all products: %w", err)
	}

	return collectProducts(rows)
}

func (r productRepository) FindByID(ctx context.Context, id int64) (*model.Product, error) {
	rows, err := r.db.Query(ctx, productGetQuery, pgx.NamedArgs{"id": id})
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}

	row, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[productRow])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("collect product: %w", err)
	}

	product, err := rowToProduct(row)
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r productRepository) FindByNameContainingIgnoreCase(ctx context.Context, term string) ([]model.Product, error) {
	rows, err := r.db.Query(ctx, productSearchQuery, pgx.NamedArgs{"pattern": containsPattern(term)})
	if err != nil {
		return nil, fmt.Errorf("search products: %w", err)
	}

	return collectProducts(rows)
}

func (r productRepository) Save(ctx context.Context, product model.Product) (model.Product, error) {
	args, err := productArgs(product)
	if err != nil {
		return model.Product{}, err
	}

	query := productInsertQuery
	if !product.IsNew() {
		query = productUpdateQuery
		args["id"] = product.ID
	}

	rows, err := r.db.Query(ctx, query, args)
	if err != nil {
		return model.Product{}, fmt.Errorf("save product: %w", translatePgError(err))
	}

	row, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[productRow])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Product{}, fmt.Errorf("update product %d: %w", product.ID, ErrProductNotFound)
		}
		return model.Product{}, fmt.Errorf("save product: %w", translatePgError(err))
	}

	return rowToProduct(row)
}

func (r productRepository) ExistsByID(ctx context.Context, id int64) (bool, error) {
	var exists bool
	if err := r.db.QueryRow(ctx, productExistsQuery, pgx.NamedArgs{"id": id}).Scan(&exists); err != nil {
		return false, fmt.Errorf("check product exists: %w", err)
	}
	return exists, nil
}

func (r productRepository) DeleteByID(ctx context.Context, id int64) error {
	if _, err := r.db.Exec(ctx, productDeleteQuery, pgx.NamedArgs{"id": id}); err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	return nil
}

func collectProducts(rows pgx.Rows) ([]model.Product, error) {
	productRows, err := pgx.CollectRows(rows, pgx.RowToStructByName[productRow])
	if err != nil {
		return nil, fmt.Errorf("collect products: %w", err)
	}

	products := make([]model.Product, 0, len(productRows))
	for _, row := range productRows {
		product, err := rowToProduct(row)
		if err != nil {
			return nil, err
		}
		products = append(products, product)
	}

	return products, nil
}

func productArgs(product model.Product) (pgx.NamedArgs, error) {
	retailPrice, err := decimalToNumeric(product.RetailPrice)
	if err != nil {
		return nil, fmt.Errorf("convert retail price: %w", err)
	}

	var vendorPrice pgtype.Numeric
	if product.VendorPrice.Valid {
		if vendorPrice, err = decimalToNumeric(product.VendorPrice.Decimal); err != nil {
			return nil, fmt.Errorf("convert vendor price: %w", err)
		}
	}

	return pgx.NamedArgs{
		"name":         product.Name,
		"description":  product.Description,
		"retail_price": retailPrice,
		"vendor_price": vendorPrice,
	}, nil
}

func rowToProduct(row productRow) (model.Product, error) {
	retailPrice, err := numericToDecimal(row.RetailPrice)
	if err != nil {
		return model.Product{}, fmt.Errorf("convert retail price of product %d: %w", row.ID, err)
	}

	var vendorPrice decimal.NullDecimal
	if row.VendorPrice.Valid {
		d, err := numericToDecimal(row.VendorPrice)
		if err != nil {
			return model.Product{}, fmt.Errorf("convert vendor price of product %d: %w", row.ID, err)
		}
		vendorPrice = decimal.NewNullDecimal(d)
	}

	return model.Product{
		ID:          row.ID,
		Name:        row.Name,
		Description: row.Description,
		RetailPrice: retailPrice,
		VendorPrice: vendorPrice,
	}, nil
}

func decimalToNumeric(d decimal.Decimal) (pgtype.Numeric, error) {
	var n pgtype.Numeric
	if err := n.Scan(d.StringFixed(2)); err != nil {
		return pgtype.Numeric{}, err
	}
	return n, nil
}

func numericToDecimal(n pgtype.Numeric) (decimal.Decimal, error) {
	if !n.Valid {
		return decimal.Zero, errors.New("numeric is null")
	}
	if n.NaN || n.InfinityModifier != pgtype.Finite {
		return decimal.Zero, errors.New("numeric is not finite")
	}
	if n.Int == nil {
		return decimal.Zero, nil
	}
	return decimal.NewFromBigInt(n.Int, n.Exp), nil
}

// translatePgError maps a unique violation to UniqueViolationError.
func translatePgError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolationCode {
		return UniqueViolationError{
			Field:      fieldForConstraint(pgErr.ConstraintName),
			Constraint: pgErr.ConstraintName,
			Err:        err,
		}
	}
	return err
}
