package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/0finn0the0human0/springbootTraining/internal/model"
)

// GormProductRepository is a gorm implementation of ProductRepository.
// The gorm.DB must be opened with TranslateError so duplicates surface as gorm.ErrDuplicatedKey.
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new instance of GormProductRepository.
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{
		db: db,
	}
}

func (r *GormProductRepository) WithinTransaction(ctx context.Context, opts TxOptions, fn func(ProductRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormProductRepository{db: tx})
	}, &sql.TxOptions{ReadOnly: opts.ReadOnly})
}

func (r *GormProductRepository) FindAll(ctx context.Context) ([]model.Product, error) {
	var products []model.Product
	if err := r.db.WithContext(ctx).Order("id").Find(&products).Error; err != nil {
		return nil, fmt.Errorf("list all products: %w", err)
	}
	return products, nil
}

func (r *GormProductRepository) FindByID(ctx context.Context, id int64) (*model.Product, error) {
	var product model.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product %d: %w", id, err)
	}
	return &product, nil
}

func (r *GormProductRepository) FindByNameContainingIgnoreCase(ctx context.Context, term string) ([]model.Product, error) {
	var products []model.Product
	err := r.db.WithContext(ctx).
		Where(`LOWER(name) LIKE ? ESCAPE '\'`, containsPattern(strings.ToLower(term))).
		Order("id").
		Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("search products: %w", err)
	}
	return products, nil
}

func (r *GormProductRepository) Save(ctx context.Context, product model.Product) (model.Product, error) {
	if product.IsNew() {
		if err := r.db.WithContext(ctx).Create(&product).Error; err != nil {
			return model.Product{}, fmt.Errorf("create product: %w", translateGormError(err))
		}
		return product, nil
	}

	res := r.db.WithContext(ctx).
		Model(&model.Product{}).
		Where("id = ?", product.ID).
		Updates(map[string]any{
			"name":         product.Name,
			"description":  product.Description,
			"retail_price": product.RetailPrice,
			"vendor_price": product.VendorPrice,
		})
	if res.Error != nil {
		return model.Product{}, fmt.Errorf("update product %d: %w", product.ID, translateGormError(res.Error))
	}
	if res.RowsAffected == 0 {
		return model.Product{}, fmt.Errorf("update product %d: %w", product.ID, ErrProductNotFound)
	}
	return product, nil
}

func (r *GormProductRepository) ExistsByID(ctx context.Context, id int64) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.Product{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, fmt.Errorf("check product exists: %w", err)
	}
	return count > 0, nil
}

func (r *GormProductRepository) DeleteByID(ctx context.Context, id int64) error {
	if err := r.db.WithContext(ctx).Delete(&model.Product{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	return nil
}

// translateGormError maps gorm.ErrDuplicatedKey to UniqueViolationError.
// The name index is the only unique constraint besides the generated primary key.
func translateGormError(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return UniqueViolationError{
			Field:      productNameField,
			Constraint: ProductNameConstraint,
			Err:        err,
		}
	}
	return err
}
