package repository_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"

	"github.com/0finn0the0human0/springbootTraining/internal/model"
	"github.com/0finn0the0human0/springbootTraining/internal/repository"
	"github.com/0finn0the0human0/springbootTraining/internal/storage/db"
)

func newGormRepository(t *testing.T) repository.ProductRepository {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	gormDB, err := db.OpenGorm(sqlite.Open(":memory:"), logger)
	require.NoError(t, err)

	t.Cleanup(func() {
		sqlDB, err := gormDB.DB()
		if err == nil {
			_ = sqlDB.Close()
		}
	})

	return repository.NewGormProductRepository(gormDB)
}

func pricedProduct(name, retail string) model.Product {
	price := decimal.RequireFromString(retail)
	return model.Product{
		Name:        name,
		RetailPrice: price,
		VendorPrice: decimal.NewNullDecimal(price.Sub(decimal.NewFromInt(10))),
	}
}

func TestGormProductRepository_SaveAndFind(t *testing.T) {
	ctx := context.Background()
	repo := newGormRepository(t)

	description := "A widget"
	p := pricedProduct("Widget", "19.99")
	p.Description = &description

	saved, err := repo.Save(ctx, p)
	require.NoError(t, err)
	assert.NotZero(t, saved.ID)

	found, err := repo.FindByID(ctx, saved.ID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "Widget", found.Name)
	assert.Equal(t, "A widget", *found.Description)
	assert.True(t, decimal.RequireFromString("19.99").Equal(found.RetailPrice))
	assert.True(t, found.VendorPrice.Valid)
	assert.True(t, decimal.RequireFromString("9.99").Equal(found.VendorPrice.Decimal))

	t.Run("Should return nil for a missing id", func(t *testing.T) {
		missing, err := repo.FindByID(ctx, saved.ID+100)
		require.NoError(t, err)
		assert.Nil(t, missing)
	})

	t.Run("Should update an existing product", func(t *testing.T) {
		update := pricedProduct("Widget Pro", "25.00")
		update.ID = saved.ID

		updated, err := repo.Save(ctx, update)
		require.NoError(t, err)
		assert.Equal(t, saved.ID, updated.ID)

		found, err := repo.FindByID(ctx, saved.ID)
		require.NoError(t, err)
		assert.Equal(t, "Widget Pro", found.Name)
		assert.Nil(t, found.Description)
		assert.True(t, decimal.RequireFromString("15").Equal(found.VendorPrice.Decimal))
	})

	t.Run("Should fail to update a missing product", func(t *testing.T) {
		update := pricedProduct("Ghost", "25.00")
		update.ID = saved.ID + 100

		_, err := repo.Save(ctx, update)
		assert.ErrorIs(t, err, repository.ErrProductNotFound)
	})
}

func TestGormProductRepository_UniqueName(t *testing.T) {
	ctx := context.Background()
	repo := newGormRepository(t)

	_, err := repo.Save(ctx, pricedProduct("Widget", "19.99"))
	require.NoError(t, err)

	_, err = repo.Save(ctx, pricedProduct("Widget", "29.99"))
	require.Error(t, err)

	uv, ok := repository.AsUniqueViolation(err)
	require.True(t, ok)
	assert.Equal(t, "name", uv.Field)
	assert.Equal(t, repository.ProductNameConstraint, uv.Constraint)

	all, err := repo.FindAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestGormProductRepository_Search(t *testing.T) {
	ctx := context.Background()
	repo := newGormRepository(t)

	for _, name := range []string{"Blue Widget", "red widget", "Gadget", "Widget_2"} {
		_, err := repo.Save(ctx, pricedProduct(name, "19.99"))
		require.NoError(t, err)
	}

	names := func(products []model.Product) []string {
		out := make([]string, 0, len(products))
		for _, p := range products {
			out = append(out, p.Name)
		}
		return out
	}

	tests := []struct {
		name string
		term string
		want []string
	}{
		{"case insensitive substring", "WIDGET", []string{"Blue Widget", "red widget", "Widget_2"}},
		{"underscore is literal", "t_", []string{"Widget_2"}},
		{"percent is literal", "%", []string{}},
		{"no match", "doohickey", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			products, err := repo.FindByNameContainingIgnoreCase(ctx, tt.term)
			require.NoError(t, err)
			assert.Equal(t, tt.want, names(products))
		})
	}
}

func TestGormProductRepository_ExistsAndDelete(t *testing.T) {
	ctx := context.Background()
	repo := newGormRepository(t)

	saved, err := repo.Save(ctx, pricedProduct("Widget", "19.99"))
	require.NoError(t, err)

	exists, err := repo.ExistsByID(ctx, saved.ID)
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, repo.DeleteByID(ctx, saved.ID))

	exists, err = repo.ExistsByID(ctx, saved.ID)
	require.NoError(t, err)
	assert.False(t, exists)

	next, err := repo.Save(ctx, pricedProduct("Gadget", "19.99"))
	require.NoError(t, err)
	assert.Greater(t, next.ID, saved.ID)
}

func TestGormProductRepository_WithinTransaction(t *testing.T) {
	ctx := context.Background()
	repo := newGormRepository(t)

	errAbort := errors.New("abort")
	err := repo.WithinTransaction(ctx, repository.TxOptions{}, func(tx repository.ProductRepository) error {
		if _, err := tx.Save(ctx, pricedProduct("Widget", "19.99")); err != nil {
			return err
		}
		return errAbort
	})
	assert.ErrorIs(t, err, errAbort)

	all, err := repo.FindAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)

	err = repo.WithinTransaction(ctx, repository.TxOptions{}, func(tx repository.ProductRepository) error {
		_, err := tx.Save(ctx, pricedProduct("Widget", "19.99"))
		return err
	})
	require.NoError(t, err)

	err = repo.WithinTransaction(ctx, repository.TxOptions{ReadOnly: true}, func(tx repository.ProductRepository) error {
		all, err = tx.FindAll(ctx)
		return err
	})
	require.NoError(t, err)
	assert.Len(t, all, 1)
}
