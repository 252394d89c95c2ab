package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/0finn0the0human0/springbootTraining/internal/apperr"
	"github.com/0finn0the0human0/springbootTraining/internal/dto"
	"github.com/0finn0the0human0/springbootTraining/internal/mapper"
	"github.com/0finn0the0human0/springbootTraining/internal/model"
	"github.com/0finn0the0human0/springbootTraining/internal/repository"
	"github.com/0finn0the0human0/springbootTraining/pkg/zerror"
)

// StandardMarkup is subtracted from the retail price to derive the vendor price.
var StandardMarkup = decimal.RequireFromString("10.00")

var tracer = otel.Tracer("internal/service")

var (
	readOnly  = repository.TxOptions{ReadOnly: true}
	readWrite = repository.TxOptions{}
)

// ProductService owns the product business rules. Requests are expected to be
// validated by the caller. Absence is reported as a nil view or false, never as an error.
type ProductService interface {
	ListAll(ctx context.Context) ([]dto.ProductView, error)
	GetByID(ctx context.Context, id int64) (*dto.ProductView, error)
	Search(ctx context.Context, term string) ([]dto.ProductView, error)
	Create(ctx context.Context, req dto.ProductCreateRequest) (dto.ProductView, error)
	Update(ctx context.Context, id int64, req dto.ProductCreateRequest) (*dto.ProductView, error)
	Delete(ctx context.Context, id int64) (bool, error)
}

type productService struct {
	logger      *slog.Logger
	productRepo repository.ProductRepository
	metrics     *Metrics
}

func NewProductService(
	log *slog.Logger,
	productRepo repository.ProductRepository,
	metrics *Metrics,
) ProductService {
	return &productService{
		logger:      log.With(slog.String("service", "product")),
		productRepo: productRepo,
		metrics:     metrics,
	}
}

func (s *productService) ListAll(ctx context.Context) (views []dto.ProductView, err error) {
	ctx, span := tracer.Start(ctx, "ProductService.ListAll")
	defer func() { endSpan(span, err) }()

	var products []model.Product
	if err := s.productRepo.WithinTransaction(ctx, readOnly, func(repo repository.ProductRepository) error {
		products, err = repo.FindAll(ctx)
		return err
	}); err != nil {
		return nil, fmt.Errorf("product repository find all: %w", err)
	}

	span.SetAttributes(attribute.Int("product.count", len(products)))
	return mapper.ToViews(products), nil
}

func (s *productService) GetByID(ctx context.Context, id int64) (view *dto.ProductView, err error) {
	ctx, span := tracer.Start(ctx, "ProductService.GetByID", trace.WithAttributes(attribute.Int64("product.id", id)))
	defer func() { endSpan(span, err) }()

	var product *model.Product
	if err := s.productRepo.WithinTransaction(ctx, readOnly, func(repo repository.ProductRepository) error {
		product, err = repo.FindByID(ctx, id)
		return err
	}); err != nil {
		return nil, fmt.Errorf("product repository find by id: %w", err)
	}

	return mapper.ToView(product), nil
}

func (s *productService) Search(ctx context.Context, term string) (views []dto.ProductView, err error) {
	term = strings.TrimSpace(term)

	ctx, span := tracer.Start(ctx, "ProductService.Search", trace.WithAttributes(attribute.String("product.search_term", term)))
	defer func() { endSpan(span, err) }()

	var products []model.Product
	if err := s.productRepo.WithinTransaction(ctx, readOnly, func(repo repository.ProductRepository) error {
		products, err = repo.FindByNameContainingIgnoreCase(ctx, term)
		return err
	}); err != nil {
		return nil, fmt.Errorf("product repository search: %w", err)
	}

	span.SetAttributes(attribute.Int("product.count", len(products)))
	return mapper.ToViews(products), nil
}

func (s *productService) Create(ctx context.Context, req dto.ProductCreateRequest) (view dto.ProductView, err error) {
	ctx, span := tracer.Start(ctx, "ProductService.Create")
	defer func() { endSpan(span, err) }()

	product, err := priceProduct(mapper.FromCreateRequest(req))
	if err != nil {
		return dto.ProductView{}, err
	}

	if err := s.productRepo.WithinTransaction(ctx, readWrite, func(repo repository.ProductRepository) error {
		product, err = repo.Save(ctx, product)
		return err
	}); err != nil {
		return dto.ProductView{}, translateStoreError(err, "product repository save")
	}

	s.metrics.Created.Inc()
	s.logger.InfoContext(ctx, "product created",
		slog.Int64("product_id", product.ID),
		slog.String("name", product.Name))

	return *mapper.ToView(&product), nil
}

func (s *productService) Update(ctx context.Context, id int64, req dto.ProductCreateRequest) (view *dto.ProductView, err error) {
	ctx, span := tracer.Start(ctx, "ProductService.Update", trace.WithAttributes(attribute.Int64("product.id", id)))
	defer func() { endSpan(span, err) }()

	var updated *model.Product
	if err := s.productRepo.WithinTransaction(ctx, readWrite, func(repo repository.ProductRepository) error {
		existing, err := repo.FindByID(ctx, id)
		if err != nil {
			return fmt.Errorf("find by id: %w", err)
		}
		if existing == nil {
			return nil
		}

		product, err := priceProduct(mapper.ApplyUpdateRequest(*existing, req))
		if err != nil {
			return err
		}

		saved, err := repo.Save(ctx, product)
		if err != nil {
			if errors.Is(err, repository.ErrProductNotFound) {
				return nil
			}
			return err
		}

		updated = &saved
		return nil
	}); err != nil {
		return nil, translateStoreError(err, "product repository update")
	}

	if updated == nil {
		return nil, nil
	}

	s.metrics.Updated.Inc()
	s.logger.InfoContext(ctx, "product updated", slog.Int64("product_id", id))

	return mapper.ToView(updated), nil
}

func (s *productService) Delete(ctx context.Context, id int64) (deleted bool, err error) {
	ctx, span := tracer.Start(ctx, "ProductService.Delete", trace.WithAttributes(attribute.Int64("product.id", id)))
	defer func() { endSpan(span, err) }()

	if err := s.productRepo.WithinTransaction(ctx, readWrite, func(repo repository.ProductRepository) error {
		exists, err := repo.ExistsByID(ctx, id)
		if err != nil {
			return err
		}
		if !exists {
			return nil
		}

		if err := repo.DeleteByID(ctx, id); err != nil {
			return err
		}
		deleted = true
		return nil
	}); err != nil {
		return false, fmt.Errorf("product repository delete: %w", err)
	}

	if deleted {
		s.metrics.Deleted.Inc()
		s.logger.InfoContext(ctx, "product deleted", slog.Int64("product_id", id))
	}

	return deleted, nil
}

// priceProduct is the only place a vendor price is assigned.
func priceProduct(p model.Product) (model.Product, error) {
	if p.RetailPrice.LessThan(StandardMarkup) {
		return model.Product{}, apperr.RetailPriceBelowMarkupErr
	}

	p.VendorPrice = decimal.NewNullDecimal(p.RetailPrice.Sub(StandardMarkup))
	return p, nil
}

// translateStoreError maps uniqueness violations to conflict errors and wraps anything else.
func translateStoreError(err error, op string) error {
	if uv, ok := repository.AsUniqueViolation(err); ok {
		if uv.Field == dto.FieldName {
			return apperr.ProductNameConflictErr.WrapParent(err)
		}
		return apperr.ConstraintConflictErr.WrapParent(err)
	}

	var zErr zerror.ZError
	if errors.As(err, &zErr) {
		return err
	}

	return fmt.Errorf("%s: %w", op, err)
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
