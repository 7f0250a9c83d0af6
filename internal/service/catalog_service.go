package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/c0ex38/Backend-DuaMiss/internal/models"
	"github.com/c0ex38/Backend-DuaMiss/internal/repository"
	"github.com/c0ex38/Backend-DuaMiss/internal/validation"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type ProductInput struct {
	Name  string
	Code  string
	Price *decimal.Decimal
}

type ProductPatch struct {
	Name  *string
	Code  *string
	Price *decimal.Decimal
}

type CatalogService interface {
	CreateCompany(ctx context.Context, name string) (*models.Company, error)
	UpdateCompany(ctx context.Context, id uuid.UUID, name string) (*models.Company, error)
	ListCompanies(ctx context.Context) ([]models.Company, error)

	CreateProduct(ctx context.Context, in ProductInput) (*models.Product, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, in ProductPatch) (*models.Product, error)
	ListProducts(ctx context.Context) ([]models.Product, error)
}

type catalogService struct {
	repo *repository.Repository
	log  *zap.Logger
	now  func() time.Time
}

func NewCatalogService(repo *repository.Repository, log *zap.Logger) CatalogService {
	if log == nil {
		log = zap.NewNop()
	}
	return &catalogService{repo: repo, log: log, now: time.Now}
}

// Уникальный индекс ловит дубликат, вставленный параллельно после проверки.
func duplicateCompany() error {
	return validation.Single("name", validation.DuplicateName, "a company with this name already exists")
}

func duplicateCode() error {
	return validation.Single("code", validation.DuplicateCode, "product code is already in use")
}

func (s *catalogService) CreateCompany(ctx context.Context, name string) (*models.Company, error) {
	userID, err := requireAuth(ctx)
	if err != nil {
		return nil, err
	}

	clean, err := validation.CompanyName(ctx, name, validation.Scope{Principal: userID}, s.repo.Companies)
	if err != nil {
		return nil, err
	}

	c := &models.Company{Name: clean, OwnerID: userID, CreatedAt: s.now()}
	if err := s.repo.Companies.Create(ctx, c); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, duplicateCompany()
		}
		return nil, fmt.Errorf("create company: %w", err)
	}
	s.log.Info("Компания создана", zap.String("company_id", c.ID.String()), zap.String("owner_id", userID.String()))
	return c, nil
}

// ownedCompany: чужая компания неотличима от отсутствующей.
func (s *catalogService) ownedCompany(ctx context.Context, userID, id uuid.UUID) (*models.Company, error) {
	c, err := s.repo.Companies.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load company: %w", err)
	}
	if c == nil || c.OwnerID != userID {
		return nil, notFound("company", id)
	}
	return c, nil
}

func (s *catalogService) UpdateCompany(ctx context.Context, id uuid.UUID, name string) (*models.Company, error) {
	userID, err := requireAuth(ctx)
	if err != nil {
		return nil, err
	}
	c, err := s.ownedCompany(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	clean, err := validation.CompanyName(ctx, name, validation.Scope{Principal: userID, Exclude: id}, s.repo.Companies)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Companies.UpdateName(ctx, id, clean); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, duplicateCompany()
		}
		return nil, fmt.Errorf("update company: %w", err)
	}
	c.Name = clean
	return c, nil
}

func (s *catalogService) ListCompanies(ctx context.Context) ([]models.Company, error) {
	userID, err := requireAuth(ctx)
	if err != nil {
		return nil, err
	}
	return s.repo.Companies.ListByOwner(ctx, userID)
}

func (s *catalogService) CreateProduct(ctx context.Context, in ProductInput) (*models.Product, error) {
	userID, err := requireAuth(ctx)
	if err != nil {
		return nil, err
	}

	var errs validation.Errors
	name, err := validation.ProductName(in.Name)
	if err := errs.Collect(err); err != nil {
		return nil, err
	}
	code, err := validation.ProductCode(ctx, in.Code, validation.Scope{Principal: userID}, s.repo.Products)
	if err := errs.Collect(err); err != nil {
		return nil, err
	}
	price, err := validation.ProductPrice(in.Price)
	if err := errs.Collect(err); err != nil {
		return nil, err
	}
	if err := errs.Err(); err != nil {
		return nil, err
	}

	p := &models.Product{Name: name, Code: code, Price: price, OwnerID: userID, CreatedAt: s.now()}
	if err := s.repo.Products.Create(ctx, p); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, duplicateCode()
		}
		return nil, fmt.Errorf("create product: %w", err)
	}
	s.log.Info("Товар создан", zap.String("product_id", p.ID.String()), zap.String("code", p.Code))
	return p, nil
}

func (s *catalogService) UpdateProduct(ctx context.Context, id uuid.UUID, in ProductPatch) (*models.Product, error) {
	userID, err := requireAuth(ctx)
	if err != nil {
		return nil, err
	}

	p, err := s.repo.Products.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load product: %w", err)
	}
	if p == nil || p.OwnerID != userID {
		return nil, notFound("product", id)
	}

	var errs validation.Errors
	fields := map[string]any{}
	if in.Name != nil {
		name, err := validation.ProductName(*in.Name)
		if err := errs.Collect(err); err != nil {
			return nil, err
		}
		fields["name"], p.Name = name, name
	}
	if in.Code != nil {
		code, err := validation.ProductCode(ctx, *in.Code, validation.Scope{Principal: userID, Exclude: id}, s.repo.Products)
		if err := errs.Collect(err); err != nil {
			return nil, err
		}
		fields["code"], p.Code = code, code
	}
	if in.Price != nil {
		price, err := validation.ProductPrice(in.Price)
		if err := errs.Collect(err); err != nil {
			return nil, err
		}
		fields["price"], p.Price = price, price
	}
	if err := errs.Err(); err != nil {
		return nil, err
	}

	if len(fields) == 0 {
		return p, nil
	}
	if err := s.repo.Products.UpdateFields(ctx, id, fields); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, duplicateCode()
		}
		return nil, fmt.Errorf("update product: %w", err)
	}
	return p, nil
}

func (s *catalogService) ListProducts(ctx context.Context) ([]models.Product, error) {
	userID, err := requireAuth(ctx)
	if err != nil {
		return nil, err
	}
	return s.repo.Products.ListByOwner(ctx, userID)
}
