package dto

import (
	"time"

	"github.com/c0ex38/Backend-DuaMiss/internal/models"

	"github.com/shopspring/decimal"
)

type CompanyRequest struct {
	Name string `json:"name"`
}

type CompanyResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Owner     string    `json:"owner"`
	CreatedAt time.Time `json:"created_at"`
}

func CompanyFromModel(c *models.Company) CompanyResponse {
	return CompanyResponse{ID: c.ID.String(), Name: c.Name, Owner: c.OwnerID.String(), CreatedAt: c.CreatedAt}
}

type CreateProductRequest struct {
	Name  string           `json:"name"`
	Code  string           `json:"code"`
	Price *decimal.Decimal `json:"price"`
}

type UpdateProductRequest struct {
	Name  *string          `json:"name"`
	Code  *string          `json:"code"`
	Price *decimal.Decimal `json:"price"`
}

type ProductResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Code      string    `json:"code"`
	Price     string    `json:"price"`
	Owner     string    `json:"owner"`
	CreatedAt time.Time `json:"created_at"`
}

func ProductFromModel(p *models.Product) ProductResponse {
	return ProductResponse{
		ID:        p.ID.String(),
		Name:      p.Name,
		Code:      p.Code,
		Price:     p.Price.StringFixed(2),
		Owner:     p.OwnerID.String(),
		CreatedAt: p.CreatedAt,
	}
}
