package service

import (
	"errors"
	"strings"
	"testing"

	"github.com/c0ex38/Backend-DuaMiss/internal/models"

	"github.com/google/uuid"
)

func TestGuardCompany(t *testing.T) {
	p := uuid.New()
	if err := GuardCompany(p, &models.Company{OwnerID: p}); err != nil {
		t.Fatalf("own company rejected: %v", err)
	}

	err := GuardCompany(p, &models.Company{OwnerID: uuid.New()})
	var fe *ForbiddenError
	if !errors.As(err, &fe) || fe.Kind != ForbiddenCompany {
		t.Fatalf("expected ForbiddenCompany, got %v", err)
	}
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("must match ErrForbidden")
	}
}

func TestGuardProducts_NamesFirstForeignProduct(t *testing.T) {
	p, q := uuid.New(), uuid.New()
	products := []*models.Product{
		{Name: "Mine", OwnerID: p},
		{Name: "Widget", OwnerID: q},
		{Name: "Gadget", OwnerID: q},
	}

	err := GuardProducts(p, products)
	var fe *ForbiddenError
	if !errors.As(err, &fe) || fe.Kind != ForbiddenProduct {
		t.Fatalf("expected ForbiddenProduct, got %v", err)
	}
	if !strings.Contains(fe.Message, "Widget") {
		t.Fatalf("message must name the product: %q", fe.Message)
	}

	if err := GuardProducts(p, products[:1]); err != nil {
		t.Fatalf("own products rejected: %v", err)
	}
}
