package service

import (
	"fmt"

	"github.com/c0ex38/Backend-DuaMiss/internal/models"

	"github.com/google/uuid"
)

func owns(principal uuid.UUID, rec models.Ownable) bool {
	return rec != nil && rec.GetOwnerID() == principal
}

// GuardCompany fails unless the company belongs to the principal. Read-only.
func GuardCompany(principal uuid.UUID, c *models.Company) error {
	if c == nil || !owns(principal, c) {
		return &ForbiddenError{Kind: ForbiddenCompany, Message: "company does not belong to you"}
	}
	return nil
}

// GuardProducts checks products in item order and reports the first foreign one by name.
func GuardProducts(principal uuid.UUID, products []*models.Product) error {
	for _, p := range products {
		if p == nil || owns(principal, p) {
			continue
		}
		return &ForbiddenError{
			Kind:    ForbiddenProduct,
			Message: fmt.Sprintf("product '%s' does not belong to you", p.Name),
		}
	}
	return nil
}
