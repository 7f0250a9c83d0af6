package handlers

import (
	"net/http"

	"github.com/c0ex38/Backend-DuaMiss/internal/dto"
	"github.com/c0ex38/Backend-DuaMiss/internal/service"

	"github.com/gin-gonic/gin"
)

func (h *Handler) CreateCompany(c *gin.Context) {
	var req dto.CompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badBody(c, err)
		return
	}
	company, err := h.catalog.CreateCompany(c.Request.Context(), req.Name)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.CompanyFromModel(company))
}

func (h *Handler) UpdateCompany(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var req dto.CompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badBody(c, err)
		return
	}
	company, err := h.catalog.UpdateCompany(c.Request.Context(), id, req.Name)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.CompanyFromModel(company))
}

func (h *Handler) ListCompanies(c *gin.Context) {
	list, err := h.catalog.ListCompanies(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	out := make([]dto.CompanyResponse, 0, len(list))
	for i := range list {
		out = append(out, dto.CompanyFromModel(&list[i]))
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) CreateProduct(c *gin.Context) {
	var req dto.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badBody(c, err)
		return
	}
	p, err := h.catalog.CreateProduct(c.Request.Context(), service.ProductInput{Name: req.Name, Code: req.Code, Price: req.Price})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.ProductFromModel(p))
}

func (h *Handler) UpdateProduct(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var req dto.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badBody(c, err)
		return
	}
	p, err := h.catalog.UpdateProduct(c.Request.Context(), id, service.ProductPatch{Name: req.Name, Code: req.Code, Price: req.Price})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ProductFromModel(p))
}

func (h *Handler) ListProducts(c *gin.Context) {
	list, err := h.catalog.ListProducts(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	out := make([]dto.ProductResponse, 0, len(list))
	for i := range list {
		out = append(out, dto.ProductFromModel(&list[i]))
	}
	c.JSON(http.StatusOK, out)
}
