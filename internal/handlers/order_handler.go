package handlers

import (
	"net/http"

	"github.com/c0ex38/Backend-DuaMiss/internal/dto"
	"github.com/c0ex38/Backend-DuaMiss/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CreateOrder godoc
// @Summary Создание заказа с позициями
// @Router /api/v1/orders [post]
func (h *Handler) CreateOrder(c *gin.Context) {
	var req dto.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badBody(c, err)
		return
	}
	order, err := h.orders.CreateOrder(c.Request.Context(), req.ToInput())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.OrderFromModel(order))
}

// UpdateOrder godoc
// @Summary Частичное обновление заказа; items заменяет все позиции
// @Router /api/v1/orders/{id} [patch]
func (h *Handler) UpdateOrder(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var req dto.UpdateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badBody(c, err)
		return
	}
	order, err := h.orders.UpdateOrder(c.Request.Context(), id, req.ToInput())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.OrderFromModel(order))
}

func (h *Handler) GetOrder(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	order, err := h.orders.GetOrder(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.OrderFromModel(order))
}

// ListOrders godoc
// @Param limit query int false "по умолчанию 20"
// @Param offset query int false "смещение"
// @Param company query string false "фильтр по компании"
// @Router /api/v1/orders [get]
func (h *Handler) ListOrders(c *gin.Context) {
	f := service.ListFilter{Limit: queryInt(c, "limit"), Offset: queryInt(c, "offset")}
	if raw := c.Query("company"); raw != "" {
		companyID, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, dto.NewValidationError("validation failed", []dto.FieldError{
				{Field: "company", Message: "company must be a valid id", Tag: "invalid_format"},
			}))
			return
		}
		f.CompanyID = &companyID
	}

	list, total, err := h.orders.ListOrders(c.Request.Context(), f)
	if err != nil {
		h.fail(c, err)
		return
	}

	if f.Limit <= 0 {
		f.Limit = 20
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	resp := dto.OrderListResponse{Orders: make([]dto.OrderResponse, 0, len(list)), Total: total, Limit: f.Limit, Offset: f.Offset}
	for i := range list {
		resp.Orders = append(resp.Orders, dto.OrderFromModel(&list[i]))
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) DeleteOrder(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	if err := h.orders.DeleteOrder(c.Request.Context(), id); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
