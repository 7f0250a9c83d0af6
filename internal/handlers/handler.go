package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/c0ex38/Backend-DuaMiss/internal/dto"
	"github.com/c0ex38/Backend-DuaMiss/internal/service"
	"github.com/c0ex38/Backend-DuaMiss/internal/validation"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	orders  service.OrderService
	catalog service.CatalogService
	users   service.UserService
	db      Pinger
	log     *zap.Logger
}

func NewHandler(orders service.OrderService, catalog service.CatalogService, users service.UserService, db Pinger, log *zap.Logger) *Handler {
	return &Handler{orders: orders, catalog: catalog, users: users, db: db, log: log}
}

// fail переводит ошибку сервиса в HTTP-ответ.
func (h *Handler) fail(c *gin.Context, err error) {
	if list, ok := validation.As(err); ok {
		c.JSON(http.StatusBadRequest, dto.NewValidationError("validation failed", dto.FieldsFrom(list)))
		return
	}

	var forbidden *service.ForbiddenError
	switch {
	case errors.As(err, &forbidden):
		c.JSON(http.StatusForbidden, dto.NewForbiddenError(forbidden.Message, string(forbidden.Kind)))
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, dto.NewNotFoundError(err.Error()))
	case errors.Is(err, service.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, dto.NewUnauthorizedError("authentication required"))
	default:
		h.log.Error("Внутренняя ошибка обработки запроса", zap.String("path", c.FullPath()), zap.Error(err))
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, dto.NewInternalError(""))
	}
}

func (h *Handler) badBody(c *gin.Context, err error) {
	h.log.Warn("Некорректное тело запроса", zap.String("path", c.FullPath()), zap.Error(err))
	c.JSON(http.StatusBadRequest, dto.NewValidationError("invalid request body", []dto.FieldError{}))
}

func (h *Handler) pathID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, dto.NewNotFoundError("resource not found"))
		return uuid.Nil, false
	}
	return id, true
}

func queryInt(c *gin.Context, key string) int {
	v, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return 0
	}
	return v
}

// Health godoc
// @Summary Проверка состояния сервиса и базы данных
// @Router /health [get]
func (h *Handler) Health(c *gin.Context) {
	if err := h.db.Ping(c.Request.Context()); err != nil {
		h.log.Error("База данных недоступна", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "database": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "database": "ok"})
}

// Register godoc
// @Summary Регистрация пользователя
// @Router /api/v1/auth/register [post]
func (h *Handler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badBody(c, err)
		return
	}

	id, err := h.users.RegisterUser(c.Request.Context(), service.RegisterInput{
		Username:        req.Username,
		Password:        req.Password,
		PasswordConfirm: req.PasswordConfirm,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.RegisterResponse{UserID: id.String()})
}
