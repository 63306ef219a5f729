// File: internal/order/handler.go
package order

import (
	"errors"
	"mime/multipart"

	"woodcraft_backend/internal/common"
	"woodcraft_backend/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// articlesField is the multipart field carrying uploaded media.
const articlesField = "articles"

// Handler holds dependencies for order endpoints.
type Handler struct {
	service *Service
	logger  *zap.Logger
}

// NewHandler creates a new order handler.
func NewHandler(service *Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterRoutes sets up the order routes. Every route requires
// authentication; the list endpoint additionally requires the admin role.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup, authMW, adminMW gin.HandlerFunc) {
	orders := router.Group("/orders", authMW)
	{
		orders.POST("", h.createOrder)
		orders.PATCH("/:orderId", h.updateOrder)
		orders.GET("/:id", h.getOrder)
		orders.DELETE("/:id", h.deleteOrder)
		orders.GET("", adminMW, h.listOrders)
	}
}

func (h *Handler) createOrder(c *gin.Context) {
	var req CreateOrderRequest
	if err := c.ShouldBindWith(&req, binding.FormMultipart); err != nil {
		h.respondBindingError(c, err)
		return
	}

	files, err := formFiles(c, articlesField)
	if err != nil {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Could not parse multipart form."))
		return
	}

	userID := middleware.GetUserIDFromContext(c)
	order, err := h.service.CreateOrder(c.Request.Context(), userID, req, files)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondCreated(c, "Order created successfully.", order)
}

func (h *Handler) updateOrder(c *gin.Context) {
	id, ok := h.pathID(c, "orderId")
	if !ok {
		return
	}

	var req UpdateOrderRequest
	if err := c.ShouldBindWith(&req, binding.FormMultipart); err != nil {
		h.respondBindingError(c, err)
		return
	}

	files, err := formFiles(c, articlesField)
	if err != nil {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Could not parse multipart form."))
		return
	}

	order, err := h.service.UpdateOrder(
		c.Request.Context(), id,
		middleware.GetUserIDFromContext(c), middleware.GetUserRoleFromContext(c),
		req, files,
	)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Order updated successfully.", order)
}

func (h *Handler) getOrder(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	order, err := h.service.GetOrder(
		c.Request.Context(), id,
		middleware.GetUserIDFromContext(c), middleware.GetUserRoleFromContext(c),
	)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Order retrieved successfully.", order)
}

func (h *Handler) deleteOrder(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	err := h.service.DeleteOrder(
		c.Request.Context(), id,
		middleware.GetUserIDFromContext(c), middleware.GetUserRoleFromContext(c),
	)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Order deleted successfully.", nil)
}

func (h *Handler) listOrders(c *gin.Context) {
	var query ListOrdersQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.respondBindingError(c, err)
		return
	}

	orders, pagination, err := h.service.ListOrders(c.Request.Context(), query)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondPaginated(c, "Orders retrieved successfully.", orders, pagination)
}

func (h *Handler) pathID(c *gin.Context, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid order ID format."))
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) respondBindingError(c *gin.Context, err error) {
	h.logger.Warn("Order request binding failed", zap.Error(err))
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		common.RespondWithError(c, common.NewValidationAPIError(common.FormatValidationErrors(ve)))
		return
	}
	common.RespondWithError(c, common.ErrBadRequest.WithDetails(err.Error()))
}

// formFiles returns the uploaded file headers for field, or nil when the
// request carries no multipart files at all.
func formFiles(c *gin.Context, field string) ([]*multipart.FileHeader, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, err
	}
	return form.File[field], nil
}
