// File: internal/post/handler.go
package post

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

// imagesField is the multipart field carrying uploaded images.
const imagesField = "images"

// Handler holds dependencies for post endpoints.
type Handler struct {
	service *Service
	logger  *zap.Logger
}

// NewHandler creates a new post handler.
func NewHandler(service *Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterRoutes sets up the service-post routes. Every route requires an
// authenticated admin.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup, authMW, adminMW gin.HandlerFunc) {
	posts := router.Group("/services/posts", authMW, adminMW)
	{
		posts.POST("", h.createPost)
		posts.PATCH("/:postId", h.updatePost)
		posts.GET("", h.listPosts)
		posts.GET("/:postId", h.getPost)
		posts.DELETE("/:id", h.deletePost)
	}
}

func (h *Handler) createPost(c *gin.Context) {
	var req CreatePostRequest
	if err := c.ShouldBindWith(&req, binding.FormMultipart); err != nil {
		h.respondBindingError(c, err)
		return
	}

	files, err := formFiles(c, imagesField)
	if err != nil {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Could not parse multipart form."))
		return
	}

	adminID := middleware.GetUserIDFromContext(c)
	post, err := h.service.CreatePost(c.Request.Context(), adminID, req, files)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondCreated(c, "Post created successfully.", post)
}

func (h *Handler) updatePost(c *gin.Context) {
	id, ok := h.pathID(c, "postId")
	if !ok {
		return
	}

	var req UpdatePostRequest
	if err := c.ShouldBindWith(&req, binding.FormMultipart); err != nil {
		h.respondBindingError(c, err)
		return
	}

	files, err := formFiles(c, imagesField)
	if err != nil {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Could not parse multipart form."))
		return
	}

	post, err := h.service.UpdatePost(c.Request.Context(), id, req, files)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Post updated successfully.", post)
}

func (h *Handler) listPosts(c *gin.Context) {
	var query ListPostsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.respondBindingError(c, err)
		return
	}

	posts, pagination, err := h.service.ListPosts(c.Request.Context(), query)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondPaginated(c, "Posts retrieved successfully.", posts, pagination)
}

func (h *Handler) getPost(c *gin.Context) {
	id, ok := h.pathID(c, "postId")
	if !ok {
		return
	}

	post, err := h.service.GetPost(c.Request.Context(), id)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Post retrieved successfully.", post)
}

func (h *Handler) deletePost(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	if err := h.service.DeletePost(c.Request.Context(), id); err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Post deleted successfully.", nil)
}

func (h *Handler) pathID(c *gin.Context, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid post ID format."))
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) respondBindingError(c *gin.Context, err error) {
	h.logger.Warn("Post request binding failed", zap.Error(err))
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		common.RespondWithError(c, common.NewValidationAPIError(common.FormatValidationErrors(ve)))
		return
	}
	common.RespondWithError(c, common.ErrBadRequest.WithDetails(err.Error()))
}

func formFiles(c *gin.Context, field string) ([]*multipart.FileHeader, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, err
	}
	return form.File[field], nil
}
