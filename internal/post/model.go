// File: internal/post/model.go
package post

import (
	"woodcraft_backend/internal/common"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Post is an admin-authored service or gallery item shown on the site.
type Post struct {
	common.BaseModel
	AdminID     uuid.UUID      `gorm:"type:uuid;not null;index" json:"admin_id"`
	Title       string         `gorm:"type:varchar(200);not null" json:"title"`
	Slug        string         `gorm:"type:varchar(220);not null;index" json:"slug"`
	Description string         `gorm:"type:text" json:"description"`
	WoodType    string         `gorm:"type:varchar(100)" json:"wood_type"`
	Location    string         `gorm:"type:varchar(100)" json:"location"`
	Images      pq.StringArray `gorm:"type:text[]" json:"images"`
	Items       pq.StringArray `gorm:"type:text[]" json:"items"`
}

// TableName specifies the table name for the Post model.
func (Post) TableName() string {
	return "posts"
}

// --- DTOs for API requests ---

// CreatePostRequest carries the multipart form fields for post creation.
// The "images" file parts are handled separately by the handler.
type CreatePostRequest struct {
	Title       string   `form:"title" binding:"required,max=200"`
	Description string   `form:"description" binding:"omitempty,max=5000"`
	WoodType    string   `form:"wood_type" binding:"omitempty,max=100"`
	Location    string   `form:"location" binding:"omitempty,max=100"`
	Items       []string `form:"items"`
}

// UpdatePostRequest carries the multipart form fields for a partial update.
// A non-empty "images" file list replaces the stored list entirely.
type UpdatePostRequest struct {
	Title       *string   `form:"title" binding:"omitempty,max=200"`
	Description *string   `form:"description" binding:"omitempty,max=5000"`
	WoodType    *string   `form:"wood_type" binding:"omitempty,max=100"`
	Location    *string   `form:"location" binding:"omitempty,max=100"`
	Items       *[]string `form:"items"`
}

// ListPostsQuery holds the query parameters for the post list.
type ListPostsQuery struct {
	common.PaginationQuery
}
