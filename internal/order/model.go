// File: internal/order/model.go
package order

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"woodcraft_backend/internal/common"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Order statuses.
const (
	StatusPending    = "pending"
	StatusOffered    = "offered"
	StatusAccepted   = "accepted"
	StatusInProgress = "in_progress"
	StatusDelivered  = "delivered"
	StatusCancelled  = "cancelled"
)

var validStatuses = map[string]struct{}{
	StatusPending:    {},
	StatusOffered:    {},
	StatusAccepted:   {},
	StatusInProgress: {},
	StatusDelivered:  {},
	StatusCancelled:  {},
}

// ValidStatus reports whether s is a known order status.
func ValidStatus(s string) bool {
	_, ok := validStatuses[s]
	return ok
}

// Installment is one entry of a payment schedule.
type Installment struct {
	DueDate time.Time `json:"due_date"`
	Amount  float64   `json:"amount"`
}

// InstallmentSchedule is an ordered payment plan persisted as a JSONB column.
type InstallmentSchedule []Installment

// Value implements driver.Valuer.
func (s InstallmentSchedule) Value() (driver.Value, error) {
	if s == nil {
		return nil, nil
	}
	return json.Marshal(s)
}

// Scan implements sql.Scanner.
func (s *InstallmentSchedule) Scan(src interface{}) error {
	if src == nil {
		*s = nil
		return nil
	}
	var data []byte
	switch v := src.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("cannot scan type %T into InstallmentSchedule", src)
	}
	return json.Unmarshal(data, s)
}

// Order represents a customer's kitchen request.
type Order struct {
	common.BaseModel
	UserID       uuid.UUID           `gorm:"type:uuid;not null;index" json:"user_id"`
	PostID       *uuid.UUID          `gorm:"type:uuid;index" json:"post_id,omitempty"`
	WoodType     *string             `gorm:"type:varchar(100)" json:"wood_type,omitempty"`
	City         *string             `gorm:"type:varchar(100)" json:"city,omitempty"`
	Address      *string             `gorm:"type:varchar(255)" json:"address,omitempty"`
	Width        *float64            `json:"width,omitempty"`
	Height       *float64            `json:"height,omitempty"`
	Depth        *float64            `json:"depth,omitempty"`
	Articles     pq.StringArray      `gorm:"type:text[]" json:"articles"`
	Status       string              `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	Offer        *float64            `json:"offer,omitempty"`
	IsValidated  bool                `gorm:"not null;default:false" json:"is_validated"`
	Installments InstallmentSchedule `gorm:"type:jsonb" json:"installments,omitempty"`
}

// TableName specifies the table name for the Order model.
func (Order) TableName() string {
	return "orders"
}

// --- DTOs for API requests ---

// CreateOrderRequest carries the multipart form fields for order creation.
// The "articles" file parts are handled separately by the handler.
type CreateOrderRequest struct {
	PostID       *uuid.UUID `form:"post_id"`
	WoodType     *string    `form:"wood_type" binding:"omitempty,max=100"`
	City         *string    `form:"city" binding:"omitempty,max=100"`
	Address      *string    `form:"address" binding:"omitempty,max=255"`
	Width        *float64   `form:"width" binding:"omitempty,gt=0"`
	Height       *float64   `form:"height" binding:"omitempty,gt=0"`
	Depth        *float64   `form:"depth" binding:"omitempty,gt=0"`
	Installments string     `form:"installments"` // JSON-encoded InstallmentSchedule
}

// UpdateOrderRequest carries the multipart form fields for a partial update.
type UpdateOrderRequest struct {
	WoodType     *string  `form:"wood_type" binding:"omitempty,max=100"`
	City         *string  `form:"city" binding:"omitempty,max=100"`
	Address      *string  `form:"address" binding:"omitempty,max=255"`
	Width        *float64 `form:"width" binding:"omitempty,gt=0"`
	Height       *float64 `form:"height" binding:"omitempty,gt=0"`
	Depth        *float64 `form:"depth" binding:"omitempty,gt=0"`
	Status       *string  `form:"status"`
	Offer        *float64 `form:"offer" binding:"omitempty,gte=0"`
	IsValidated  *bool    `form:"is_validated"`
	Installments *string  `form:"installments"` // JSON-encoded InstallmentSchedule
}

// ListOrdersQuery holds the query parameters for the admin order list.
type ListOrdersQuery struct {
	common.PaginationQuery
	Status string `form:"status"`
}
