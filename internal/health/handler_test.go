// File: internal/health/handler_test.go
package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type stubSender struct {
	pingErr error
}

func (s stubSender) Send(to, subject, body string) error { return nil }

func (s stubSender) Ping(ctx context.Context) error { return s.pingErr }

type healthResponse struct {
	Status string `json:"status"`
	Checks struct {
		Database string `json:"database"`
		Mail     string `json:"mail"`
	} `json:"checks"`
}

func newHealthTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	return db
}

func getHealth(t *testing.T, db *gorm.DB, sender stubSender) (int, healthResponse) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()
	NewHandler(db, sender, zap.NewNop()).RegisterRoutes(router)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	router.ServeHTTP(w, req)

	var body healthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w.Code, body
}

func TestHealth_AllChecksUp(t *testing.T) {
	code, body := getHealth(t, newHealthTestDB(t), stubSender{})

	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, statusUp, body.Status)
	assert.Equal(t, statusUp, body.Checks.Database)
	assert.Equal(t, statusUp, body.Checks.Mail)
}

func TestHealth_MailDownStaysHTTP200(t *testing.T) {
	sender := stubSender{pingErr: errors.New("connection refused")}

	code, body := getHealth(t, newHealthTestDB(t), sender)

	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, statusUp, body.Status)
	assert.Equal(t, statusUp, body.Checks.Database)
	assert.Equal(t, statusDown, body.Checks.Mail)
}

func TestHealth_DatabaseDownReports503(t *testing.T) {
	db := newHealthTestDB(t)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	code, body := getHealth(t, db, stubSender{})

	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, statusDown, body.Status)
	assert.Equal(t, statusDown, body.Checks.Database)
}
