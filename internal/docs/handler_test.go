// File: internal/docs/handler_test.go
package docs

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newDocsRouter(t *testing.T) (*gin.Engine, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	docsDir := t.TempDir()
	r := gin.New()
	NewHandler(docsDir, zap.NewNop()).RegisterRoutes(r)
	return r, docsDir
}

func get(r *gin.Engine, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRenderDoc_ValidMarkdown(t *testing.T) {
	r, docsDir := newDocsRouter(t)
	content := "# Warranty\n\nAll cabinets carry a **5 year** warranty.\n"
	require.NoError(t, os.WriteFile(filepath.Join(docsDir, "warranty.md"), []byte(content), 0o644))

	w := get(r, "/docs/warranty.md")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, w.Body.String(), "<h1")
	assert.Contains(t, w.Body.String(), "Warranty")
	assert.Contains(t, w.Body.String(), "<strong>5 year</strong>")
}

func TestRenderDoc_NonMarkdownExtension(t *testing.T) {
	r, docsDir := newDocsRouter(t)
	require.NoError(t, os.WriteFile(filepath.Join(docsDir, "report.txt"), []byte("plain"), 0o644))

	w := get(r, "/docs/report.txt")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRenderDoc_MissingFile(t *testing.T) {
	r, _ := newDocsRouter(t)

	w := get(r, "/docs/missing.md")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRenderDoc_TraversalRejected(t *testing.T) {
	r, docsDir := newDocsRouter(t)
	// A real file one level above the docs dir must stay unreachable.
	outside := filepath.Join(docsDir, "..", "secret.md")
	require.NoError(t, os.WriteFile(outside, []byte("# secret"), 0o644))
	defer os.Remove(outside)

	w := get(r, "/docs/..%2Fsecret.md")
	assert.Equal(t, http.StatusNotFound, w.Code)
}
