// Package docs renders Markdown files from a fixed directory as HTML pages.
package docs

import (
	"bytes"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"woodcraft_backend/internal/common"

	"github.com/gin-gonic/gin"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"go.uber.org/zap"
)

const pageTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>%s</title>
<style>
body { font-family: -apple-system, "Segoe UI", Roboto, sans-serif; max-width: 48rem; margin: 2rem auto; padding: 0 1rem; line-height: 1.6; color: #24292f; }
pre { background: #f6f8fa; padding: 1rem; overflow-x: auto; border-radius: 6px; }
code { background: #f6f8fa; padding: 0.2em 0.4em; border-radius: 4px; }
table { border-collapse: collapse; }
th, td { border: 1px solid #d0d7de; padding: 0.4rem 0.8rem; }
</style>
</head>
<body>
%s
</body>
</html>`

// Handler serves rendered Markdown documentation.
type Handler struct {
	docsPath string
	md       goldmark.Markdown
	logger   *zap.Logger
}

// NewHandler creates a docs handler serving files from docsPath.
func NewHandler(docsPath string, logger *zap.Logger) *Handler {
	return &Handler{
		docsPath: docsPath,
		md:       goldmark.New(goldmark.WithExtensions(extension.GFM)),
		logger:   logger,
	}
}

// RegisterRoutes sets up the docs route.
func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.GET("/docs/:file", h.renderDoc)
}

// renderDoc serves one Markdown file as HTML. Anything that is not a plain
// .md filename inside the docs directory is a 404, indistinguishable from a
// missing file.
func (h *Handler) renderDoc(c *gin.Context) {
	name := c.Param("file")
	if !strings.HasSuffix(name, ".md") || name != filepath.Base(name) || strings.Contains(name, "..") {
		common.RespondWithError(c, common.ErrNotFound.WithDetails("Document not found."))
		return
	}

	fullPath := filepath.Join(h.docsPath, name)
	source, err := os.ReadFile(fullPath)
	if err != nil {
		if !os.IsNotExist(err) {
			h.logger.Error("Failed to read documentation file", zap.String("path", fullPath), zap.Error(err))
		}
		common.RespondWithError(c, common.ErrNotFound.WithDetails("Document not found."))
		return
	}

	var buf bytes.Buffer
	if err := h.md.Convert(source, &buf); err != nil {
		h.logger.Error("Markdown rendering failed", zap.String("path", fullPath), zap.Error(err))
		common.RespondWithError(c, common.ErrInternalServer.WithDetails("Could not render document."))
		return
	}

	title := strings.TrimSuffix(name, ".md")
	page := fmt.Sprintf(pageTemplate, title, buf.String())
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(page))
}
