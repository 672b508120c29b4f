package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"

	"smartinventory/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /logs
type LogHandler struct {
	uc *usecase.InventoryUsecase
}

func NewLogHandler(uc *usecase.InventoryUsecase) *LogHandler {
	return &LogHandler{uc: uc}
}

func (h *LogHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/logs", h.list)
	g.GET("/logs/export", h.export)
}

// 新しい順
func (h *LogHandler) list(c echo.Context) error {
	rows, err := h.uc.ExportLogsAsTable(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, rows)
}

func (h *LogHandler) export(c echo.Context) error {
	format := strings.ToLower(c.QueryParam("format"))
	if format == "" {
		format = usecase.FormatCSV
	}

	var buf bytes.Buffer
	if err := h.uc.WriteLogExport(c.Request().Context(), format, &buf); err != nil {
		return writeError(c, err)
	}

	contentType := "text/csv; charset=utf-8"
	if format == usecase.FormatParquet {
		contentType = echo.MIMEOctetStream
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="logs.%s"`, format))
	return c.Blob(http.StatusOK, contentType, buf.Bytes())
}
