package handler

import (
	"bytes"
	"net/http"

	"smartinventory/internal/domain/model"
	"smartinventory/internal/usecase"

	"github.com/labstack/echo/v4"
)

// 商品の登録・更新
type ProductRequest struct {
	ID        string `json:"product_id"`
	Name      string `json:"name"`
	Category  string `json:"category"`
	Stock     int64  `json:"stock"`
	Threshold int64  `json:"threshold"`
}

// 入出庫
type MovementRequest struct {
	Direction string `json:"direction"`
}

type LowStockResponse struct {
	LowStock []string `json:"low_stock"`
}

type ImportResponse struct {
	Imported int `json:"imported"`
}

// /products
type ProductHandler struct {
	uc *usecase.InventoryUsecase
}

// DI
func NewProductHandler(uc *usecase.InventoryUsecase) *ProductHandler {
	return &ProductHandler{uc: uc}
}

// 商品のルートを登録
func (h *ProductHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/products", h.list)
	g.POST("/products", h.upsert)
	g.GET("/products/low-stock", h.lowStock)
	g.POST("/products/import", h.importCSV)
	g.GET("/products/export", h.exportCSV)
	g.GET("/products/:id", h.detail)
	g.POST("/products/:id/movements", h.move)
}

func (h *ProductHandler) list(c echo.Context) error {
	out, err := h.uc.ListProducts(c.Request().Context(), c.QueryParam("category"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *ProductHandler) detail(c echo.Context) error {
	p, err := h.uc.GetProduct(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *ProductHandler) upsert(c echo.Context) error {
	var req ProductRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	p, err := h.uc.UpsertProduct(c.Request().Context(), usecase.ProductInput{
		ID:        req.ID,
		Name:      req.Name,
		Category:  req.Category,
		Stock:     req.Stock,
		Threshold: req.Threshold,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *ProductHandler) move(c echo.Context) error {
	var req MovementRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	dir, err := model.ParseDirection(req.Direction)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "direction must be IN or OUT"})
	}

	entry, err := h.uc.AdjustStock(c.Request().Context(), c.Param("id"), dir)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, entry)
}

func (h *ProductHandler) lowStock(c echo.Context) error {
	names, err := h.uc.LowStock(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, LowStockResponse{LowStock: names})
}

func (h *ProductHandler) importCSV(c echo.Context) error {
	data, err := readUpload(c, "file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	}

	n, err := h.uc.ImportProductsCSV(c.Request().Context(), bytes.NewReader(data))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, ImportResponse{Imported: n})
}

func (h *ProductHandler) exportCSV(c echo.Context) error {
	var buf bytes.Buffer
	if err := h.uc.ExportProductsCSV(c.Request().Context(), &buf); err != nil {
		return writeError(c, err)
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="products.csv"`)
	return c.Blob(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}
