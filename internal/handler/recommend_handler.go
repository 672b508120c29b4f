package handler

import (
	"net/http"

	"smartinventory/internal/usecase"

	"github.com/labstack/echo/v4"
)

// POST /recommendations
type RecommendHandler struct {
	uc *usecase.RecommendUsecase
}

func NewRecommendHandler(uc *usecase.RecommendUsecase) *RecommendHandler {
	return &RecommendHandler{uc: uc}
}

func (h *RecommendHandler) RegisterRoutes(g *echo.Group) {
	g.POST("/recommendations", h.recommend)
}

// 画像は multipart の "image" か、ボディにそのまま
func (h *RecommendHandler) recommend(c echo.Context) error {
	img, err := readUpload(c, "image")
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	}

	out, err := h.uc.Recommend(c.Request().Context(), img)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
