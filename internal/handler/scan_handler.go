package handler

import (
	"errors"
	"net/http"

	"smartinventory/internal/storage"
	"smartinventory/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// セッションの見え方
type ScanSessionResponse struct {
	ID         string   `json:"id"`
	Active     bool     `json:"active"`
	SeenLabels []string `json:"seen_labels"`
}

type FrameResponse struct {
	Session ScanSessionResponse `json:"session"`
	Result  usecase.FrameResult `json:"result"`
}

func toSessionResponse(s usecase.ScanSession) ScanSessionResponse {
	return ScanSessionResponse{ID: s.ID, Active: s.Active, SeenLabels: s.SeenLabels()}
}

// /scan/sessions
type ScanHandler struct {
	uc       *usecase.ScanUsecase
	sessions *storage.SessionStore
}

func NewScanHandler(uc *usecase.ScanUsecase, sessions *storage.SessionStore) *ScanHandler {
	return &ScanHandler{uc: uc, sessions: sessions}
}

func (h *ScanHandler) RegisterRoutes(g *echo.Group) {
	g.POST("/scan/sessions", h.start)
	g.POST("/scan/sessions/:id/frames", h.frame)
	g.DELETE("/scan/sessions/:id", h.stop)
}

// カメラを確保して新しいセッションを開始
func (h *ScanHandler) start(c echo.Context) error {
	s, err := h.uc.Start(c.Request().Context(), usecase.NewScanSession(uuid.NewString()))
	if err != nil {
		return writeError(c, err)
	}

	h.sessions.Set(s)
	return c.JSON(http.StatusCreated, toSessionResponse(s))
}

// 1フレーム処理する
func (h *ScanHandler) frame(c echo.Context) error {
	ctx := c.Request().Context()

	var (
		res  usecase.FrameResult
		last usecase.ScanSession
	)
	err := h.sessions.Update(c.Param("id"), func(s usecase.ScanSession) (usecase.ScanSession, error) {
		next, r, err := h.uc.ProcessFrame(ctx, s)
		res, last = r, next
		return next, err
	})

	//カメラが読めなくなった場合はセッションが止まったことを結果で返す
	//ラベルの保存失敗は FAILED として結果に入っている（記録済みのラベルも返す）
	if err != nil && !errors.Is(err, usecase.ErrFrameRead) && res.Failed() == 0 {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, FrameResponse{Session: toSessionResponse(last), Result: res})
}

// カメラを解放してセッションを破棄（記録済みラベルを返す）
func (h *ScanHandler) stop(c echo.Context) error {
	var seen []string
	last, err := h.sessions.Remove(c.Param("id"), func(s usecase.ScanSession) (usecase.ScanSession, error) {
		seen = s.SeenLabels()
		return h.uc.Stop(s)
	})
	if err != nil && !errors.Is(err, usecase.ErrAdapterFailure) {
		return writeError(c, err)
	}

	out := toSessionResponse(last)
	out.SeenLabels = seen
	return c.JSON(http.StatusOK, out)
}
