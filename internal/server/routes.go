package server

import (
	"net/http"

	"smartinventory/internal/handler"
	"smartinventory/internal/middleware"
	auth "smartinventory/internal/usecase/auth_usecase"

	"github.com/labstack/echo/v4"
)

// Handlers はルート登録するハンドラ一式
type Handlers struct {
	Auth      *handler.AuthHandler
	Products  *handler.ProductHandler
	Logs      *handler.LogHandler
	Scan      *handler.ScanHandler
	Recommend *handler.RecommendHandler
}

// RegisterRoutes はルートを登録する。
// jwtSecret が空なら認証なし（ローカル利用）。
func RegisterRoutes(e *echo.Echo, h Handlers, jwtSecret string) {
	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	api := e.Group("")
	if jwtSecret != "" {
		if h.Auth != nil {
			h.Auth.RegisterRoutes(e)
		}
		api.Use(middleware.AuthJWT(jwtSecret))
		api.Use(middleware.RoleGuard(auth.RoleOperator))
	}

	h.Products.RegisterRoutes(api)
	h.Logs.RegisterRoutes(api)
	if h.Scan != nil {
		h.Scan.RegisterRoutes(api)
	}
	if h.Recommend != nil {
		h.Recommend.RegisterRoutes(api)
	}
}
