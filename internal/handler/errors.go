package handler

import (
	"errors"
	"net/http"

	repo "smartinventory/internal/repository"
	"smartinventory/internal/storage"
	"smartinventory/internal/usecase"
	auth "smartinventory/internal/usecase/auth_usecase"

	"github.com/labstack/echo/v4"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

// usecase のエラーを HTTP ステータスに変換する
func writeError(c echo.Context, err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, usecase.ErrInvalidInput):
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	case errors.Is(err, auth.ErrInvalidCredentials):
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "invalid credentials"})
	case errors.Is(err, repo.ErrNotFound), errors.Is(err, storage.ErrSessionNotFound):
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: "not found"})
	case errors.Is(err, usecase.ErrNotScanning):
		return c.JSON(http.StatusConflict, ErrorResponse{Error: "scan session is not active"})
	case errors.Is(err, usecase.ErrAdapterFailure):
		return c.JSON(http.StatusBadGateway, ErrorResponse{Error: err.Error()})
	}

	if repo.IsStorageError(err) {
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "storage error"})
	}

	//500
	return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
}
