package handler

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/labstack/echo/v4"
)

// アップロードの上限（画像・CSV）
const maxUploadBytes = 10 << 20

// readUpload は multipart の field か、なければリクエストボディをそのまま読む。
func readUpload(c echo.Context, field string) ([]byte, error) {
	var r io.Reader = c.Request().Body

	if strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm) {
		fh, err := c.FormFile(field)
		if err != nil {
			return nil, fmt.Errorf("missing form file %q", field)
		}
		f, err := fh.Open()
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}

	var buf bytes.Buffer
	n, err := io.Copy(&buf, io.LimitReader(r, maxUploadBytes+1))
	if err != nil {
		return nil, err
	}
	if n > maxUploadBytes {
		return nil, fmt.Errorf("upload exceeds %d bytes", maxUploadBytes)
	}
	if n == 0 {
		return nil, fmt.Errorf("empty upload")
	}
	return buf.Bytes(), nil
}
