package cli

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func setupEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("SQLITE_PATH", filepath.Join(dir, "inventory.db"))
	t.Setenv("VISION_PROVIDER", "ollama")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("KAFKA_BROKER", "")
	t.Setenv("OTEL_ENDPOINT", "")
	t.Setenv("LOG_LEVEL", "error")
	return dir
}

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestCLI_ImportAdjustLowStockExport(t *testing.T) {
	dir := setupEnv(t)

	csvPath := filepath.Join(dir, "products.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte(
		"Product ID,Product Name,Category,Stock,Reorder Level\n"+
			"P1,Milk,Dairy,5,3\n"+
			"P2,Bread,Bakery,10,2\n"), 0o600))

	out, err := run(t, "", "migrate")
	require.NoError(t, err)
	assert.Contains(t, out, "schema ready")

	out, err = run(t, "", "import", csvPath)
	require.NoError(t, err)
	assert.Contains(t, out, "imported 2 products")

	out, err = run(t, "", "adjust", "P1", "out")
	require.NoError(t, err)
	assert.Contains(t, out, "stock now 4")

	_, err = run(t, "", "adjust", "P1", "OUT")
	require.NoError(t, err)

	out, err = run(t, "", "low-stock")
	require.NoError(t, err)
	assert.Equal(t, "Milk\n", out)

	out, err = run(t, "", "export-logs")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Log ID,Product ID,In Time,Out Time", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "2,P1,,"))
	assert.True(t, strings.HasPrefix(lines[2], "1,P1,,"))

	parquetPath := filepath.Join(dir, "logs.parquet")
	_, err = run(t, "", "export-logs", "--format", "parquet", "--out", parquetPath)
	require.NoError(t, err)
	info, err := os.Stat(parquetPath)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestCLI_AdjustErrors(t *testing.T) {
	setupEnv(t)

	_, err := run(t, "", "adjust", "P1", "sideways")
	assert.Error(t, err)

	_, err = run(t, "", "adjust", "NOPE", "in")
	assert.Error(t, err)
}

func TestCLI_ExportLogsRejectsFormat(t *testing.T) {
	setupEnv(t)
	_, err := run(t, "", "export-logs", "--format", "xlsx")
	assert.Error(t, err)
}

func TestCLI_HashPassword(t *testing.T) {
	out, err := run(t, "hunter2\n", "hash-password", "--cost", "4")
	require.NoError(t, err)

	hash := strings.TrimSpace(out)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("hunter2")))
}

func TestWriteFile_ReportsCloseError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs.csv")

	require.NoError(t, writeFile(path, func(w io.Writer) error {
		_, err := w.Write([]byte("Log ID\n"))
		return err
	}))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Log ID\n", string(data))

	//書き込み側で先に閉じられると Close が失敗する
	err = writeFile(path, func(w io.Writer) error {
		return w.(*os.File).Close()
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrClosed)

	boom := errors.New("boom")
	assert.ErrorIs(t, writeFile(path, func(io.Writer) error { return boom }), boom)
}
