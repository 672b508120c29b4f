package export

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"smartinventory/internal/domain/model"

	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRows() []LogRow {
	at := time.Date(2024, 2, 2, 8, 0, 0, 0, time.Local)
	out := model.NewMovementLog("P2", model.DirectionOut, at)
	out.LogID = 2
	in := model.NewMovementLog("P1", model.DirectionIn, at)
	in.LogID = 1
	return FromMovementLogs([]model.MovementLog{out, in})
}

func TestWriteLogsCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteLogsCSV(&buf, sampleRows()))

	assert.Equal(t,
		"Log ID,Product ID,In Time,Out Time\n"+
			"2,P2,,2024-02-02 08:00:00\n"+
			"1,P1,2024-02-02 08:00:00,\n",
		buf.String())
}

func TestWriteLogsCSV_EmptyHasHeader(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteLogsCSV(&buf, nil))
	assert.Equal(t, "Log ID,Product ID,In Time,Out Time\n", buf.String())
}

func TestWriteLogsParquet(t *testing.T) {
	var buf bytes.Buffer
	rows := sampleRows()
	require.NoError(t, WriteLogsParquet(&buf, rows))

	got, err := parquet.Read[LogRow](bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, int64(2), got[0].LogID)
	assert.Nil(t, got[0].InTime)
	require.NotNil(t, got[0].OutTime)
	assert.Equal(t, "2024-02-02 08:00:00", *got[0].OutTime)
}

func TestProductsCSV_WriteThenRead(t *testing.T) {
	in := []model.Product{
		{ID: "P1", Name: "Milk", Category: "Dairy", Stock: 5, Threshold: 3},
		{ID: "P2", Name: "Bread, sliced", Category: "Bakery", Stock: 0, Threshold: 1},
	}
	var buf bytes.Buffer
	require.NoError(t, WriteProductsCSV(&buf, in))
	assert.True(t, strings.HasPrefix(buf.String(), "Product ID,Product Name,Category,Stock,Reorder Level\n"))

	got, err := ReadProductsCSV(&buf)
	require.NoError(t, err)
	assert.Equal(t, in, got)
}

func TestReadProductsCSV_ColumnOrderAndBOM(t *testing.T) {
	data := "\ufeffStock,Reorder Level,Category,Product Name,Product ID\n7,,Food,Tea,P9\n"
	got, err := ReadProductsCSV(strings.NewReader(data))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, model.Product{ID: "P9", Name: "Tea", Category: "Food", Stock: 7, Threshold: 0}, got[0])
}

func TestReadProductsCSV_Errors(t *testing.T) {
	_, err := ReadProductsCSV(strings.NewReader(""))
	assert.ErrorIs(t, err, ErrMissingColumns)

	_, err = ReadProductsCSV(strings.NewReader("Product ID,Product Name,Category,Stock\nP1,Milk,Dairy,1\n"))
	assert.ErrorIs(t, err, ErrMissingColumns)
	assert.ErrorContains(t, err, "Reorder Level")

	_, err = ReadProductsCSV(strings.NewReader("Product ID,Product Name,Category,Stock,Reorder Level\n,Milk,Dairy,1,1\n"))
	assert.ErrorContains(t, err, "line 2")

	_, err = ReadProductsCSV(strings.NewReader("Product ID,Product Name,Category,Stock,Reorder Level\nP1,Milk,Dairy,lots,1\n"))
	assert.ErrorContains(t, err, "Stock")
}
