package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"smartinventory/internal/domain/model"

	"github.com/parquet-go/parquet-go"
)

// ログ出力の見出し（logs_export.csv と同じ）
var LogsHeader = []string{"Log ID", "Product ID", "In Time", "Out Time"}

// LogRow はログ1件＝1行。向きは in_time / out_time のどちらが入っているかで表す。
type LogRow struct {
	LogID     int64   `json:"log_id" parquet:"log_id"`
	ProductID string  `json:"product_id" parquet:"product_id"`
	InTime    *string `json:"in_time" parquet:"in_time"`
	OutTime   *string `json:"out_time" parquet:"out_time"`
}

// 並び順はそのまま（ListLogs の新しい順）
func FromMovementLogs(logs []model.MovementLog) []LogRow {
	rows := make([]LogRow, 0, len(logs))
	for _, l := range logs {
		rows = append(rows, LogRow{
			LogID:     l.LogID,
			ProductID: l.ProductID,
			InTime:    l.InTime,
			OutTime:   l.OutTime,
		})
	}
	return rows
}

// WriteLogsCSV は見出し付きCSVを書く。null は空文字。
func WriteLogsCSV(w io.Writer, rows []LogRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(LogsHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, r := range rows {
		rec := []string{
			strconv.FormatInt(r.LogID, 10),
			r.ProductID,
			deref(r.InTime),
			deref(r.OutTime),
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write log %d: %w", r.LogID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteLogsParquet は同じ列をparquetで書く（in_time / out_time は optional）。
func WriteLogsParquet(w io.Writer, rows []LogRow) error {
	pw := parquet.NewGenericWriter[LogRow](w)
	if _, err := pw.Write(rows); err != nil {
		return fmt.Errorf("write parquet rows: %w", err)
	}
	if err := pw.Close(); err != nil {
		return fmt.Errorf("close parquet writer: %w", err)
	}
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
