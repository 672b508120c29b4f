package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"smartinventory/internal/domain/model"
)

// 在庫CSVの列（アップロード/ダウンロード共通）
const (
	ColProductID    = "Product ID"
	ColProductName  = "Product Name"
	ColCategory     = "Category"
	ColStock        = "Stock"
	ColReorderLevel = "Reorder Level"
)

var ProductsHeader = []string{ColProductID, ColProductName, ColCategory, ColStock, ColReorderLevel}

var ErrMissingColumns = errors.New("uploaded file is missing required columns")

// WriteProductsCSV は商品一覧をCSVで書く。
func WriteProductsCSV(w io.Writer, products []model.Product) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ProductsHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, p := range products {
		rec := []string{
			p.ID,
			p.Name,
			p.Category,
			strconv.FormatInt(p.Stock, 10),
			strconv.FormatInt(p.Threshold, 10),
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write product %s: %w", p.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadProductsCSV はCSVを読み込む。列の順番は問わないが、必須列が欠けていればエラー。
func ReadProductsCSV(r io.Reader) ([]model.Product, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, ErrMissingColumns
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}
	var missing []string
	for _, col := range ProductsHeader {
		if _, ok := idx[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(missing, ", "))
	}

	var products []model.Product
	line := 1
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		p, err := productFromRecord(rec, idx)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		products = append(products, p)
	}
	return products, nil
}

func productFromRecord(rec []string, idx map[string]int) (model.Product, error) {
	get := func(col string) string {
		i := idx[col]
		if i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	id := get(ColProductID)
	if id == "" {
		return model.Product{}, fmt.Errorf("%s is required", ColProductID)
	}
	stock, err := parseCount(get(ColStock))
	if err != nil {
		return model.Product{}, fmt.Errorf("%s: %w", ColStock, err)
	}
	threshold, err := parseCount(get(ColReorderLevel))
	if err != nil {
		return model.Product{}, fmt.Errorf("%s: %w", ColReorderLevel, err)
	}

	return model.Product{
		ID:        id,
		Name:      get(ColProductName),
		Category:  get(ColCategory),
		Stock:     stock,
		Threshold: threshold,
	}, nil
}

// 空なら0。負数は不可。
func parseCount(s string) (int64, error) {
	if s == "" {
		return 0, nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, fmt.Errorf("must be >= 0")
	}
	return n, nil
}
