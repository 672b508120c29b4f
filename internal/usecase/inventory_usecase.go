package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"smartinventory/internal/domain/model"
	"smartinventory/internal/export"
	"smartinventory/internal/observability"
	repo "smartinventory/internal/repository"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// 確定した入出庫を外部に通知する（失敗しても入出庫は取り消さない）
type MovementPublisher interface {
	PublishMovement(ctx context.Context, log model.MovementLog) error
}

type noopPublisher struct{}

func (noopPublisher) PublishMovement(context.Context, model.MovementLog) error { return nil }

// ラベル記録の結果
type OutcomeKind string

const (
	OutcomeAdjusted       OutcomeKind = "ADJUSTED"
	OutcomeAlreadySeen    OutcomeKind = "ALREADY_SEEN"
	OutcomeUnknownProduct OutcomeKind = "UNKNOWN_PRODUCT"
	OutcomeFailed         OutcomeKind = "FAILED" // 保存に失敗（次のフレームで再試行）
)

type LabelOutcome struct {
	Kind    OutcomeKind        `json:"kind"`
	Label   string             `json:"label"`
	Product *model.Product     `json:"product,omitempty"`
	Log     *model.MovementLog `json:"log,omitempty"`
	Error   string             `json:"error,omitempty"`
}

// 通知の待ち時間の上限（ブローカーが落ちていても入出庫を待たせない）
const defaultPublishTimeout = 2 * time.Second

type InventoryUsecase struct {
	ledger         repo.LedgerRepository
	publisher      MovementPublisher
	publishTimeout time.Duration
	logger         *zap.Logger
	tracer         trace.Tracer
}

// DI（publisher は nil 可）
func NewInventoryUsecase(ledger repo.LedgerRepository, publisher MovementPublisher, logger *zap.Logger) *InventoryUsecase {
	if publisher == nil {
		publisher = noopPublisher{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InventoryUsecase{
		ledger:         ledger,
		publisher:      publisher,
		publishTimeout: defaultPublishTimeout,
		logger:         logger,
		tracer:         observability.Tracer(),
	}
}

// AdjustStock は在庫を1つ増減してログを残す。
// OUT で在庫がマイナスになっても拒否しない。
func (u *InventoryUsecase) AdjustStock(ctx context.Context, productID string, dir model.Direction) (model.MovementLog, error) {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return model.MovementLog{}, fmt.Errorf("%w: product id required", ErrInvalidInput)
	}
	if !dir.Valid() {
		return model.MovementLog{}, fmt.Errorf("%w: direction must be IN or OUT", ErrInvalidInput)
	}

	ctx, span := u.tracer.Start(ctx, "inventory.adjust_stock")
	defer span.End()
	span.SetAttributes(
		attribute.String("product.id", productID),
		attribute.String("inventory.direction", string(dir)),
	)

	entry, err := u.ledger.ApplyMovement(ctx, productID, dir)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "apply movement failed")
		if errors.Is(err, repo.ErrNotFound) {
			u.logger.Warn("product not found", zap.String("product_id", productID))
		} else {
			u.logger.Error("apply movement failed", zap.String("product_id", productID), zap.Error(err))
		}
		return model.MovementLog{}, fmt.Errorf("adjust stock %s: %w", productID, err)
	}
	span.SetAttributes(attribute.Int64("inventory.log_id", entry.LogID))

	u.logger.Info("stock adjusted",
		zap.String("product_id", productID),
		zap.String("direction", string(dir)),
		zap.Int64("log_id", entry.LogID),
	)

	//通知は確定後（失敗はログだけ）
	u.publish(ctx, entry)

	return entry, nil
}

func (u *InventoryUsecase) publish(ctx context.Context, entry model.MovementLog) {
	ctx, cancel := context.WithTimeout(ctx, u.publishTimeout)
	defer cancel()

	if err := u.publisher.PublishMovement(ctx, entry); err != nil {
		u.logger.Warn("publish movement failed", zap.Int64("log_id", entry.LogID), zap.Error(err))
	}
}

// RecordDetectedLabel は検出ラベルを記録し、商品があれば在庫を1つ増やす。
// 更新後のセッションを返す（同じラベルはセッション中1回だけ）。
func (u *InventoryUsecase) RecordDetectedLabel(ctx context.Context, label string, s ScanSession) (ScanSession, LabelOutcome, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		return s, LabelOutcome{}, fmt.Errorf("%w: empty label", ErrInvalidInput)
	}

	//既出なら何もしない
	if s.HasSeen(label) {
		return s, LabelOutcome{Kind: OutcomeAlreadySeen, Label: label}, nil
	}

	ctx, span := u.tracer.Start(ctx, "inventory.record_detected_label")
	defer span.End()
	span.SetAttributes(attribute.String("scan.label", label))

	p, err := u.ledger.GetProductByName(ctx, label)
	if errors.Is(err, repo.ErrNotFound) {
		//自動登録はしない（手動で追加してもらう）
		u.logger.Info("detected label has no product", zap.String("label", label))
		return s.WithSeen(label), LabelOutcome{Kind: OutcomeUnknownProduct, Label: label}, nil
	}
	if err != nil {
		span.RecordError(err)
		return s, LabelOutcome{}, fmt.Errorf("lookup %q: %w", label, err)
	}

	entry, err := u.AdjustStock(ctx, p.ID, model.DirectionIn)
	if err != nil {
		//失敗したラベルは既出にしない（次のフレームで再試行される）
		span.RecordError(err)
		return s, LabelOutcome{}, err
	}
	p.Stock += model.DirectionIn.Delta()

	return s.WithSeen(label), LabelOutcome{
		Kind:    OutcomeAdjusted,
		Label:   label,
		Product: &p,
		Log:     &entry,
	}, nil
}

// LowStockReport は在庫が発注点以下（同値を含む）の商品名を入力順で返す。
func (u *InventoryUsecase) LowStockReport(products []model.Product) []string {
	names := make([]string, 0)
	for _, p := range products {
		if p.IsLowStock() {
			names = append(names, p.Name)
		}
	}
	return names
}

// 現在の全商品に対する LowStockReport
func (u *InventoryUsecase) LowStock(ctx context.Context) ([]string, error) {
	products, err := u.ledger.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	return u.LowStockReport(products), nil
}

// ExportLogsAsTable はログを新しい順に1件1行で返す。
func (u *InventoryUsecase) ExportLogsAsTable(ctx context.Context) ([]export.LogRow, error) {
	logs, err := u.ledger.ListLogs(ctx)
	if err != nil {
		return nil, err
	}
	return export.FromMovementLogs(logs), nil
}

// ログの出力形式
const (
	FormatCSV     = "csv"
	FormatParquet = "parquet"
)

// WriteLogExport はログ表を csv / parquet で書き出す。
func (u *InventoryUsecase) WriteLogExport(ctx context.Context, format string, w io.Writer) error {
	rows, err := u.ExportLogsAsTable(ctx)
	if err != nil {
		return err
	}

	switch strings.ToLower(format) {
	case "", FormatCSV:
		return export.WriteLogsCSV(w, rows)
	case FormatParquet:
		return export.WriteLogsParquet(w, rows)
	default:
		return fmt.Errorf("%w: unsupported format %q", ErrInvalidInput, format)
	}
}

func (u *InventoryUsecase) GetProduct(ctx context.Context, id string) (model.Product, error) {
	if strings.TrimSpace(id) == "" {
		return model.Product{}, fmt.Errorf("%w: product id required", ErrInvalidInput)
	}
	return u.ledger.GetProduct(ctx, strings.TrimSpace(id))
}

// 商品一覧（category が空か "All" なら全件）
func (u *InventoryUsecase) ListProducts(ctx context.Context, category string) ([]model.Product, error) {
	products, err := u.ledger.ListProducts(ctx)
	if err != nil {
		return nil, err
	}

	category = strings.TrimSpace(category)
	if category == "" || category == "All" {
		return products, nil
	}

	filtered := make([]model.Product, 0, len(products))
	for _, p := range products {
		if p.Category == category {
			filtered = append(filtered, p)
		}
	}
	return filtered, nil
}

// 商品の登録・更新の入力
type ProductInput struct {
	ID        string
	Name      string
	Category  string
	Stock     int64
	Threshold int64
}

// UpsertProduct は手入力の商品を登録（同じIDなら更新）する。
// 在庫の直接上書きはログに残らない（初期登録・棚卸し用）。
func (u *InventoryUsecase) UpsertProduct(ctx context.Context, in ProductInput) (model.Product, error) {
	p, err := validateProduct(in)
	if err != nil {
		return model.Product{}, err
	}

	saved, err := u.ledger.UpsertProduct(ctx, p)
	if err != nil {
		u.logger.Error("upsert product failed", zap.String("product_id", p.ID), zap.Error(err))
		return model.Product{}, err
	}
	u.logger.Info("product saved", zap.String("product_id", saved.ID))
	return saved, nil
}

// ImportProductsCSV はCSVを全行検証してから1トランザクションで登録する。登録件数を返す。
// 保存に失敗したら1件も登録しない。
func (u *InventoryUsecase) ImportProductsCSV(ctx context.Context, r io.Reader) (int, error) {
	rows, err := export.ReadProductsCSV(r)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	products := make([]model.Product, 0, len(rows))
	for i, row := range rows {
		p, err := validateProduct(ProductInput{
			ID:        row.ID,
			Name:      row.Name,
			Category:  row.Category,
			Stock:     row.Stock,
			Threshold: row.Threshold,
		})
		if err != nil {
			return 0, fmt.Errorf("row %d: %w", i+2, err)
		}
		products = append(products, p)
	}

	if err := u.ledger.UpsertProducts(ctx, products); err != nil {
		u.logger.Error("import products failed", zap.Int("rows", len(products)), zap.Error(err))
		return 0, err
	}
	u.logger.Info("products imported", zap.Int("rows", len(products)))
	return len(products), nil
}

func (u *InventoryUsecase) ExportProductsCSV(ctx context.Context, w io.Writer) error {
	products, err := u.ledger.ListProducts(ctx)
	if err != nil {
		return err
	}
	return export.WriteProductsCSV(w, products)
}

func validateProduct(in ProductInput) (model.Product, error) {
	id := strings.TrimSpace(in.ID)
	if id == "" {
		return model.Product{}, fmt.Errorf("%w: product id is required", ErrInvalidInput)
	}
	if in.Stock < 0 {
		return model.Product{}, fmt.Errorf("%w: stock must be >= 0", ErrInvalidInput)
	}
	if in.Threshold < 0 {
		return model.Product{}, fmt.Errorf("%w: threshold must be >= 0", ErrInvalidInput)
	}
	return model.Product{
		ID:        id,
		Name:      strings.TrimSpace(in.Name),
		Category:  strings.TrimSpace(in.Category),
		Stock:     in.Stock,
		Threshold: in.Threshold,
	}, nil
}
