package usecase

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// 1フレーム分の処理結果
type FrameResult struct {
	Labels   []string       `json:"labels"`
	Outcomes []LabelOutcome `json:"outcomes"`
	Skipped  bool           `json:"skipped"`          // 識別器の失敗でフレームを飛ばした
	Stopped  bool           `json:"stopped"`          // フレームが読めずカメラを解放した
	Notice   string         `json:"notice,omitempty"` // 利用者向けの注意
}

// Failed は保存に失敗したラベルの数
func (r FrameResult) Failed() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Kind == OutcomeFailed {
			n++
		}
	}
	return n
}

// スキャン（Idle ⇄ Scanning）の状態遷移
type ScanUsecase struct {
	inventory *InventoryUsecase
	opener    CameraOpener
	logger    *zap.Logger
}

func NewScanUsecase(inventory *InventoryUsecase, opener CameraOpener, logger *zap.Logger) *ScanUsecase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScanUsecase{inventory: inventory, opener: opener, logger: logger}
}

// Start はカメラを確保してスキャン中にする。すでにスキャン中なら何もしない。
func (u *ScanUsecase) Start(ctx context.Context, s ScanSession) (ScanSession, error) {
	if s.Active {
		return s, nil
	}

	det, err := u.opener.Open(ctx)
	if err != nil {
		u.logger.Warn("camera open failed", zap.String("session_id", s.ID), zap.Error(err))
		return s, fmt.Errorf("%w: open camera: %v", ErrAdapterFailure, err)
	}

	u.logger.Info("scan started", zap.String("session_id", s.ID))
	return s.withCamera(det), nil
}

// Stop はカメラを解放して待機中に戻す。待機中なら何もしない。
// Close に失敗してもセッションは待機中になる。
func (u *ScanUsecase) Stop(s ScanSession) (ScanSession, error) {
	if !s.Active {
		return s, nil
	}

	idle := NewScanSession(s.ID)
	var err error
	if s.camera != nil {
		if cerr := s.camera.Close(); cerr != nil {
			u.logger.Warn("camera close failed", zap.String("session_id", s.ID), zap.Error(cerr))
			err = fmt.Errorf("%w: close camera: %v", ErrAdapterFailure, cerr)
		}
	}

	u.logger.Info("scan stopped", zap.String("session_id", s.ID), zap.Int("seen_labels", len(s.seen)))
	return idle, err
}

// ProcessFrame は1フレーム読み、検出ラベルごとに RecordDetectedLabel を呼ぶ。
//   - フレームが読めない: カメラを解放して待機中に戻す
//   - 識別器の失敗: そのフレームだけ飛ばす
//   - 呼び出し側の中断: そのフレームだけ飛ばす
//   - 1ラベルの保存失敗: 他のラベルは続け、FAILED として結果に載せる。エラーはまとめて返す（セッションは継続）
func (u *ScanUsecase) ProcessFrame(ctx context.Context, s ScanSession) (ScanSession, FrameResult, error) {
	if !s.Active || s.camera == nil {
		return s, FrameResult{}, ErrNotScanning
	}

	labels, err := s.camera.NextFrameLabels(ctx)
	if ctx.Err() != nil {
		//呼び出し側の中断はカメラの故障ではない（セッションはそのまま）
		u.logger.Info("frame cancelled", zap.String("session_id", s.ID), zap.Error(ctx.Err()))
		return s, FrameResult{Skipped: true, Notice: ctx.Err().Error()}, nil
	}
	if errors.Is(err, ErrFrameRead) {
		u.logger.Warn("frame read failed, releasing camera", zap.String("session_id", s.ID), zap.Error(err))
		idle, cerr := u.Stop(s)
		return idle, FrameResult{Stopped: true, Notice: "Failed to read from camera."}, errors.Join(err, cerr)
	}
	if err != nil {
		u.logger.Warn("detector failed, skipping frame", zap.String("session_id", s.ID), zap.Error(err))
		return s, FrameResult{Skipped: true, Notice: err.Error()}, nil
	}

	res := FrameResult{Labels: labels, Outcomes: make([]LabelOutcome, 0, len(labels))}
	var errs []error
	for _, label := range labels {
		next, outcome, err := u.inventory.RecordDetectedLabel(ctx, label, s)
		if errors.Is(err, ErrInvalidInput) {
			continue
		}
		if err != nil {
			//記録できた他のラベルと一緒に結果へ載せる
			u.logger.Warn("record label failed", zap.String("session_id", s.ID), zap.String("label", label), zap.Error(err))
			res.Outcomes = append(res.Outcomes, LabelOutcome{Kind: OutcomeFailed, Label: label, Error: err.Error()})
			errs = append(errs, err)
			continue
		}
		s = next
		if outcome.Kind != OutcomeAlreadySeen {
			res.Outcomes = append(res.Outcomes, outcome)
		}
	}

	return s, res, errors.Join(errs...)
}
