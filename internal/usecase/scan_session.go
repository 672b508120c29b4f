package usecase

import (
	"context"
	"strings"
)

// カメラ1台分の検出器（フレームごとのラベル）。
// セッションが所有し、停止時に Close する。
type Detector interface {
	NextFrameLabels(ctx context.Context) ([]string, error)
	Close() error
}

// スキャン開始時にカメラを確保する
type CameraOpener interface {
	Open(ctx context.Context) (Detector, error)
}

// ScanSession はスキャン1回分の状態。
// 値として受け渡し、更新時は新しい値を返す（呼び出し側が保持する）。
type ScanSession struct {
	ID     string
	Active bool

	seen   []string            // 最初に来た表記のまま
	index  map[string]struct{} // 小文字で引く
	camera Detector
}

// NewScanSession は待機中（Idle）のセッションを作る。
func NewScanSession(id string) ScanSession {
	return ScanSession{ID: id}
}

// 大文字小文字を区別せずに既出か
func (s ScanSession) HasSeen(label string) bool {
	_, ok := s.index[strings.ToLower(label)]
	return ok
}

// SeenLabels は既出ラベルを検出順に返す。
func (s ScanSession) SeenLabels() []string {
	out := make([]string, len(s.seen))
	copy(out, s.seen)
	return out
}

// WithSeen は label を追加したコピーを返す。元の値は変わらない。
func (s ScanSession) WithSeen(label string) ScanSession {
	if s.HasSeen(label) {
		return s
	}

	next := s
	next.seen = append(make([]string, 0, len(s.seen)+1), s.seen...)
	next.seen = append(next.seen, label)
	next.index = make(map[string]struct{}, len(s.index)+1)
	for k := range s.index {
		next.index[k] = struct{}{}
	}
	next.index[strings.ToLower(label)] = struct{}{}
	return next
}

func (s ScanSession) withCamera(d Detector) ScanSession {
	return ScanSession{ID: s.ID, Active: true, camera: d}
}
