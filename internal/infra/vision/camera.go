package vision

import (
	"context"
	"fmt"

	"smartinventory/internal/usecase"
)

// 画像 -> 物体ラベル
type Labeler interface {
	Labels(ctx context.Context, image []byte) ([]string, error)
}

// Camera はフレーム取得と物体検出をまとめた Detector
type Camera struct {
	source  FrameSource
	labeler Labeler
}

var _ usecase.Detector = (*Camera)(nil)

func NewCamera(source FrameSource, labeler Labeler) *Camera {
	return &Camera{source: source, labeler: labeler}
}

// NextFrameLabels は1フレーム読んでラベルを返す。
// 読めなければ usecase.ErrFrameRead、検出の失敗はそのまま返す。
// ctx の中断は ErrFrameRead にしない。
func (c *Camera) NextFrameLabels(ctx context.Context) ([]string, error) {
	frame, err := c.source.ReadFrame(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %v", usecase.ErrFrameRead, err)
	}

	labels, err := c.labeler.Labels(ctx, frame)
	if err != nil {
		return nil, fmt.Errorf("detect objects: %w", err)
	}
	return labels, nil
}

func (c *Camera) Close() error {
	return c.source.Close()
}

// CameraOpener はスキャン開始のたびに新しい FrameSource を開く。
type CameraOpener struct {
	open    func(ctx context.Context) (FrameSource, error)
	labeler Labeler
}

var _ usecase.CameraOpener = (*CameraOpener)(nil)

func NewCameraOpener(open func(ctx context.Context) (FrameSource, error), labeler Labeler) *CameraOpener {
	return &CameraOpener{open: open, labeler: labeler}
}

// フレームディレクトリ（FRAMES_DIR）かスナップショットURL（CAMERA_SNAPSHOT_URL）から開く
func NewConfiguredOpener(framesDir, snapshotURL string, labeler Labeler) *CameraOpener {
	return NewCameraOpener(func(ctx context.Context) (FrameSource, error) {
		switch {
		case snapshotURL != "":
			return NewHTTPSnapshotSource(snapshotURL, nil), nil
		case framesDir != "":
			return OpenDir(framesDir)
		default:
			return nil, fmt.Errorf("no camera configured (set FRAMES_DIR or CAMERA_SNAPSHOT_URL)")
		}
	}, labeler)
}

func (o *CameraOpener) Open(ctx context.Context) (usecase.Detector, error) {
	src, err := o.open(ctx)
	if err != nil {
		return nil, err
	}
	return NewCamera(src, o.labeler), nil
}
