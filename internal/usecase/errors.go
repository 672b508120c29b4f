package usecase

import "errors"

var (
	// 入力が不正（空のID、不正な向きなど）
	ErrInvalidInput = errors.New("invalid input")

	// 外部の識別器・カメラが失敗した。セッションは止めない。
	ErrAdapterFailure = errors.New("adapter failure")

	// カメラからフレームが読めない。カメラを解放してセッションを止める。
	ErrFrameRead = errors.New("frame read failed")

	// スキャン中でないセッションにフレームを送った
	ErrNotScanning = errors.New("scan session is not active")
)
