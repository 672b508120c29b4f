package usecase

import (
	"context"
	"errors"
	"testing"

	"smartinventory/internal/domain/model"
	repo "smartinventory/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newScan(ledger *ledgerMock, det *fakeDetector) (*ScanUsecase, *fakeOpener) {
	opener := &fakeOpener{det: det}
	return NewScanUsecase(NewInventoryUsecase(ledger, nil, nil), opener, nil), opener
}

func TestScan_StartStopNoOps(t *testing.T) {
	det := &fakeDetector{}
	uc, opener := newScan(new(ledgerMock), det)
	ctx := context.Background()

	idle := NewScanSession("s1")
	//待機中の停止は何もしない
	s, err := uc.Stop(idle)
	require.NoError(t, err)
	assert.False(t, s.Active)
	assert.Equal(t, 0, det.closed)

	s, err = uc.Start(ctx, idle)
	require.NoError(t, err)
	assert.True(t, s.Active)

	//スキャン中の開始は何もしない（カメラを開き直さない）
	s, err = uc.Start(ctx, s)
	require.NoError(t, err)
	assert.True(t, s.Active)
	assert.Equal(t, 1, opener.opened)

	s, err = uc.Stop(s)
	require.NoError(t, err)
	assert.False(t, s.Active)
	assert.Equal(t, 1, det.closed)
	assert.Empty(t, s.SeenLabels())
}

func TestScan_StartCameraFailure(t *testing.T) {
	uc := NewScanUsecase(NewInventoryUsecase(new(ledgerMock), nil, nil), &fakeOpener{err: errors.New("no device")}, nil)

	s, err := uc.Start(context.Background(), NewScanSession("s1"))
	assert.ErrorIs(t, err, ErrAdapterFailure)
	assert.False(t, s.Active)
}

func TestScan_ProcessFrameRequiresActive(t *testing.T) {
	uc, _ := newScan(new(ledgerMock), &fakeDetector{})
	_, _, err := uc.ProcessFrame(context.Background(), NewScanSession("s1"))
	assert.ErrorIs(t, err, ErrNotScanning)
}

// 同じ商品が何フレーム写っても入庫は1回
func TestScan_FramesCountEachLabelOnce(t *testing.T) {
	ledger := new(ledgerMock)
	ledger.On("GetProductByName", mock.Anything, "Milk").Return(model.Product{ID: "P1", Name: "Milk", Stock: 5}, nil).Once()
	ledger.On("GetProductByName", mock.Anything, "toaster").Return(model.Product{}, repo.ErrNotFound).Once()
	ledger.On("ApplyMovement", mock.Anything, "P1", model.DirectionIn).Return(logFor(1, "P1", model.DirectionIn), nil).Once()

	det := &fakeDetector{frames: []frameStep{
		{labels: []string{"Milk", "toaster"}},
		{labels: []string{"milk", "MILK", "toaster"}},
	}}
	uc, _ := newScan(ledger, det)
	ctx := context.Background()

	s, err := uc.Start(ctx, NewScanSession("s1"))
	require.NoError(t, err)

	s, res, err := uc.ProcessFrame(ctx, s)
	require.NoError(t, err)
	require.Len(t, res.Outcomes, 2)
	assert.Equal(t, OutcomeAdjusted, res.Outcomes[0].Kind)
	assert.Equal(t, OutcomeUnknownProduct, res.Outcomes[1].Kind)

	s, res, err = uc.ProcessFrame(ctx, s)
	require.NoError(t, err)
	assert.Empty(t, res.Outcomes)
	assert.Equal(t, []string{"Milk", "toaster"}, s.SeenLabels())

	ledger.AssertExpectations(t)
}

func TestScan_ClassifierFailureSkipsFrame(t *testing.T) {
	ledger := new(ledgerMock)
	ledger.On("GetProductByName", mock.Anything, "Eggs").Return(model.Product{}, repo.ErrNotFound)

	det := &fakeDetector{frames: []frameStep{
		{err: errors.New("model timeout")},
		{labels: []string{"Eggs"}},
	}}
	uc, _ := newScan(ledger, det)
	ctx := context.Background()

	s, err := uc.Start(ctx, NewScanSession("s1"))
	require.NoError(t, err)

	s, res, err := uc.ProcessFrame(ctx, s)
	require.NoError(t, err)
	assert.True(t, res.Skipped)
	assert.NotEmpty(t, res.Notice)
	assert.True(t, s.Active)
	assert.Equal(t, 0, det.closed)

	s, res, err = uc.ProcessFrame(ctx, s)
	require.NoError(t, err)
	assert.False(t, res.Skipped)
	assert.True(t, s.HasSeen("eggs"))
}

func TestScan_FrameReadFailureReleasesCamera(t *testing.T) {
	det := &fakeDetector{} // 最初のフレームから読めない
	uc, _ := newScan(new(ledgerMock), det)
	ctx := context.Background()

	s, err := uc.Start(ctx, NewScanSession("s1"))
	require.NoError(t, err)

	s, res, err := uc.ProcessFrame(ctx, s)
	assert.ErrorIs(t, err, ErrFrameRead)
	assert.True(t, res.Stopped)
	assert.False(t, s.Active)
	assert.Equal(t, 1, det.closed)

	_, _, err = uc.ProcessFrame(ctx, s)
	assert.ErrorIs(t, err, ErrNotScanning)
}

func TestScan_StorageErrorRetriedNextFrame(t *testing.T) {
	ledger := new(ledgerMock)
	milk := model.Product{ID: "P1", Name: "Milk", Stock: 5}
	ledger.On("GetProductByName", mock.Anything, "Milk").Return(milk, nil)
	ledger.On("ApplyMovement", mock.Anything, "P1", model.DirectionIn).
		Return(model.MovementLog{}, repo.NewStorageError("apply movement", errors.New("busy"))).Once()
	ledger.On("ApplyMovement", mock.Anything, "P1", model.DirectionIn).
		Return(logFor(3, "P1", model.DirectionIn), nil).Once()

	det := &fakeDetector{frames: []frameStep{
		{labels: []string{"Milk"}},
		{labels: []string{"Milk"}},
	}}
	uc, _ := newScan(ledger, det)
	ctx := context.Background()

	s, err := uc.Start(ctx, NewScanSession("s1"))
	require.NoError(t, err)

	s, res, err := uc.ProcessFrame(ctx, s)
	require.Error(t, err)
	assert.True(t, repo.IsStorageError(err))
	assert.True(t, s.Active)
	assert.False(t, s.HasSeen("Milk"))
	require.Len(t, res.Outcomes, 1)
	assert.Equal(t, OutcomeFailed, res.Outcomes[0].Kind)
	assert.Equal(t, 1, res.Failed())

	s, res, err = uc.ProcessFrame(ctx, s)
	require.NoError(t, err)
	require.Len(t, res.Outcomes, 1)
	assert.Equal(t, OutcomeAdjusted, res.Outcomes[0].Kind)
	assert.True(t, s.HasSeen("Milk"))

	ledger.AssertExpectations(t)
}

func TestScanSession_WithSeenDoesNotMutateOriginal(t *testing.T) {
	a := NewScanSession("s1").WithSeen("Milk")
	b := a.WithSeen("Bread")

	assert.Equal(t, []string{"Milk"}, a.SeenLabels())
	assert.Equal(t, []string{"Milk", "Bread"}, b.SeenLabels())
	assert.Equal(t, b, b.WithSeen("BREAD"))
}

// 1ラベルだけ保存に失敗しても、記録できたラベルは結果に残る
func TestScan_PartialFailureKeepsCommittedOutcomes(t *testing.T) {
	ledger := new(ledgerMock)
	ledger.On("GetProductByName", mock.Anything, "milk").Return(model.Product{ID: "P1", Name: "Milk", Stock: 5}, nil)
	ledger.On("GetProductByName", mock.Anything, "eggs").Return(model.Product{ID: "P2", Name: "Eggs", Stock: 2}, nil)
	ledger.On("ApplyMovement", mock.Anything, "P1", model.DirectionIn).Return(logFor(1, "P1", model.DirectionIn), nil).Once()
	ledger.On("ApplyMovement", mock.Anything, "P2", model.DirectionIn).
		Return(model.MovementLog{}, repo.NewStorageError("apply movement", errors.New("disk full"))).Once()

	det := &fakeDetector{frames: []frameStep{{labels: []string{"milk", "eggs"}}}}
	uc, _ := newScan(ledger, det)
	ctx := context.Background()

	s, err := uc.Start(ctx, NewScanSession("s1"))
	require.NoError(t, err)

	s, res, err := uc.ProcessFrame(ctx, s)
	assert.True(t, repo.IsStorageError(err))
	require.Len(t, res.Outcomes, 2)
	assert.Equal(t, OutcomeAdjusted, res.Outcomes[0].Kind)
	require.NotNil(t, res.Outcomes[0].Log)
	assert.Equal(t, int64(1), res.Outcomes[0].Log.LogID)
	assert.Equal(t, OutcomeFailed, res.Outcomes[1].Kind)
	assert.Equal(t, "eggs", res.Outcomes[1].Label)
	assert.NotEmpty(t, res.Outcomes[1].Error)
	assert.True(t, s.HasSeen("milk"))
	assert.False(t, s.HasSeen("eggs"))
	assert.True(t, s.Active)

	ledger.AssertExpectations(t)
}

// 呼び出し側の中断ではセッションを止めない
func TestScan_CancelledContextKeepsSession(t *testing.T) {
	det := &fakeDetector{frames: []frameStep{{labels: []string{"Milk"}}}}
	uc, _ := newScan(new(ledgerMock), det)

	s, err := uc.Start(context.Background(), NewScanSession("s1"))
	require.NoError(t, err)
	s = s.WithSeen("Bread")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s, res, err := uc.ProcessFrame(ctx, s)
	require.NoError(t, err)
	assert.True(t, res.Skipped)
	assert.False(t, res.Stopped)
	assert.True(t, s.Active)
	assert.True(t, s.HasSeen("Bread"))
	assert.Equal(t, 0, det.closed)
	assert.Equal(t, 0, det.next)
}
