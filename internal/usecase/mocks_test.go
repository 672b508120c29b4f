package usecase

import (
	"context"

	"smartinventory/internal/domain/model"

	"github.com/stretchr/testify/mock"
)

type ledgerMock struct{ mock.Mock }

func (m *ledgerMock) InitSchema(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *ledgerMock) GetProduct(ctx context.Context, id string) (model.Product, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.Product), args.Error(1)
}

func (m *ledgerMock) GetProductByName(ctx context.Context, name string) (model.Product, error) {
	args := m.Called(ctx, name)
	return args.Get(0).(model.Product), args.Error(1)
}

func (m *ledgerMock) ListProducts(ctx context.Context) ([]model.Product, error) {
	args := m.Called(ctx)
	return args.Get(0).([]model.Product), args.Error(1)
}

func (m *ledgerMock) UpsertProduct(ctx context.Context, p model.Product) (model.Product, error) {
	args := m.Called(ctx, p)
	return args.Get(0).(model.Product), args.Error(1)
}

func (m *ledgerMock) UpsertProducts(ctx context.Context, products []model.Product) error {
	return m.Called(ctx, products).Error(0)
}

func (m *ledgerMock) ListLogs(ctx context.Context) ([]model.MovementLog, error) {
	args := m.Called(ctx)
	return args.Get(0).([]model.MovementLog), args.Error(1)
}

func (m *ledgerMock) ApplyMovement(ctx context.Context, productID string, dir model.Direction) (model.MovementLog, error) {
	args := m.Called(ctx, productID, dir)
	return args.Get(0).(model.MovementLog), args.Error(1)
}

type publisherMock struct{ mock.Mock }

func (m *publisherMock) PublishMovement(ctx context.Context, log model.MovementLog) error {
	return m.Called(ctx, log).Error(0)
}

// フレームごとに決めた結果を返すカメラ
type fakeDetector struct {
	frames []frameStep
	next   int
	closed int
}

type frameStep struct {
	labels []string
	err    error
}

func (d *fakeDetector) NextFrameLabels(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if d.next >= len(d.frames) {
		return nil, ErrFrameRead
	}
	f := d.frames[d.next]
	d.next++
	return f.labels, f.err
}

func (d *fakeDetector) Close() error {
	d.closed++
	return nil
}

type fakeOpener struct {
	det    *fakeDetector
	err    error
	opened int
}

func (o *fakeOpener) Open(context.Context) (Detector, error) {
	if o.err != nil {
		return nil, o.err
	}
	o.opened++
	return o.det, nil
}
