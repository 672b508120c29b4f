package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"smartinventory/internal/domain/model"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type producerMock struct{ mock.Mock }

func (m *producerMock) WriteMessage(ctx context.Context, msg kafka.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

func (m *producerMock) Close() error {
	return m.Called().Error(0)
}

func TestPublishMovement(t *testing.T) {
	at := time.Date(2024, 5, 1, 9, 30, 0, 0, time.Local)
	log := model.NewMovementLog("P1", model.DirectionOut, at)
	log.LogID = 42

	pm := new(producerMock)
	pm.On("WriteMessage", mock.Anything, mock.MatchedBy(func(msg kafka.Message) bool {
		var ev MovementEvent
		if err := json.Unmarshal(msg.Value, &ev); err != nil {
			return false
		}
		return string(msg.Key) == "P1" &&
			ev.LogID == 42 &&
			ev.Direction == "OUT" &&
			ev.Timestamp == at.Format(time.RFC3339)
	})).Return(nil).Once()

	err := NewKafkaPublisher(pm, nil).PublishMovement(context.Background(), log)
	require.NoError(t, err)
	pm.AssertExpectations(t)
}

func TestPublishMovement_ProducerError(t *testing.T) {
	pm := new(producerMock)
	boom := errors.New("broker down")
	pm.On("WriteMessage", mock.Anything, mock.Anything).Return(boom)

	err := NewKafkaPublisher(pm, nil).PublishMovement(context.Background(), model.NewMovementLog("P1", model.DirectionIn, time.Now()))
	assert.ErrorIs(t, err, boom)
}
