package kafka_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/Merco74/ScoutPlateform/common/metrics"
	"github.com/Merco74/ScoutPlateform/internal/kafka"
	"github.com/Merco74/ScoutPlateform/internal/registration"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPublisher(t *testing.T) (*kafka.Publisher, *mocks.SyncProducer) {
	t.Helper()
	producer := mocks.NewSyncProducer(t, kafka.NewConfig())
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return kafka.NewPublisherWithProducer(producer, "registrations", logger, metrics.NewMock()), producer
}

func TestPublisher(t *testing.T) {
	t.Run("Publish_Success", func(t *testing.T) {
		publisher, producer := newPublisher(t)
		defer publisher.Close()

		id := uuid.New()
		producer.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
			if msg.Topic != "registrations" {
				return errors.New("unexpected topic " + msg.Topic)
			}
			key, _ := msg.Key.Encode()
			if string(key) != id.String() {
				return errors.New("unexpected key " + string(key))
			}
			value, _ := msg.Value.Encode()
			var event registration.RegistrationCreated
			if err := json.Unmarshal(value, &event); err != nil {
				return err
			}
			if event.Surname != "Durand" {
				return errors.New("unexpected surname " + event.Surname)
			}
			return nil
		})

		err := publisher.Publish(context.Background(), id.String(), registration.RegistrationCreated{
			ID:       id,
			Category: registration.CategoryGuide,
			Surname:  "Durand",
		})
		require.NoError(t, err)
	})

	t.Run("Publish_BrokerError", func(t *testing.T) {
		publisher, producer := newPublisher(t)
		defer publisher.Close()

		producer.ExpectSendMessageAndFail(sarama.ErrNotLeaderForPartition)

		err := publisher.Publish(context.Background(), "k", map[string]string{"a": "b"})
		assert.ErrorIs(t, err, sarama.ErrNotLeaderForPartition)
	})

	t.Run("Publish_Unmarshalable", func(t *testing.T) {
		publisher, _ := newPublisher(t)
		defer publisher.Close()

		err := publisher.Publish(context.Background(), "k", make(chan int))
		assert.Error(t, err)
	})
}
