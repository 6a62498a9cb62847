package event

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleEvent() BookingEvent {
	return BookingEvent{
		Type:       BookingCreated,
		BookingID:  "b-1",
		ListingID:  "l-1",
		GuestID:    "guest",
		HostID:     "host",
		ActorID:    "guest",
		Status:     "pending",
		StartDate:  "2024-03-01",
		EndDate:    "2024-03-04",
		TotalPrice: 30000,
		OccurredAt: time.Date(2024, 2, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestKafkaPublisherSendsJSON(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	producer.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
		var got BookingEvent
		if err := json.Unmarshal(val, &got); err != nil {
			return err
		}
		if got.Type != BookingCreated || got.BookingID != "b-1" {
			return fmt.Errorf("unexpected event %+v", got)
		}
		if !bytes.Contains(val, []byte(`"total_price":300.00`)) {
			return fmt.Errorf("total_price not encoded as money: %s", val)
		}
		return nil
	})

	pub := newKafkaPublisher(producer, "booking-events")
	require.NoError(t, pub.Publish(context.Background(), sampleEvent()))
	require.NoError(t, pub.Close())
}

func TestKafkaPublisherReportsFailure(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	producer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	pub := newKafkaPublisher(producer, "booking-events")
	err := pub.Publish(context.Background(), sampleEvent())

	assert.True(t, errors.Is(err, sarama.ErrOutOfBrokers))
	require.NoError(t, pub.Close())
}

func TestKafkaPublisherHonorsCancelledContext(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	pub := newKafkaPublisher(producer, "booking-events")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, pub.Publish(ctx, sampleEvent()), context.Canceled)
	require.NoError(t, pub.Close())
}

func TestLogPublisher(t *testing.T) {
	var buf bytes.Buffer
	pub := NewLogPublisher(slog.New(slog.NewJSONHandler(&buf, nil)))

	require.NoError(t, pub.Publish(context.Background(), sampleEvent()))
	assert.Contains(t, buf.String(), `"type":"booking.created"`)
	assert.Contains(t, buf.String(), `"booking_id":"b-1"`)
}
