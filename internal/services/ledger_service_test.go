package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tranxledger/internal/amqp"
	"tranxledger/internal/core"
	"tranxledger/internal/history"
	"tranxledger/internal/storage/memory"
)

type fakePublisher struct {
	mu       sync.Mutex
	messages []*amqp.TranxRecordedMessage
	err      error
	closed   bool
	closeErr error
}

func (p *fakePublisher) PublishTranxRecorded(_ context.Context, msg *amqp.TranxRecordedMessage) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.messages = append(p.messages, msg)
	return nil
}

func (p *fakePublisher) Close() error {
	p.closed = true
	return p.closeErr
}

func newService(t *testing.T, pub Publisher) *LedgerService {
	t.Helper()
	h := history.New()
	require.NoError(t, h.Init(context.Background(), func(context.Context) (history.Store, error) {
		return memory.New(), nil
	}))
	return NewLedgerService(h, pub)
}

func request(tid string) RecordRequest {
	return RecordRequest{
		TID:       tid,
		Purpose:   core.PurposePayment,
		Amount:    core.Amount{Currency: "EUR", Value: 4, Fraction: 50_000_000},
		Direction: core.Outgoing,
		Moment:    core.MomentFromEpochMillis(1_700_000_000_000),
	}
}

func TestRecordPublishesAfterWrite(t *testing.T) {
	pub := &fakePublisher{}
	svc := newService(t, pub)
	ctx := context.Background()

	tranx, err := svc.Record(ctx, request("tid-1"))
	require.NoError(t, err)
	assert.NotZero(t, tranx.ID)

	require.Len(t, pub.messages, 1)
	msg := pub.messages[0]
	assert.Equal(t, tranx.ID, msg.ID)
	assert.Equal(t, "tid-1", msg.TID)
	assert.Equal(t, "outgoing", msg.Direction)
	assert.Equal(t, "payment", msg.Purpose)
	assert.Equal(t, "EUR:4.5", msg.Amount)
	assert.Equal(t, int64(1_700_000_000_000), msg.EpochMillis)

	got, err := svc.History().GetHistory(ctx)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestRecordFailureDoesNotPublish(t *testing.T) {
	pub := &fakePublisher{}
	svc := newService(t, pub)

	req := request("bad")
	req.Direction = "sideways"
	_, err := svc.Record(context.Background(), req)
	assert.ErrorIs(t, err, core.ErrInvalidTranx)
	assert.Empty(t, pub.messages)
}

func TestRecordSurvivesPublishFailure(t *testing.T) {
	pub := &fakePublisher{err: amqp.ErrCircuitOpen}
	svc := newService(t, pub)
	ctx := context.Background()

	tranx, err := svc.Record(ctx, request("tid-2"))
	require.NoError(t, err)
	assert.NotZero(t, tranx.ID)

	got, err := svc.History().GetHistory(ctx)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestRecordWithoutPublisher(t *testing.T) {
	svc := newService(t, nil)

	_, err := svc.Record(context.Background(), request("tid-3"))
	assert.NoError(t, err)
	assert.NoError(t, svc.Close())
}

func TestRecordBeforeInit(t *testing.T) {
	svc := NewLedgerService(history.New(), nil)

	_, err := svc.Record(context.Background(), request("tid-4"))
	assert.ErrorIs(t, err, core.ErrNotInitialized)
}

func TestCloseClosesPublisher(t *testing.T) {
	pub := &fakePublisher{closeErr: errors.New("already closed")}
	svc := newService(t, pub)

	err := svc.Close()
	assert.True(t, pub.closed)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "amqp")
}
