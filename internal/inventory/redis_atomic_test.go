package inventory

import (
	"context"
	"errors"
	"testing"

	"eventx/internal/shared/constants"

	"github.com/go-redis/redismock/v9"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAtomicCounterOps_Reserve(t *testing.T) {
	client, mock := redismock.NewClientMock()
	ops := NewAtomicCounterOps(client)
	eventID := uuid.New()
	keys := []string{constants.BuildAvailableCounterKey(eventID.String())}

	mock.ExpectEvalSha(luaAtomicReserve, keys, 2).SetErr(errors.New("NOSCRIPT"))
	mock.ExpectEval(luaAtomicReserve, keys, 2).SetVal([]interface{}{int64(1), "8"})

	remaining, err := ops.Reserve(context.Background(), eventID, 2)
	require.NoError(t, err)
	assert.Equal(t, 8, remaining)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAtomicCounterOps_ReserveInsufficient(t *testing.T) {
	client, mock := redismock.NewClientMock()
	ops := NewAtomicCounterOps(client)
	eventID := uuid.New()
	keys := []string{constants.BuildAvailableCounterKey(eventID.String())}

	mock.ExpectEvalSha(luaAtomicReserve, keys, 5).SetErr(errors.New("NOSCRIPT"))
	mock.ExpectEval(luaAtomicReserve, keys, 5).SetVal([]interface{}{int64(0), "3"})

	_, err := ops.Reserve(context.Background(), eventID, 5)
	assert.ErrorIs(t, err, ErrInsufficientInventory)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAtomicCounterOps_ReserveUnprimed(t *testing.T) {
	client, mock := redismock.NewClientMock()
	ops := NewAtomicCounterOps(client)
	eventID := uuid.New()
	keys := []string{constants.BuildAvailableCounterKey(eventID.String())}

	mock.ExpectEvalSha(luaAtomicReserve, keys, 1).SetErr(errors.New("NOSCRIPT"))
	mock.ExpectEval(luaAtomicReserve, keys, 1).SetVal([]interface{}{int64(0), "counter_missing"})

	_, err := ops.Reserve(context.Background(), eventID, 1)
	assert.ErrorIs(t, err, ErrEventNotFound)
}

func TestAtomicCounterOps_ReleaseClamped(t *testing.T) {
	client, mock := redismock.NewClientMock()
	ops := NewAtomicCounterOps(client)
	eventID := uuid.New()
	keys := []string{
		constants.BuildAvailableCounterKey(eventID.String()),
		constants.BuildTotalCounterKey(eventID.String()),
	}

	mock.ExpectEvalSha(luaAtomicRelease, keys, 4).SetErr(errors.New("NOSCRIPT"))
	mock.ExpectEval(luaAtomicRelease, keys, 4).SetVal([]interface{}{int64(2), "10"})

	clamped, err := ops.Release(context.Background(), eventID, 4)
	assert.ErrorIs(t, err, ErrConsistency)
	assert.Equal(t, 10, clamped)
}

func TestAtomicCounterOps_Release(t *testing.T) {
	client, mock := redismock.NewClientMock()
	ops := NewAtomicCounterOps(client)
	eventID := uuid.New()
	keys := []string{
		constants.BuildAvailableCounterKey(eventID.String()),
		constants.BuildTotalCounterKey(eventID.String()),
	}

	mock.ExpectEvalSha(luaAtomicRelease, keys, 1).SetErr(errors.New("NOSCRIPT"))
	mock.ExpectEval(luaAtomicRelease, keys, 1).SetVal([]interface{}{int64(1), "6"})

	updated, err := ops.Release(context.Background(), eventID, 1)
	require.NoError(t, err)
	assert.Equal(t, 6, updated)
}

func TestAtomicCounterOps_Prime(t *testing.T) {
	client, mock := redismock.NewClientMock()
	ops := NewAtomicCounterOps(client)
	eventID := uuid.New()

	mock.ExpectTxPipeline()
	mock.ExpectSet(constants.BuildAvailableCounterKey(eventID.String()), 7, 0).SetVal("OK")
	mock.ExpectSet(constants.BuildTotalCounterKey(eventID.String()), 10, 0).SetVal("OK")
	mock.ExpectTxPipelineExec()

	err := ops.Prime(context.Background(), eventID, 7, 10)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAtomicCounterOps_Forget(t *testing.T) {
	client, mock := redismock.NewClientMock()
	ops := NewAtomicCounterOps(client)
	eventID := uuid.New()

	mock.ExpectDel(
		constants.BuildAvailableCounterKey(eventID.String()),
		constants.BuildTotalCounterKey(eventID.String()),
	).SetVal(2)

	err := ops.Forget(context.Background(), eventID)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
