package idempotency

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingStore struct {
	setNXResult bool
	setNXError  error

	setKeys    []string
	setTTLs    []time.Duration
	deleteKeys []string
}

func (s *recordingStore) Get(context.Context, string) (string, error) {
	return "", nil
}

func (s *recordingStore) SetNX(_ context.Context, key string, _ any, ttl time.Duration) (bool, error) {
	s.setKeys = append(s.setKeys, key)
	s.setTTLs = append(s.setTTLs, ttl)
	return s.setNXResult, s.setNXError
}

func (s *recordingStore) IdempotencyKey(scope, id string) string {
	return "hk:idempotency:" + scope + ":" + id
}

func (s *recordingStore) Del(_ context.Context, keys ...string) error {
	s.deleteKeys = append(s.deleteKeys, keys...)
	return nil
}

func TestFirstEventClaimsProcessedMark(t *testing.T) {
	store := &recordingStore{setNXResult: true}
	manager, err := NewManager(store, 24*time.Hour)
	require.NoError(t, err)

	eventID := uuid.New()
	already, err := manager.CheckAndMarkProcessed(context.Background(), "analytics", eventID)
	require.NoError(t, err)
	assert.False(t, already)

	require.Len(t, store.setKeys, 1)
	assert.Equal(t, "hk:idempotency:evt:processed:analytics:"+eventID.String(), store.setKeys[0])
	assert.Equal(t, 24*time.Hour, store.setTTLs[0])
}

func TestDuplicateEventReportsAlreadyProcessed(t *testing.T) {
	store := &recordingStore{setNXResult: false}
	manager, err := NewManager(store, 12*time.Hour)
	require.NoError(t, err)

	already, err := manager.CheckAndMarkProcessed(context.Background(), "analytics", uuid.New())
	require.NoError(t, err)
	assert.True(t, already)
}

func TestStoreFailureSurfaces(t *testing.T) {
	store := &recordingStore{setNXError: errors.New("redis down")}
	manager, err := NewManager(store, time.Hour)
	require.NoError(t, err)

	_, err = manager.CheckAndMarkProcessed(context.Background(), "analytics", uuid.New())
	require.Error(t, err)
}

func TestDeleteClearsProcessedMark(t *testing.T) {
	store := &recordingStore{}
	manager, err := NewManager(store, time.Hour)
	require.NoError(t, err)

	eventID := uuid.New()
	require.NoError(t, manager.Delete(context.Background(), "analytics", eventID))
	require.Len(t, store.deleteKeys, 1)
	assert.Equal(t, "hk:idempotency:evt:processed:analytics:"+eventID.String(), store.deleteKeys[0])
}
