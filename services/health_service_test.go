package services

import (
	"context"
	"errors"
	"testing"

	"github.com/NomadCrew/itinerary-builder/types"
	"github.com/go-redis/redismock/v9"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newHealthMocks(t *testing.T) (pgxmock.PgxPoolIface, redismock.ClientMock, *HealthService) {
	t.Helper()
	mockDB, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mockDB.Close)

	redisClient, redisMock := redismock.NewClientMock()
	t.Cleanup(func() { _ = redisClient.Close() })

	return mockDB, redisMock, NewHealthService(mockDB, redisClient, "1.2.3")
}

func TestHealthService_CheckHealth_AllUp(t *testing.T) {
	mockDB, redisMock, svc := newHealthMocks(t)
	mockDB.ExpectPing()
	redisMock.ExpectPing().SetVal("PONG")

	health := svc.CheckHealth(context.Background())

	assert.Equal(t, types.HealthStatusUp, health.Status)
	assert.Equal(t, types.HealthStatusUp, health.Components["database"].Status)
	assert.Equal(t, types.HealthStatusUp, health.Components["redis"].Status)
	assert.Equal(t, "1.2.3", health.Version)
	assert.NotEmpty(t, health.Timestamp)
	assert.NotEmpty(t, health.Uptime)
	assert.NoError(t, mockDB.ExpectationsWereMet())
	assert.NoError(t, redisMock.ExpectationsWereMet())
}

func TestHealthService_CheckHealth_DatabaseDown(t *testing.T) {
	mockDB, redisMock, svc := newHealthMocks(t)
	mockDB.ExpectPing().WillReturnError(errors.New("connection refused"))
	redisMock.ExpectPing().SetVal("PONG")

	health := svc.CheckHealth(context.Background())

	assert.Equal(t, types.HealthStatusDown, health.Status)
	assert.Equal(t, types.HealthComponent{
		Status:  types.HealthStatusDown,
		Details: "Database connection failed",
	}, health.Components["database"])
}

func TestHealthService_CheckHealth_RedisDownDegrades(t *testing.T) {
	mockDB, redisMock, svc := newHealthMocks(t)
	mockDB.ExpectPing()
	redisMock.ExpectPing().SetErr(errors.New("redis: connection pool timeout"))

	health := svc.CheckHealth(context.Background())

	assert.Equal(t, types.HealthStatusDegraded, health.Status)
	assert.Equal(t, types.HealthStatusUp, health.Components["database"].Status)
	assert.Equal(t, types.HealthStatusDegraded, health.Components["redis"].Status)
}

func TestHealthService_CheckHealth_NotConfigured(t *testing.T) {
	svc := NewHealthService(nil, nil, "dev")

	health := svc.CheckHealth(context.Background())

	assert.Equal(t, types.HealthStatusDown, health.Status)
	assert.Equal(t, "Database not configured", health.Components["database"].Details)
	assert.Equal(t, "Redis not configured", health.Components["redis"].Details)
}
