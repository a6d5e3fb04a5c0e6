package app

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/shrimpsizemoose/appello/internal/models"
	"github.com/shrimpsizemoose/appello/internal/store"
)

// setupRedis starts a throwaway redis and returns its URL
func setupRedis(t *testing.T) string {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping redis tests in short mode")
	}
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		container.Terminate(ctx)
	})

	endpoint, err := container.Endpoint(ctx, "")
	require.NoError(t, err)
	return fmt.Sprintf("redis://%s/0", endpoint)
}

func TestTokenRoundTrip(t *testing.T) {
	url := setupRedis(t)
	ctx := context.Background()

	config := testConfig()
	config.Server.EnableAuth = true
	config.Auth.RedisURL = url
	config.applyDefaults()

	tm, err := NewTokenManagerFromConfig(config)
	require.NoError(t, err)
	defer tm.Close()

	info, isNew, err := tm.FetchOrCreateToken(ctx, models.RoleProfessor, "7")
	require.NoError(t, err)
	assert.True(t, isNew)
	assert.Equal(t, 1, info.RequestCount)

	again, isNew, err := tm.FetchOrCreateToken(ctx, models.RoleProfessor, "7")
	require.NoError(t, err)
	assert.False(t, isNew)
	assert.Equal(t, info.Token, again.Token)
	assert.Equal(t, 2, again.RequestCount)

	_, _, err = tm.FetchOrCreateToken(ctx, models.Role("admin"), "7")
	assert.Error(t, err)

	svc, err := NewServiceFromConfig(config)
	require.NoError(t, err)
	defer svc.Close()

	request := func(token string) *http.Request {
		r := httptest.NewRequest(http.MethodPost, "/api/professor/exam/1/publish", nil)
		r.Header.Set("X-User-ID", "7")
		if token != "" {
			r.Header.Set("Authorization", "Bearer "+token)
		}
		return r
	}

	user, err := svc.Authenticate(request(info.Token), models.RoleProfessor)
	require.NoError(t, err)
	assert.Equal(t, "7", user)

	_, err = svc.Authenticate(request(info.Token), models.RoleStudent)
	assert.Error(t, err, "a professor token is not a student token")

	_, err = svc.Authenticate(request("sk-appello-wrong"), models.RoleProfessor)
	assert.Error(t, err)

	_, err = svc.Authenticate(request(""), models.RoleProfessor)
	assert.Error(t, err)

	require.NoError(t, tm.RevokeToken(ctx, models.RoleProfessor, "7"))
	_, err = svc.Authenticate(request(info.Token), models.RoleProfessor)
	assert.Error(t, err)
}

func TestReportCacheRoundTrip(t *testing.T) {
	url := setupRedis(t)
	ctx := context.Background()

	opt, err := redis.ParseURL(url)
	require.NoError(t, err)
	cache := NewReportCache(redis.NewClient(opt), "report", time.Minute)
	defer cache.Close()

	order := store.ParseSort("student.surname", "desc")

	got, err := cache.Get(ctx, 3, order)
	require.NoError(t, err)
	assert.Nil(t, got)

	reportID := int64(9)
	snapshot := &models.ReportSnapshot{
		Report: models.ReportView{
			Report:     models.Report{ID: 3, ExamID: 2, CreatedAt: 1719828000},
			CourseName: "Databases",
		},
		Registrations: []models.RegistrationView{{
			Registration: models.Registration{
				ID: 11, StudentID: 5, ExamID: 2,
				Status: models.StatusRecorded, Result: models.Result30CumLaude, ReportID: &reportID,
			},
			StudentSurname: "Rossi",
		}},
	}
	require.NoError(t, cache.Set(ctx, 3, order, snapshot))

	got, err = cache.Get(ctx, 3, order)
	require.NoError(t, err)
	assert.Equal(t, snapshot, got)

	other, err := cache.Get(ctx, 3, store.ParseSort("student.surname", "asc"))
	require.NoError(t, err)
	assert.Nil(t, other, "each sort order is cached separately")
}
