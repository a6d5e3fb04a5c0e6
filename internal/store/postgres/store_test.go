package postgres

import (
	"context"
	"flag"
	"log"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/shrimpsizemoose/appello/internal/models"
	"github.com/shrimpsizemoose/appello/internal/store"
	"github.com/shrimpsizemoose/appello/internal/store/storetest"
)

// setupContainer starts a throwaway Postgres and returns its DSN
func setupContainer(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(
		ctx,
		"postgres:16-alpine",
		testcontainers.WithEnv(map[string]string{
			"POSTGRES_DB":       "testdb",
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
		}),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			log.Printf("Failed to terminate container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	return dsn
}

// freshStore wipes the public schema and migrates it again
func freshStore(t *testing.T, dsn string) *PostgresStore {
	t.Helper()

	s, err := NewPostgresStore(dsn, "")
	require.NoError(t, err, "Failed to create store")

	_, err = s.DB.Exec(`DROP SCHEMA public CASCADE; CREATE SCHEMA public;`)
	require.NoError(t, err, "Failed to reset schema")
	require.NoError(t, s.ApplyMigrations(""), "Failed to apply migrations")

	t.Cleanup(func() {
		s.Close()
	})
	return s
}

func TestMain(m *testing.M) {
	flag.Parse()
	if testing.Short() {
		log.Println("Skipping Postgres store tests in short mode")
		os.Exit(0)
	}

	log.Println("Starting Postgres store tests...")
	code := m.Run()
	log.Println("Finished Postgres store tests")
	os.Exit(code)
}

func TestQuerySuite(t *testing.T) {
	dsn := setupContainer(t)
	storetest.RunQuerySuite(t, func(t *testing.T) store.Store {
		return freshStore(t, dsn)
	})
}

func TestLockedSetResultSerializes(t *testing.T) {
	dsn := setupContainer(t)
	s := freshStore(t, dsn)
	ctx := context.Background()
	f := storetest.Seed(t, s)
	regIDs := f.Register(t, s)

	locked := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)

	go func() {
		done <- s.InTx(ctx, func(tx store.Tx) error {
			if _, err := tx.LockRegistration(ctx, regIDs[0]); err != nil {
				return err
			}
			close(locked)
			<-release
			_, err := tx.UpdateRegistrationResult(ctx, regIDs[0], models.StatusNotEntered, models.StatusEntered, models.Result30)
			return err
		})
	}()

	<-locked
	second := make(chan int64, 1)
	go func() {
		var n int64
		err := s.InTx(ctx, func(tx store.Tx) error {
			reg, err := tx.LockRegistration(ctx, regIDs[0])
			if err != nil {
				return err
			}
			n, err = tx.UpdateRegistrationResult(ctx, reg.ID, models.StatusNotEntered, models.StatusEntered, models.Result18)
			return err
		})
		assert.NoError(t, err)
		second <- n
	}()

	close(release)
	require.NoError(t, <-done)
	// the second writer observed the committed row and its predicate no longer matched
	assert.Equal(t, int64(0), <-second)

	reg, err := s.GetRegistration(ctx, regIDs[0])
	require.NoError(t, err)
	assert.Equal(t, models.Result30, reg.Result)
}
