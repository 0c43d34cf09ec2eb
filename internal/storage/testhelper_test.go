//go:build integration

package storage_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/mahdighaemi123/ActCastBot/internal/storage"
)

var (
	sharedDB       *storage.DB
	mongoContainer testcontainers.Container
)

// TestMain sets up a shared MongoDB container for all integration tests.
func TestMain(m *testing.M) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "mongo:7",
		ExposedPorts: []string{"27017/tcp"},
		WaitingFor: wait.ForLog("Waiting for connections").
			WithStartupTimeout(60 * time.Second),
	}

	var err error
	mongoContainer, err = testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to start mongo container: %v\n", err)
		os.Exit(1)
	}

	host, err := mongoContainer.Host(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to get container host: %v\n", err)
		os.Exit(1)
	}
	port, err := mongoContainer.MappedPort(ctx, "27017")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to get container port: %v\n", err)
		os.Exit(1)
	}

	url := fmt.Sprintf("mongodb://%s:%s", host, port.Port())
	sharedDB, err = storage.NewDB(ctx, url, "act_cast_test", 10*time.Second)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create DB: %v\n", err)
		os.Exit(1)
	}

	code := m.Run()

	sharedDB.Close(ctx)
	if err := mongoContainer.Terminate(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "failed to terminate container: %v\n", err)
	}

	os.Exit(code)
}

// dropCollections clears state between tests sharing the container.
func dropCollections(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	for _, name := range []string{
		storage.CollUsers, storage.CollCasts, storage.CollSurveys,
		storage.CollBatches, storage.CollLogs,
	} {
		if err := sharedDB.Database.Collection(name).Drop(ctx); err != nil {
			t.Fatalf("drop %s: %v", name, err)
		}
	}
}
