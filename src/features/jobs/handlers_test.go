package jobs

import (
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zqily/FNote-v2/src/features/config"
)

func TestListJobsPrunesStaleTerminalJobs(t *testing.T) {
	service := NewService(&config.Jobs{})
	now := time.Now()
	stale := now.Add(-48 * time.Hour)

	logPath := filepath.Join(t.TempDir(), "stale.log")
	require.NoError(t, os.WriteFile(logPath, []byte("done"), 0644))

	service.jobs["stale"] = &Job{
		ID: "stale", Type: "t", Status: JobStatusCompleted,
		CreatedAt: stale, UpdatedAt: stale, LogPath: logPath,
	}
	service.jobs["fresh"] = &Job{
		ID: "fresh", Type: "t", Status: JobStatusCompleted,
		CreatedAt: now, UpdatedAt: now,
	}
	service.jobs["old-running"] = &Job{
		ID: "old-running", Type: "t", Status: JobStatusRunning,
		CreatedAt: stale, UpdatedAt: stale,
	}

	app := fiber.New()
	RegisterRoutes(app, service)

	resp, err := app.Test(httptest.NewRequest("GET", "/jobs", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	_, ok := service.GetJob("stale")
	assert.False(t, ok, "stale terminal job survived the listing")
	_, ok = service.GetJob("fresh")
	assert.True(t, ok)
	_, ok = service.GetJob("old-running")
	assert.True(t, ok, "running jobs must never be pruned")

	_, err = os.Stat(logPath)
	assert.True(t, os.IsNotExist(err), "stale job log file should be removed")
}
