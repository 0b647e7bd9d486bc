package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitLoggerWritesRotatingFile(t *testing.T) {
	dir := t.TempDir()

	logger, err := InitLogger("vessel-booking", dir, false)
	require.NoError(t, err)

	logger.Info("booking created")
	_ = logger.Sync()

	content, err := os.ReadFile(filepath.Join(dir, "vessel-booking.log"))
	require.NoError(t, err)
	assert.Contains(t, string(content), "booking created")
	assert.Contains(t, string(content), `"logger":"vessel-booking"`)
}

func TestInitLoggerWithoutFileSink(t *testing.T) {
	logger, err := InitLogger("vessel-booking", "", true)
	require.NoError(t, err)
	assert.NotNil(t, logger)
}
