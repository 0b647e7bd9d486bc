package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnumerateDaysExcludesDeparture(t *testing.T) {
	start, err := ParseDate("2025-06-01")
	require.NoError(t, err)
	end, err := ParseDate("2025-06-06")
	require.NoError(t, err)

	days := EnumerateDays(start, end)
	require.Len(t, days, 5)
	assert.Equal(t, "2025-06-01", FormatDate(days[0]))
	assert.Equal(t, "2025-06-05", FormatDate(days[4]))
	assert.Equal(t, 5, NightsBetween(start, end))
}

func TestEnumerateDaysAcrossMonthEnd(t *testing.T) {
	start := time.Date(2025, 2, 27, 15, 30, 0, 0, time.UTC)
	end := time.Date(2025, 3, 2, 9, 0, 0, 0, time.UTC)

	days := EnumerateDays(start, end)
	require.Len(t, days, 3)
	assert.Equal(t, "2025-03-01", FormatDate(days[2]))
}

func TestEnumerateDaysEmptyRange(t *testing.T) {
	day, _ := ParseDate("2025-06-01")
	assert.Empty(t, EnumerateDays(day, day))
	assert.Empty(t, EnumerateDays(day.AddDate(0, 0, 1), day))
	assert.Equal(t, -1, NightsBetween(day.AddDate(0, 0, 1), day))
}

func TestParseDateRejectsGarbage(t *testing.T) {
	_, err := ParseDate("06/01/2025")
	assert.Error(t, err)
}
