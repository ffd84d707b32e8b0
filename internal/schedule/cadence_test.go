package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var anchor = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

func TestDailyFiresAtMidnight(t *testing.T) {
	cadence, err := Daily(anchor)
	require.NoError(t, err)

	next := cadence.Next(time.Date(2024, time.June, 15, 13, 45, 0, 0, time.UTC))

	assert.Equal(t, time.Date(2024, time.June, 16, 0, 0, 0, 0, time.UTC), next)
}

func TestHourlyFiresAtTopOfHour(t *testing.T) {
	cadence, err := Hourly(anchor)
	require.NoError(t, err)

	next := cadence.Next(time.Date(2024, time.June, 15, 13, 20, 0, 0, time.UTC))

	assert.Equal(t, time.Date(2024, time.June, 15, 14, 0, 0, 0, time.UTC), next)
}

func TestEverySixHoursFiresOnTheQuarterDay(t *testing.T) {
	cadence, err := EverySixHours(anchor)
	require.NoError(t, err)

	next := cadence.Next(time.Date(2024, time.June, 15, 13, 0, 0, 0, time.UTC))
	assert.Equal(t, time.Date(2024, time.June, 15, 18, 0, 0, 0, time.UTC), next)

	next = cadence.Next(time.Date(2024, time.June, 15, 18, 0, 0, 0, time.UTC))
	assert.Equal(t, time.Date(2024, time.June, 16, 0, 0, 0, 0, time.UTC), next)
}

func TestFirstOfMonthFiresOnTheFirst(t *testing.T) {
	cadence, err := FirstOfMonth(anchor)
	require.NoError(t, err)

	next := cadence.Next(time.Date(2024, time.June, 15, 0, 0, 0, 0, time.UTC))

	assert.Equal(t, time.Date(2024, time.July, 1, 0, 0, 0, 0, time.UTC), next)
}

func TestNextIsStrictlyAfter(t *testing.T) {
	cadence, err := Daily(anchor)
	require.NoError(t, err)

	midnight := time.Date(2024, time.June, 15, 0, 0, 0, 0, time.UTC)
	next := cadence.Next(midnight)

	assert.Equal(t, time.Date(2024, time.June, 16, 0, 0, 0, 0, time.UTC), next)
}

func TestNewAcceptsRRULEPrefix(t *testing.T) {
	cadence, err := New("RRULE:FREQ=DAILY;BYHOUR=0;BYMINUTE=0;BYSECOND=0", anchor)
	require.NoError(t, err)

	assert.Equal(t, "FREQ=DAILY;BYHOUR=0;BYMINUTE=0;BYSECOND=0", cadence.String())
}

func TestNewRejectsGarbage(t *testing.T) {
	_, err := New("FREQ=SOMETIMES", anchor)

	assert.Error(t, err)
}
