package maintenance

import (
	"testing"
	"time"

	"github.com/stanstork/maintenance-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var today = time.Date(2024, time.June, 15, 14, 30, 0, 0, time.UTC)

func daysAgo(n int) *models.Date {
	d := models.DateOf(today).AddDays(-n)
	return &d
}

func TestClassify_Unscheduled(t *testing.T) {
	for _, freq := range []int{0, -5, 30} {
		c := Classify(nil, freq, today)
		assert.Equal(t, StatusOK, c.Status)
		assert.Nil(t, c.NextMaintenanceDate)
		assert.Nil(t, c.DaysRemaining)
		assert.Nil(t, c.DaysSinceLastMaintenance)
	}

	c := Classify(daysAgo(400), 0, today)
	assert.Equal(t, StatusOK, c.Status)
	assert.Nil(t, c.NextMaintenanceDate)

	c = Classify(&models.Date{}, 30, today)
	assert.Equal(t, StatusOK, c.Status)
	assert.Nil(t, c.DaysRemaining)
}

func TestClassify_Scenarios(t *testing.T) {
	cases := []struct {
		name      string
		daysAgo   int
		remaining int
		status    Status
	}{
		{"recent", 10, 20, StatusOK},
		{"approaching", 25, 5, StatusWarning},
		{"overdue", 40, -10, StatusOverdue},
		{"eight days left", 22, 8, StatusOK},
		{"seven days left", 23, 7, StatusWarning},
		{"one day left", 29, 1, StatusWarning},
		{"due today", 30, 0, StatusOverdue},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := Classify(daysAgo(tc.daysAgo), 30, today)
			require.NotNil(t, c.DaysRemaining)
			require.NotNil(t, c.DaysSinceLastMaintenance)
			require.NotNil(t, c.NextMaintenanceDate)
			assert.Equal(t, tc.remaining, *c.DaysRemaining)
			assert.Equal(t, tc.daysAgo, *c.DaysSinceLastMaintenance)
			assert.Equal(t, tc.status, c.Status)
			assert.Equal(t, daysAgo(tc.daysAgo).AddDays(30), *c.NextMaintenanceDate)
		})
	}
}

func TestClassify_IgnoresTimeOfDay(t *testing.T) {
	last := models.NewDate(2024, time.June, 1)
	morning := time.Date(2024, time.June, 8, 0, 0, 1, 0, time.UTC)
	night := time.Date(2024, time.June, 8, 23, 59, 59, 0, time.UTC)

	a := Classify(&last, 14, morning)
	b := Classify(&last, 14, night)
	assert.Equal(t, *a.DaysRemaining, *b.DaysRemaining)
	assert.Equal(t, 7, *a.DaysRemaining)
}

func TestClassifyEquipment_UnknownUnit(t *testing.T) {
	eq := models.Equipment{
		ID:                   "EQ-9",
		LastMaintenanceDate:  daysAgo(500),
		MaintenanceFrequency: &models.Frequency{Value: 1, Unit: "decades"},
	}
	c := ClassifyEquipment(eq, today)
	assert.Equal(t, StatusOK, c.Status)
	assert.Nil(t, c.NextMaintenanceDate)
}

func TestParseStatus(t *testing.T) {
	s, ok := ParseStatus("Vencido")
	assert.True(t, ok)
	assert.Equal(t, StatusOverdue, s)

	s, ok = ParseStatus("advertencia")
	assert.True(t, ok)
	assert.Equal(t, StatusWarning, s)

	_, ok = ParseStatus("green")
	assert.False(t, ok)
}
