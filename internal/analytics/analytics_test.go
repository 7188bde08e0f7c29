package analytics

import (
	"testing"
	"time"

	"powerhub/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePeriod(t *testing.T) {
	cases := []struct {
		value  string
		period Period
		window time.Duration
	}{
		{"hourly", PeriodHourly, time.Hour},
		{"daily", PeriodDaily, 24 * time.Hour},
		{"", PeriodDaily, 24 * time.Hour},
		{"weekly", PeriodWeekly, 7 * 24 * time.Hour},
		{"monthly", PeriodMonthly, 30 * 24 * time.Hour},
	}
	for _, c := range cases {
		p, w, err := ParsePeriod(c.value)
		require.NoError(t, err, c.value)
		assert.Equal(t, c.period, p)
		assert.Equal(t, c.window, w)
	}

	_, _, err := ParsePeriod("fortnightly")
	assert.Error(t, err)
}

func sampleFleet() []models.DeviceUsageSample {
	return []models.DeviceUsageSample{
		{DeviceID: "light-1", DeviceName: "Living Room Light", DeviceType: "light", AvgWatts: 15, AvgDailyCost: 0.04},
		{DeviceID: "ac-1", DeviceName: "Living Room AC", DeviceType: "ac", AvgWatts: 1500, AvgDailyCost: 4.32},
		{DeviceID: "heater-1", DeviceName: "Bathroom Heater", DeviceType: "heater", AvgWatts: 1200, AvgDailyCost: 3.46},
		{DeviceID: "plug-1", DeviceName: "Kitchen Plug", DeviceType: "plug", AvgWatts: 50, AvgDailyCost: 0.14},
	}
}

func TestSummarize(t *testing.T) {
	svc := NewService(nil)
	d := svc.summarize(PeriodDaily, sampleFleet())

	assert.Equal(t, PeriodDaily, d.Period)
	assert.Equal(t, 2765.0, d.TotalUsage)
	assert.Equal(t, 8.0, d.TotalCost, "7.96 rounded to one decimal")
	assert.Equal(t, 1382.5, d.CarbonFootprint, "half a kg of CO2 per kWh")

	require.Len(t, d.DeviceUsage, 4)
	assert.Equal(t, 54, d.DeviceUsage[1].Percentage, "AC draws 1500 of 2765 watts")
	assert.Equal(t, 1, d.DeviceUsage[0].Percentage)

	// Predictions cover the three heaviest devices, heaviest first.
	require.Len(t, d.Predictions, 3)
	assert.Equal(t, "ac-1", d.Predictions[0].DeviceID)
	assert.Equal(t, 1650.0, d.Predictions[0].PredictedUsage, "10% growth assumed")
	assert.Equal(t, "Increase temperature by 2°C to save 20% energy", d.Predictions[0].Suggestion)
	for _, p := range d.Predictions {
		assert.GreaterOrEqual(t, p.Confidence, 0.75)
		assert.LessOrEqual(t, p.Confidence, 0.95)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	svc := NewService(nil)
	d := svc.summarize(PeriodWeekly, nil)

	assert.Equal(t, 0.0, d.TotalUsage)
	assert.Equal(t, 0.0, d.CarbonFootprint)
	assert.Empty(t, d.DeviceUsage)
	assert.Empty(t, d.Predictions)
}

func TestSuggestionFor(t *testing.T) {
	assert.Equal(t, "Unplug when not in use to eliminate phantom loads", SuggestionFor("plug"))
	assert.Equal(t, "Monitor usage patterns to optimize efficiency", SuggestionFor("toaster"))
}

func TestEcoTips(t *testing.T) {
	tips := EcoTips()
	assert.Len(t, tips, 6)
	assert.Contains(t, tips, "Use timer to reduce heating costs by 25%")
}

func TestExportCSV(t *testing.T) {
	svc := NewService(nil)
	d := svc.summarize(PeriodDaily, []models.DeviceUsageSample{
		{DeviceID: "light-1", DeviceName: "Lamp, hallway", DeviceType: "light", AvgWatts: 15, AvgDailyCost: 0.04},
	})

	out := ExportCSV(d)
	assert.Contains(t, out, "device_id,device_name,usage,cost,percentage\n")
	assert.Contains(t, out, `light-1,"Lamp, hallway",15.0,0.04,100`)
}
