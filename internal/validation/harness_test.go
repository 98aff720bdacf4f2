package validation_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dfeen87/respirosync/internal/validation"
)

func TestSyntheticBreathingProducesExpectedSampleCount(t *testing.T) {
	records := validation.SyntheticBreathing(30, 0.25, 50)
	require.Len(t, records, 1500)
	require.Equal(t, float32(15), records[0].ExpectedBPM)
}

func TestRunOnSyntheticBreathingReportsLowError(t *testing.T) {
	records := validation.SyntheticBreathing(60, 0.25, 50)
	report := validation.Run(records)

	require.Equal(t, 3000, report.SamplesReplayed)
	require.Less(t, report.MeanAbsoluteBPMError, float32(20))
}

func TestLoadCSVParsesHeaderedRows(t *testing.T) {
	csv := "ts_ms,accel_x,accel_y,accel_z,gyro_x,gyro_y,gyro_z,expected_bpm\n" +
		"0,0,0,9.81,0,0,0,15\n" +
		"20,0,0,9.9,0,0,0,15\n"

	records, err := validation.LoadCSV(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, records, 2)
	require.Equal(t, uint64(20), records[1].TsMs)
	require.Equal(t, float32(15), records[0].ExpectedBPM)
}

func TestLoadCSVRejectsEmptyInput(t *testing.T) {
	_, err := validation.LoadCSV(strings.NewReader(""))
	require.Error(t, err)
}
