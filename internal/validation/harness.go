// Package validation implements an offline harness that replays a
// recorded (or synthetic) accel/gyro trace through internal/engine and
// reports how closely the streaming output matches expected respiratory
// rate, standing in for original_source/validation/pipeline.py and
// physionet_loader.py — both intentionally excluded from the streaming
// core itself since they belong to an offline batch tool.
package validation

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/dfeen87/respirosync/internal/engine"
)

// Record is one row of a reference trace: an accel sample with an
// optional expected BPM annotation (0 when absent).
type Record struct {
	TsMs        uint64
	AccelX      float32
	AccelY      float32
	AccelZ      float32
	GyroX       float32
	GyroY       float32
	GyroZ       float32
	ExpectedBPM float32
}

// LoadCSV parses a reference trace with header
// ts_ms,accel_x,accel_y,accel_z,gyro_x,gyro_y,gyro_z,expected_bpm.
// expected_bpm is optional; a short row is treated as 0.
func LoadCSV(r io.Reader) ([]Record, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("csv has no data rows")
	}

	records := make([]Record, 0, len(rows)-1)
	for i, row := range rows[1:] {
		rec, err := parseRow(row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

func parseRow(row []string) (Record, error) {
	get := func(i int) float64 {
		if i >= len(row) || row[i] == "" {
			return 0
		}
		v, _ := strconv.ParseFloat(row[i], 64)
		return v
	}
	if len(row) < 4 {
		return Record{}, fmt.Errorf("expected at least ts_ms,accel_x,accel_y,accel_z")
	}
	return Record{
		TsMs:        uint64(get(0)),
		AccelX:      float32(get(1)),
		AccelY:      float32(get(2)),
		AccelZ:      float32(get(3)),
		GyroX:       float32(get(4)),
		GyroY:       float32(get(5)),
		GyroZ:       float32(get(6)),
		ExpectedBPM: float32(get(7)),
	}, nil
}

// SyntheticBreathing generates a Record sequence standing in for
// generate_synthetic_resp: gravity plus a sinusoidal breathing
// component at breathHz, sampled at sampleHz for durationS seconds.
func SyntheticBreathing(durationS, breathHz, sampleHz float64) []Record {
	n := int(durationS * sampleHz)
	dtMs := uint64(1000 / sampleHz)

	records := make([]Record, 0, n)
	var ts uint64
	for i := 0; i < n; i++ {
		accel := 9.81 + 0.1*math.Sin(2*math.Pi*breathHz*float64(i)/sampleHz)
		records = append(records, Record{
			TsMs:        ts,
			AccelZ:      float32(accel),
			ExpectedBPM: float32(breathHz * 60),
		})
		ts += dtMs
	}
	return records
}

// Report summarizes one replay against its reference annotations.
type Report struct {
	SamplesReplayed      int
	MeanAbsoluteBPMError float32
	FinalMetrics         engine.Metrics
}

// Run replays records through a freshly opened engine, querying metrics
// after every sample, and returns the mean absolute BPM error over the
// samples that carry a nonzero expected BPM plus the final metrics
// snapshot.
func Run(records []Record) Report {
	e := engine.Open()
	e.StartSession(firstTs(records))

	var errSum float64
	var errCount int
	var last engine.Metrics

	for _, rec := range records {
		e.FeedAccel(rec.AccelX, rec.AccelY, rec.AccelZ, rec.TsMs)
		if rec.GyroX != 0 || rec.GyroY != 0 || rec.GyroZ != 0 {
			e.FeedGyro(rec.GyroX, rec.GyroY, rec.GyroZ, rec.TsMs)
		}
		last = e.QueryMetrics(rec.TsMs)
		if rec.ExpectedBPM > 0 {
			errSum += math.Abs(float64(last.BreathingRateBPM - rec.ExpectedBPM))
			errCount++
		}
	}

	var mae float32
	if errCount > 0 {
		mae = float32(errSum / float64(errCount))
	}

	return Report{
		SamplesReplayed:      len(records),
		MeanAbsoluteBPMError: mae,
		FinalMetrics:         last,
	}
}

func firstTs(records []Record) uint64 {
	if len(records) == 0 {
		return 0
	}
	return records[0].TsMs
}
