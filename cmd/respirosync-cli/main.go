// Command respirosync-cli replays a CSV recording of accel/gyro samples
// through internal/engine and prints the resulting metrics trace as a
// table or as NDJSON, standing in for the offline report-generation and CLI/build
// glue collaborators spec.md names as external.
package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/dfeen87/respirosync/internal/engine"
	"github.com/dfeen87/respirosync/internal/validation"
)

func main() {
	inputPath := flag.String("input", "", "path to a CSV recording (ts_ms,accel_x,accel_y,accel_z,gyro_x,gyro_y,gyro_z)")
	queryEveryN := flag.Int("query-every", 50, "print a metrics snapshot every N samples")
	format := flag.String("format", "table", "output format: table or ndjson")
	flag.Parse()

	if *inputPath == "" {
		fmt.Fprintln(os.Stderr, "usage: respirosync-cli -input recording.csv")
		os.Exit(2)
	}

	f, err := os.Open(*inputPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open %s: %v\n", *inputPath, err)
		os.Exit(1)
	}
	defer f.Close()

	records, err := validation.LoadCSV(f)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to parse %s: %v\n", *inputPath, err)
		os.Exit(1)
	}

	e := engine.Open()
	e.StartSession(0)
	if len(records) > 0 {
		e.StartSession(records[0].TsMs)
	}

	w := bufio.NewWriter(os.Stdout)
	defer w.Flush()

	for i, rec := range records {
		e.FeedAccel(rec.AccelX, rec.AccelY, rec.AccelZ, rec.TsMs)
		if rec.GyroX != 0 || rec.GyroY != 0 || rec.GyroZ != 0 {
			e.FeedGyro(rec.GyroX, rec.GyroY, rec.GyroZ, rec.TsMs)
		}

		if i%*queryEveryN != 0 {
			continue
		}
		m := e.QueryMetrics(rec.TsMs)
		printMetrics(w, rec.TsMs, m, *format)
	}
}

func printMetrics(w *bufio.Writer, tsMs uint64, m engine.Metrics, format string) {
	if format == "ndjson" {
		enc := json.NewEncoder(w)
		_ = enc.Encode(struct {
			TsMs uint64 `json:"ts_ms"`
			engine.Metrics
		}{TsMs: tsMs, Metrics: m})
		return
	}
	fmt.Fprintf(w, "%8d ms  bpm=%6.2f  regularity=%.2f  quality=%v  stage=%v  instability=%d  apnea=%d\n",
		tsMs, m.BreathingRateBPM, m.BreathingRegularity, m.SignalQuality, m.CurrentStage,
		m.InstabilityDetected, m.PossibleApnea)
}
