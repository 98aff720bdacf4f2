// Command respirosync-validate runs the offline validation harness
// against either a reference CSV recording or a synthetic breathing
// waveform, standing in for original_source/validation/pipeline.py's
// batch accuracy report.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/dfeen87/respirosync/internal/validation"
)

func main() {
	inputPath := flag.String("input", "", "reference CSV; if empty, a synthetic waveform is generated")
	durationS := flag.Float64("duration", 60, "synthetic waveform duration in seconds")
	breathHz := flag.Float64("breath-hz", 0.25, "synthetic breathing frequency in Hz")
	sampleHz := flag.Float64("sample-hz", 50, "sample rate in Hz")
	flag.Parse()

	var records []validation.Record
	if *inputPath != "" {
		f, err := os.Open(*inputPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to open %s: %v\n", *inputPath, err)
			os.Exit(1)
		}
		defer f.Close()

		records, err = validation.LoadCSV(f)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to parse %s: %v\n", *inputPath, err)
			os.Exit(1)
		}
	} else {
		records = validation.SyntheticBreathing(*durationS, *breathHz, *sampleHz)
	}

	report := validation.Run(records)

	fmt.Printf("samples replayed:        %d\n", report.SamplesReplayed)
	fmt.Printf("mean absolute BPM error: %.3f\n", report.MeanAbsoluteBPMError)
	fmt.Printf("final breathing rate:    %.2f bpm\n", report.FinalMetrics.BreathingRateBPM)
	fmt.Printf("final signal quality:    %v\n", report.FinalMetrics.SignalQuality)
	fmt.Printf("final sleep stage:       %v\n", report.FinalMetrics.CurrentStage)
}
