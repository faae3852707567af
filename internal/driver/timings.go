package driver

import (
	"encoding/json"
	"fmt"

	"cguard/internal/diag"
	"cguard/internal/observ"
	"cguard/internal/source"
)

type timingPayload struct {
	Kind    string               `json:"kind"`
	Path    string               `json:"path,omitempty"`
	TotalMS float64              `json:"total_ms"`
	Phases  []observ.PhaseReport `json:"phases"`
}

// TimingDiagnostic packs a timing report into an informational diagnostic
// whose single note holds the report as JSON.
func TimingDiagnostic(kind, path string, report observ.Report) diag.Diagnostic {
	if kind == "" {
		kind = "pipeline"
	}
	payload := timingPayload{Kind: kind, Path: path, TotalMS: report.TotalMS, Phases: report.Phases}
	msg := fmt.Sprintf("timings (%s): total %.2f ms", payload.Kind, payload.TotalMS)
	if payload.Path != "" {
		msg = fmt.Sprintf("%s: %s", msg, payload.Path)
	}

	d := diag.New(diag.SevInfo, diag.ObsTimings, source.Span{File: source.NoFile}, msg)
	data, err := json.Marshal(payload)
	if err != nil {
		return d
	}
	return d.WithNote(source.Span{File: source.NoFile}, string(data))
}

// AppendTiming adds the timing diagnostic to bag, growing it past its limit
// if needed.
func AppendTiming(bag *diag.Bag, kind, path string, report observ.Report) {
	if bag == nil {
		return
	}
	entry := TimingDiagnostic(kind, path, report)
	if bag.Add(entry) {
		return
	}
	overflow := diag.NewBag(1)
	overflow.Add(entry)
	bag.Merge(overflow)
}
