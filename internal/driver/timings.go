package driver

import (
	"encoding/json"
	"fmt"

	"cbrace/internal/diag"
	"cbrace/internal/observ"
	"cbrace/internal/source"
)

type timingPayload struct {
	Kind    string               `json:"kind"`
	Files   int                  `json:"files"`
	TotalMS float64              `json:"total_ms"`
	Phases  []observ.PhaseReport `json:"phases"`
}

// AppendTimings adds an ObsTimings info diagnostic summarizing timer into bag.
// The note carries the JSON payload for machine consumers.
func AppendTimings(bag *diag.Bag, timer *observ.Timer, kind string, files int) {
	if timer == nil {
		return
	}
	report := timer.Report()
	appendTimingDiagnostic(bag, timingPayload{Kind: kind, Files: files, TotalMS: report.TotalMS, Phases: report.Phases})
}

func appendTimingDiagnostic(bag *diag.Bag, payload timingPayload) {
	if bag == nil {
		return
	}
	if payload.Kind == "" {
		payload.Kind = "fmt"
	}
	msg := fmt.Sprintf("timings (%s): total %.2f ms", payload.Kind, payload.TotalMS)
	if payload.Files > 0 {
		msg = fmt.Sprintf("%s over %d file(s)", msg, payload.Files)
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return
	}

	entry := diag.New(diag.SevInfo, diag.ObsTimings, source.Span{}, msg).
		WithNote(source.Span{}, string(data))

	if bag.Add(entry) {
		return
	}
	// Merge расширяет лимит, таймингам всё равно место
	overflow := diag.NewBag(1)
	overflow.Add(entry)
	bag.Merge(overflow)
}
