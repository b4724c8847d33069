package driver

import (
	"strings"
	"testing"
	"time"

	"cbrace/internal/diag"
	"cbrace/internal/observ"
	"cbrace/internal/source"
)

func TestAppendTimingsOverflow(t *testing.T) {
	bag := diag.NewBag(1)
	bag.Add(diag.New(diag.SevWarning, diag.FmtDiscardedBraceContent, source.Span{}, "x"))

	timer := observ.NewTimer()
	timer.Add("braces", 2*time.Millisecond)
	AppendTimings(bag, timer, "fmt", 3)

	items := bag.Items()
	if len(items) != 2 {
		t.Fatalf("timings must fit even into a full bag, got %d items", len(items))
	}
	got := items[1]
	if got.Code != diag.ObsTimings || !strings.Contains(got.Message, "over 3 file(s)") {
		t.Errorf("unexpected timing diagnostic %+v", got)
	}
	if len(got.Notes) != 1 || !strings.Contains(got.Notes[0].Msg, `"name":"braces"`) {
		t.Errorf("expected JSON payload note, got %+v", got.Notes)
	}
}

func TestAppendTimingsNilTimer(t *testing.T) {
	bag := diag.NewBag(4)
	AppendTimings(bag, nil, "fmt", 1)
	if bag.Len() != 0 {
		t.Error("nil timer must not add diagnostics")
	}
}
