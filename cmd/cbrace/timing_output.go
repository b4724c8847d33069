package main

import (
	"fmt"
	"io"

	"cbrace/internal/observ"
)

func printTimings(out io.Writer, timer *observ.Timer) {
	if out == nil || timer == nil {
		return
	}
	_, printErr := fmt.Fprint(out, timer.Summary())
	if printErr != nil {
		panic(printErr)
	}
}
