// Optional trace output for the aquarium core
// Off by default and free when off. A simulator or a bring-up build
// installs a writer to watch calibration results, faults, and phase
// transitions; production firmware installs nothing.
package core

// DebugWriter receives one trace line, without a trailing newline.
type DebugWriter func(string)

var (
	debugOut     DebugWriter
	debugEnabled bool
)

// SetDebugWriter installs the trace sink, e.g. the UART or USB console
// of the target board.
func SetDebugWriter(w DebugWriter) {
	debugOut = w
}

// SetDebugEnabled turns tracing on or off. A writer must also be
// installed for anything to come out.
func SetDebugEnabled(on bool) {
	debugEnabled = on
}

// DebugPrintln hands one trace line to the installed writer, if any.
func DebugPrintln(msg string) {
	if debugEnabled && debugOut != nil {
		debugOut(msg)
	}
}
