// potlab is the calibration bench tool. It captures pot telemetry from
// a controller over serial (or imports a saved trace), stores capture
// sessions in SQLite, and reports the swing statistics and velocity
// scale that the firmware's servo constants come from.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"gonum.org/v1/gonum/stat"

	"goquarium/core"
	"goquarium/host/analysis"
	"goquarium/host/capture"
	"goquarium/host/datalog"
	"goquarium/host/logging"
)

var (
	dbPath   = flag.String("db", "potlab.db", "Capture store path")
	device   = flag.String("device", "/dev/ttyACM0", "Serial device path")
	baud     = flag.Int("baud", 115200, "Baud rate (ignored for USB CDC)")
	seconds  = flag.Int("seconds", 30, "Capture duration in seconds")
	note     = flag.String("note", "", "Session note")
	session  = flag.Int64("session", 0, "Session id (0 = most recent)")
	level    = flag.Int("level", -1, "Crossing level (-1 = swing zero)")
	out      = flag.String("out", "pot.png", "Plot output path")
	logLevel = flag.String("log", "info", "Log level (debug, info, warn, error)")
)

func main() {
	flag.Parse()
	logging.Init(*logLevel)

	if flag.NArg() < 1 {
		printUsage()
		os.Exit(2)
	}

	var err error
	switch flag.Arg(0) {
	case "capture":
		err = runCapture()
	case "import":
		if flag.NArg() < 2 {
			err = fmt.Errorf("import needs a telemetry file")
		} else {
			err = runImport(flag.Arg(1))
		}
	case "sessions":
		err = runSessions()
	case "stats":
		err = runStats()
	case "fit":
		err = runFit()
	case "plot":
		err = runPlot()
	default:
		printUsage()
		os.Exit(2)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("potlab - pot telemetry capture and calibration analysis")
	fmt.Println()
	fmt.Println("Usage: potlab [flags] <command>")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  capture        - Record telemetry from the serial device")
	fmt.Println("  import <file>  - Load a saved telemetry text file")
	fmt.Println("  sessions       - List stored sessions")
	fmt.Println("  stats          - Swing statistics and crossing timing")
	fmt.Println("  fit            - Least-squares velocity scale fit")
	fmt.Println("  plot           - Render the pot trace to a PNG")
	fmt.Println()
	flag.PrintDefaults()
}

func runCapture() error {
	db, err := datalog.NewDB(*dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	cfg := capture.DefaultConfig(*device)
	cfg.Baud = *baud
	port, err := capture.Open(cfg)
	if err != nil {
		return err
	}
	defer port.Close()

	id, err := db.BeginSession(*device, *note)
	if err != nil {
		return err
	}
	logging.Info("capture started", "session", id, "device", *device, "seconds", *seconds)

	// Closing the port is what ends the capture: the reader unblocks
	// with an error once the deadline fires.
	deadline := time.AfterFunc(time.Duration(*seconds)*time.Second, func() {
		port.Close()
	})
	defer deadline.Stop()

	reader := capture.NewReader(port)
	total := 0
	batch := make([]capture.Sample, 0, 128)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := db.AddSamples(id, batch); err != nil {
			return err
		}
		total += len(batch)
		batch = batch[:0]
		return nil
	}

	for {
		sample, err := reader.Next()
		if err != nil {
			if deadline.Stop() {
				// The link died before the deadline.
				flush()
				return fmt.Errorf("capture aborted after %d samples: %w", total, err)
			}
			break
		}
		batch = append(batch, sample)
		if len(batch) == cap(batch) {
			if err := flush(); err != nil {
				return err
			}
		}
	}
	if err := flush(); err != nil {
		return err
	}

	logging.Info("capture finished", "session", id, "samples", total, "dropped", reader.Dropped())
	fmt.Printf("Session %d: %d samples\n", id, total)
	return nil
}

func runImport(path string) error {
	db, err := datalog.NewDB(*dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	var samples []capture.Sample
	reader := capture.NewReader(f)
	for {
		sample, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}
		samples = append(samples, sample)
	}

	id, err := db.BeginSession("file:"+path, *note)
	if err != nil {
		return err
	}
	if err := db.AddSamples(id, samples); err != nil {
		return err
	}

	fmt.Printf("Session %d: %d samples (%d lines dropped)\n", id, len(samples), reader.Dropped())
	return nil
}

func runSessions() error {
	db, err := datalog.NewDB(*dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	sessions, err := db.Sessions()
	if err != nil {
		return err
	}
	if len(sessions) == 0 {
		fmt.Println("No sessions.")
		return nil
	}

	fmt.Printf("%6s  %-19s  %7s  %-20s  %s\n", "ID", "STARTED", "SAMPLES", "DEVICE", "NOTE")
	for _, s := range sessions {
		fmt.Printf("%6d  %-19s  %7d  %-20s  %s\n", s.ID, s.StartedAt, s.Samples, s.Device, s.Note)
	}
	return nil
}

// loadSession resolves the -session flag (0 means the most recent) and
// loads its samples.
func loadSession(db *datalog.DB) (int64, []capture.Sample, error) {
	id := *session
	if id == 0 {
		sessions, err := db.Sessions()
		if err != nil {
			return 0, nil, err
		}
		if len(sessions) == 0 {
			return 0, nil, fmt.Errorf("no sessions in %s", *dbPath)
		}
		id = sessions[len(sessions)-1].ID
	}

	samples, err := db.Samples(id)
	if err != nil {
		return 0, nil, err
	}
	return id, samples, nil
}

func runStats() error {
	db, err := datalog.NewDB(*dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	id, samples, err := loadSession(db)
	if err != nil {
		return err
	}

	swing, err := analysis.Swing(samples)
	if err != nil {
		return fmt.Errorf("session %d: %w", id, err)
	}

	fmt.Printf("Session %d: %d samples\n", id, swing.Samples)
	fmt.Printf("  Pot range:        %d .. %d (span %d)\n", swing.Min, swing.Max, swing.Span)
	fmt.Printf("  Swing zero:       %d\n", swing.Zero)
	fmt.Printf("  Counts/degree:    %.4f\n", swing.CountsPerDegree)

	lvl := *level
	if lvl < 0 {
		lvl = swing.Zero
	}
	crossings := analysis.Crossings(samples, lvl)
	fmt.Printf("  Crossings at %d: %d\n", lvl, len(crossings))
	if intervals := analysis.Intervals(crossings); len(intervals) > 0 {
		fmt.Printf("  Mean interval:    %.1f ms\n", stat.Mean(intervals, nil))
	}
	return nil
}

func runFit() error {
	db, err := datalog.NewDB(*dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	id, samples, err := loadSession(db)
	if err != nil {
		return err
	}

	fit, err := analysis.FitVelocityScale(samples)
	if err != nil {
		return fmt.Errorf("session %d: %w", id, err)
	}

	fmt.Printf("Session %d: velocity scale fit over %d pairs\n", id, fit.Pairs)
	fmt.Printf("  Scale:            %.4f counts/s per raw unit (R2 %.4f)\n", fit.Scale, fit.R2)
	fmt.Printf("  Firmware constant: %.1f (delta %+.1f%%)\n",
		core.CountsPerSecPerRaw,
		100*(fit.Scale-core.CountsPerSecPerRaw)/core.CountsPerSecPerRaw)
	return nil
}
