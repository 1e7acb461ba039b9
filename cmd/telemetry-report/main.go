// Command telemetry-report builds dashboard statistics and a best-lap track
// map from exported session, lap and telemetry files.
package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/banshee-data/telemetry.report/internal/config"
	"github.com/banshee-data/telemetry.report/internal/fsutil"
	"github.com/banshee-data/telemetry.report/internal/monitoring"
	"github.com/banshee-data/telemetry.report/internal/report"
	"github.com/banshee-data/telemetry.report/internal/telemetry"
	"github.com/banshee-data/telemetry.report/internal/timerange"
	"github.com/banshee-data/telemetry.report/internal/timeutil"
	"github.com/banshee-data/telemetry.report/internal/version"
)

var (
	sessionsPath  = flag.String("sessions", "", "Path to sessions JSON (required)")
	lapsPath      = flag.String("laps", "", "Path to laps JSON")
	telemetryPath = flag.String("telemetry", "", "Path to telemetry samples CSV")
	sessionID     = flag.String("session", "", "Session whose best lap is mapped (default: fastest in range)")
	rangeFlag     = flag.String("range", string(timerange.RangeAll), "Time range: "+rangeNames())
	configPath    = flag.String("config", "", "Path to analytics config JSON (default: built-in defaults)")
	outDir        = flag.String("out", "", "Directory for report artifacts (default: JSON to stdout)")
	writeHTML     = flag.Bool("html", false, "Also write the dashboard chart page (requires -out)")
	writePNG      = flag.Bool("png", false, "Also write the track map PNG (requires -out)")
	debug         = flag.Bool("debug", false, "Log diagnostics to stderr")
	trace         = flag.Bool("trace", false, "Log every telemetry sample to stderr (implies -debug)")
	showVersion   = flag.Bool("version", false, "Print version and exit")
)

// options is the parsed command line.
type options struct {
	sessions  string
	laps      string
	telemetry string
	sessionID string
	rng       timerange.Range
	config    string
	out       string
	html      bool
	png       bool
}

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String())
		return
	}

	monitoring.SetLogWriters(logWriters(os.Stderr, *debug, *trace))

	rng, err := timerange.ParseRange(*rangeFlag)
	if err != nil {
		log.Fatalf("invalid -range: %v", err)
	}
	opts := options{
		sessions:  *sessionsPath,
		laps:      *lapsPath,
		telemetry: *telemetryPath,
		sessionID: *sessionID,
		rng:       rng,
		config:    *configPath,
		out:       *outDir,
		html:      *writeHTML,
		png:       *writePNG,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, opts, fsutil.OSFileSystem{}, timeutil.RealClock{}, os.Stdout); err != nil {
		log.Fatalf("telemetry-report: %v", err)
	}
}

// rangeNames lists the accepted -range values, e.g. "7d|30d|90d|all".
func rangeNames() string {
	names := make([]string, len(timerange.Ranges))
	for i, r := range timerange.Ranges {
		names[i] = string(r)
	}
	return strings.Join(names, "|")
}

// logWriters routes the ops stream to w always, diag with debug and trace
// with trace.
func logWriters(w io.Writer, debug, trace bool) monitoring.LogWriters {
	lw := monitoring.LogWriters{Ops: w}
	if debug || trace {
		lw.Diag = w
	}
	if trace {
		lw.Trace = w
	}
	return lw
}

func run(ctx context.Context, opts options, fsys fsutil.FileSystem, clock timeutil.Clock, stdout io.Writer) error {
	if opts.sessions == "" {
		return fmt.Errorf("-sessions is required")
	}
	if (opts.html || opts.png) && opts.out == "" {
		return fmt.Errorf("-html and -png need -out")
	}

	cfg := config.DefaultAnalyticsConfig()
	if opts.config != "" {
		loaded, err := config.LoadAnalyticsConfig(fsys, opts.config)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	in, err := loadInput(fsys, opts)
	if err != nil {
		return err
	}
	monitoring.Opsf("loaded %d sessions, %d laps, %d samples", len(in.Sessions), len(in.Laps), len(in.Points))

	r, err := report.NewBuilder(cfg, clock).Build(ctx, in, opts.rng)
	if err != nil {
		return err
	}

	if opts.out == "" {
		return report.WriteJSON(stdout, r)
	}
	_, err = report.Writer{FS: fsys, Dir: opts.out, HTML: opts.html, PNG: opts.png}.Write(r)
	return err
}

func loadInput(fsys fsutil.FileSystem, opts options) (report.Input, error) {
	in := report.Input{SessionID: opts.sessionID}

	data, err := fsys.ReadFile(opts.sessions)
	if err != nil {
		return in, fmt.Errorf("read sessions: %w", err)
	}
	if in.Sessions, err = telemetry.DecodeSessions(bytes.NewReader(data)); err != nil {
		return in, fmt.Errorf("%s: %w", opts.sessions, err)
	}

	if opts.laps != "" {
		data, err := fsys.ReadFile(opts.laps)
		if err != nil {
			return in, fmt.Errorf("read laps: %w", err)
		}
		if in.Laps, err = telemetry.DecodeLaps(bytes.NewReader(data)); err != nil {
			return in, fmt.Errorf("%s: %w", opts.laps, err)
		}
	}

	if opts.telemetry != "" {
		data, err := fsys.ReadFile(opts.telemetry)
		if err != nil {
			return in, fmt.Errorf("read telemetry: %w", err)
		}
		if in.Points, err = telemetry.ReadTelemetryCSV(bytes.NewReader(data)); err != nil {
			return in, fmt.Errorf("%s: %w", opts.telemetry, err)
		}
	}
	return in, nil
}
