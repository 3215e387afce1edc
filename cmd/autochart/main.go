package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"

	"github.com/spektr-org/autochart"
	"github.com/spektr-org/autochart/config"
	"github.com/spektr-org/autochart/engine"
	"github.com/spektr-org/autochart/report"
)

// ============================================================================
// AUTOCHART CLI — Automatic charts for any dataset
// ============================================================================

const version = "0.3.0"

func main() {
	// ── Flags ─────────────────────────────────────────────────────────────
	configPath := flag.String("config", "", "Path to YAML or JSON config file")
	filePath := flag.String("file", "", "Path or s3:// URI of the dataset (csv, tsv, txt, json, jsonl, db)")
	sep := flag.String("sep", "", `Field separator for delimited text ("tab" for tabs; default tab for .tsv, ',' otherwise)`)
	header := flag.Bool("header", true, "First row holds column names")
	snake := flag.Bool("snake", false, "Rewrite column names as snake_case")
	target := flag.String("target", "", "Target column (comma list accepted, first name is used)")
	verbose := flag.Int("verbose", 0, "0 silent, 1 progress, 2 progress and save charts")
	maxRows := flag.Int("max-rows", 0, "Rows kept after sampling (default 150000)")
	maxCols := flag.Int("max-cols", 0, "Continuous columns kept (default 30)")
	format := flag.String("format", "svg", "Chart format: svg, png, jpg, jpeg, pdf, eps, tif")
	outDir := flag.String("out", "", "Output directory or s3://bucket/prefix (default AutoViz_Plots at -verbose 2)")
	noQuality := flag.Bool("no-quality", false, "Skip the data-quality report")
	discover := flag.Bool("discover", false, "Print the column classification as JSON and exit")
	pretty := flag.Bool("pretty", false, "Pretty-print JSON output")
	showVersion := flag.Bool("version", false, "Print version and exit")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `AutoChart — Automatic charts for any dataset

Usage:
  autochart --file sales.csv --target revenue --verbose 2
  autochart --file sales.tsv --format png --out ./charts
  autochart --file shop.db#orders --target status --out s3://bucket/charts
  autochart --file sales.csv --discover --pretty

Flags:
`)
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Environment:
  AUTOCHART_FILE, AUTOCHART_TARGET, AUTOCHART_SEP, AUTOCHART_HEADER,
  AUTOCHART_VERBOSE, AUTOCHART_FORMAT, AUTOCHART_OUTPUT_DIR,
  AUTOCHART_MAX_ROWS, AUTOCHART_MAX_COLS, AUTOCHART_S3_REGION,
  AUTOCHART_S3_ENDPOINT, AUTOCHART_S3_PATH_STYLE

Precedence: flags > environment > config file > defaults.

Output (with --out or --verbose 2):
  <out>/<target|AutoViz>/<family>[_<n>].<format>
  <out>/<target|AutoViz>/report.md
  <out>/<target|AutoViz>/manifest.json
`)
	}

	flag.Parse()

	if *showVersion {
		fmt.Printf("autochart %s\n", version)
		os.Exit(0)
	}

	// ── Config: file, env, then explicit flags ────────────────────────────
	cfg := config.DefaultConfig()
	if *configPath != "" {
		loaded, err := config.LoadFromFile(*configPath)
		if err != nil {
			fatalf("Failed to load config: %v", err)
		}
		cfg = loaded
	}
	config.LoadFromEnv(cfg)

	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "file":
			cfg.Input.File = *filePath
		case "sep":
			cfg.Input.Sep = *sep
		case "header":
			cfg.Input.Header = *header
		case "snake":
			cfg.Input.SnakeCase = *snake
		case "target":
			cfg.Target = *target
		case "verbose":
			cfg.Verbosity = *verbose
		case "max-rows":
			cfg.Limits.MaxRows = *maxRows
		case "max-cols":
			cfg.Limits.MaxCols = *maxCols
		case "format":
			cfg.Format = *format
		case "out":
			cfg.OutputDir = *outDir
		case "no-quality":
			cfg.Quality = !*noQuality
		}
	})

	if cfg.Input.File == "" {
		fmt.Fprintln(os.Stderr, "Error: --file is required")
		flag.Usage()
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// ── Discover mode ─────────────────────────────────────────────────────
	if *discover {
		cls, err := autochart.Discover(ctx, cfg)
		if err != nil {
			fatalf("Classification failed: %v", err)
		}
		log.Printf("🔍 Classified: %s", cls.Summary())
		writeJSON(os.Stdout, cls, *pretty)
		return
	}

	// ── Run ───────────────────────────────────────────────────────────────
	res, err := autochart.Run(ctx, cfg)
	if err != nil {
		fatalf("Run failed: %v", err)
	}

	if res.Location == "" {
		// Nothing saved: print the report so the run is not silent.
		if err := report.Markdown(os.Stdout, res); err != nil {
			fatalf("Failed to write report: %v", err)
		}
		return
	}
	writeJSON(os.Stdout, summarize(res), *pretty)
}

// ============================================================================
// OUTPUT TYPES
// ============================================================================

type cliOutput struct {
	RunID    string     `json:"runId"`
	Location string     `json:"location"`
	Charts   []cliChart `json:"charts"`
	Errors   []string   `json:"errors,omitempty"`
	Elapsed  string     `json:"elapsed"`
}

type cliChart struct {
	Family engine.Family `json:"family"`
	Title  string        `json:"title"`
	Path   string        `json:"path"`
}

func summarize(res *engine.Result) cliOutput {
	out := cliOutput{
		RunID:    res.RunID,
		Location: res.Location,
		Errors:   res.Errors,
		Elapsed:  res.Elapsed.String(),
	}
	for _, b := range res.Buckets.NonEmpty() {
		for _, a := range b.Artifacts {
			out.Charts = append(out.Charts, cliChart{Family: a.Family, Title: a.Title, Path: a.Path})
		}
	}
	return out
}

// ============================================================================
// JSON OUTPUT
// ============================================================================

func writeJSON(w io.Writer, v interface{}, pretty bool) {
	var out []byte
	var err error

	if pretty {
		out, err = json.MarshalIndent(v, "", "  ")
	} else {
		out, err = json.Marshal(v)
	}

	if err != nil {
		fatalf("Failed to marshal output: %v", err)
	}
	fmt.Fprintln(w, string(out))
}

// ============================================================================
// HELPERS
// ============================================================================

func fatalf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}
