// Command casereport renders case records exported as JSON into PDF or DOCX
// reports without running the server.
package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/dgallion1/casereport/internal/artifact"
	"github.com/dgallion1/casereport/internal/casefile"
	"github.com/dgallion1/casereport/internal/config"
	"github.com/dgallion1/casereport/internal/report"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("casereport", flag.ContinueOnError)
	fs.SetOutput(stderr)
	in := fs.String("in", "", "JSON file with one case record or an array of records (- for stdin)")
	out := fs.String("out", "", "output directory (default REPORT_OUTPUT_DIR or .)")
	format := fs.String("format", "", "pdf or docx (default REPORT_FORMAT or pdf)")
	batch := fs.Bool("batch", false, "write all records into one report")
	configFile := fs.String("config", "", "YAML report settings (default CASEREPORT_CONFIG)")
	verbose := fs.Bool("v", false, "debug logging")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *in == "" {
		fmt.Fprintln(stderr, "casereport: -in is required")
		fs.Usage()
		return 2
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	cfg := config.Load()
	if *configFile != "" {
		cfg.ConfigFile = *configFile
	}
	if cfg.ConfigFile != "" {
		if err := cfg.LoadFile(cfg.ConfigFile); err != nil {
			log.Error("invalid config file", "path", cfg.ConfigFile, "error", err)
			return 1
		}
	}
	if *format != "" {
		cfg.Report.Format = *format
	}
	if *out != "" {
		cfg.Report.OutputDir = *out
	}
	if err := cfg.ValidateReport(); err != nil {
		log.Error("invalid configuration", "error", err)
		return 1
	}

	recs, err := readRecords(*in)
	if err != nil {
		log.Error("read records", "path", *in, "error", err)
		return 1
	}

	wr, err := report.WriterFor("", cfg.Report)
	if err != nil {
		log.Error("select writer", "error", err)
		return 1
	}
	exp := report.FromSettings(artifact.NewHelveticaMetrics(), cfg.Report, log)

	var reports []*report.Report
	if *batch {
		reports = append(reports, exp.RenderCaseBatch(recs))
	} else {
		for _, rec := range recs {
			reports = append(reports, exp.RenderSingleCase(rec))
		}
	}

	failed := 0
	for _, r := range reports {
		path, err := exp.Save(cfg.Report.OutputDir, wr, r)
		if err != nil {
			log.Error("export failed", "file", r.FileName(wr), "error", err)
			failed++
			continue
		}
		fmt.Fprintln(stdout, path)
	}
	if failed > 0 {
		return 1
	}
	return 0
}

func readRecords(path string) ([]*casefile.Record, error) {
	if path == "-" {
		return casefile.Decode(os.Stdin)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return casefile.Decode(f)
}
