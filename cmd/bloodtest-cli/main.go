package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Caleb-Mok/TS-Blood-Test-Analyser/analyzer"
	"github.com/Caleb-Mok/TS-Blood-Test-Analyser/export"
	"github.com/Caleb-Mok/TS-Blood-Test-Analyser/extract"
)

type cliOptions struct {
	configPath  string
	valuesPath  string
	reportPath  string
	catalogPath string
	aliasPath   string
	outputPath  string
	outputDir   string
	format      string
	stdout      bool
}

func main() {
	opts, err := parseFlags()
	if err != nil {
		log.Fatalf("bloodtest-cli: %v", err)
	}
	if err := run(opts); err != nil {
		log.Fatalf("bloodtest-cli: %v", err)
	}
}

func parseFlags() (cliOptions, error) {
	var opts cliOptions
	flag.StringVar(&opts.configPath, "config", "", "Path to config.json (default: ./config.json)")
	flag.StringVar(&opts.valuesPath, "values", "", "CSV/TSV/JSON file of test name / value pairs")
	flag.StringVar(&opts.reportPath, "report", "", "PDF lab report to extract values from (requires GEMINI_API_KEY)")
	flag.StringVar(&opts.catalogPath, "catalog", "", "Override the reference range catalog file")
	flag.StringVar(&opts.aliasPath, "aliases", "", "Override the alias table file")
	flag.StringVar(&opts.outputPath, "output", "", "File to write the classified report (default uses --output-dir/report_*)")
	flag.StringVar(&opts.outputDir, "output-dir", "reports", "Directory for reports when --output is omitted")
	flag.StringVar(&opts.format, "format", "csv", "Output format: csv or pdf")
	flag.BoolVar(&opts.stdout, "stdout", false, "Print the classified report to STDOUT")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s (--values FILE | --report FILE) [options]\n\n", filepath.Base(os.Args[0]))
		flag.PrintDefaults()
	}
	flag.Parse()

	opts.configPath = strings.TrimSpace(opts.configPath)
	opts.valuesPath = strings.TrimSpace(opts.valuesPath)
	opts.reportPath = strings.TrimSpace(opts.reportPath)
	opts.catalogPath = strings.TrimSpace(opts.catalogPath)
	opts.aliasPath = strings.TrimSpace(opts.aliasPath)
	opts.outputPath = strings.TrimSpace(opts.outputPath)
	opts.outputDir = strings.TrimSpace(opts.outputDir)
	opts.format = strings.ToLower(strings.TrimSpace(opts.format))

	if opts.valuesPath == "" && opts.reportPath == "" {
		flag.Usage()
		return opts, errors.New("missing input: provide --values or --report")
	}
	if opts.format != "csv" && opts.format != "pdf" {
		return opts, fmt.Errorf("unsupported --format %q (want csv or pdf)", opts.format)
	}
	return opts, nil
}

func run(opts cliOptions) error {
	cfg, err := analyzer.LoadConfig(opts.configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if opts.catalogPath != "" {
		cfg.CatalogPath = opts.catalogPath
	}
	if opts.aliasPath != "" {
		cfg.AliasPath = opts.aliasPath
	}

	logger := log.New(os.Stderr, "", log.LstdFlags)
	service, err := analyzer.NewService(cfg, logger)
	if err != nil {
		return fmt.Errorf("init service: %w", err)
	}

	values, err := loadValues(opts, cfg, logger)
	if err != nil {
		return err
	}
	if len(values) == 0 {
		return errors.New("input does not contain any test values")
	}

	report := service.Aggregate(values)
	order := service.Catalog().Names()

	outputPath, err := resolveOutputPath(opts.outputPath, opts.outputDir, opts.format)
	if err != nil {
		return err
	}
	switch opts.format {
	case "pdf":
		err = export.WritePDF(outputPath, order, report)
	default:
		err = export.WriteCSV(outputPath, order, report)
	}
	if err != nil {
		return err
	}
	fmt.Printf("Report written to %s\n", outputPath)

	if opts.stdout {
		printReport(order, report)
	}
	return nil
}

func loadValues(opts cliOptions, cfg analyzer.Config, logger *log.Logger) (map[string]string, error) {
	if opts.valuesPath != "" {
		values, err := analyzer.ParseValueFile(opts.valuesPath)
		if err != nil {
			return nil, fmt.Errorf("read values: %w", err)
		}
		return values, nil
	}

	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return nil, errors.New("--report requires GEMINI_API_KEY to be set")
	}
	text, err := extract.PDFText(opts.reportPath)
	if err != nil {
		return nil, fmt.Errorf("read report: %w", err)
	}
	ctx := context.Background()
	extractor, err := extract.NewExtractor(ctx, apiKey, cfg.GeminiModel, cfg.CacheDir, logger)
	if err != nil {
		return nil, fmt.Errorf("init extractor: %w", err)
	}
	extracted, err := extractor.Extract(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("extract report: %w", err)
	}
	return extracted.Values(), nil
}

func resolveOutputPath(path, dir, format string) (string, error) {
	if path != "" {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("resolve output path: %w", err)
		}
		if err := os.MkdirAll(filepath.Dir(absPath), 0o755); err != nil {
			return "", fmt.Errorf("create output directory: %w", err)
		}
		return absPath, nil
	}
	if dir == "" {
		dir = "reports"
	}
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolve output dir: %w", err)
	}
	if err := os.MkdirAll(absDir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	filename := fmt.Sprintf("report_%s.%s", time.Now().Format("20060102150405"), format)
	return filepath.Join(absDir, filename), nil
}

func printReport(order []string, report analyzer.Report) {
	fmt.Println()
	fmt.Println("==== Blood Test Report ====")
	for _, name := range order {
		rec, ok := report.Records[name]
		if !ok {
			continue
		}
		value := rec.Value
		if strings.TrimSpace(value) == "" {
			value = "-"
		}
		fmt.Printf("  %-28s %-10s %s\n", rec.TestName, value, export.DisplayStatus(rec.Status))
	}
	fmt.Println()
	fmt.Println(report.Summary)
	if len(report.Unresolved) > 0 {
		fmt.Println()
		fmt.Println("Unmatched inputs:", strings.Join(report.Unresolved, ", "))
	}
}
