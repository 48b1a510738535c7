package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bayo-ibm/fms-model-optimizer/internal/config"
	"github.com/bayo-ibm/fms-model-optimizer/internal/conformance"
	"github.com/bayo-ibm/fms-model-optimizer/internal/logger"
	"github.com/bayo-ibm/fms-model-optimizer/internal/report"
)

var (
	seed        = flag.Int64("seed", 23, "RNG seed for operand generation")
	dims        = flag.String("dims", "64,256,1024,4096", "Comma-separated square matmul dimensions")
	truncBits   = flag.Int("trunc-bits", 8, "Accumulator bits discarded on the truncated matmul run")
	batchSize   = flag.Int("batch", 512, "Batch size for the linear layer cases")
	short       = flag.Bool("short", false, "Limit dimensions to 256 for a quick pass")
	logLevel    = flag.String("log-level", "info", "Log level (trace, debug, info, warn, error)")
	logFormat   = flag.String("log-format", "console", "Log format (console or json)")
	metricsAddr = flag.String("metrics", ":9090", "Address to serve Prometheus metrics")
	reportPath  = flag.String("report", "", "Write results to this Arrow IPC file")
)

func main() {
	flag.Parse()
	logger.Setup(*logLevel, *logFormat)
	log := logger.Log.Component("conformance")

	cfg := config.Default()
	cfg.Seed = *seed
	cfg.TruncBits = *truncBits
	cfg.BatchSize = *batchSize
	cfg.LogLevel = *logLevel
	cfg.LogFormat = *logFormat
	cfg.MetricsAddr = *metricsAddr
	cfg.ReportPath = *reportPath

	parsed, err := parseDims(*dims)
	if err != nil {
		log.Error("invalid -dims", "err", err)
		os.Exit(2)
	}
	cfg.Dims = parsed
	if *short {
		cfg.Dims = clampDims(cfg.Dims, 256)
		cfg.LinearFeatures = clampFeatures(cfg.LinearFeatures, 256)
	}

	go func() {
		http.Handle("/metrics", promhttp.Handler())
		log.Info("metrics serving", "addr", cfg.MetricsAddr)
		if err := http.ListenAndServe(cfg.MetricsAddr, nil); err != nil {
			log.Warn("metrics server stopped", "err", err)
		}
	}()

	runner, err := conformance.NewRunner(cfg)
	if err != nil {
		log.Error("invalid configuration", "err", err)
		os.Exit(2)
	}

	log.Info("starting conformance run",
		"seed", cfg.Seed, "dims", cfg.Dims, "trunc_bits", cfg.TruncBits)
	results := runner.RunAll()

	if cfg.ReportPath != "" {
		if err := report.Write(cfg.ReportPath, results); err != nil {
			log.Error("failed to write report", "path", cfg.ReportPath, "err", err)
			os.Exit(1)
		}
		log.Info("report written", "path", cfg.ReportPath, "rows", len(results))
	}

	summary := conformance.Summarize(results)
	fmt.Println(summary)
	if summary.Failed > 0 {
		os.Exit(1)
	}
}

func parseDims(s string) ([]int, error) {
	parts := strings.Split(s, ",")
	dims := make([]int, 0, len(parts))
	for _, p := range parts {
		d, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil || d <= 0 {
			return nil, fmt.Errorf("bad dimension %q", p)
		}
		dims = append(dims, d)
	}
	return dims, nil
}

func clampDims(dims []int, max int) []int {
	out := dims[:0]
	for _, d := range dims {
		if d <= max {
			out = append(out, d)
		}
	}
	return out
}

func clampFeatures(features [][2]int, max int) [][2]int {
	out := features[:0]
	for _, f := range features {
		if f[0] <= max {
			out = append(out, f)
		}
	}
	return out
}
