package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"

	"github.com/signalsfoundry/eon-disaster-sim/core"
	"github.com/signalsfoundry/eon-disaster-sim/internal/logging"
	"github.com/signalsfoundry/eon-disaster-sim/internal/observability"
)

func main() {
	scenarioPath := flag.String("scenario", "", "path to a scenario JSON file (required)")
	metricsAddr := flag.String("metrics-addr", "", "if set, serve Prometheus metrics on this address until the run completes")
	logLevel := flag.String("log-level", "info", "debug, info, warn, or error")
	logFormat := flag.String("log-format", "text", "text or json")

	flag.Parse()

	log := logging.New(logging.Config{Level: *logLevel, Format: *logFormat, AddSource: false})
	ctx := context.Background()

	if *scenarioPath == "" {
		fmt.Fprintln(os.Stderr, "eon-disaster-sim: -scenario is required")
		flag.Usage()
		os.Exit(2)
	}

	shutdownTracing, err := observability.InitTracing(ctx, observability.TracingConfigFromEnv(), log)
	if err != nil {
		panic(fmt.Errorf("init tracing: %w", err))
	}
	defer observability.ShutdownWithTimeout(ctx, shutdownTracing, log)

	metricsCollector, err := observability.NewMetricsCollector(nil)
	if err != nil {
		panic(fmt.Errorf("register metrics collector: %w", err))
	}
	schedulerCollector, err := observability.NewSchedulerCollector(nil)
	if err != nil {
		panic(fmt.Errorf("register scheduler collector: %w", err))
	}

	if *metricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metricsCollector.Handler())
		go func() {
			if err := http.ListenAndServe(*metricsAddr, mux); err != nil && err != http.ErrServerClosed {
				log.Warn(ctx, "metrics server stopped", logging.String("error", err.Error()))
			}
		}()
		log.Info(ctx, "serving metrics", logging.String("addr", *metricsAddr))
	}

	f, err := os.Open(*scenarioPath)
	if err != nil {
		panic(fmt.Errorf("open scenario %q: %w", *scenarioPath, err))
	}
	defer f.Close()

	scenario, err := core.LoadScenario(f)
	if err != nil {
		panic(fmt.Errorf("load scenario: %w", err))
	}

	scheduler, err := core.NewSimulation(scenario, metricsCollector, schedulerCollector, log)
	if err != nil {
		panic(fmt.Errorf("build simulation: %w", err))
	}

	log.Info(ctx, "starting simulation",
		logging.Int("isps", len(scenario.ISPs)),
		logging.Int("slots", scenario.Slots))

	snapshot := scheduler.Run(ctx)

	out, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		panic(fmt.Errorf("marshal metrics snapshot: %w", err))
	}
	fmt.Println(string(out))
}
