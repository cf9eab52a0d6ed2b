/*
Copyright 2026 the MediaWiki api-testing Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/wikimedia/mediawiki-tools-api-testing/pkg/config"
	"github.com/wikimedia/mediawiki-tools-api-testing/pkg/constants"
	"github.com/wikimedia/mediawiki-tools-api-testing/pkg/jobs"
	"github.com/wikimedia/mediawiki-tools-api-testing/pkg/wiki"
)

type options struct {
	baseDir     string
	configFile  string
	metricsFile string
	debug       bool
	jobs        jobs.Options
}

func (o *options) AddFlags(f *pflag.FlagSet) {
	f.StringVar(&o.baseDir, "base-dir", ".", "Directory to discover the configuration and .env file in")
	f.StringVar(&o.configFile, "config", "", "Configuration file to use instead of discovering one")
	f.StringVar(&o.metricsFile, "metrics-file", "", "Write Prometheus metrics to this file when done")
	f.BoolVar(&o.debug, "debug", false, "Log every batch and request")

	o.jobs.AddFlags(f)
}

func (o *options) loadConfig() (*config.Config, error) {
	if o.configFile != "" {
		return config.LoadFile(o.configFile)
	}

	return config.Load(o.baseDir)
}

func newLogger(debug bool) (logr.Logger, error) {
	c := zap.NewProductionConfig()

	if debug {
		c.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}

	z, err := c.Build()
	if err != nil {
		return logr.Discard(), err
	}

	return zapr.NewLogger(z), nil
}

func run(ctx context.Context, o *options, logger logr.Logger) error {
	cfg, err := o.loadConfig()
	if err != nil {
		return err
	}

	if o.debug {
		cfg.LogRequests = true
	}

	logger.Info("draining job queue", "config", cfg.Source, "base_uri", cfg.BaseURI, "batch_size", o.jobs.BatchSize, "max_batches", o.jobs.MaxBatches)

	metrics := jobs.NewMetrics()

	w, err := wiki.New(cfg, &o.jobs, logger)
	if err != nil {
		return err
	}

	drainErr := w.WithMetrics(metrics).RunAllJobs(ctx)

	if o.metricsFile != "" {
		if err := prometheus.WriteToTextfile(o.metricsFile, metrics.Registry()); err != nil {
			return fmt.Errorf("writing metrics: %w", err)
		}
	}

	return drainErr
}

func main() {
	var o options

	o.AddFlags(pflag.CommandLine)

	pflag.Parse()

	logger, err := newLogger(o.debug)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	logger.WithName("init").Info("starting", "application", constants.Application, "version", constants.Version, "revision", constants.Revision)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, &o, logger); err != nil {
		logger.Error(err, "job queue not drained")
		stop()
		os.Exit(1)
	}

	logger.Info("job queue drained")
}
