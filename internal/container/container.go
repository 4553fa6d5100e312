// Package container provides dependency injection for the tering application.
// It centralizes the creation and wiring of all application dependencies,
// making them explicit and testable.
package container

import (
	"context"
	"fmt"
	"sync"

	"fjacquet/tering/internal/aiclient"
	"fjacquet/tering/internal/batch"
	"fjacquet/tering/internal/config"
	"fjacquet/tering/internal/extractor"
	"fjacquet/tering/internal/geonames"
	"fjacquet/tering/internal/logging"
	"fjacquet/tering/internal/monthsplit"
	"fjacquet/tering/internal/numbering"
	"fjacquet/tering/internal/ocr"
	"fjacquet/tering/internal/pipeline"
	"fjacquet/tering/internal/report"
	"fjacquet/tering/internal/splitter"
	"fjacquet/tering/internal/store"
	"fjacquet/tering/internal/structurer"
)

// Container holds all application dependencies and provides methods to access them.
// The segmentation stages are built eagerly; collaborators that need
// credentials (Gemini, GeoNames) are built on first use so that commands
// not using them run without keys.
type Container struct {
	logger      logging.Logger
	config      *config.Config
	splitter    *splitter.Splitter
	numberer    *numbering.Numberer
	partitioner *monthsplit.Partitioner
	extractor   *extractor.Extractor
	runner      *batch.Runner
	pipeline    *pipeline.Pipeline
	regions     *store.RegionStore
	reporter    *report.ReportGenerator

	mu      sync.Mutex
	clients []*aiclient.GeminiClient
}

// NewContainer creates and wires all application dependencies.
func NewContainer(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}
	return NewContainerWithLogger(cfg, logging.NewLogrusAdapter(cfg.Log.Level, cfg.Log.Format))
}

// NewContainerWithLogger is NewContainer with an explicit logger.
func NewContainerWithLogger(cfg *config.Config, logger logging.Logger) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger cannot be nil")
	}

	runner := batch.NewRunner(cfg.Workers, logger)
	partitioner := monthsplit.New(logger)
	ex := extractor.New(cfg.Numbering.Marker, logger)

	c := &Container{
		logger:      logger,
		config:      cfg,
		splitter:    splitter.New(logger),
		numberer:    numbering.New(cfg.Numbering.Ceiling, cfg.Numbering.Marker, logger),
		partitioner: partitioner,
		extractor:   ex,
		runner:      runner,
		pipeline:    pipeline.New(partitioner, ex, runner, logger),
		regions:     store.NewRegionStore(cfg.Geonames.RegionsFile, logger),
		reporter:    report.NewReportGenerator(logger),
	}

	logger.Debug("Container initialized",
		logging.F(logging.FieldWorkers, cfg.Workers),
		logging.F(logging.FieldRunID, runner.RunID()))
	return c, nil
}

// GetLogger returns the container's logger instance.
func (c *Container) GetLogger() logging.Logger { return c.logger }

// GetConfig returns the container's configuration instance.
func (c *Container) GetConfig() *config.Config { return c.config }

// GetSplitter returns the date-anchored entry splitter.
func (c *Container) GetSplitter() *splitter.Splitter { return c.splitter }

// GetNumberer returns the record numberer.
func (c *Container) GetNumberer() *numbering.Numberer { return c.numberer }

// GetPartitioner returns the month partitioner.
func (c *Container) GetPartitioner() *monthsplit.Partitioner { return c.partitioner }

// GetExtractor returns the record extractor.
func (c *Container) GetExtractor() *extractor.Extractor { return c.extractor }

// GetRunner returns the batch runner shared by all tree operations.
func (c *Container) GetRunner() *batch.Runner { return c.runner }

// GetPipeline returns the normalize/partition/extract pipeline.
func (c *Container) GetPipeline() *pipeline.Pipeline { return c.pipeline }

// GetRegionStore returns the region mapping store.
func (c *Container) GetRegionStore() *store.RegionStore { return c.regions }

// GetReportGenerator returns the statistics generator.
func (c *Container) GetReportGenerator() *report.ReportGenerator { return c.reporter }

// RetryPolicy is the configured retry schedule of model calls.
func (c *Container) RetryPolicy() aiclient.Policy {
	return aiclient.Policy{
		Attempts:     c.config.Retry.MaxAttempts,
		InitialDelay: c.config.Retry.InitialDelay,
		MaxDelay:     c.config.Retry.MaxDelay,
		Timeout:      c.config.Retry.Timeout,
	}
}

func (c *Container) gemini(ctx context.Context, model string) (*aiclient.GeminiClient, error) {
	client, err := aiclient.NewGeminiClient(ctx, c.config.AI.APIKey, model, c.logger)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.clients = append(c.clients, client)
	c.mu.Unlock()
	return client, nil
}

// NewStructurer builds the structuring collaborator from the configured
// glossary, format description and examples.
func (c *Container) NewStructurer(ctx context.Context) (*structurer.Structurer, error) {
	ai := c.config.AI
	if ai.GlossaryFile == "" || ai.SchemaFile == "" {
		return nil, fmt.Errorf("ai.glossary_file and ai.schema_file must be configured")
	}
	resources, err := structurer.LoadResources(ai.GlossaryFile, ai.SchemaFile, ai.ExamplesFile)
	if err != nil {
		return nil, err
	}
	client, err := c.gemini(ctx, ai.Model)
	if err != nil {
		return nil, err
	}
	return structurer.New(client, resources, c.RetryPolicy(), c.logger), nil
}

// NewTranscriber builds the OCR collaborator with the configured example
// pages, if any.
func (c *Container) NewTranscriber(ctx context.Context) (*ocr.Transcriber, error) {
	var examples []ocr.Example
	if c.config.AI.OCRExamples != "" {
		var err error
		examples, err = ocr.LoadExamples(c.config.AI.OCRExamples)
		if err != nil {
			return nil, err
		}
	}
	client, err := c.gemini(ctx, c.config.AI.OCRModel)
	if err != nil {
		return nil, err
	}
	return ocr.New(client, examples, c.RetryPolicy(), c.logger), nil
}

// NewGeonamesUpdater builds the geocoding collaborator. The returned cache
// is the one the client fills; the caller saves it when done.
func (c *Container) NewGeonamesUpdater() (*geonames.Updater, *store.GeocodeCache, error) {
	g := c.config.Geonames
	cache, err := store.LoadGeocodeCache(g.CacheFile)
	if err != nil {
		return nil, nil, err
	}
	c.logger.Info("Loaded GeoNames cache",
		logging.F(logging.FieldFile, g.CacheFile),
		logging.F(logging.FieldCount, cache.Len()))

	mapping, err := c.regions.LoadRegionMappings()
	if err != nil {
		return nil, nil, err
	}
	client, err := geonames.NewClient(g.URL, g.Username, g.RequestsPerSecond, cache, c.logger)
	if err != nil {
		return nil, nil, err
	}
	return geonames.NewUpdater(client, mapping, c.logger), cache, nil
}

// Close releases the model clients created by the container.
func (c *Container) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	var firstErr error
	for _, client := range c.clients {
		if err := client.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	c.clients = nil
	return firstErr
}
