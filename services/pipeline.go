package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"leadgen/ai"
	"leadgen/extractor"
	"leadgen/metrics"
	"leadgen/models"
	"leadgen/scraper"
	"leadgen/storage"
	"leadgen/utils"
)

var errNoFetcher = errors.New("pipeline: no fetcher configured")

// PipelineConfig wires a Pipeline. Nil Completer, Metrics and Sinks are
// allowed; a nil Classifier uses the instagram_hashtag default.
type PipelineConfig struct {
	Classifier *extractor.Classifier
	Reader     extractor.Reader
	Fetcher    scraper.Fetcher
	Completer  ai.Completer
	Sinks      []storage.LeadWriter
	Metrics    *metrics.Metrics
	Logger     *utils.Logger

	Workers           int
	RateLimitMs       int
	FetchTimeout      time.Duration
	CompletionTimeout time.Duration
	MinScore          int
}

// ReferenceResult is what one reference produced.
type ReferenceResult struct {
	Reference     string
	Classified    models.ClassifiedReference
	Raw           models.RawContent
	Leads         []*models.CanonicalLead
	Duplicates    int
	BelowMinScore int
	AIFallbacks   int
	Cancelled     bool
}

// Pipeline runs references through classify, fetch, quick parse, extract,
// normalize, score, verdict and finalize, then hands the leads to the sinks.
type Pipeline struct {
	classifier *extractor.Classifier
	fetcher    scraper.Fetcher
	extractor  *extractor.Extractor
	normalizer *Normalizer
	verdicts   *VerdictGenerator
	finalizer  *Finalizer
	insights   *InsightService
	sinks      []storage.LeadWriter
	metrics    *metrics.Metrics
	logger     *utils.Logger

	workers      int
	rateLimitMs  int
	fetchTimeout time.Duration
	minScore     int
}

// NewPipeline creates a Pipeline from cfg.
func NewPipeline(cfg PipelineConfig) *Pipeline {
	logger := cfg.Logger
	if logger == nil {
		logger = utils.NewNopLogger()
	}
	classifier := cfg.Classifier
	if classifier == nil {
		classifier = extractor.NewClassifier(models.PlatformInstagramHashtag)
	}
	ex := extractor.New(logger)
	ex.SetReader(cfg.Reader)
	fetchTimeout := cfg.FetchTimeout
	if fetchTimeout <= 0 {
		fetchTimeout = 30 * time.Second
	}

	return &Pipeline{
		classifier:   classifier,
		fetcher:      cfg.Fetcher,
		extractor:    ex,
		normalizer:   NewNormalizer(logger),
		verdicts:     NewVerdictGenerator(cfg.Completer, cfg.CompletionTimeout, logger),
		finalizer:    NewFinalizer(),
		insights:     NewInsightService(logger),
		sinks:        cfg.Sinks,
		metrics:      cfg.Metrics,
		logger:       logger,
		workers:      cfg.Workers,
		rateLimitMs:  cfg.RateLimitMs,
		fetchTimeout: fetchTimeout,
		minScore:     cfg.MinScore,
	}
}

// Insights returns the service used to summarize runs.
func (p *Pipeline) Insights() *InsightService {
	return p.insights
}

// Run processes refs concurrently, writes the emitted leads to every sink in
// reference order and returns the batch report. The report is always
// returned; the error is non-nil only when ctx was cancelled.
func (p *Pipeline) Run(ctx context.Context, refs []string) (*models.BatchReport, error) {
	report := models.NewBatchReport(uuid.NewString())
	report.References = len(refs)
	logger := p.logger.With("run_id", report.RunID)
	logger.Info("[pipeline] Starting run over %d references with %d workers", len(refs), max(p.workers, 1))

	seen := utils.NewKeySet()
	pool := utils.NewWorkerPool(p.workers, p.rateLimitMs)
	results := make([]*ReferenceResult, len(refs))

	for i, ref := range refs {
		submitted := pool.Submit(ctx, func(ctx context.Context) {
			results[i] = p.process(ctx, ref, seen)
		})
		if !submitted {
			break
		}
	}
	pool.Wait()

	var leads []*models.CanonicalLead
	for i, res := range results {
		if res == nil || res.Cancelled {
			report.Cancelled++
			logger.Warn("[pipeline] Reference %q cancelled", refs[i])
			continue
		}
		if res.Raw.FetchError != "" {
			report.FetchFailures++
		}
		report.AIFallbacks += res.AIFallbacks
		report.DuplicatesSkipped += res.Duplicates
		report.BelowMinScore += res.BelowMinScore
		for _, l := range res.Leads {
			p.metrics.IncLead(l.Source)
		}
		leads = append(leads, res.Leads...)
	}

	report.SinkErrors = p.writeSinks(logger, leads)
	p.insights.Summarize(report, leads)

	logger.Info("[pipeline] Run complete: %d leads from %d unique entities, %d fetch failures, %d AI fallbacks, %d duplicates",
		report.LeadsEmitted, seen.Size(), report.FetchFailures, report.AIFallbacks, report.DuplicatesSkipped)

	if err := ctx.Err(); err != nil {
		return report, fmt.Errorf("pipeline: run interrupted: %w", err)
	}
	return report, nil
}

// ProcessReference runs a single reference with its own dedup scope. Nothing
// is written to the sinks.
func (p *Pipeline) ProcessReference(ctx context.Context, ref string) (*ReferenceResult, error) {
	res := p.process(ctx, ref, utils.NewKeySet())
	if res.Cancelled {
		return res, ctx.Err()
	}
	return res, nil
}

func (p *Pipeline) writeSinks(logger *utils.Logger, leads []*models.CanonicalLead) int {
	if len(leads) == 0 {
		return 0
	}
	start := time.Now()
	defer p.metrics.ObserveStage(metrics.StageSink, start)

	failures := 0
	for _, sink := range p.sinks {
		if err := sink.Write(leads); err != nil {
			failures++
			logger.Error("[pipeline] Sink %T failed: %v", sink, err)
		}
	}
	return failures
}

// process runs one reference end to end. Cancellation is checked between
// stages; a cancelled result carries no leads.
func (p *Pipeline) process(ctx context.Context, ref string, seen *utils.KeySet) *ReferenceResult {
	defer p.metrics.TrackReference()()

	res := &ReferenceResult{Reference: ref}
	cancelled := func() bool {
		if ctx.Err() != nil {
			res.Cancelled = true
			res.Leads = nil
			return true
		}
		return false
	}

	res.Classified = p.classifier.Classify(ref)
	p.logger.Debug("[classifier] %q -> %s %s", ref, res.Classified.Platform, res.Classified.Target)
	if cancelled() {
		return res
	}

	res.Raw = p.fetch(ctx, res.Classified)
	if cancelled() {
		return res
	}
	if res.Raw.FetchError != "" {
		p.metrics.IncFetchFailure()
	}

	start := time.Now()
	fb := p.extractor.QuickParse(res.Raw.Body, res.Classified)
	entities := p.extractor.Extract(res.Raw.Body, fb)
	p.metrics.ObserveStage(metrics.StageExtract, start)
	if cancelled() {
		return res
	}

	unique := entities[:0]
	for _, e := range entities {
		if !seen.Add(e.DedupKey()) {
			res.Duplicates++
			p.metrics.IncDuplicate()
			continue
		}
		unique = append(unique, e)
	}

	for _, lead := range p.normalizer.NormalizeAll(unique) {
		lead.Score = Score(lead)
		if lead.Score < p.minScore {
			res.BelowMinScore++
			continue
		}

		start := time.Now()
		analysis, fallback := p.verdicts.Verdict(ctx, lead)
		p.metrics.ObserveStage(metrics.StageVerdict, start)
		if cancelled() {
			return res
		}
		lead.Analysis = analysis
		lead.AIFallback = fallback
		if fallback {
			res.AIFallbacks++
			p.metrics.IncAIFallback()
		}

		res.Leads = append(res.Leads, p.finalizer.Finalize(lead))
	}

	return res
}

// fetch never fails: errors and timeouts become RawContent.FetchError.
func (p *Pipeline) fetch(ctx context.Context, c models.ClassifiedReference) models.RawContent {
	raw := models.RawContent{Platform: c.Platform, Target: c.Target}
	if c.Platform.IsHashtag() {
		return raw
	}
	if p.fetcher == nil {
		raw.FetchError = errNoFetcher.Error()
		return raw
	}

	start := time.Now()
	defer p.metrics.ObserveStage(metrics.StageFetch, start)

	fetchCtx, cancel := context.WithTimeout(ctx, p.fetchTimeout)
	defer cancel()

	body, err := p.fetcher.Fetch(fetchCtx, c.Target)
	if err != nil {
		raw.FetchError = err.Error()
		p.logger.Warn("[fetch] %s: %v", c.Target, err)
		return raw
	}
	raw.Body = body
	return raw
}
