// Package pipeline orchestrates one analyze call: normalization, the
// concurrent analyzers, issue reconciliation, session scoring, and
// best-effort persistence of the score record. Only malformed input
// fails the call; every analyzer failure degrades to a warning on the
// result.
package pipeline

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/kvalencee/alfaia/internal/analysis/reconciler"
	"github.com/kvalencee/alfaia/internal/analysis/scorer"
	"github.com/kvalencee/alfaia/internal/config"
	"github.com/kvalencee/alfaia/internal/infrastructure/cache"
	"github.com/kvalencee/alfaia/internal/infrastructure/database/postgres"
	"github.com/kvalencee/alfaia/internal/infrastructure/messaging/kafka"
	"github.com/kvalencee/alfaia/internal/infrastructure/monitoring/logging"
	"github.com/kvalencee/alfaia/internal/infrastructure/monitoring/prometheus"
	"github.com/kvalencee/alfaia/internal/nlp/heuristics"
	"github.com/kvalencee/alfaia/internal/nlp/morphology"
	"github.com/kvalencee/alfaia/internal/nlp/normalizer"
	"github.com/kvalencee/alfaia/internal/nlp/rules"
	"github.com/kvalencee/alfaia/pkg/errors"
	"github.com/kvalencee/alfaia/pkg/types/analysis"
)

const (
	analyzerMorphology = "morphology"
	analyzerRules      = "rules"
	analyzerHeuristics = "heuristics"
)

// Pipeline wires the analyzers together. Safe for concurrent use.
type Pipeline struct {
	cfg     config.AnalysisConfig
	norm    *normalizer.Normalizer
	tagger  morphology.Tagger
	checker rules.Checker
	heur    heuristics.Scorer
	cache   cache.Cache
	metrics *prometheus.Metrics
	logger  logging.Logger
	scores  postgres.ScoreRepository
	pub     kafka.ScorePublisher
	newID   func() string

	// mu guards rec and scorer, which ApplyConfig may swap while
	// Analyze calls are in flight.
	mu     sync.RWMutex
	rec    *reconciler.Reconciler
	scorer *scorer.Scorer
}

type Option func(*Pipeline)

// WithCache installs a shared result cache. Without one, every
// sentence is computed fresh.
func WithCache(c cache.Cache) Option {
	return func(p *Pipeline) { p.cache = c }
}

func WithMetrics(m *prometheus.Metrics) Option {
	return func(p *Pipeline) { p.metrics = m }
}

func WithLogger(log logging.Logger) Option {
	return func(p *Pipeline) { p.logger = log }
}

// WithScoreRepository enables best-effort score persistence.
func WithScoreRepository(repo postgres.ScoreRepository) Option {
	return func(p *Pipeline) { p.scores = repo }
}

// WithScorePublisher enables best-effort score publication.
func WithScorePublisher(pub kafka.ScorePublisher) Option {
	return func(p *Pipeline) { p.pub = pub }
}

// WithTagger replaces the morphological analyzer.
func WithTagger(t morphology.Tagger) Option {
	return func(p *Pipeline) { p.tagger = t }
}

// WithChecker replaces the rule checker.
func WithChecker(c rules.Checker) Option {
	return func(p *Pipeline) { p.checker = c }
}

// WithHeuristicScorer replaces the heuristic scorer.
func WithHeuristicScorer(h heuristics.Scorer) Option {
	return func(p *Pipeline) { p.heur = h }
}

// WithIDGenerator overrides submission id generation.
func WithIDGenerator(fn func() string) Option {
	return func(p *Pipeline) { p.newID = fn }
}

// New builds a Pipeline with the default analyzers.
func New(cfg config.AnalysisConfig, opts ...Option) *Pipeline {
	p := &Pipeline{
		cfg:     cfg,
		norm:    normalizer.New(),
		tagger:  morphology.NewLexiconTagger(),
		checker: rules.NewRuleChecker(rules.WithMaxSuggestions(cfg.MaxSuggestions)),
		heur:    heuristics.NewHeuristicScorer(),
		rec:     reconciler.New(cfg.ConfidenceThreshold),
		scorer:  scorer.New(cfg.CategoryWeights),
		metrics: prometheus.NewNopMetrics(),
		logger:  logging.NewNopLogger(),
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ApplyConfig re-applies the runtime-tunable analysis settings, the
// confidence threshold and the category weights. Safe to call while
// Analyze calls are in flight; timeouts and size limits are fixed at
// construction.
func (p *Pipeline) ApplyConfig(cfg config.AnalysisConfig) {
	p.mu.Lock()
	p.rec = reconciler.New(cfg.ConfidenceThreshold)
	p.scorer = scorer.New(cfg.CategoryWeights)
	p.mu.Unlock()
	p.logger.Info("analysis settings reloaded",
		logging.Float64("confidence_threshold", cfg.ConfidenceThreshold))
}

// sentenceOutcome carries one sentence's analyzer results back from the
// worker goroutine.
type sentenceOutcome struct {
	issues   []analysis.Issue
	warnings []analysis.Warning
}

// Analyze runs the full pipeline over one submission. learnerID may be
// empty for anonymous use; it only affects score record emission.
func (p *Pipeline) Analyze(ctx context.Context, text, learnerID string) (*analysis.AnalysisResult, error) {
	start := time.Now()
	if p.cfg.PipelineTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.cfg.PipelineTimeout)
		defer cancel()
	}

	if p.cfg.MaxSubmissionBytes > 0 && len(text) > p.cfg.MaxSubmissionBytes {
		p.metrics.AnalyzeTotal.WithLabelValues("input_error").Inc()
		return nil, errors.Newf(errors.ErrCodeInputTooLarge,
			"submission of %d bytes exceeds the %d byte limit", len(text), p.cfg.MaxSubmissionBytes)
	}

	res, err := p.norm.Normalize(ctx, text)
	if err != nil {
		p.metrics.AnalyzeTotal.WithLabelValues("input_error").Inc()
		return nil, err
	}

	outcomes := make([]sentenceOutcome, len(res.Sentences))
	var signals analysis.Signals
	var signalsWarning *analysis.Warning

	g, gctx := errgroup.WithContext(ctx)
	for i := range res.Sentences {
		i := i
		g.Go(func() error {
			outcomes[i] = p.analyzeSentence(gctx, res.Sentences[i])
			return nil
		})
	}
	g.Go(func() error {
		signals, signalsWarning = p.computeSignals(gctx, res)
		return nil
	})
	// Worker funcs never return errors; recoverable failures travel in
	// the outcomes.
	_ = g.Wait()

	var candidates []analysis.Issue
	var warnings []analysis.Warning
	for _, o := range outcomes {
		candidates = append(candidates, o.issues...)
		warnings = append(warnings, o.warnings...)
	}
	if signalsWarning != nil {
		warnings = append(warnings, *signalsWarning)
	}

	p.mu.RLock()
	rec, sc := p.rec, p.scorer
	p.mu.RUnlock()

	reconciled := rec.Reconcile(candidates)
	score := sc.Score(reconciled)

	result := &analysis.AnalysisResult{
		SubmissionID: p.newID(),
		Text:         res.Text,
		Issues:       reconciled,
		Signals:      signals,
		Stats:        res.Stats,
		Score:        score,
		Warnings:     warnings,
		Elapsed:      time.Since(start),
	}

	outcome := "ok"
	if len(warnings) > 0 {
		outcome = "partial"
	}
	p.metrics.AnalyzeTotal.WithLabelValues(outcome).Inc()
	p.metrics.AnalyzeDuration.Observe(result.Elapsed.Seconds())
	for cat, n := range result.IssueCountByCategory() {
		p.metrics.IssuesSurfaced.WithLabelValues(string(cat)).Add(float64(n))
	}
	p.metrics.IssuesPerSubmission.Observe(float64(len(reconciled)))
	p.metrics.SessionScore.Observe(score)

	p.emitScoreRecord(result, learnerID, sc)
	return result, nil
}

// analyzeSentence runs morphology then rules for one sentence; the two
// are ordered because the rule checker consumes the tagging.
func (p *Pipeline) analyzeSentence(ctx context.Context, sent analysis.Sentence) sentenceOutcome {
	var out sentenceOutcome

	morph, warn := p.tagSentence(ctx, sent)
	if warn != nil {
		out.warnings = append(out.warnings, *warn)
	}

	issues, warn := p.checkSentence(ctx, sent, morph)
	if warn != nil {
		out.warnings = append(out.warnings, *warn)
	}
	out.issues = issues
	return out
}

func (p *Pipeline) tagSentence(ctx context.Context, sent analysis.Sentence) ([]analysis.Token, *analysis.Warning) {
	actx, cancel := p.analyzerContext(ctx)
	defer cancel()

	started := time.Now()
	var tokens []analysis.Token
	var err error
	if p.cache != nil {
		key := cache.Key(analyzerMorphology, sent.Text)
		var relative []analysis.Token
		_, err = p.cache.GetOrCompute(actx, key, &relative, func(cctx context.Context) (interface{}, error) {
			tagged, tagErr := p.tagger.Tag(cctx, sent)
			if tagErr != nil {
				return nil, tagErr
			}
			return shiftTokens(tagged, -sent.Span.Start), nil
		})
		if err == nil {
			tokens = shiftTokens(relative, sent.Span.Start)
		}
	} else {
		tokens, err = p.tagger.Tag(actx, sent)
	}
	p.metrics.ObserveAnalyzer(analyzerMorphology, time.Since(started), err)

	if err != nil {
		p.logger.Warn("morphological analysis degraded",
			logging.Int("sentence", sent.Index), logging.Err(err))
		return nil, warningFor(analyzerMorphology, err)
	}
	return tokens, nil
}

func (p *Pipeline) checkSentence(ctx context.Context, sent analysis.Sentence, morph []analysis.Token) ([]analysis.Issue, *analysis.Warning) {
	actx, cancel := p.analyzerContext(ctx)
	defer cancel()

	started := time.Now()
	var issues []analysis.Issue
	var err error
	// Partial rule runs are not cached: a timed-out sentence would pin
	// its truncated issue list for every later submission.
	if p.cache != nil {
		key := cache.Key(analyzerRules, sent.Text)
		var relative []analysis.Issue
		_, err = p.cache.GetOrCompute(actx, key, &relative, func(cctx context.Context) (interface{}, error) {
			found, checkErr := p.checker.Check(cctx, sent, morph)
			if checkErr != nil {
				return nil, checkErr
			}
			return shiftIssues(found, -sent.Span.Start), nil
		})
		if err == nil {
			issues = shiftIssues(relative, sent.Span.Start)
		} else if partial, ok := errors.AsAppError(err); ok && partial.Code == errors.ErrCodePartiallyChecked {
			// Recompute outside the cache to salvage the partial list.
			issues, _ = p.checker.Check(actx, sent, morph)
		}
	} else {
		issues, err = p.checker.Check(actx, sent, morph)
	}
	p.metrics.ObserveAnalyzer(analyzerRules, time.Since(started), err)

	if err != nil {
		p.logger.Warn("rule check degraded",
			logging.Int("sentence", sent.Index), logging.Err(err))
		return issues, warningFor(analyzerRules, err)
	}
	return issues, nil
}

func (p *Pipeline) computeSignals(ctx context.Context, res *normalizer.Result) (analysis.Signals, *analysis.Warning) {
	actx, cancel := p.analyzerContext(ctx)
	defer cancel()

	started := time.Now()
	var signals analysis.Signals
	var err error
	if p.cache != nil {
		key := cache.Key(analyzerHeuristics, res.Text)
		_, err = p.cache.GetOrCompute(actx, key, &signals, func(cctx context.Context) (interface{}, error) {
			sig, scoreErr := p.heur.Score(cctx, res.Text, res.Stats)
			if scoreErr != nil {
				return nil, scoreErr
			}
			return sig, nil
		})
	} else {
		signals, err = p.heur.Score(actx, res.Text, res.Stats)
	}
	p.metrics.ObserveAnalyzer(analyzerHeuristics, time.Since(started), err)

	if err != nil {
		p.logger.Warn("heuristic scoring degraded", logging.Err(err))
		return analysis.NeutralSignals(), warningFor(analyzerHeuristics, err)
	}
	return signals, nil
}

func (p *Pipeline) analyzerContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if p.cfg.AnalyzerTimeout > 0 {
		return context.WithTimeout(ctx, p.cfg.AnalyzerTimeout)
	}
	return context.WithCancel(ctx)
}

// emitScoreRecord persists and publishes the record best-effort. The
// analyze call already succeeded; failures here are only logged.
func (p *Pipeline) emitScoreRecord(result *analysis.AnalysisResult, learnerID string, sc *scorer.Scorer) {
	if learnerID == "" || (p.scores == nil && p.pub == nil) {
		return
	}
	rec := sc.BuildRecord(result, learnerID)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if p.scores != nil {
		if err := p.scores.Save(ctx, rec); err != nil {
			p.metrics.ScoreRecordsPersisted.WithLabelValues("postgres", "error").Inc()
			p.logger.Error("failed to persist score record",
				logging.String("submission_id", rec.SubmissionID), logging.Err(err))
		} else {
			p.metrics.ScoreRecordsPersisted.WithLabelValues("postgres", "ok").Inc()
		}
	}
	if p.pub != nil {
		if err := p.pub.PublishScore(ctx, rec); err != nil {
			p.metrics.ScoreRecordsPersisted.WithLabelValues("kafka", "error").Inc()
			p.logger.Error("failed to publish score record",
				logging.String("submission_id", rec.SubmissionID), logging.Err(err))
		} else {
			p.metrics.ScoreRecordsPersisted.WithLabelValues("kafka", "ok").Inc()
		}
	}
}

func warningFor(analyzer string, err error) *analysis.Warning {
	code := errors.GetCode(err)
	msg := err.Error()
	if app, ok := errors.AsAppError(err); ok {
		msg = app.Message
	}
	return &analysis.Warning{
		Analyzer: analyzer,
		Code:     string(code),
		Message:  msg,
	}
}

func shiftTokens(tokens []analysis.Token, delta int) []analysis.Token {
	out := make([]analysis.Token, len(tokens))
	copy(out, tokens)
	for i := range out {
		out[i].Span.Start += delta
		out[i].Span.End += delta
	}
	return out
}

func shiftIssues(issues []analysis.Issue, delta int) []analysis.Issue {
	out := make([]analysis.Issue, len(issues))
	copy(out, issues)
	for i := range out {
		out[i].Span.Start += delta
		out[i].Span.End += delta
	}
	return out
}
