package checker

import (
	"context"
	"time"

	"github.com/GriffinCanCode/seolint/internal/document"
	"github.com/GriffinCanCode/seolint/internal/logging"
	"github.com/GriffinCanCode/seolint/internal/report"
	"github.com/GriffinCanCode/seolint/internal/rule"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency bounds parallel document loads.
const DefaultConcurrency = 4

// Rule is a named validator.
type Rule struct {
	Name     string
	Validate rule.Validator
}

// Recorder receives audit telemetry.
type Recorder interface {
	RecordAudit(status string, duration time.Duration)
	RecordDefect(rule string)
}

type nopRecorder struct{}

func (nopRecorder) RecordAudit(string, time.Duration) {}
func (nopRecorder) RecordDefect(string)               {}

// Option configures a Checker.
type Option func(*Checker)

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(c *Checker) {
		if l != nil {
			c.logger = l.Component("checker")
		}
	}
}

// WithRecorder sets the telemetry sink.
func WithRecorder(r Recorder) Option {
	return func(c *Checker) {
		if r != nil {
			c.recorder = r
		}
	}
}

// WithLoader sets the loader Run resolves locations with.
func WithLoader(l *document.Loader) Option {
	return func(c *Checker) {
		c.loader = l
	}
}

// WithConcurrency bounds parallel loads in Run.
func WithConcurrency(n int) Option {
	return func(c *Checker) {
		if n > 0 {
			c.concurrency = n
		}
	}
}

// Checker applies a fixed list of rules.
type Checker struct {
	rules       []Rule
	loader      *document.Loader
	logger      *logging.Logger
	recorder    Recorder
	concurrency int
}

// New creates a checker for rules.
func New(rules []Rule, opts ...Option) *Checker {
	c := &Checker{
		rules:       rules,
		loader:      document.NewLoader(nil),
		logger:      logging.NewNop(),
		recorder:    nopRecorder{},
		concurrency: DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Rules returns the checker's rules.
func (c *Checker) Rules() []Rule {
	return c.rules
}

// Check runs every rule against q.
func (c *Checker) Check(source string, q rule.Query) *report.Report {
	start := time.Now()
	r := report.New(source)

	for _, rl := range c.rules {
		res := rl.Validate(q)
		if res.Failed() {
			c.recorder.RecordDefect(rl.Name)
		}
		r.Add(rl.Name, res)
	}

	elapsed := time.Since(start)
	c.recorder.RecordAudit(r.Status(), elapsed)
	c.logger.Debug("Document checked",
		zap.String("source", source),
		zap.Int("rules", len(c.rules)),
		zap.Int("defects", len(r.Findings)),
		zap.Duration("duration", elapsed),
	)
	return r
}

// CheckDocument runs every rule against doc.
func (c *Checker) CheckDocument(doc *document.Document) *report.Report {
	return c.Check(doc.Name, doc.Query())
}

// Run loads and checks every location. Reports keep input order. The error
// is non-nil only when ctx ends before the batch completes.
func (c *Checker) Run(ctx context.Context, locations []string) ([]*report.Report, error) {
	reports := make([]*report.Report, len(locations))

	var g errgroup.Group
	g.SetLimit(c.concurrency)

	for i, loc := range locations {
		g.Go(func() error {
			doc, err := c.loader.Load(ctx, loc)
			if err != nil {
				c.logger.Warn("Failed to load document", zap.String("source", loc), zap.Error(err))
				c.recorder.RecordAudit("error", 0)
				reports[i] = report.Failed(loc, err)
				return nil
			}
			reports[i] = c.CheckDocument(doc)
			return nil
		})
	}
	_ = g.Wait()

	summary := report.Summarize(reports)
	c.logger.Info("Audit finished",
		zap.Int("documents", summary.Documents),
		zap.Int("defects", summary.Defects),
		zap.Int("errors", summary.Errors),
	)

	if err := ctx.Err(); err != nil {
		return reports, err
	}
	return reports, nil
}
