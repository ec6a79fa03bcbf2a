package migration

import (
	"context"
	"strings"

	"github.com/eleven-am/schemaviz/internal/logger"
)

// FailureReporter is told about every migration that could not be rendered.
type FailureReporter func(m *Migration, err error)

// Collector concatenates the SQL of every migration in dependency order.
type Collector struct {
	source   GraphSource
	renderer Renderer
	strict   bool
	report   FailureReporter
	log      logger.Logger
}

type CollectorOption func(*Collector)

// WithStrict makes a render failure abort the collection instead of
// skipping the migration.
func WithStrict(strict bool) CollectorOption {
	return func(c *Collector) {
		c.strict = strict
	}
}

func WithFailureReporter(report FailureReporter) CollectorOption {
	return func(c *Collector) {
		c.report = report
	}
}

func NewCollector(source GraphSource, renderer Renderer, opts ...CollectorOption) *Collector {
	c := &Collector{
		source:   source,
		renderer: renderer,
		log:      logger.Migration(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Collect returns the SQL document of the whole graph. An empty document
// with a nil error means there was nothing to render.
func (c *Collector) Collect(ctx context.Context) (string, error) {
	g, err := c.source.Graph()
	if err != nil {
		return "", err
	}

	plan, err := g.Plan()
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	failed := 0
	for _, m := range plan {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		sql, err := c.renderer.Render(m)
		if err != nil {
			renderErr := &RenderError{Migration: m.Key, Err: err}
			if c.strict {
				return "", renderErr
			}
			c.log.Warn("Skipping migration", "migration", m.Key.String(), "error", err)
			if c.report != nil {
				c.report(m, err)
			}
			failed++
			continue
		}
		sb.WriteString(sql)
	}

	c.log.Info("Collected migrations",
		"planned", len(plan),
		"failed", failed,
		"bytes", sb.Len())

	return sb.String(), nil
}
