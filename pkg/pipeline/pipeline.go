// Package pipeline runs a migration: scan every category from the source,
// build one graph model per record, consolidate, then export.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dd0wney/cluso-relations/pkg/builder"
	"github.com/dd0wney/cluso-relations/pkg/consolidate"
	"github.com/dd0wney/cluso-relations/pkg/export"
	"github.com/dd0wney/cluso-relations/pkg/logging"
	"github.com/dd0wney/cluso-relations/pkg/metrics"
	"github.com/dd0wney/cluso-relations/pkg/parallel"
	"github.com/dd0wney/cluso-relations/pkg/record"
	"github.com/dd0wney/cluso-relations/pkg/source"
)

// DefaultProgressEvery is the number of records between two progress events.
const DefaultProgressEvery = 1000

// Event reports the progress of one category.
type Event struct {
	Category string
	Records  int
	Built    int
	Skipped  int
	Done     bool
	Err      error
}

// Pipeline wires a source to the builders and the consolidation session.
type Pipeline struct {
	Source     source.Source
	Registries map[string]*builder.Registry
	Categories []string

	// Workers > 1 consolidates categories in parallel, one session each.
	Workers int

	Logger  logging.Logger
	Metrics *metrics.Registry

	// Progress receives events when non-nil. Sends block, so the receiver
	// must keep draining until Run returns.
	Progress      chan<- Event
	ProgressEvery int
}

// Run scans, builds and consolidates every category. A failing scan or a
// structural error stops the run; records whose processors fail are skipped.
func (p *Pipeline) Run(ctx context.Context) (*consolidate.Session, error) {
	if p.Source == nil {
		return nil, errors.New("pipeline: no source")
	}
	for _, c := range p.Categories {
		if _, ok := p.Registries[c]; !ok {
			return nil, fmt.Errorf("pipeline: %w: %q", source.ErrUnknownCategory, c)
		}
	}

	logger := p.logger()
	timer := logging.StartTimer(logger, "consolidation finished",
		logging.Int("categories", len(p.Categories)), logging.Int("workers", p.Workers))
	start := time.Now()

	session, err := p.consolidate(ctx)
	p.metrics(func(m *metrics.Registry) { m.RecordStage("consolidate", time.Since(start), err) })
	if err != nil {
		timer.EndError(err)
		return nil, err
	}

	st := session.Stats()
	nodeGroups, relationGroups := len(session.NodeGroups()), len(session.RelationGroups())
	p.metrics(func(m *metrics.Registry) {
		m.RecordConsolidation(st.Nodes, st.Relations, nodeGroups, relationGroups,
			st.Expanded, st.DuplicateNodes, st.DuplicateRelations)
	})
	timer.End(
		logging.Int("nodes", st.Nodes),
		logging.Int("relations", st.Relations),
		logging.Int("node_groups", nodeGroups),
		logging.Int("relation_groups", relationGroups))
	return session, nil
}

func (p *Pipeline) consolidate(ctx context.Context) (*consolidate.Session, error) {
	if p.Workers <= 1 || len(p.Categories) <= 1 {
		session := consolidate.NewSession(p.logger())
		for _, c := range p.Categories {
			if err := p.runCategory(ctx, c, session); err != nil {
				return nil, err
			}
		}
		return session, nil
	}

	sessions := make([]*consolidate.Session, len(p.Categories))
	tasks := make([]parallel.Task, len(p.Categories))
	for i, c := range p.Categories {
		i, c := i, c
		sessions[i] = consolidate.NewSession(p.logger())
		tasks[i] = func() error { return p.runCategory(ctx, c, sessions[i]) }
	}

	errs, err := parallel.Run(p.Workers, p.logger(), tasks)
	if err != nil {
		return nil, err
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	// Merge in category order so the first category to claim a uid wins, as
	// in a sequential run.
	session := sessions[0]
	for _, other := range sessions[1:] {
		if err := session.Merge(other); err != nil {
			return nil, err
		}
	}
	return session, nil
}

func (p *Pipeline) runCategory(ctx context.Context, category string, session *consolidate.Session) (retErr error) {
	reg := p.Registries[category]
	logger := p.logger().With(logging.Category(category))
	reg.SetLogger(logger)

	ev := Event{Category: category}
	every := p.ProgressEvery
	if every <= 0 {
		every = DefaultProgressEvery
	}

	start := time.Now()
	defer func() {
		p.metrics(func(m *metrics.Registry) { m.RecordCategory(category, time.Since(start), retErr) })
		ev.Done, ev.Err = true, retErr
		p.emit(ctx, ev)
		if retErr != nil {
			logger.Error("category failed", logging.Error(retErr))
			return
		}
		logger.Info("category consolidated",
			logging.Int("records", ev.Records),
			logging.Int("built", ev.Built),
			logging.Int("skipped", ev.Skipped),
			logging.Latency(time.Since(start)))
	}()

	err := p.Source.Scan(ctx, category, reg.RequiredFields(), func(rec record.Record) error {
		ev.Records++
		p.metrics(func(m *metrics.Registry) { m.RecordsScannedTotal.WithLabelValues(category).Inc() })

		model, err := reg.Build(rec)
		if err != nil {
			if builder.IsFatal(err) {
				return err
			}
			ev.Skipped++
			p.metrics(func(m *metrics.Registry) { m.RecordsSkippedTotal.WithLabelValues(category).Inc() })
			logger.Warn("record skipped", logging.Recid(rec.ControlNumber()), logging.Error(err))
			return nil
		}

		if err := session.Add(model); err != nil {
			return fmt.Errorf("consolidate %s record %s: %w", category, rec.ControlNumber(), err)
		}
		ev.Built++
		p.metrics(func(m *metrics.Registry) { m.RecordsBuiltTotal.WithLabelValues(category).Inc() })

		if ev.Records%every == 0 {
			p.emit(ctx, ev)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("category %s: %w", category, err)
	}
	return nil
}

// Export writes the session with exporter and records the outcome.
func (p *Pipeline) Export(ctx context.Context, session *consolidate.Session, exporter *export.Exporter) (nodes, relations *export.Manifest, err error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	if exporter.Logger == nil {
		exporter.Logger = p.logger().With(logging.Component("export"))
	}

	timer := logging.StartTimer(p.logger(), "export finished",
		logging.Path(exporter.NodesDir), logging.String("relations_path", exporter.RelationsDir))
	start := time.Now()

	nodes, relations, err = exporter.Export(session)
	p.metrics(func(m *metrics.Registry) { m.RecordStage("export", time.Since(start), err) })
	if err != nil {
		timer.EndError(err)
		return nil, nil, err
	}

	p.metrics(func(m *metrics.Registry) {
		m.RecordExport("nodes", len(nodes.Files), nodes.Rows, nodes.Dropped)
		m.RecordExport("relations", len(relations.Files), relations.Rows, relations.Dropped)
	})
	timer.End(
		logging.Int("node_rows", nodes.Rows),
		logging.Int("relation_rows", relations.Rows),
		logging.Int("dropped", relations.Dropped))
	return nodes, relations, nil
}

func (p *Pipeline) emit(ctx context.Context, ev Event) {
	if p.Progress == nil {
		return
	}
	select {
	case p.Progress <- ev:
	case <-ctx.Done():
	}
}

func (p *Pipeline) metrics(fn func(*metrics.Registry)) {
	if p.Metrics != nil {
		fn(p.Metrics)
	}
}

func (p *Pipeline) logger() logging.Logger {
	if p.Logger == nil {
		return logging.NewNopLogger()
	}
	return p.Logger
}
