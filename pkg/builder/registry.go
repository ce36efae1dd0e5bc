// Package builder turns one source record into a graph model by running the
// field processors registered for the record's category.
package builder

import (
	"errors"
	"fmt"
	"sort"

	"github.com/dd0wney/cluso-relations/pkg/graph"
	"github.com/dd0wney/cluso-relations/pkg/logging"
	"github.com/dd0wney/cluso-relations/pkg/record"
)

// ProcessorFunc mutates the model for one element extracted from a record.
// It is only ever called with elements that carry every required key.
type ProcessorFunc func(m *graph.GraphModel, elem any) error

// IdentityProcessor is the name under which the identity processor runs.
const IdentityProcessor = "identity"

type processor struct {
	name  string
	path  *record.Path
	musts []string
	fn    ProcessorFunc
}

// Registry maps field paths of one record category onto processors.
type Registry struct {
	category   string
	kind       graph.Kind
	identity   *processor
	processors []*processor
	names      map[string]struct{}
	logger     logging.Logger
}

// New creates an empty registry whose models are centered on a node of kind.
func New(category string, kind graph.Kind) *Registry {
	return &Registry{
		category:   category,
		kind:       kind,
		processors: make([]*processor, 0),
		names:      make(map[string]struct{}),
		logger:     logging.NewNopLogger(),
	}
}

// Category returns the record category name, e.g. "literature".
func (r *Registry) Category() string {
	return r.category
}

// Kind returns the kind of the central node of every model built.
func (r *Registry) Kind() graph.Kind {
	return r.kind
}

// SetLogger sets the logger used for skipped fields.
func (r *Registry) SetLogger(logger logging.Logger) {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	r.logger = logger.With(logging.Category(r.category))
}

// Register binds fn to the elements found at field. Elements missing one of
// musts are skipped. Registration happens at init time, so an invalid field
// path or a duplicate name panics.
func (r *Registry) Register(name, field string, musts []string, fn ProcessorFunc) {
	if name == IdentityProcessor {
		panic(fmt.Sprintf("builder %s: %q is reserved, use Identity", r.category, name))
	}
	if _, dup := r.names[name]; dup {
		panic(fmt.Sprintf("builder %s: processor %q registered twice", r.category, name))
	}
	r.names[name] = struct{}{}
	r.processors = append(r.processors, &processor{
		name:  name,
		path:  record.MustCompile(field),
		musts: append([]string(nil), musts...),
		fn:    fn,
	})
}

// Identity registers the processor that binds the central node uid. It runs
// before every other processor of the registry.
func (r *Registry) Identity(field string, fn ProcessorFunc) {
	if r.identity != nil {
		panic(fmt.Sprintf("builder %s: identity registered twice", r.category))
	}
	r.identity = &processor{
		name: IdentityProcessor,
		path: record.MustCompile(field),
		fn:   fn,
	}
}

// Bind registers the same processor on several registries.
func Bind(regs []*Registry, name, field string, musts []string, fn ProcessorFunc) {
	for _, r := range regs {
		r.Register(name, field, musts, fn)
	}
}

// BindIdentity registers the same identity processor on several registries.
func BindIdentity(regs []*Registry, field string, fn ProcessorFunc) {
	for _, r := range regs {
		r.Identity(field, fn)
	}
}

// Processors returns the processor names in execution order.
func (r *Registry) Processors() []string {
	names := make([]string, 0, len(r.processors)+1)
	if r.identity != nil {
		names = append(names, r.identity.name)
	}
	for _, p := range r.processors {
		names = append(names, p.name)
	}
	return names
}

// RequiredFields returns the sorted, distinct field paths the registry reads.
// Sources use it to project records before they are built.
func (r *Registry) RequiredFields() []string {
	seen := make(map[string]struct{})
	fields := make([]string, 0, len(r.processors)+1)
	add := func(p *processor) {
		if _, ok := seen[p.path.String()]; ok {
			return
		}
		seen[p.path.String()] = struct{}{}
		fields = append(fields, p.path.String())
	}
	if r.identity != nil {
		add(r.identity)
	}
	for _, p := range r.processors {
		add(p)
	}
	sort.Strings(fields)
	return fields
}

// Build creates a fresh model and threads it through the identity processor
// and then every registered processor, once per surviving element in source
// order.
func (r *Registry) Build(rec record.Record) (*graph.GraphModel, error) {
	if r.identity == nil {
		return nil, &BuildError{Category: r.category, Processor: IdentityProcessor, Err: ErrNoIdentity}
	}

	model := graph.NewGraphModelOfKind(r.kind)
	recid := rec.ControlNumber()

	if err := r.run(r.identity, model, rec, recid); err != nil {
		return nil, err
	}
	if !model.Central.HasUID() {
		return nil, &BuildError{
			Category:  r.category,
			Processor: IdentityProcessor,
			Recid:     recid,
			Err:       fmt.Errorf("%s record: %w", r.kind, graph.ErrMissingUID),
		}
	}

	for _, p := range r.processors {
		if err := r.run(p, model, rec, recid); err != nil {
			return nil, err
		}
	}
	return model, nil
}

func (r *Registry) run(p *processor, model *graph.GraphModel, rec record.Record, recid string) error {
	elems, err := p.path.Elements(rec, p.musts...)
	if err != nil {
		// A field that cannot be evaluated on this record is a data gap.
		r.logger.Debug("field skipped",
			logging.Processor(p.name),
			logging.Recid(recid),
			logging.Error(err))
		return nil
	}
	for _, elem := range elems {
		if err := p.fn(model, elem); err != nil {
			return &BuildError{Category: r.category, Processor: p.name, Recid: recid, Err: err}
		}
	}
	return nil
}

// ErrNoIdentity is returned by Build on a registry without identity processor.
var ErrNoIdentity = errors.New("no identity processor registered")
