package builder

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dd0wney/cluso-relations/pkg/graph"
	"github.com/dd0wney/cluso-relations/pkg/record"
)

func setRecid(m *graph.GraphModel, elem any) error {
	id := record.Scalar(elem)
	if id == "" {
		return nil
	}
	m.SetProperty("recid", id)
	return m.SetUID(graph.RecordUID(id))
}

func locatedIn(m *graph.GraphModel, elem any) error {
	m.AddOutgoing(graph.LocatedIn, graph.NewCountry(record.String(elem, "country_code")), nil)
	return nil
}

func newConferences() *Registry {
	r := New("conferences", graph.KindConference)
	r.Identity("control_number", setRecid)
	r.Register("located_in", "address", []string{"country_code"}, locatedIn)
	return r
}

func decode(t *testing.T, doc string) record.Record {
	t.Helper()
	rec, err := record.Decode([]byte(doc))
	require.NoError(t, err)
	return rec
}

func TestBuild_Identity(t *testing.T) {
	m, err := newConferences().Build(decode(t, `{"control_number": 1245372}`))
	require.NoError(t, err)

	uid, err := m.Central.UID()
	require.NoError(t, err)
	assert.Equal(t, "Record|^|1245372", uid)
	assert.Equal(t, "1245372", m.Central.Properties["recid"])
	assert.Equal(t, []string{"Conference", "Record"}, m.Central.Labels())
	assert.Empty(t, m.Outgoing)
}

func TestBuild_SkipsMalformedElements(t *testing.T) {
	m, err := newConferences().Build(decode(t, `{
		"control_number": 7,
		"address": [{"city": "Nowhere"}, {"country_code": "FR"}, {"country_code": ""}]
	}`))
	require.NoError(t, err)
	require.Len(t, m.Outgoing, 1)

	uid, _ := m.Outgoing[0].End.UID()
	assert.Equal(t, "Country|^|FR", uid)
}

func TestBuild_IdentityRunsFirst(t *testing.T) {
	r := New("jobs", graph.KindJob)
	var sawUID bool
	r.Register("probe", "title", nil, func(m *graph.GraphModel, elem any) error {
		sawUID = m.Central.HasUID()
		return nil
	})
	r.Identity("control_number", setRecid)

	_, err := r.Build(decode(t, `{"control_number": 1, "title": "x"}`))
	require.NoError(t, err)
	assert.True(t, sawUID, "identity registered late still runs first")
	assert.Equal(t, []string{IdentityProcessor, "probe"}, r.Processors())
}

func TestBuild_MissingIdentity(t *testing.T) {
	_, err := newConferences().Build(decode(t, `{"address": [{"country_code": "FR"}]}`))
	require.Error(t, err)
	assert.True(t, errors.Is(err, graph.ErrMissingUID))
	assert.True(t, IsFatal(err))
	assert.Contains(t, err.Error(), "conferences")

	_, err = New("journals", graph.KindJournal).Build(decode(t, `{"control_number": 1}`))
	assert.True(t, errors.Is(err, ErrNoIdentity))
	assert.True(t, IsFatal(err))
}

func TestBuild_ProcessorErrorAbortsRecord(t *testing.T) {
	boom := errors.New("boom")
	r := newConferences()
	r.Register("fails", "acronym", nil, func(*graph.GraphModel, any) error { return boom })

	_, err := r.Build(decode(t, `{"control_number": 3, "acronym": "ICHEP"}`))
	require.Error(t, err)

	var be *BuildError
	require.True(t, errors.As(err, &be))
	assert.Equal(t, "fails", be.Processor)
	assert.Equal(t, "3", be.Recid)
	assert.True(t, errors.Is(err, boom))
	assert.False(t, IsFatal(err))
}

func TestBuild_Idempotent(t *testing.T) {
	r := newConferences()
	rec := decode(t, `{"control_number": 9, "address": [{"country_code": "CH"}, {"country_code": "FR"}]}`)

	a, err := r.Build(rec)
	require.NoError(t, err)
	b, err := r.Build(rec)
	require.NoError(t, err)

	eq, err := a.Equal(b)
	require.NoError(t, err)
	assert.True(t, eq)
	assert.NotSame(t, a.Central, b.Central, "every build starts from a fresh model")
}

func TestBind_SharedProcessor(t *testing.T) {
	confs := New("conferences", graph.KindConference)
	insts := New("institutions", graph.KindInstitution)
	BindIdentity([]*Registry{confs, insts}, "control_number", setRecid)
	Bind([]*Registry{confs, insts}, "located_in", "address", []string{"country_code"}, locatedIn)

	for _, r := range []*Registry{confs, insts} {
		m, err := r.Build(decode(t, `{"control_number": 1, "address": {"country_code": "IT"}}`))
		require.NoError(t, err)
		require.Len(t, m.Outgoing, 1)
		assert.Equal(t, r.Kind(), m.Central.Kind())
	}
}

func TestRegister_Panics(t *testing.T) {
	r := newConferences()
	assert.Panics(t, func() { r.Register("located_in", "address", nil, locatedIn) })
	assert.Panics(t, func() { r.Register(IdentityProcessor, "x", nil, locatedIn) })
	assert.Panics(t, func() { r.Identity("control_number", setRecid) })
}

func TestRequiredFields(t *testing.T) {
	r := newConferences()
	r.Register("series", "series", []string{"name"}, func(*graph.GraphModel, any) error { return nil })
	r.Register("series_number", "series", []string{"number"}, func(*graph.GraphModel, any) error { return nil })

	assert.Equal(t, []string{"$.address", "$.control_number", "$.series"}, r.RequiredFields())
}
