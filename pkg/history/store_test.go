package history

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/hazyhaar/coo-registry/pkg/resolve"
	"github.com/hazyhaar/coo-registry/pkg/vocab"
)

func runBatch(t *testing.T, raw ...resolve.Value) *resolve.BatchResult {
	t.Helper()
	b, err := vocab.NewBundle(nil, []string{"Viet Nam", "Unknown"}, map[string]string{"vietnam": "Viet Nam"}, nil)
	require.NoError(t, err)
	r, err := resolve.FromBundle(b)
	require.NoError(t, err)
	return resolve.NewRunner(r).Run(raw)
}

func TestOpen_CreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "h.db")
	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()

	_, err = os.Stat(path)
	require.NoError(t, err)

	runs, err := s.ListRuns(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, runs)
}

type StoreSuite struct {
	suite.Suite
	store *Store
	ctx   context.Context
}

func TestStoreSuite(t *testing.T) {
	suite.Run(t, new(StoreSuite))
}

func (s *StoreSuite) SetupTest() {
	store, err := Open(filepath.Join(s.T().TempDir(), "history.db"))
	s.Require().NoError(err)
	s.store = store
	s.ctx = context.Background()
}

func (s *StoreSuite) TearDownTest() {
	s.Require().NoError(s.store.Close())
}

func (s *StoreSuite) TestRecordRun() {
	res := runBatch(s.T(), resolve.Of("Vietnam"), resolve.Of("Asia"), resolve.Of("Narnia"), resolve.Null)
	runID, err := s.store.RecordRun(s.ctx, RunInfo{
		Input: "suppliers.csv", Column: "COO", Mode: "mapping", BundleID: "inline", BundleVersion: "1",
	}, res)
	s.Require().NoError(err)
	s.Require().NotEmpty(runID)

	runs, err := s.store.ListRuns(s.ctx, 0)
	s.Require().NoError(err)
	s.Require().Len(runs, 1)

	run := runs[0]
	s.Equal(runID, run.RunID)
	s.Equal("suppliers.csv", run.Input)
	s.Equal("COO", run.Column)
	s.Equal(4, run.Total)
	s.Equal(1, run.Matched)
	s.Equal(3, run.Unknown)
	s.Equal(1, run.MethodCounts["alias"])
	s.Equal(1, run.MethodCounts["regional"])
	s.Equal(0, run.MethodCounts["exact"])
	s.False(run.CreatedAt.IsZero())

	unmatched, err := s.store.Unmatched(s.ctx, runID)
	s.Require().NoError(err)
	s.Require().Len(unmatched, 3)
	s.Equal("Asia", *unmatched[0].RawValue)
	s.Equal("regional", unmatched[0].Method)
	s.Equal("Narnia", *unmatched[1].RawValue)
	s.Equal("no_match", unmatched[1].Method)
	s.Nil(unmatched[2].RawValue)
	s.Equal("null", unmatched[2].Method)
}

func (s *StoreSuite) TestListRuns_NewestFirstWithLimit() {
	var ids []string
	for _, input := range []string{"a.csv", "b.csv", "c.csv"} {
		id, err := s.store.RecordRun(s.ctx, RunInfo{Input: input, Mode: "mapping", BundleID: "inline"}, runBatch(s.T(), resolve.Of("Vietnam")))
		s.Require().NoError(err)
		ids = append(ids, id)
	}

	runs, err := s.store.ListRuns(s.ctx, 2)
	s.Require().NoError(err)
	s.Require().Len(runs, 2)
	s.Equal(ids[2], runs[0].RunID)
	s.Equal(ids[1], runs[1].RunID)
}

func (s *StoreSuite) TestUnmatched_UnknownRun() {
	out, err := s.store.Unmatched(s.ctx, "does-not-exist")
	s.Require().NoError(err)
	s.Empty(out)
}

func (s *StoreSuite) TestRecordRun_AllMatched() {
	runID, err := s.store.RecordRun(s.ctx, RunInfo{Input: "x.csv", Mode: "full", BundleID: "inline"}, runBatch(s.T(), resolve.Of("Viet Nam")))
	s.Require().NoError(err)

	out, err := s.store.Unmatched(s.ctx, runID)
	s.Require().NoError(err)
	s.Empty(out)
}
