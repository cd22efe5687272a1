package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/punchingpaco/pacodeploy/deployer"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := Open(hclog.NewNullLogger(), filepath.Join(t.TempDir(), "deployments"))
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = s.Close()
	})

	// deterministic, strictly increasing clock
	clock := time.Date(2022, 3, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time {
		clock = clock.Add(time.Second)

		return clock
	}

	return s
}

func recordRun(t *testing.T, s *Store, chainID uint64, labels ...string) *Run {
	t.Helper()

	run := s.NewRun(chainID)

	for i, label := range labels {
		require.NoError(t, run.Record(i, &deployer.Deployment{
			Label:       label,
			Contract:    label + "Contract",
			Address:     common.BigToAddress(common.Big1),
			TxHash:      common.BigToHash(common.Big2),
			GasUsed:     21000,
			BlockNumber: uint64(i + 1),
		}))
	}

	return run
}

func TestRecordAndList(t *testing.T) {
	s := newTestStore(t)

	run := recordRun(t, s, 31337, "Whitelist", "PunchingERC721")

	records, err := s.List(31337)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, run.ID(), records[0].RunID)
	assert.Equal(t, "Whitelist", records[0].Label)
	assert.Equal(t, "WhitelistContract", records[0].Contract)
	assert.Equal(t, common.BigToAddress(common.Big1), records[0].Address)
	assert.Equal(t, common.BigToHash(common.Big2), records[0].TxHash)
	assert.Equal(t, uint64(21000), records[0].GasUsed)
	assert.Equal(t, uint64(31337), records[0].ChainID)

	assert.Equal(t, 1, records[1].Index)
	assert.Equal(t, "PunchingERC721", records[1].Label)
	assert.Equal(t, uint64(2), records[1].BlockNumber)
}

func TestListSeparatesChains(t *testing.T) {
	s := newTestStore(t)

	recordRun(t, s, 1, "a")
	recordRun(t, s, 10, "b", "c")

	records, err := s.List(1)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "a", records[0].Label)

	records, err = s.List(10)
	require.NoError(t, err)
	assert.Len(t, records, 2)

	records, err = s.List(5)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestListStepOrder(t *testing.T) {
	s := newTestStore(t)

	labels := make([]string, 12)
	for i := range labels {
		labels[i] = string(rune('a' + i))
	}

	recordRun(t, s, 1, labels...)

	records, err := s.List(1)
	require.NoError(t, err)
	require.Len(t, records, 12)

	for i, r := range records {
		assert.Equal(t, i, r.Index)
	}
}

func TestLatest(t *testing.T) {
	s := newTestStore(t)

	recordRun(t, s, 1, "first-a", "first-b", "first-c")
	second := recordRun(t, s, 1, "second-a", "second-b")
	recordRun(t, s, 2, "other")

	records, err := s.Latest(1)
	require.NoError(t, err)
	require.Len(t, records, 2)

	for _, r := range records {
		assert.Equal(t, second.ID(), r.RunID)
	}

	assert.Equal(t, "second-a", records[0].Label)
	assert.Equal(t, "second-b", records[1].Label)
}

func TestLatestEmpty(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Latest(1)
	assert.ErrorIs(t, err, ErrNoDeployments)
}

func TestRecordsSurviveReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deployments")

	s, err := Open(hclog.NewNullLogger(), path)
	require.NoError(t, err)

	recordRun(t, s, 1, "Whitelist")
	require.NoError(t, s.Close())

	s, err = Open(hclog.NewNullLogger(), path)
	require.NoError(t, err)

	defer s.Close()

	records, err := s.Latest(1)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Whitelist", records[0].Label)
}

func TestOpenReadOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deployments")

	_, err := OpenReadOnly(hclog.NewNullLogger(), path)
	assert.ErrorIs(t, err, ErrStoreMissing)

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr), "listing must not create the store")

	s, err := Open(hclog.NewNullLogger(), path)
	require.NoError(t, err)

	recordRun(t, s, 1, "Whitelist", "PunchingERC721")
	require.NoError(t, s.Close())

	s, err = OpenReadOnly(hclog.NewNullLogger(), path)
	require.NoError(t, err)

	defer s.Close()

	records, err := s.Latest(1)
	require.NoError(t, err)
	assert.Len(t, records, 2)

	assert.Error(t, s.NewRun(1).Record(0, &deployer.Deployment{Label: "Whitelist"}))
}
