package deployments

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
	"github.com/punchingpaco/pacodeploy/store"
)

func recordRuns(t *testing.T, path string, chainID uint64, runs ...[]string) []string {
	t.Helper()

	s, err := store.Open(hclog.NewNullLogger(), path)
	require.NoError(t, err)

	defer s.Close()

	ids := make([]string, 0, len(runs))

	for i, labels := range runs {
		if i > 0 {
			// runs are ordered by their first deployment time
			time.Sleep(5 * time.Millisecond)
		}

		run := s.NewRun(chainID)

		for j, label := range labels {
			require.NoError(t, run.Record(j, &deployer.Deployment{
				Label:    label,
				Contract: label,
				Address:  common.BigToAddress(common.Big1),
			}))
		}

		ids = append(ids, run.ID())
	}

	return ids
}

func TestListDeploymentsMissingStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deployments")

	for _, all := range []bool{false, true} {
		result, err := listDeployments(hclog.NewNullLogger(), path, 31337, all)
		require.NoError(t, err)

		assert.Empty(t, result.Records)
		assert.Contains(t, result.GetOutput(), "No deployments recorded")
	}

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err), "listing must not create the store")
}

func TestListDeploymentsOtherChain(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deployments")
	recordRuns(t, path, 1, []string{"Whitelist"})

	testCases := []struct {
		description string
		all         bool
	}{
		{"latest run", false},
		{"every run", true},
	}

	for _, tc := range testCases {
		tc := tc

		t.Run(tc.description, func(t *testing.T) {
			result, err := listDeployments(hclog.NewNullLogger(), path, 31337, tc.all)
			require.NoError(t, err)

			assert.Equal(t, uint64(31337), result.ChainID)
			assert.Empty(t, result.Records)
		})
	}
}

func TestListDeploymentsRuns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deployments")
	ids := recordRuns(t, path, 31337,
		[]string{"Whitelist", "PunchingERC721"},
		[]string{"Whitelist", "PunchingERC721", "PunchingERC20", "PunchingStaking"},
	)

	latest, err := listDeployments(hclog.NewNullLogger(), path, 31337, false)
	require.NoError(t, err)
	require.Len(t, latest.Records, 4)

	for _, r := range latest.Records {
		assert.Equal(t, ids[1], r.RunID)
	}

	all, err := listDeployments(hclog.NewNullLogger(), path, 31337, true)
	require.NoError(t, err)
	assert.Len(t, all.Records, 6)
}
