package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"

	"github.com/punchingpaco/pacodeploy/deployer"
	"github.com/punchingpaco/pacodeploy/helper/kvdb"
)

const deploymentPrefix = "deployment/"

var (
	ErrNoDeployments = errors.New("no recorded deployments")
	ErrStoreMissing  = errors.New("deployment store does not exist")
)

// Record is a single successful deployment step
type Record struct {
	RunID       string         `json:"runId"`
	ChainID     uint64         `json:"chainId"`
	Index       int            `json:"index"`
	Label       string         `json:"label"`
	Contract    string         `json:"contract"`
	Address     common.Address `json:"address"`
	TxHash      common.Hash    `json:"txHash"`
	GasUsed     uint64         `json:"gasUsed"`
	BlockNumber uint64         `json:"blockNumber"`
	DeployedAt  time.Time      `json:"deployedAt"`
}

func chainPrefix(chainID uint64) []byte {
	return []byte(fmt.Sprintf("%s%d/", deploymentPrefix, chainID))
}

func recordKey(chainID uint64, runID string, index int) []byte {
	return []byte(fmt.Sprintf("%s%d/%s/%04d", deploymentPrefix, chainID, runID, index))
}

// Store keeps the deployment records of every run, per chain
type Store struct {
	logger hclog.Logger
	kv     kvdb.KVStorage
	now    func() time.Time
}

// Open opens (or creates) the leveldb store at path
func Open(logger hclog.Logger, path string) (*Store, error) {
	builder := kvdb.NewLevelDBBuilder(logger, path).
		SetCacheSize(8).
		SetHandles(16)

	s, err := OpenWithBuilder(logger, builder)
	if err != nil {
		return nil, fmt.Errorf("failed to open deployment store %s: %w", path, err)
	}

	return s, nil
}

// OpenReadOnly opens an existing store for listing, nothing is created on disk
func OpenReadOnly(logger hclog.Logger, path string) (*Store, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrStoreMissing, path)
	}

	builder := kvdb.NewLevelDBBuilder(logger, path).
		SetCacheSize(8).
		SetHandles(16).
		SetReadOnly(true)

	s, err := OpenWithBuilder(logger, builder)
	if err != nil {
		return nil, fmt.Errorf("failed to open deployment store %s: %w", path, err)
	}

	return s, nil
}

// OpenWithBuilder opens the store with custom leveldb settings
func OpenWithBuilder(logger hclog.Logger, builder kvdb.LevelDBBuilder) (*Store, error) {
	kv, err := builder.Build()
	if err != nil {
		return nil, err
	}

	return NewStore(logger, kv), nil
}

func NewStore(logger hclog.Logger, kv kvdb.KVStorage) *Store {
	return &Store{
		logger: logger.Named("store"),
		kv:     kv,
		now:    time.Now,
	}
}

func (s *Store) Close() error {
	return s.kv.Close()
}

// NewRun starts a new run on the given chain. The returned run records
// the steps of a single pipeline execution.
func (s *Store) NewRun(chainID uint64) *Run {
	return &Run{
		store:   s,
		id:      uuid.New().String(),
		chainID: chainID,
	}
}

func (s *Store) put(r *Record) error {
	value, err := json.Marshal(r)
	if err != nil {
		return err
	}

	return s.kv.Set(recordKey(r.ChainID, r.RunID, r.Index), value)
}

// List returns every record of the chain, oldest run first and in step
// order within a run
func (s *Store) List(chainID uint64) ([]*Record, error) {
	var (
		records []*Record
		decErr  error
	)

	err := s.kv.Iterate(chainPrefix(chainID), func(k, v []byte) bool {
		r := &Record{}
		if decErr = json.Unmarshal(v, r); decErr != nil {
			decErr = fmt.Errorf("invalid record %s: %w", k, decErr)

			return false
		}

		records = append(records, r)

		return true
	})
	if err != nil {
		return nil, err
	}

	if decErr != nil {
		return nil, decErr
	}

	// run ids are random, order runs by their first deployment
	started := make(map[string]time.Time)

	for _, r := range records {
		if t, ok := started[r.RunID]; !ok || r.DeployedAt.Before(t) {
			started[r.RunID] = r.DeployedAt
		}
	}

	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if a.RunID != b.RunID {
			return started[a.RunID].Before(started[b.RunID])
		}

		return a.Index < b.Index
	})

	return records, nil
}

// Latest returns the records of the most recent run on the chain
func (s *Store) Latest(chainID uint64) ([]*Record, error) {
	records, err := s.List(chainID)
	if err != nil {
		return nil, err
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("%w for chain %d", ErrNoDeployments, chainID)
	}

	runID := records[len(records)-1].RunID

	start := len(records) - 1
	for start > 0 && records[start-1].RunID == runID {
		start--
	}

	return records[start:], nil
}

var _ deployer.Recorder = (*Run)(nil)

// Run records the deployments of one pipeline execution
type Run struct {
	store   *Store
	id      string
	chainID uint64
}

func (r *Run) ID() string {
	return r.id
}

// Record implements deployer.Recorder
func (r *Run) Record(index int, d *deployer.Deployment) error {
	record := &Record{
		RunID:       r.id,
		ChainID:     r.chainID,
		Index:       index,
		Label:       d.Label,
		Contract:    d.Contract,
		Address:     d.Address,
		TxHash:      d.TxHash,
		GasUsed:     d.GasUsed,
		BlockNumber: d.BlockNumber,
		DeployedAt:  r.store.now().UTC(),
	}

	if err := r.store.put(record); err != nil {
		return fmt.Errorf("failed to record %s: %w", d.Label, err)
	}

	r.store.logger.Debug("deployment recorded", "run", r.id, "index", index, "label", d.Label)

	return nil
}
