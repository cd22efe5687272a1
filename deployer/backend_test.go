package deployer

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"

	"github.com/punchingpaco/pacodeploy/contracts/artifact"
)

var errNode = errors.New("node unavailable")

// fakeBackend mines every transaction as soon as it is sent
type fakeBackend struct {
	lock sync.Mutex

	chainID  *big.Int
	gasPrice *big.Int
	estimate uint64

	nonces   map[common.Address]uint64
	sent     []*types.Transaction
	receipts map[common.Hash]*types.Receipt
	code     map[common.Address][]byte

	// index of the sent transaction that reverts, -1 for none
	revertAt int
	// index of the sent transaction that is rejected by the node, -1 for none
	rejectAt int
	// deploy without leaving code behind
	noCode bool

	estimateCalls int
	chainIDCalls  int
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		chainID:  big.NewInt(31337),
		gasPrice: big.NewInt(1_000_000_000),
		estimate: 1_000_000,
		nonces:   make(map[common.Address]uint64),
		receipts: make(map[common.Hash]*types.Receipt),
		code:     make(map[common.Address][]byte),
		revertAt: -1,
		rejectAt: -1,
	}
}

func (b *fakeBackend) ChainID(ctx context.Context) (*big.Int, error) {
	b.lock.Lock()
	defer b.lock.Unlock()

	b.chainIDCalls++

	return new(big.Int).Set(b.chainID), nil
}

func (b *fakeBackend) PendingNonceAt(ctx context.Context, account common.Address) (uint64, error) {
	b.lock.Lock()
	defer b.lock.Unlock()

	return b.nonces[account], nil
}

func (b *fakeBackend) SuggestGasPrice(ctx context.Context) (*big.Int, error) {
	return new(big.Int).Set(b.gasPrice), nil
}

func (b *fakeBackend) EstimateGas(ctx context.Context, call ethereum.CallMsg) (uint64, error) {
	b.lock.Lock()
	defer b.lock.Unlock()

	b.estimateCalls++

	return b.estimate, nil
}

func (b *fakeBackend) SendTransaction(ctx context.Context, tx *types.Transaction) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	b.lock.Lock()
	defer b.lock.Unlock()

	index := len(b.sent)
	if index == b.rejectAt {
		return fmt.Errorf("insufficient funds for gas * price + value: %w", errNode)
	}

	from, err := types.Sender(types.LatestSignerForChainID(b.chainID), tx)
	if err != nil {
		return err
	}

	if tx.Nonce() != b.nonces[from] {
		return fmt.Errorf("nonce mismatch: have %d want %d", tx.Nonce(), b.nonces[from])
	}

	b.nonces[from]++
	b.sent = append(b.sent, tx)

	addr := crypto.CreateAddress(from, tx.Nonce())
	status := types.ReceiptStatusSuccessful

	if index == b.revertAt {
		status = types.ReceiptStatusFailed
	} else if !b.noCode {
		b.code[addr] = []byte{0x60, 0x80, 0x60, 0x40}
	}

	b.receipts[tx.Hash()] = &types.Receipt{
		Status:          status,
		TxHash:          tx.Hash(),
		ContractAddress: addr,
		GasUsed:         500_000 + uint64(index),
		BlockNumber:     big.NewInt(int64(index + 1)),
	}

	return nil
}

func (b *fakeBackend) TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	b.lock.Lock()
	defer b.lock.Unlock()

	receipt, ok := b.receipts[txHash]
	if !ok {
		return nil, ethereum.NotFound
	}

	return receipt, nil
}

func (b *fakeBackend) CodeAt(ctx context.Context, account common.Address, blockNumber *big.Int) ([]byte, error) {
	b.lock.Lock()
	defer b.lock.Unlock()

	return b.code[account], nil
}

func (b *fakeBackend) sentTxs() []*types.Transaction {
	b.lock.Lock()
	defer b.lock.Unlock()

	return append([]*types.Transaction(nil), b.sent...)
}

const testBytecode = "0x6080604052348015600f57600080fd5b50"

var testABIs = map[string]string{
	WhitelistContract: `[{"inputs":[{"internalType":"uint8","name":"_maxWhitelistedAddresses","type":"uint8"}],` +
		`"stateMutability":"nonpayable","type":"constructor"}]`,
	ERC721Contract: `[{"inputs":[{"internalType":"address","name":"whitelistContract","type":"address"},` +
		`{"internalType":"string","name":"baseURI","type":"string"}],"stateMutability":"nonpayable","type":"constructor"}]`,
	ERC20Contract: `[{"inputs":[],"name":"totalSupply","outputs":[{"internalType":"uint256","name":"","type":"uint256"}],` +
		`"stateMutability":"view","type":"function"}]`,
	StakingContract: `[{"inputs":[{"internalType":"address","name":"nft","type":"address"},` +
		`{"internalType":"address","name":"token","type":"address"}],"stateMutability":"nonpayable","type":"constructor"}]`,
}

func testArtifact(t *testing.T, name string) *artifact.Artifact {
	t.Helper()

	raw := fmt.Sprintf(`{"_format":"hh-sol-artifact-1","contractName":%q,"sourceName":"contracts/%s.sol",`+
		`"abi":%s,"bytecode":%q,"deployedBytecode":"0x6080","linkReferences":{}}`,
		name, name, testABIs[name], testBytecode)

	a, err := artifact.Parse(name+".json", []byte(raw))
	require.NoError(t, err)

	return a
}

// fakeArtifacts serves the artifacts of the default plan
type fakeArtifacts struct {
	byName map[string]*artifact.Artifact
}

func newFakeArtifacts(t *testing.T) *fakeArtifacts {
	t.Helper()

	f := &fakeArtifacts{byName: make(map[string]*artifact.Artifact)}
	for name := range testABIs {
		f.byName[name] = testArtifact(t, name)
	}

	return f
}

func (f *fakeArtifacts) Preload(ctx context.Context, names ...string) ([]*artifact.Artifact, error) {
	result := make([]*artifact.Artifact, len(names))

	for i, name := range names {
		a, ok := f.byName[name]
		if !ok {
			return nil, fmt.Errorf("%w: %s", artifact.ErrArtifactNotFound, name)
		}

		result[i] = a
	}

	return result, nil
}

type memRecorder struct {
	indexes []int
	labels  []string
	err     error
}

func (r *memRecorder) Record(index int, d *Deployment) error {
	r.indexes = append(r.indexes, index)
	r.labels = append(r.labels, d.Label)

	return r.err
}

func newTestKey(t *testing.T) *ecdsa.PrivateKey {
	t.Helper()

	key, err := crypto.GenerateKey()
	require.NoError(t, err)

	return key
}

// paddedAddress returns the abi word of an address, hex without prefix
func paddedAddress(addr common.Address) string {
	return strings.Repeat("0", 24) + strings.ToLower(strings.TrimPrefix(addr.Hex(), "0x"))
}
