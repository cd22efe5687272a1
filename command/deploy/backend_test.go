package deploy

import (
	"context"
	"errors"
	"math/big"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
)

var errDial = errors.New("connection refused")

// fakeNode is a hardhat-like node that mines every transaction as soon as it is sent
type fakeNode struct {
	lock sync.Mutex

	nonces   map[common.Address]uint64
	sent     []*types.Transaction
	receipts map[common.Hash]*types.Receipt
	code     map[common.Address][]byte

	// index of the sent transaction that reverts, -1 for none
	revertAt int

	dialedURL string
	closed    bool
}

func newFakeNode() *fakeNode {
	return &fakeNode{
		nonces:   make(map[common.Address]uint64),
		receipts: make(map[common.Hash]*types.Receipt),
		code:     make(map[common.Address][]byte),
		revertAt: -1,
	}
}

// useFakeNode makes runDeploy dial the given node for the rest of the test
func useFakeNode(t *testing.T, node *fakeNode) {
	t.Helper()

	dial := dialBackend
	dialBackend = func(_ context.Context, url string) (nodeBackend, error) {
		node.lock.Lock()
		defer node.lock.Unlock()

		node.dialedURL = url

		return node, nil
	}

	t.Cleanup(func() {
		dialBackend = dial
	})
}

func (n *fakeNode) ChainID(context.Context) (*big.Int, error) {
	return big.NewInt(31337), nil
}

func (n *fakeNode) PendingNonceAt(_ context.Context, account common.Address) (uint64, error) {
	n.lock.Lock()
	defer n.lock.Unlock()

	return n.nonces[account], nil
}

func (n *fakeNode) SuggestGasPrice(context.Context) (*big.Int, error) {
	return big.NewInt(1_000_000_000), nil
}

func (n *fakeNode) EstimateGas(context.Context, ethereum.CallMsg) (uint64, error) {
	return 1_000_000, nil
}

func (n *fakeNode) SendTransaction(ctx context.Context, tx *types.Transaction) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	n.lock.Lock()
	defer n.lock.Unlock()

	from, err := types.Sender(types.LatestSignerForChainID(big.NewInt(31337)), tx)
	if err != nil {
		return err
	}

	index := len(n.sent)
	addr := crypto.CreateAddress(from, tx.Nonce())
	status := types.ReceiptStatusSuccessful

	if index == n.revertAt {
		status = types.ReceiptStatusFailed
	} else {
		n.code[addr] = []byte{0x60, 0x80, 0x60, 0x40}
	}

	n.nonces[from]++
	n.sent = append(n.sent, tx)
	n.receipts[tx.Hash()] = &types.Receipt{
		Status:          status,
		TxHash:          tx.Hash(),
		ContractAddress: addr,
		GasUsed:         600_000,
		BlockNumber:     big.NewInt(int64(index + 1)),
	}

	return nil
}

func (n *fakeNode) TransactionReceipt(_ context.Context, txHash common.Hash) (*types.Receipt, error) {
	n.lock.Lock()
	defer n.lock.Unlock()

	receipt, ok := n.receipts[txHash]
	if !ok {
		return nil, ethereum.NotFound
	}

	return receipt, nil
}

func (n *fakeNode) CodeAt(_ context.Context, account common.Address, _ *big.Int) ([]byte, error) {
	n.lock.Lock()
	defer n.lock.Unlock()

	return n.code[account], nil
}

func (n *fakeNode) Close() {
	n.lock.Lock()
	defer n.lock.Unlock()

	n.closed = true
}

func (n *fakeNode) sentTxs() []*types.Transaction {
	n.lock.Lock()
	defer n.lock.Unlock()

	return append([]*types.Transaction(nil), n.sent...)
}
