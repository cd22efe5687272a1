package deployer

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/hashicorp/go-hclog"

	"github.com/punchingpaco/pacodeploy/contracts/abis"
	"github.com/punchingpaco/pacodeploy/contracts/artifact"
)

const (
	// DefaultGasLimitMargin is the headroom, in percent, added to gas estimates
	DefaultGasLimitMargin = 20
)

// Config holds the transaction parameters of deployments
type Config struct {
	// GasPrice is used as is when set, otherwise the node suggestion is taken
	GasPrice *big.Int
	// GasLimit is used as is when non zero, otherwise the creation is estimated
	GasLimit uint64
	// GasLimitMargin is added (in percent) to estimated gas limits
	GasLimitMargin uint64
	// MaxGasPrice caps the node suggestion, nil for no cap
	MaxGasPrice *big.Int
}

// Deployer signs and sends contract creations from a single account
type Deployer struct {
	logger  hclog.Logger
	backend Backend
	key     *ecdsa.PrivateKey
	from    common.Address
	config  Config

	chainLock sync.Mutex
	chainID   *big.Int
	signer    types.Signer
}

func NewDeployer(logger hclog.Logger, backend Backend, key *ecdsa.PrivateKey, config Config) (*Deployer, error) {
	if key == nil {
		return nil, ErrNoDeployerKey
	}

	return &Deployer{
		logger:  logger.Named("deployer"),
		backend: backend,
		key:     key,
		from:    crypto.PubkeyToAddress(key.PublicKey),
		config:  config,
	}, nil
}

// From returns the deployer account
func (d *Deployer) From() common.Address {
	return d.from
}

// ChainID returns the chain id of the backend, queried once
func (d *Deployer) ChainID(ctx context.Context) (*big.Int, error) {
	d.chainLock.Lock()
	defer d.chainLock.Unlock()

	if d.chainID != nil {
		return d.chainID, nil
	}

	chainID, err := d.backend.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to query chain id: %w", err)
	}

	d.chainID = chainID
	d.signer = types.LatestSignerForChainID(chainID)

	return chainID, nil
}

func (d *Deployer) gasPrice(ctx context.Context) (*big.Int, error) {
	if d.config.GasPrice != nil && d.config.GasPrice.Sign() > 0 {
		return new(big.Int).Set(d.config.GasPrice), nil
	}

	price, err := d.backend.SuggestGasPrice(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to suggest gas price: %w", err)
	}

	if ceiling := d.config.MaxGasPrice; ceiling != nil && ceiling.Sign() > 0 && price.Cmp(ceiling) > 0 {
		d.logger.Warn("suggested gas price above the cap", "suggested", price, "cap", ceiling)

		price = new(big.Int).Set(ceiling)
	}

	return price, nil
}

func (d *Deployer) gasLimit(ctx context.Context, input []byte, gasPrice *big.Int) (uint64, error) {
	if d.config.GasLimit > 0 {
		return d.config.GasLimit, nil
	}

	estimate, err := d.backend.EstimateGas(ctx, ethereum.CallMsg{
		From:     d.from,
		GasPrice: gasPrice,
		Value:    new(big.Int),
		Data:     input,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to estimate gas: %w", err)
	}

	return estimate + estimate*d.config.GasLimitMargin/100, nil
}

// Deploy creates the contract and waits for its receipt
func (d *Deployer) Deploy(ctx context.Context, a *artifact.Artifact, args []interface{}) (*Deployment, error) {
	start := time.Now()

	input, err := abis.DeployInput(a.Bytecode, a.ABI, args)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s constructor: %w", a.ContractName, err)
	}

	if _, err := d.ChainID(ctx); err != nil {
		return nil, err
	}

	nonce, err := d.backend.PendingNonceAt(ctx, d.from)
	if err != nil {
		return nil, fmt.Errorf("failed to query nonce of %s: %w", d.from, err)
	}

	gasPrice, err := d.gasPrice(ctx)
	if err != nil {
		return nil, err
	}

	gasLimit, err := d.gasLimit(ctx, input, gasPrice)
	if err != nil {
		return nil, err
	}

	tx, err := types.SignTx(types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		GasPrice: gasPrice,
		Gas:      gasLimit,
		To:       nil, // contract creation
		Value:    new(big.Int),
		Data:     input,
	}), d.signer, d.key)
	if err != nil {
		return nil, fmt.Errorf("failed to sign deployment: %w", err)
	}

	if err := d.backend.SendTransaction(ctx, tx); err != nil {
		return nil, fmt.Errorf("failed to send deployment: %w", err)
	}

	d.logger.Info("deployment sent",
		"contract", a.ContractName,
		"tx", tx.Hash(),
		"nonce", nonce,
		"gas", gasLimit,
		"gasPrice", gasPrice,
		"expectedAddress", crypto.CreateAddress(d.from, nonce),
	)

	receipt, err := bind.WaitMined(ctx, d.backend, tx)
	if err != nil {
		return nil, fmt.Errorf("failed to wait for deployment %s: %w", tx.Hash(), err)
	}

	if receipt.Status != types.ReceiptStatusSuccessful {
		return nil, fmt.Errorf("%w: tx %s", ErrDeploymentReverted, tx.Hash())
	}

	code, err := d.backend.CodeAt(ctx, receipt.ContractAddress, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to query code at %s: %w", receipt.ContractAddress, err)
	}

	if len(code) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoCode, receipt.ContractAddress)
	}

	var blockNumber uint64
	if receipt.BlockNumber != nil {
		blockNumber = receipt.BlockNumber.Uint64()
	}

	return &Deployment{
		Contract:    a.ContractName,
		Address:     receipt.ContractAddress,
		TxHash:      tx.Hash(),
		Nonce:       nonce,
		GasPrice:    gasPrice,
		GasUsed:     receipt.GasUsed,
		BlockNumber: blockNumber,
		Duration:    time.Since(start),
	}, nil
}
