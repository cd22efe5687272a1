package deployer

import (
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// Deployment is a contract creation confirmed on chain
type Deployment struct {
	Label       string
	Contract    string
	Address     common.Address
	TxHash      common.Hash
	Nonce       uint64
	GasPrice    *big.Int
	GasUsed     uint64
	BlockNumber uint64
	Duration    time.Duration
}

// Deployed holds the deployments of the steps executed so far, by label
type Deployed struct {
	order   []string
	byLabel map[string]*Deployment
}

func NewDeployed() *Deployed {
	return &Deployed{
		byLabel: make(map[string]*Deployment),
	}
}

func (d *Deployed) add(dep *Deployment) {
	d.order = append(d.order, dep.Label)
	d.byLabel[dep.Label] = dep
}

// Get returns the deployment of a previous step
func (d *Deployed) Get(label string) (*Deployment, bool) {
	dep, ok := d.byLabel[label]

	return dep, ok
}

// Address returns the address of a previous step, or ErrUnresolvedDependency
func (d *Deployed) Address(label string) (common.Address, error) {
	dep, ok := d.byLabel[label]
	if !ok {
		return common.Address{}, &DependencyError{Label: label}
	}

	return dep.Address, nil
}

// List returns the deployments in execution order
func (d *Deployed) List() []*Deployment {
	list := make([]*Deployment, 0, len(d.order))
	for _, label := range d.order {
		list = append(list, d.byLabel[label])
	}

	return list
}

func (d *Deployed) Len() int {
	return len(d.order)
}
