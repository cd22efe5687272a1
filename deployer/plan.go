package deployer

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/hashicorp/go-multierror"
	"github.com/umbracle/go-web3"
)

// Step labels, also used as the report keys
const (
	WhitelistLabel = "Whitelist"
	ERC721Label    = "PunchingERC721"
	ERC20Label     = "PunchingERC20"
	StakingLabel   = "PunchingStaking"
)

// Contract names as compiled
const (
	WhitelistContract = "Whitelist"
	ERC721Contract    = "PunchingPacoERC721Redux"
	ERC20Contract     = "PunchingPacoTokenERC20"
	StakingContract   = "PunchingPacoStaking"
)

const (
	DefaultMaxWhitelistedAddresses = 200
	DefaultBaseURI                 = "ipfs://punchingPacoIPFS/"
)

// ArgsFunc resolves the constructor arguments of a step from the
// deployments of the steps before it
type ArgsFunc func(deployed *Deployed) ([]interface{}, error)

// Step is a single contract creation
type Step struct {
	Label    string
	Contract string
	Args     ArgsFunc
}

// Plan is an ordered list of steps, executed one after the other
type Plan []Step

// Contracts returns the contract names of the plan, in order
func (p Plan) Contracts() []string {
	names := make([]string, len(p))
	for i, step := range p {
		names[i] = step.Contract
	}

	return names
}

// Labels returns the step labels, in order
func (p Plan) Labels() []string {
	labels := make([]string, len(p))
	for i, step := range p {
		labels[i] = step.Label
	}

	return labels
}

func (p Plan) Validate() error {
	if len(p) == 0 {
		return ErrEmptyPlan
	}

	var result *multierror.Error

	seen := make(map[string]struct{}, len(p))

	for i, step := range p {
		if step.Label == "" {
			result = multierror.Append(result, fmt.Errorf("step %d: empty label", i+1))
		}

		if step.Contract == "" {
			result = multierror.Append(result, fmt.Errorf("step %d: empty contract name", i+1))
		}

		if _, ok := seen[step.Label]; ok {
			result = multierror.Append(result, fmt.Errorf("step %d: duplicate label %q", i+1, step.Label))
		}

		seen[step.Label] = struct{}{}
	}

	return result.ErrorOrNil()
}

// PlanParams are the constructor inputs that are not contract addresses
type PlanParams struct {
	MaxWhitelistedAddresses uint64
	BaseURI                 string
}

func DefaultPlanParams() PlanParams {
	return PlanParams{
		MaxWhitelistedAddresses: DefaultMaxWhitelistedAddresses,
		BaseURI:                 DefaultBaseURI,
	}
}

func (p PlanParams) Validate() error {
	var result *multierror.Error

	// Whitelist takes an uint8
	if p.MaxWhitelistedAddresses == 0 || p.MaxWhitelistedAddresses > 255 {
		result = multierror.Append(result,
			fmt.Errorf("max whitelisted addresses must be in [1, 255], got %d", p.MaxWhitelistedAddresses))
	}

	if p.BaseURI == "" {
		result = multierror.Append(result, errors.New("base uri is empty"))
	}

	return result.ErrorOrNil()
}

func addressArg(deployed *Deployed, label string) (web3.Address, error) {
	addr, err := deployed.Address(label)
	if err != nil {
		return web3.Address{}, err
	}

	return web3.Address(addr), nil
}

// DefaultPlan is whitelist -> ERC-721 -> ERC-20 -> staking
func DefaultPlan(params PlanParams) Plan {
	return Plan{
		{
			Label:    WhitelistLabel,
			Contract: WhitelistContract,
			Args: func(_ *Deployed) ([]interface{}, error) {
				return []interface{}{new(big.Int).SetUint64(params.MaxWhitelistedAddresses)}, nil
			},
		},
		{
			Label:    ERC721Label,
			Contract: ERC721Contract,
			Args: func(deployed *Deployed) ([]interface{}, error) {
				whitelist, err := addressArg(deployed, WhitelistLabel)
				if err != nil {
					return nil, err
				}

				return []interface{}{whitelist, params.BaseURI}, nil
			},
		},
		{
			Label:    ERC20Label,
			Contract: ERC20Contract,
		},
		{
			Label:    StakingLabel,
			Contract: StakingContract,
			Args: func(deployed *Deployed) ([]interface{}, error) {
				nft, err := addressArg(deployed, ERC721Label)
				if err != nil {
					return nil, err
				}

				token, err := addressArg(deployed, ERC20Label)
				if err != nil {
					return nil, err
				}

				return []interface{}{nft, token}, nil
			},
		},
	}
}
