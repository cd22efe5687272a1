package deployer

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-hclog"

	"github.com/punchingpaco/pacodeploy/contracts/artifact"
)

// ContractDeployer creates a single contract
type ContractDeployer interface {
	Deploy(ctx context.Context, a *artifact.Artifact, args []interface{}) (*Deployment, error)
}

// ArtifactSource resolves the artifacts of a plan before anything is sent
type ArtifactSource interface {
	Preload(ctx context.Context, names ...string) ([]*artifact.Artifact, error)
}

// Recorder persists completed deployments
type Recorder interface {
	Record(index int, d *Deployment) error
}

type Option func(p *Pipeline)

func WithRecorder(r Recorder) Option {
	return func(p *Pipeline) {
		p.recorder = r
	}
}

func WithMetrics(m *Metrics) Option {
	return func(p *Pipeline) {
		p.metrics = m
	}
}

// Pipeline runs a plan strictly in order. A step starts only after the
// previous deployment has a receipt, and the first failure stops the run.
type Pipeline struct {
	logger    hclog.Logger
	deployer  ContractDeployer
	artifacts ArtifactSource
	recorder  Recorder
	metrics   *Metrics
}

func NewPipeline(logger hclog.Logger, deployer ContractDeployer, artifacts ArtifactSource, opts ...Option) *Pipeline {
	p := &Pipeline{
		logger:    logger.Named("pipeline"),
		deployer:  deployer,
		artifacts: artifacts,
		metrics:   NilMetrics(),
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Run executes the plan. The deployments completed before a failure are
// returned along with the error; nothing is retried or rolled back.
func (p *Pipeline) Run(ctx context.Context, plan Plan) ([]*Deployment, error) {
	if err := plan.Validate(); err != nil {
		return nil, err
	}

	artifacts, err := p.artifacts.Preload(ctx, plan.Contracts()...)
	if err != nil {
		return nil, fmt.Errorf("failed to load artifacts: %w", err)
	}

	deployed := NewDeployed()

	for i, step := range plan {
		dep, err := p.runStep(ctx, step, artifacts[i], deployed)
		if err != nil {
			p.metrics.Failures.With("contract", step.Contract).Add(1)

			return deployed.List(), &StepError{
				Index:    i,
				Label:    step.Label,
				Contract: step.Contract,
				Err:      err,
			}
		}

		deployed.add(dep)

		p.metrics.Deployments.With("contract", step.Contract).Add(1)
		p.metrics.GasUsed.With("contract", step.Contract).Observe(float64(dep.GasUsed))
		p.metrics.DeployDuration.With("contract", step.Contract).Observe(dep.Duration.Seconds())

		p.logger.Info("contract deployed",
			"step", i+1,
			"label", step.Label,
			"contract", step.Contract,
			"address", dep.Address,
			"tx", dep.TxHash,
			"gasUsed", dep.GasUsed,
			"block", dep.BlockNumber,
		)

		if p.recorder != nil {
			if err := p.recorder.Record(i, dep); err != nil {
				p.logger.Warn("failed to record deployment", "label", step.Label, "err", err)
			}
		}
	}

	return deployed.List(), nil
}

func (p *Pipeline) runStep(
	ctx context.Context,
	step Step,
	a *artifact.Artifact,
	deployed *Deployed,
) (*Deployment, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	var args []interface{}

	if step.Args != nil {
		var err error

		if args, err = step.Args(deployed); err != nil {
			return nil, err
		}
	}

	dep, err := p.deployer.Deploy(ctx, a, args)
	if err != nil {
		return nil, err
	}

	dep.Label = step.Label
	dep.Contract = step.Contract

	return dep, nil
}
