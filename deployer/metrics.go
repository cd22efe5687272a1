package deployer

import (
	"github.com/go-kit/kit/metrics"
	"github.com/go-kit/kit/metrics/discard"
	prometheus "github.com/go-kit/kit/metrics/prometheus"
	stdprometheus "github.com/prometheus/client_golang/prometheus"
)

// Metrics represents the deployment metrics
type Metrics struct {
	// Successful deployments
	Deployments metrics.Counter

	// Failed steps
	Failures metrics.Counter

	// Gas used per deployment
	GasUsed metrics.Histogram

	// Deployment duration (seconds), from encoding to code check
	DeployDuration metrics.Histogram
}

// GetPrometheusMetrics return the deployment metrics instance,
// registered on the given registerer only
func GetPrometheusMetrics(
	registerer stdprometheus.Registerer,
	namespace string,
	labelsWithValues ...string,
) *Metrics {
	labels := []string{}

	for i := 0; i < len(labelsWithValues); i += 2 {
		labels = append(labels, labelsWithValues[i])
	}

	labels = append(labels, "contract")

	deployments := stdprometheus.NewCounterVec(stdprometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "deployer",
		Name:      "deployments",
		Help:      "Successful contract deployments",
	}, labels)
	failures := stdprometheus.NewCounterVec(stdprometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "deployer",
		Name:      "failures",
		Help:      "Failed deployment steps",
	}, labels)
	gasUsed := stdprometheus.NewHistogramVec(stdprometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "deployer",
		Name:      "gas_used",
		Help:      "Gas used by contract creations",
		Buckets:   stdprometheus.ExponentialBuckets(100000, 2, 8),
	}, labels)
	deployDuration := stdprometheus.NewHistogramVec(stdprometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "deployer",
		Name:      "deploy_duration_seconds",
		Help:      "Contract deployment duration (seconds)",
		Buckets:   []float64{1, 3, 6, 15, 30, 60, 120},
	}, labels)

	registerer.MustRegister(deployments, failures, gasUsed, deployDuration)

	return &Metrics{
		Deployments:    prometheus.NewCounter(deployments).With(labelsWithValues...),
		Failures:       prometheus.NewCounter(failures).With(labelsWithValues...),
		GasUsed:        prometheus.NewHistogram(gasUsed).With(labelsWithValues...),
		DeployDuration: prometheus.NewHistogram(deployDuration).With(labelsWithValues...),
	}
}

// NilMetrics will return the non operational deployment metrics
func NilMetrics() *Metrics {
	return &Metrics{
		Deployments:    discard.NewCounter(),
		Failures:       discard.NewCounter(),
		GasUsed:        discard.NewHistogram(),
		DeployDuration: discard.NewHistogram(),
	}
}
