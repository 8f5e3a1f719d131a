package paystream

import (
	"time"

	"github.com/KSimonJNR/paystream/clients"
	"github.com/KSimonJNR/paystream/logger"
	"github.com/KSimonJNR/paystream/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

type Option func(*Paystream)

func WithLogger(l logger.Logger) Option {
	return func(p *Paystream) {
		p.logger = l
	}
}

func WithMetrics(r metrics.Recorder) Option {
	return func(p *Paystream) {
		p.metrics = r
	}
}

// WithRegisterer sets where the Prometheus recorder registers when metrics
// are enabled in the config.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(p *Paystream) {
		p.registerer = reg
	}
}

func WithTimeout(t time.Duration) Option {
	return func(p *Paystream) {
		p.timeout = t
	}
}

// WithNode uses node instead of dialing Config.NodeURL.
func WithNode(node clients.Node) Option {
	return func(p *Paystream) {
		p.node = node
	}
}

// WithWallet uses wallet instead of dialing Config.WalletURL.
func WithWallet(wallet clients.Wallet) Option {
	return func(p *Paystream) {
		p.wallet = wallet
	}
}
