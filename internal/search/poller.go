package search

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// DefaultPollInterval is how often trending queries are refreshed.
const DefaultPollInterval = 5 * time.Minute

// TrendingSource returns trending queries. *Client implements it.
type TrendingSource interface {
	Trending(ctx context.Context) ([]string, error)
}

// TrendingUpdate is the result of one fetch.
type TrendingUpdate struct {
	Items   []string // nil when the fetch failed or the field was missing
	Live    bool
	Err     error
	Message string
}

// Poller fetches trending queries immediately and then on every interval.
type Poller struct {
	source   TrendingSource
	interval time.Duration
	logger   *zap.Logger
	updates  chan TrendingUpdate
}

// NewPoller returns a poller. A non-positive interval uses DefaultPollInterval.
func NewPoller(source TrendingSource, interval time.Duration, logger *zap.Logger) *Poller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Poller{
		source:   source,
		interval: interval,
		logger:   logger,
		updates:  make(chan TrendingUpdate, 1),
	}
}

// Updates delivers the latest fetch. Only the newest unread update is kept.
func (p *Poller) Updates() <-chan TrendingUpdate {
	return p.updates
}

// Run polls until ctx is cancelled.
func (p *Poller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.fetch(ctx)
	for {
		select {
		case <-ctx.Done():
			p.logger.Debug("trending poller stopped")
			return
		case <-ticker.C:
			p.fetch(ctx)
		}
	}
}

// fetch runs one request and publishes the result
func (p *Poller) fetch(ctx context.Context) {
	items, err := p.source.Trending(ctx)
	if ctx.Err() != nil {
		return
	}
	var u TrendingUpdate
	if err != nil {
		p.logger.Warn("trending fetch failed", zap.Error(err))
		u = TrendingUpdate{Err: err, Message: UserMessage(err, MsgTrendingFailed)}
	} else {
		p.logger.Debug("trending fetched", zap.Int("items", len(items)))
		u = TrendingUpdate{Items: items, Live: true}
	}
	p.publish(u)
}

// publish replaces any unread update with u
func (p *Poller) publish(u TrendingUpdate) {
	for {
		select {
		case p.updates <- u:
			return
		default:
		}
		select {
		case <-p.updates:
		default:
		}
	}
}
