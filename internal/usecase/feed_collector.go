package usecase

import (
	"context"

	"AgriPulse/internal/domain/models"
	domrepo "AgriPulse/internal/domain/repository"
	mid "AgriPulse/internal/middleware"
)

// FeedCollector consumes the live mandi price feed and pushes observations
// through the ingest pipeline.
type FeedCollector struct {
	feed    domrepo.PriceFeed
	proc    *PriceProcessor
	metrics domrepo.Metrics
	pipe    *mid.IngestPipeline
}

// NewFeedCollector creates a new FeedCollector instance.
func NewFeedCollector(feed domrepo.PriceFeed, proc *PriceProcessor, metrics domrepo.Metrics, pipe *mid.IngestPipeline) *FeedCollector {
	return &FeedCollector{feed: feed, proc: proc, metrics: metrics, pipe: pipe}
}

// IsConnected returns true if the feed is connected.
func (c *FeedCollector) IsConnected() bool {
	return c.feed.IsConnected()
}

func (c *FeedCollector) Start(ctx context.Context) error {
	if err := c.feed.Connect(ctx); err != nil {
		return err
	}
	if err := c.feed.Subscribe(ctx); err != nil {
		return err
	}
	if c.pipe != nil {
		c.pipe.Start(ctx)
	}
	ptCh, errCh := c.feed.Read(ctx)
	go c.consume(ctx, ptCh, errCh)
	return nil
}

func (c *FeedCollector) consume(ctx context.Context, ptCh <-chan *models.PricePoint, errCh <-chan error) {
	for {
		select {
		case <-ctx.Done():
			return
		case err, ok := <-errCh:
			if !ok || err != nil {
				c.metrics.RecordError("feed")
				if rerr := c.feed.Reconnect(ctx); rerr != nil {
					return
				}
				// fresh channels after reconnect
				ptCh, errCh = c.feed.Read(ctx)
			}
		case pt := <-ptCh:
			if pt == nil {
				continue
			}
			if c.pipe != nil {
				_ = c.pipe.Process(ctx, pt)
			} else {
				_ = c.proc.Process(ctx, pt)
			}
			c.metrics.RecordLastPrice(pt.Commodity, pt.Region, pt.ModalPrice)
		}
	}
}

// Processor returns the underlying PriceProcessor for lifecycle management.
func (c *FeedCollector) Processor() *PriceProcessor { return c.proc }

// Shutdown stops the pipeline and closes the feed.
func (c *FeedCollector) Shutdown(ctx context.Context) error {
	if c.pipe != nil {
		c.pipe.Stop()
	}
	return c.feed.Close()
}
