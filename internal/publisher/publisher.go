package publisher

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/jlucaswrk/coldservice-recife/internal/locate"
	"github.com/jlucaswrk/coldservice-recife/internal/technician"
)

// Sampler yields one fresh position fix per call.
type Sampler interface {
	Sample(ctx context.Context) (locate.Reading, error)
}

type SamplerFunc func(ctx context.Context) (locate.Reading, error)

func (f SamplerFunc) Sample(ctx context.Context) (locate.Reading, error) {
	return f(ctx)
}

// SourceSampler adapts a watch-style source: each call opens a fresh watch
// and takes its first reading.
func SourceSampler(src locate.Source) Sampler {
	return SamplerFunc(func(ctx context.Context) (locate.Reading, error) {
		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		readings, err := src.Watch(ctx)
		if err != nil {
			return locate.Reading{}, err
		}
		select {
		case r, ok := <-readings:
			if !ok {
				return locate.Reading{}, locate.ErrNoFix
			}
			return r, nil
		case <-ctx.Done():
			return locate.Reading{}, ctx.Err()
		}
	})
}

// Poster is the registry client surface the publisher needs.
type Poster interface {
	PublishPosition(ctx context.Context, req technician.PublishRequest) (technician.Record, error)
}

// Publisher pushes the technician's position at a fixed cadence until its
// context is cancelled. Unlike the customer's convergence loop it never
// stops on accuracy.
type Publisher struct {
	sampler      Sampler
	poster       Poster
	technicianID string
	sessionID    string
	interval     time.Duration

	last *locate.Reading
}

func New(sampler Sampler, poster Poster, technicianID, sessionID string, interval time.Duration) *Publisher {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &Publisher{
		sampler:      sampler,
		poster:       poster,
		technicianID: technicianID,
		sessionID:    sessionID,
		interval:     interval,
	}
}

// Run samples and publishes until ctx is cancelled, then sends one final
// offline publish so consumers learn promptly instead of waiting out the
// staleness window. A transient publish failure is logged and skipped;
// permission loss ends the loop with an error.
func (p *Publisher) Run(ctx context.Context) error {
	defer p.publishOffline()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		if err := p.publishOnce(ctx); err != nil {
			if errors.Is(err, locate.ErrPermissionDenied) {
				return err
			}
			if ctx.Err() == nil {
				log.Printf("publish skipped: %v", err)
			}
		}

		select {
		case <-ticker.C:
		case <-ctx.Done():
			return nil
		}
	}
}

func (p *Publisher) publishOnce(ctx context.Context) error {
	r, err := p.sampler.Sample(ctx)
	if err != nil {
		return err
	}

	p.last = &r

	_, err = p.poster.PublishPosition(ctx, technician.PublishRequest{
		TechnicianID: p.technicianID,
		SessionID:    p.sessionID,
		Latitude:     r.Latitude,
		Longitude:    r.Longitude,
		Timestamp:    r.Timestamp.UnixMilli(),
	})
	return err
}

// publishOffline is best effort: the registry's staleness filter is the
// backstop when this delivery is lost.
func (p *Publisher) publishOffline() {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	offline := false
	req := technician.PublishRequest{
		TechnicianID: p.technicianID,
		SessionID:    p.sessionID,
		Online:       &offline,
	}
	if p.last != nil {
		req.Latitude = p.last.Latitude
		req.Longitude = p.last.Longitude
		req.Timestamp = p.last.Timestamp.UnixMilli()
	}
	_, err := p.poster.PublishPosition(ctx, req)
	if err != nil {
		log.Printf("offline publish failed: %v", err)
	}
}
