package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jlucaswrk/coldservice-recife/internal/locate"
	"github.com/jlucaswrk/coldservice-recife/internal/publisher"
	"github.com/jlucaswrk/coldservice-recife/internal/registry"
	"github.com/jlucaswrk/coldservice-recife/internal/session"
)

// technician-agent runs on the field device: it samples the technician's
// position and publishes it to the registry until interrupted. On shutdown it
// posts a final offline update so customers stop seeing a live marker.
func main() {
	var (
		serverURL    = flag.String("server", "http://localhost:8080", "tracking API base URL")
		technicianID = flag.String("technician", session.DefaultTechnicianID, "technician id to publish as")
		sessionID    = flag.String("session", "", "customer session this run serves (optional)")
		interval     = flag.Duration("interval", 5*time.Second, "publish cadence")
		email        = flag.String("email", "", "technician account email")
		password     = flag.String("password", "", "technician account password")
		sourceKind   = flag.String("source", "drift", "position source: drift, fixed or ip")
		lat          = flag.Float64("lat", locate.DefaultLocation.Latitude, "starting latitude for drift/fixed sources")
		lng          = flag.Float64("lng", locate.DefaultLocation.Longitude, "starting longitude for drift/fixed sources")
	)
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client := registry.NewClient(*serverURL)
	if *email != "" {
		token, err := client.Login(ctx, *email, *password)
		if err != nil {
			log.Printf("login failed: %v", err)
			os.Exit(1)
		}
		client = client.WithToken(token)
	}

	sampler, err := buildSampler(*sourceKind, *lat, *lng)
	if err != nil {
		log.Printf("sampler: %v", err)
		os.Exit(1)
	}

	pub := publisher.New(sampler, client, *technicianID, *sessionID, *interval)

	log.Printf("publishing as %s every %s", *technicianID, *interval)
	if err := pub.Run(ctx); err != nil && ctx.Err() == nil {
		log.Printf("publisher stopped: %v", err)
		os.Exit(1)
	}
}

func buildSampler(kind string, lat, lng float64) (publisher.Sampler, error) {
	switch kind {
	case "ip":
		return publisher.SourceSampler(locate.NewIPSource()), nil
	case "fixed":
		return publisher.SourceSampler(locate.NewFixedSource(locate.Reading{
			Latitude:  lat,
			Longitude: lng,
			Accuracy:  8,
		})), nil
	case "drift":
		return newDriftSampler(lat, lng), nil
	default:
		return nil, flag.ErrHelp
	}
}

// driftSampler simulates a vehicle in motion: each sample nudges the position
// slightly north-east so tracking views have something to render in demos.
type driftSampler struct {
	lat, lng float64
}

func newDriftSampler(lat, lng float64) *driftSampler {
	return &driftSampler{lat: lat, lng: lng}
}

func (d *driftSampler) Sample(_ context.Context) (locate.Reading, error) {
	d.lat += 0.0002
	d.lng += 0.0002
	return locate.Reading{
		Latitude:  d.lat,
		Longitude: d.lng,
		Accuracy:  8,
		Timestamp: time.Now(),
	}, nil
}
