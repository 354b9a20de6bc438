package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/jlucaswrk/coldservice-recife/internal/geo"
	"github.com/jlucaswrk/coldservice-recife/internal/locate"
	"github.com/jlucaswrk/coldservice-recife/internal/registry"
	"github.com/jlucaswrk/coldservice-recife/internal/session"
	"github.com/jlucaswrk/coldservice-recife/internal/tracker"
)

// tracker runs on the customer device: it acquires the customer position,
// opens (or resumes) a tracking session and renders the technician's approach
// until interrupted.
func main() {
	var (
		serverURL    = flag.String("server", "http://localhost:8080", "tracking API base URL")
		customerName = flag.String("name", "", "customer name for a new session")
		technicianID = flag.String("technician", session.DefaultTechnicianID, "technician to track")
		interval     = flag.Duration("interval", 5*time.Second, "poll cadence")
		statePath    = flag.String("state", defaultStatePath(), "persisted session state file")
	)
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client := registry.NewClient(*serverURL)
	tr := tracker.New(client, *interval)

	pos := acquirePosition(ctx)
	tr.SetCustomerPosition(pos)
	neighborhood := geo.NearestLandmark(pos.Latitude, pos.Longitude, geo.Landmarks()).Name

	sess, resumed := resumeSession(ctx, client, *statePath)
	if resumed {
		tr.Resume(sess)
		fmt.Printf("resuming session %s\n", sess.SessionID)
	} else {
		if *customerName == "" {
			log.Printf("-name is required to open a new session")
			os.Exit(2)
		}
		var err error
		sess, err = tr.Start(ctx, *customerName, *technicianID)
		if err != nil {
			log.Printf("create session: %v", err)
			os.Exit(1)
		}
		fmt.Printf("session %s opened, share %s\n", sess.SessionID, session.TrackingURL(sess.SessionID))
	}

	state := tracker.ClientState{
		Name:             sess.CustomerName,
		SessionID:        sess.SessionID,
		CustomerLocation: &session.Location{Latitude: pos.Latitude, Longitude: pos.Longitude},
		NeighborhoodName: neighborhood,
	}
	if err := tracker.SaveClientState(*statePath, state); err != nil {
		log.Printf("persist state: %v", err)
	}

	go tr.Run(ctx)

	ticker := time.NewTicker(*interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			render(tr.Snapshot())
		case <-ctx.Done():
			fmt.Println("tracking stopped")
			return
		}
	}
}

// acquirePosition runs the convergence engine over the available sources.
// There is no GPS on this device class, so the IP lookup is the primary and
// the city-center default the terminal fallback; the result is approximate
// but always usable.
func acquirePosition(ctx context.Context) locate.Reading {
	engine := locate.NewEngine(locate.DefaultOptions())
	res, err := engine.AcquireWithFallback(ctx, locate.NewIPSource(), locate.NewFixedSource(locate.DefaultLocation))
	if err != nil {
		log.Printf("location acquisition failed, using city default: %v", err)
		return locate.DefaultLocation
	}
	if res.Reading.Approximate {
		log.Printf("using approximate position (±%.0fm)", res.Reading.Accuracy)
	}
	return res.Reading
}

func resumeSession(ctx context.Context, client *registry.Client, statePath string) (session.Session, bool) {
	state, err := tracker.LoadClientState(statePath)
	if err != nil {
		if !os.IsNotExist(err) && !errors.Is(err, tracker.ErrStateExpired) {
			log.Printf("stored state unreadable, starting fresh: %v", err)
		}
		return session.Session{}, false
	}

	sess, err := client.GetSession(ctx, state.SessionID)
	if err != nil || sess.Status != session.StatusActive {
		return session.Session{}, false
	}
	return sess, true
}

func render(snap tracker.Snapshot) {
	switch snap.State {
	case tracker.StateTrackingActive:
		fmt.Printf("[%s] technician at %.5f,%.5f  %s away  %s\n",
			snap.State, snap.Technician.Latitude, snap.Technician.Longitude,
			snap.DistanceLabel, snap.ETALabel)
	case tracker.StateTrackingStale:
		fmt.Printf("[%s] signal lost, last seen at %.5f,%.5f\n",
			snap.State, snap.LastKnown.Latitude, snap.LastKnown.Longitude)
	default:
		fmt.Printf("[%s] waiting for technician...\n", snap.State)
	}
}

func defaultStatePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "coldservice-tracking.json"
	}
	return filepath.Join(home, ".coldservice-tracking.json")
}
