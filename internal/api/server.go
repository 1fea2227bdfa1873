// Package api exposes a thin companion surface over the engine: health,
// recent events, the current session snapshot, and a live websocket event
// stream. It is read-only; all transitions happen in-process through the
// engine packages.
package api

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/soulbios/chamber-engine/internal/chamber"
	"github.com/soulbios/chamber-engine/internal/events"
	"github.com/soulbios/chamber-engine/internal/version"
)

var (
	stateMu  sync.RWMutex
	snapshot *chamber.Snapshot
)

// PublishSnapshot stores the snapshot served by /state. The session owner
// calls this after every transition; the stored value is never mutated, so
// concurrent readers are safe.
func PublishSnapshot(snap chamber.Snapshot) {
	stateMu.Lock()
	snapshot = &snap
	stateMu.Unlock()
}

// ClearSnapshot removes the published snapshot; /state reports inactive.
func ClearSnapshot() {
	stateMu.Lock()
	snapshot = nil
	stateMu.Unlock()
}

type HealthResponse struct {
	Status    string `json:"status"`
	Service   string `json:"service"`
	Version   string `json:"version"`
	Hostname  string `json:"hostname"`
	Timestamp string `json:"ts"`
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	host, _ := os.Hostname()
	resp := HealthResponse{
		Status:    "ok",
		Service:   "chamber-engine",
		Version:   version.Version,
		Hostname:  host,
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func eventsHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(events.Snapshot())
}

type StateResponse struct {
	Active   bool              `json:"active"`
	Snapshot *chamber.Snapshot `json:"snapshot,omitempty"`
}

func stateHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	stateMu.RLock()
	snap := snapshot
	stateMu.RUnlock()

	if snap == nil {
		_ = json.NewEncoder(w).Encode(StateResponse{Active: false})
		return
	}
	_ = json.NewEncoder(w).Encode(StateResponse{Active: true, Snapshot: snap})
}

// Handler returns the companion API mux.
func Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", healthHandler)
	mux.HandleFunc("/events", eventsHandler)
	mux.HandleFunc("/state", stateHandler)
	mux.HandleFunc("/ws", wsEventsHandler)
	return mux
}

// ListenAndServe starts the companion API on the given port.
// It blocks until the server exits.
func ListenAndServe(port int) error {
	addr := fmt.Sprintf(":%d", port)
	log.Printf("companion API listening on %s\n", addr)
	return http.ListenAndServe(addr, Handler())
}

// Start starts the companion API in a goroutine.
// Errors are logged but do not stop the caller.
func Start(port int) {
	go func() {
		if err := ListenAndServe(port); err != nil {
			log.Printf("api server error: %v", err)
		}
	}()
}
