package main

import "sync"

type TelemetryItem struct {
	Time    string `json:"time"`
	Action  string `json:"action"`
	Row     int    `json:"row,omitempty"`
	Batch   int    `json:"batch,omitempty"`
	Address string `json:"address,omitempty"`
	OK      bool   `json:"ok,omitempty"`
	Digest  string `json:"digest,omitempty"`
	Error   string `json:"error,omitempty"`
}

var (
	telemetry []TelemetryItem
	telMu     sync.Mutex
)

func telAdd(it TelemetryItem) {
	telMu.Lock()
	telemetry = append(telemetry, it)
	telMu.Unlock()
}

func telSnapshot() []TelemetryItem {
	telMu.Lock()
	defer telMu.Unlock()
	return append([]TelemetryItem(nil), telemetry...)
}
