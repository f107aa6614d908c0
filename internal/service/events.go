package service

import (
	"encoding/json"
	"io"
	"os"
	"sync"
	"time"
)

// eventOut is swappable for tests, same pattern as database.sqlOpen.
var (
	eventOut io.Writer = os.Stdout
	eventMu  sync.Mutex
)

// logEvent emits one structured JSON event per pipeline stage
// (upload_buffered, upload_stored, upload_persisted, upload_failed).
func logEvent(event, level string, fields map[string]any) {
	entry := map[string]any{
		"ts":        time.Now().UTC().Format(time.RFC3339Nano),
		"level":     level,
		"component": "post_service",
		"event":     event,
	}
	for k, v := range fields {
		entry[k] = v
	}

	eventMu.Lock()
	defer eventMu.Unlock()
	_ = json.NewEncoder(eventOut).Encode(entry)
}
