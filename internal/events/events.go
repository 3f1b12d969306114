package events

import (
	"encoding/json"
	"time"
)

const (
	TypePing            = "ping"
	TypeModeChanged     = "mode_changed"
	TypeQueryRefreshed  = "query_refreshed"
	TypeActionStarted   = "action_started"
	TypeActionCompleted = "action_completed"
	TypeScrapeCompleted = "scrape_completed"
	TypeConfigReloaded  = "config_reloaded"
)

type Event struct {
	Type      string          `json:"type"`
	Version   int             `json:"v"`
	At        time.Time       `json:"at"`
	RequestID string          `json:"request_id,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
}

func MakeEvent(reqID, typ string, v int, data any) string {
	var raw json.RawMessage
	if data != nil {
		b, _ := json.Marshal(data)
		raw = b
	}
	e := Event{
		Type:      typ,
		Version:   v,
		At:        time.Now().UTC(),
		RequestID: reqID,
		Data:      raw,
	}
	b, _ := json.Marshal(e)
	return string(b)
}
