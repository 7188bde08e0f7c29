package bridge

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

// Config wires the agent to the public relay and the local API.
type Config struct {
	PublicWS   string // wss://relay.example.com/agent
	LocalURL   string // http://localhost:5069
	AgentID    string
	RetryDelay time.Duration
}

type requestMsg struct {
	Type    string            `json:"type"`
	ReqID   string            `json:"reqId"`
	Method  string            `json:"method"`
	Path    string            `json:"path"`
	Headers map[string]string `json:"headers"`
	Body    json.RawMessage   `json:"body"`
}

type responseMsg struct {
	Type   string          `json:"type"`
	ReqID  string          `json:"reqId"`
	Status int             `json:"status"`
	Body   json.RawMessage `json:"body"`
}

// Agent keeps an outbound websocket to the public relay and replays
// forwarded requests against the local API, so the app works away from
// the home network without any inbound port.
type Agent struct {
	cfg    Config
	client *http.Client
}

func NewAgent(cfg Config) *Agent {
	if cfg.RetryDelay == 0 {
		cfg.RetryDelay = 2 * time.Second
	}
	return &Agent{
		cfg:    cfg,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

// Run dials the relay and serves forwarded requests until the context is
// cancelled, reconnecting after any failure.
func (a *Agent) Run(ctx context.Context) {
	for {
		if err := a.serve(ctx); err != nil {
			log.Printf("BRIDGE: relay connection lost: %v", err)
		}
		select {
		case <-ctx.Done():
			log.Println("BRIDGE: agent stopped")
			return
		case <-time.After(a.cfg.RetryDelay):
		}
	}
}

func (a *Agent) serve(ctx context.Context) error {
	ws, _, err := websocket.DefaultDialer.DialContext(ctx, a.cfg.PublicWS, nil)
	if err != nil {
		return err
	}
	defer ws.Close()

	if err := ws.WriteJSON(map[string]interface{}{
		"type": "register",
		"id":   a.cfg.AgentID,
	}); err != nil {
		return err
	}
	log.Printf("BRIDGE: registered with relay as %s", a.cfg.AgentID)

	go func() {
		<-ctx.Done()
		ws.Close()
	}()

	for {
		_, msg, err := ws.ReadMessage()
		if err != nil {
			return err
		}

		var req requestMsg
		if err := json.Unmarshal(msg, &req); err != nil {
			log.Printf("BRIDGE: dropping malformed relay message: %v", err)
			continue
		}
		if req.Type != "request" {
			continue
		}

		status, body := a.forward(ctx, req)
		if err := ws.WriteJSON(responseMsg{
			Type:   "response",
			ReqID:  req.ReqID,
			Status: status,
			Body:   body,
		}); err != nil {
			return err
		}
	}
}

// forward replays one relayed request against the local API, carrying
// the caller's headers so auth still applies.
func (a *Agent) forward(ctx context.Context, req requestMsg) (int, json.RawMessage) {
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, a.cfg.LocalURL+req.Path, bytes.NewReader(req.Body))
	if err != nil {
		return http.StatusInternalServerError, errorBody("invalid forwarded request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}

	resp, err := a.client.Do(httpReq)
	if err != nil {
		log.Printf("BRIDGE: local request %s %s failed: %v", req.Method, req.Path, err)
		return http.StatusBadGateway, errorBody("local request failed")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return http.StatusBadGateway, errorBody("local response unreadable")
	}
	return resp.StatusCode, raw
}

func errorBody(msg string) json.RawMessage {
	b, _ := json.Marshal(map[string]string{"error": msg})
	return b
}
