package websocket

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"facedetection/internal/logger"
	"facedetection/internal/services/capture"

	"github.com/gorilla/websocket"
)

// Message types sent to viewers.
const (
	TypeLaunch    = "launch"
	TypeDetection = "detection"
)

const (
	writeWait       = 10 * time.Second
	defaultPongWait = 60 * time.Second
	maxMessageSize  = 512
)

// launchMessage asks the connected viewer to open a picker, camera or player.
type launchMessage struct {
	Type        string                `json:"type"`
	RequestCode int                   `json:"requestCode,omitempty"`
	Request     capture.LaunchRequest `json:"request"`
}

// HubService fans messages out to connected viewers. It also acts as the
// launcher for capture requests: viewers open the requested facility and
// post the result back over HTTP.
type HubService struct {
	clients    map[*websocket.Conn]bool
	broadcast  chan []byte
	register   chan *websocket.Conn
	unregister chan *websocket.Conn
	done       chan struct{}
	stopOnce   sync.Once
	mutex      sync.RWMutex
	logger     *logger.Logger

	// Viewers that do not answer a ping within pongWait are dropped.
	pongWait   time.Duration
	pingPeriod time.Duration
}

func NewHubService(logger *logger.Logger) *HubService {
	return &HubService{
		clients:    make(map[*websocket.Conn]bool),
		broadcast:  make(chan []byte, 64),
		register:   make(chan *websocket.Conn),
		unregister: make(chan *websocket.Conn),
		done:       make(chan struct{}),
		logger:     logger,
		pongWait:   defaultPongWait,
		pingPeriod: defaultPongWait * 9 / 10,
	}
}

// Run processes registrations and broadcasts and pings viewers until Stop
// is called. It is the only goroutine writing to viewer connections.
func (h *HubService) Run() {
	ticker := time.NewTicker(h.pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-h.done:
			h.mutex.Lock()
			for client := range h.clients {
				client.Close()
				delete(h.clients, client)
			}
			h.mutex.Unlock()
			return

		case client := <-h.register:
			h.mutex.Lock()
			h.clients[client] = true
			count := len(h.clients)
			h.mutex.Unlock()
			h.logger.Info("Viewer connected. Total: %d", count)

		case client := <-h.unregister:
			h.mutex.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				client.Close()
			}
			count := len(h.clients)
			h.mutex.Unlock()
			h.logger.Info("Viewer disconnected. Total: %d", count)

		case message := <-h.broadcast:
			h.mutex.Lock()
			for client := range h.clients {
				client.SetWriteDeadline(time.Now().Add(writeWait))
				if err := client.WriteMessage(websocket.TextMessage, message); err != nil {
					h.logger.Error("Error sending message: %v", err)
					delete(h.clients, client)
					client.Close()
				}
			}
			h.mutex.Unlock()

		case <-ticker.C:
			h.mutex.Lock()
			for client := range h.clients {
				if err := client.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
					h.logger.Warning("Ping failed, dropping viewer: %v", err)
					delete(h.clients, client)
					client.Close()
				}
			}
			h.mutex.Unlock()
		}
	}
}

// Serve registers client and reads from it until it disconnects or stops
// answering pings. Viewers only send control frames; data frames are
// discarded.
func (h *HubService) Serve(client *websocket.Conn) {
	client.SetReadLimit(maxMessageSize)
	client.SetReadDeadline(time.Now().Add(h.pongWait))
	client.SetPongHandler(func(string) error {
		return client.SetReadDeadline(time.Now().Add(h.pongWait))
	})

	h.Register(client)
	defer h.Unregister(client)

	for {
		if _, _, err := client.ReadMessage(); err != nil {
			h.logger.Info("Viewer read ended: %v", err)
			return
		}
	}
}

// Stop ends Run and closes all viewer connections.
func (h *HubService) Stop() {
	h.stopOnce.Do(func() { close(h.done) })
}

func (h *HubService) Register(client *websocket.Conn) {
	select {
	case h.register <- client:
	case <-h.done:
		client.Close()
	}
}

func (h *HubService) Unregister(client *websocket.Conn) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Broadcast queues message for every viewer. When the queue is full the
// message is dropped.
func (h *HubService) Broadcast(message []byte) {
	select {
	case h.broadcast <- message:
	case <-h.done:
	default:
		h.logger.Warning("Broadcast queue full - dropping message")
	}
}

// BroadcastJSON encodes v and broadcasts it.
func (h *HubService) BroadcastJSON(v any) error {
	message, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode message: %w", err)
	}
	h.Broadcast(message)
	return nil
}

// LaunchForResult asks viewers to start req; the result is expected back
// tagged with requestCode.
func (h *HubService) LaunchForResult(req capture.LaunchRequest, requestCode int) error {
	return h.launch(launchMessage{Type: TypeLaunch, RequestCode: requestCode, Request: req})
}

// Launch asks viewers to start req without expecting a result.
func (h *HubService) Launch(req capture.LaunchRequest) error {
	return h.launch(launchMessage{Type: TypeLaunch, Request: req})
}

func (h *HubService) launch(msg launchMessage) error {
	if h.GetClientCount() == 0 {
		h.logger.Warning("No viewers connected for %s request", msg.Request.Action)
	}
	return h.BroadcastJSON(msg)
}

func (h *HubService) GetClientCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}

var (
	_ capture.CanLaunchForResult = (*HubService)(nil)
	_ capture.Launcher           = (*HubService)(nil)
)
