package handlers

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/Roshan-yadav-evil-genius/TheOneEye-Backend-sub000/cmd/workflow-engine/events"
)

// StateHandler streams workflow lifecycle events over websockets
type StateHandler struct {
	bus      *events.Bus
	tracker  *events.StateTracker
	log      Logger
	upgrader websocket.Upgrader
}

// NewStateHandler creates a new state handler
func NewStateHandler(bus *events.Bus, tracker *events.StateTracker, log Logger) *StateHandler {
	return &StateHandler{
		bus:     bus,
		tracker: tracker,
		log:     log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// GetState reports the current tracked state of one workflow
// GET /api/v1/workflows/:id/state
func (h *StateHandler) GetState(c echo.Context) error {
	state, ok := h.tracker.Snapshot(c.Param("id"))
	if !ok {
		return c.JSON(http.StatusNotFound, errorBody("no state tracked for workflow"))
	}
	return c.JSON(http.StatusOK, state)
}

type stateFrame struct {
	Type  string                `json:"type"`
	State *events.WorkflowState `json:"state,omitempty"`
	Event *events.Event         `json:"event,omitempty"`
}

// StreamState upgrades to a websocket and pushes the workflow's current
// state followed by its live events until the client disconnects
// GET /api/v1/workflows/:id/state/stream
func (h *StateHandler) StreamState(c echo.Context) error {
	workflowID := c.Param("id")

	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	if state, ok := h.tracker.Snapshot(workflowID); ok {
		if err := conn.WriteJSON(stateFrame{Type: "snapshot", State: &state}); err != nil {
			return nil
		}
	}

	// buffered so a slow client drops frames instead of stalling the bus
	frames := make(chan events.Event, 64)
	unsubscribe := h.bus.Subscribe(func(e events.Event) {
		if e.WorkflowID != workflowID {
			return
		}
		select {
		case frames <- e:
		default:
		}
	})
	defer unsubscribe()

	// the reader only serves to detect disconnect
	disconnected := make(chan struct{})
	go func() {
		defer close(disconnected)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case e := <-frames:
			if err := conn.WriteJSON(stateFrame{Type: "event", Event: &e}); err != nil {
				return nil
			}
		case <-disconnected:
			return nil
		case <-c.Request().Context().Done():
			return nil
		}
	}
}
