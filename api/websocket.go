package api

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"navarch/core"
	"navarch/metrics"
)

const (
	// writeWait is the time allowed to write a message to the peer.
	writeWait = 10 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// CORS policy is enforced by the HTTP middleware before the upgrade.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// gzStreamMessage is one frame of a streamed GZ computation.
type gzStreamMessage struct {
	Type  string               `json:"type"` // "gz:point", "gz:complete", "gz:error"
	Point *core.GZPoint        `json:"point,omitempty"`
	Curve *core.StabilityCurve `json:"curve,omitempty"`
	Error string               `json:"error,omitempty"`
}

// streamGZ godoc
//
//	@Summary		Stream GZ curve
//	@Description	Computes a righting-arm curve and streams each sampled point over a websocket, finishing with the complete curve
//	@Tags			stability
//	@Param			id				path	string	true	"Vessel ID"
//	@Param			loadcase_id		query	string	true	"Loadcase ID"
//	@Param			min_angle		query	number	false	"Minimum heel angle, degrees"	default(0)
//	@Param			max_angle		query	number	false	"Maximum heel angle, degrees"	default(60)
//	@Param			increment		query	number	false	"Angle increment, degrees"	default(2.5)
//	@Param			method			query	string	false	"Stability method"	default(wall_sided)
//	@Param			draft			query	number	false	"Draft, m (0 = design draft)"
//	@Router			/api/vessels/{id}/stability/gz/stream [get]
func (a *API) streamGZ(w http.ResponseWriter, r *http.Request) {
	req, err := gzRequestFromQuery(r)
	if err != nil {
		a.respondError(w, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		a.logger.Warnw("Websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	metrics.GZStreamClients.Inc()
	defer metrics.GZStreamClients.Dec()

	curve, err := a.svc.ComputeGZCurve(r.Context(), mux.Vars(r)["id"], req)
	if err != nil {
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		_ = conn.WriteJSON(gzStreamMessage{Type: "gz:error", Error: err.Error()})
		return
	}
	curve = core.RoundStabilityCurve(curve)

	for i := range curve.Points {
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(gzStreamMessage{Type: "gz:point", Point: &curve.Points[i]}); err != nil {
			a.logger.Debugw("GZ stream client went away", "error", err)
			return
		}
	}

	conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(gzStreamMessage{Type: "gz:complete", Curve: curve}); err != nil {
		return
	}
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	_ = conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

// gzRequestFromQuery builds a GZRequest from query parameters.
func gzRequestFromQuery(r *http.Request) (*core.GZRequest, error) {
	minAngle, err := parseFloat(r, "min_angle", 0)
	if err != nil {
		return nil, err
	}
	maxAngle, err := parseFloat(r, "max_angle", 60)
	if err != nil {
		return nil, err
	}
	increment, err := parseFloat(r, "increment", 2.5)
	if err != nil {
		return nil, err
	}
	draft, err := parseFloat(r, "draft", 0)
	if err != nil {
		return nil, err
	}

	method := core.StabilityMethod(r.URL.Query().Get("method"))
	if method == "" {
		method = core.MethodWallSided
	}

	req := &core.GZRequest{
		LoadcaseID:     r.URL.Query().Get("loadcase_id"),
		MinAngle:       minAngle,
		MaxAngle:       maxAngle,
		AngleIncrement: increment,
		Method:         method,
		Draft:          draft,
	}
	if req.LoadcaseID == "" {
		return nil, core.NewInvalidArgument("loadcase_id", "required")
	}
	return req, nil
}
