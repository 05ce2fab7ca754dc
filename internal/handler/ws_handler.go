package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rareminds/testportal/internal/metrics"
	"github.com/rareminds/testportal/internal/middleware"
	"github.com/rareminds/testportal/internal/response"
	"github.com/rareminds/testportal/internal/service"
	"github.com/rareminds/testportal/internal/session"
	ws "github.com/rareminds/testportal/internal/websocket"
	"github.com/rs/zerolog"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// allowedOrigins comes from config.Config.AllowedOrigins.
// An empty slice permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// WSHandler streams one test session per connection.
type WSHandler struct {
	sessionService *service.SessionService
	supportService *service.SupportService
	tickInterval   time.Duration
	newTicker      session.TickerFunc
	log            zerolog.Logger
	upgrader       websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(
	sessionService *service.SessionService,
	supportService *service.SupportService,
	tickInterval time.Duration,
	log zerolog.Logger,
	allowedOrigins []string,
) *WSHandler {
	return &WSHandler{
		sessionService: sessionService,
		supportService: supportService,
		tickInterval:   tickInterval,
		newTicker:      session.NewTimeTicker,
		log:            log.With().Str("component", "ws_handler").Logger(),
		upgrader:       buildUpgrader(allowedOrigins),
	}
}

// TestStream godoc
// WS /ws/v1/student/test/stream
// Runs the student's test session for the lifetime of the connection.
// Closing the connection discards the session.
func (h *WSHandler) TestStream(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	raw, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	conn := ws.NewConn(raw)
	subjectID := claims.Subject
	wsLog := h.log.With().Str("subject_id", subjectID).Logger()

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	ctrl, err := h.sessionService.Prepare(ctx, subjectID)
	if err != nil {
		h.abort(conn, wsLog, err)
		return
	}

	runner := session.NewRunner(ctrl, session.RunnerOptions{
		Interval:  h.tickInterval,
		NewTicker: h.newTicker,
		Emit:      func(ev session.Event) { h.forward(conn, ctrl, ev, wsLog) },
		Logger:    wsLog,
	})
	if err := h.sessionService.Acquire(ctx, subjectID, runner); err != nil {
		h.abort(conn, wsLog, err)
		return
	}
	defer h.sessionService.Release(ctx, subjectID, runner)
	go h.sessionService.Hold(ctx, subjectID)

	metrics.ActiveSessions.Inc()
	defer metrics.ActiveSessions.Dec()
	wsLog.Info().Str("course_id", ctrl.CourseID()).Int("questions", ctrl.QuestionCount()).Msg("Student connected")

	go func() {
		if err := runner.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			wsLog.Error().Err(err).Msg("Session runner stopped with error")
		}
	}()
	// Once the session ends, close the socket so the read loop returns.
	go func() {
		<-runner.Done()
		_ = conn.Close(websocket.CloseNormalClosure, "session ended")
	}()

	for {
		env, err := conn.ReadEnvelope()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				wsLog.Warn().Err(err).Msg("Unexpected close")
			} else {
				wsLog.Debug().Msg("Connection closed")
			}
			break
		}
		h.dispatch(ctx, conn, runner, env, wsLog)
	}

	cancel()
	<-runner.Done()
	if ctrl.Phase() != session.PhaseSubmitted {
		wsLog.Info().Str("phase", ctrl.Phase().String()).Msg("Session discarded before submission")
	}
}

func (h *WSHandler) dispatch(ctx context.Context, conn *ws.Conn, runner *session.Runner, env *ws.RequestEnvelope, wsLog zerolog.Logger) {
	var op session.Op

	switch env.Action {
	case ws.ActionPing:
		_ = conn.WriteEvent(ws.EventPong, nil)
		return

	case ws.ActionState:
		op = func(_ context.Context, c *session.Controller) error {
			return conn.WriteEvent(ws.EventState, c.Snapshot())
		}

	case ws.ActionAcknowledge:
		op = func(_ context.Context, c *session.Controller) error { return c.Acknowledge() }

	case ws.ActionPermissions:
		var req ws.PermissionsRequest
		if err := env.Decode(&req); err != nil {
			h.writeCode(conn, response.ErrInvalidPayload)
			return
		}
		op = func(_ context.Context, c *session.Controller) error {
			if err := c.GrantPermissions(req.Camera, req.Microphone); err != nil {
				return err
			}
			metrics.SessionsStarted.Inc()
			return nil
		}

	case ws.ActionSelect:
		var req ws.SelectRequest
		if err := env.Decode(&req); err != nil {
			h.writeCode(conn, response.ErrInvalidPayload)
			return
		}
		op = func(_ context.Context, c *session.Controller) error { return c.SelectAnswer(req.Index, req.Answer) }

	case ws.ActionGoTo:
		var req ws.GoToRequest
		if err := env.Decode(&req); err != nil {
			h.writeCode(conn, response.ErrInvalidPayload)
			return
		}
		op = func(_ context.Context, c *session.Controller) error { return c.GoTo(req.Index) }

	case ws.ActionNext:
		op = func(_ context.Context, c *session.Controller) error { return c.Next() }

	case ws.ActionPrevious:
		op = func(_ context.Context, c *session.Controller) error { return c.Previous() }

	case ws.ActionBack:
		op = func(_ context.Context, c *session.Controller) error { return c.ReturnToTest() }

	case ws.ActionVisibility:
		var req ws.VisibilityRequest
		if err := env.Decode(&req); err != nil {
			h.writeCode(conn, response.ErrInvalidPayload)
			return
		}
		if !req.Hidden {
			return
		}
		op = func(ctx context.Context, c *session.Controller) error {
			c.RecordWarning(ctx)
			return nil
		}

	case ws.ActionSubmit:
		op = func(ctx context.Context, c *session.Controller) error { return c.Submit(ctx) }

	case ws.ActionHelp:
		var req ws.HelpRequest
		if err := env.Decode(&req); err != nil || strings.TrimSpace(req.Message) == "" {
			h.writeCode(conn, response.ErrInvalidPayload)
			return
		}
		courseID := runner.Controller().CourseID()
		if _, err := h.supportService.Raise(ctx, runner.Controller().SubjectID(), courseID, req.Message); err != nil {
			wsLog.Error().Err(err).Msg("Support request failed")
			h.writeCode(conn, response.ErrInternal)
			return
		}
		_ = conn.WriteEvent(ws.EventNotification, ws.Notification{
			Message: "Your request has been sent to support. You can continue your test.",
		})
		return

	default:
		wsLog.Warn().Str("action", string(env.Action)).Msg("Unknown action")
		h.writeCode(conn, response.ErrUnknownAction)
		return
	}

	if err := runner.Do(ctx, op); err != nil {
		h.writeActionError(conn, err)
	}
}

// forward renders a controller event for the client. It runs on the runner
// goroutine, so reading the controller is safe.
func (h *WSHandler) forward(conn *ws.Conn, ctrl *session.Controller, ev session.Event, wsLog zerolog.Logger) {
	data := ev.Payload
	if ev.Kind == session.EventState {
		data = ctrl.Snapshot()
	}
	if err := conn.WriteEvent(ws.Event(ev.Kind), data); err != nil {
		wsLog.Debug().Err(err).Str("event", string(ev.Kind)).Msg("Event write failed")
	}
}

func (h *WSHandler) writeActionError(conn *ws.Conn, err error) {
	var devErr *session.DeviceError
	switch {
	case errors.As(err, &devErr):
		// The device_error event already named the missing devices.
	case errors.Is(err, session.ErrSessionClosed), errors.Is(err, context.Canceled):
	case errors.Is(err, session.ErrInvalidPhase):
		h.writeCode(conn, response.ErrInvalidPhase)
	case errors.Is(err, session.ErrIndexOutOfRange):
		h.writeCode(conn, response.ErrInvalidIndex)
	case errors.Is(err, session.ErrUnknownOption):
		h.writeCode(conn, response.ErrUnknownOption)
	case errors.Is(err, session.ErrReviewLocked):
		h.writeCode(conn, response.ErrReviewLocked)
	default:
		h.log.Error().Err(err).Msg("Session action failed")
		h.writeCode(conn, response.ErrInternal)
	}
}

// abort reports why a session cannot start, tells the client to release its
// devices and closes the connection.
func (h *WSHandler) abort(conn *ws.Conn, wsLog zerolog.Logger, err error) {
	code := response.ErrInternal
	switch {
	case errors.Is(err, service.ErrNoCourseAssigned):
		code = response.ErrNoCourse
	case errors.Is(err, service.ErrNoQuestions):
		code = response.ErrNoQuestions
	case errors.Is(err, service.ErrOutsideWindow):
		code = response.ErrOutsideWindow
	case errors.Is(err, service.ErrAlreadySubmitted):
		code = response.ErrAlreadySubmitted
	case errors.Is(err, service.ErrSessionActive):
		code = response.ErrSessionActive
	}
	if code == response.ErrInternal {
		wsLog.Error().Err(err).Msg("Cannot start test session")
	} else {
		wsLog.Info().Str("code", string(code)).Msg("Test session refused")
	}
	h.writeCode(conn, code)
	_ = conn.WriteEvent(ws.EventTeardown, nil)
	_ = conn.Close(websocket.ClosePolicyViolation, string(code))
}

func (h *WSHandler) writeCode(conn *ws.Conn, code response.ErrCode) {
	_ = conn.WriteError(string(code), response.GetMessage(code))
}
