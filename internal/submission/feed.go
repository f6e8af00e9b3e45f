package submission

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/prepgrind/theory-platform/internal/auth"
	"github.com/prepgrind/theory-platform/internal/grading"
	"github.com/prepgrind/theory-platform/pkg/http/ws"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Feed broadcasts recorded submissions to connected admin and recruiter
// clients.
type Feed struct {
	hub    *ws.Hub
	logger zerolog.Logger
}

// NewFeed creates a submission feed over the given hub.
func NewFeed(hub *ws.Hub, logger zerolog.Logger) *Feed {
	return &Feed{hub: hub, logger: logger}
}

// feedEvent is the payload broadcast for every recorded submission.
type feedEvent struct {
	SubmissionID uuid.UUID `json:"submission_id"`
	UserID       uuid.UUID `json:"user_id"`
	QuestionID   uuid.UUID `json:"question_id"`
	IsCorrect    bool      `json:"is_correct"`
	Score        int       `json:"score"`
	RecordedAt   time.Time `json:"recorded_at"`
}

// PublishSubmission pushes a recorded submission to all feed subscribers.
// Delivery is best effort; failures are logged, never surfaced.
func (f *Feed) PublishSubmission(sub Submission, result grading.Result) {
	msg, err := ws.NewMessage(ws.TypeSubmissionRecorded, feedEvent{
		SubmissionID: sub.ID,
		UserID:       sub.UserID,
		QuestionID:   sub.QuestionID,
		IsCorrect:    result.IsCorrect,
		Score:        result.Score,
		RecordedAt:   sub.CreatedAt,
	})
	if err != nil {
		f.logger.Warn().Err(err).Msg("feed payload encode failed")
		return
	}
	if err := f.hub.BroadcastAll(msg); err != nil {
		f.logger.Warn().Err(err).Msg("feed broadcast failed")
	}
}

// HandleWebSocket upgrades the connection for feed subscribers. The feed
// exposes every user's activity, so only admins may attach.
func (f *Feed) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}
	if claims.Role != auth.RoleAdmin {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	userID := claims.UserID

	wsConn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		f.logger.Error().Err(err).Msg("websocket upgrade failed")
		return
	}

	conn := ws.NewConnection(wsConn, f.logger)
	f.hub.RegisterConnection(userID, conn)

	go conn.WritePump()
	go func() {
		defer f.hub.UnregisterConnection(userID)
		conn.ReadPump(func(msg ws.Message) error {
			if msg.Type == ws.TypePing {
				pong, err := ws.NewMessage(ws.TypePong, nil)
				if err != nil {
					return err
				}
				return conn.Send(pong)
			}
			return nil
		})
	}()
}
