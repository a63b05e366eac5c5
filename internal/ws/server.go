package ws

import (
	"context"

	"github.com/gofiber/websocket/v2"
	"github.com/rs/zerolog/log"
)

// MembershipChecker gates conversation subscriptions.
type MembershipChecker interface {
	IsActiveMember(ctx context.Context, conversationID, userID string) (bool, error)
}

type Server struct {
	hub         *Hub
	memberships MembershipChecker
}

func NewServer(hub *Hub, memberships MembershipChecker) *Server {
	return &Server{hub: hub, memberships: memberships}
}

func (s *Server) Hub() *Hub { return s.hub }

// HandleWS serves one websocket session. The caller always subscribes to
// their own user topic; passing ?conversation_id= additionally subscribes
// to that conversation, membership permitting.
func (s *Server) HandleWS(conn *websocket.Conn) {
	userID, _ := conn.Locals("user_id").(string)
	if userID == "" {
		_ = conn.Close()
		return
	}
	conversationID := conn.Query("conversation_id")
	if conversationID != "" {
		ok, err := s.memberships.IsActiveMember(context.Background(), conversationID, userID)
		if err != nil || !ok {
			_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"not a member"}`))
			_ = conn.Close()
			return
		}
	}

	cli := NewClient(userID, conversationID)
	s.hub.AddClient(cli)
	log.Info().Str("user", userID).Str("conversation", conversationID).Msg("ws connected")

	go writePump(conn, cli)
	readPump(conn, s.hub, cli)

	log.Info().Str("user", userID).Msg("ws disconnected")
}
