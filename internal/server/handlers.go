package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/fredgpt/server/internal/agent/model"
	logx "github.com/fredgpt/server/pkg/logger"
)

type askRequest struct {
	Text           string       `json:"text" binding:"required"`
	Conversation   []model.Turn `json:"conversation"`
	ConversationID string       `json:"conversation_id"`
}

type errorResponse struct {
	Response string `json:"response"`
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": HealthMessage, "status": HealthStatus})
}

// ask always answers 200 once the body parses; run failures are reported in-band.
func (s *Server) ask(c *gin.Context) {
	var req askRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Response: fmt.Sprintf("Error: invalid request: %v", err)})
		return
	}

	start := time.Now()
	out, err := s.runner.Invoke(c.Request.Context(), model.RunInput{
		ConversationID: req.ConversationID,
		Text:           req.Text,
		Conversation:   req.Conversation,
	})
	elapsed := time.Since(start)

	if err != nil {
		logx.Error().
			Str("request_id", c.GetString(requestIDKey)).
			Str("conversation_id", req.ConversationID).
			Err(err).
			Msg("Ask failed")
		s.recordAsk("error", elapsed)
		c.JSON(http.StatusOK, errorResponse{Response: fmt.Sprintf("Error: %v", err)})
		return
	}

	s.recordAsk("ok", elapsed)
	c.JSON(http.StatusOK, out)
}

func (s *Server) recordAsk(status string, elapsed time.Duration) {
	if s.opts.Metrics != nil {
		s.opts.Metrics.RecordAsk(status, elapsed)
	}
}
