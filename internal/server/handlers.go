package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/csheth/whatif/internal/api"
	"github.com/csheth/whatif/internal/llm"
	"github.com/csheth/whatif/internal/store"
	"github.com/csheth/whatif/internal/validate"
)

func (s *Server) submit(c *gin.Context) {
	var req api.SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Request body must be JSON with a question."})
		return
	}
	if err := validate.Question(req.Question); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: validate.Message(err)})
		return
	}

	ctx := c.Request.Context()
	text, err := s.gen.Generate(ctx, req.Question)
	if err != nil {
		s.logger.Error("generate failed",
			zap.String("request_id", c.GetString(requestIDKey)),
			zap.String("generator", s.gen.Name()),
			zap.Error(err))
		c.JSON(http.StatusBadGateway, api.ErrorResponse{Error: "The story generator is unavailable. Try again shortly."})
		return
	}
	text = llm.Normalize(text)

	if s.log != nil {
		entry := store.Entry{
			Prompt:         llm.FrameQuestion(req.Question),
			Response:       text,
			AdditionalInfo: s.gen.Name(),
		}
		if _, err := s.log.Record(ctx, entry); err != nil {
			s.logger.Warn("record question failed", zap.String("request_id", c.GetString(requestIDKey)), zap.Error(err))
		}
	}

	c.JSON(http.StatusOK, api.SubmitResponse{Response: text})
}

func (s *Server) inspiration(c *gin.Context) {
	items := []api.Inspiration{}
	if s.log != nil {
		var err error
		items, err = s.log.Inspiration(c.Request.Context(), feedLimit)
		if err != nil {
			s.logger.Error("inspiration query failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Could not load questions."})
			return
		}
	}
	c.JSON(http.StatusOK, api.InspirationResponse{Questions: items})
}

func (s *Server) background(c *gin.Context) {
	prompts := []string{}
	if s.log != nil {
		var err error
		prompts, err = s.log.Background(c.Request.Context(), feedLimit)
		if err != nil {
			s.logger.Error("background query failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Could not load questions."})
			return
		}
	}
	c.JSON(http.StatusOK, api.BackgroundResponse{Questions: prompts})
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "generator": s.gen.Name()})
}
