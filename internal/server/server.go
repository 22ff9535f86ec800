package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/agenthands/companion/internal/core"
	"github.com/agenthands/companion/internal/core/embedding"
	"github.com/agenthands/companion/internal/core/model"
	"github.com/agenthands/companion/internal/core/similarity"
)

const requestIDHeader = "X-Request-ID"

type Server struct {
	Recommender *core.Recommender
	Matcher     *similarity.Matcher
	Store       *embedding.FileStore

	logger zerolog.Logger
}

func NewServer(rec *core.Recommender, matcher *similarity.Matcher, store *embedding.FileStore, logger zerolog.Logger) *Server {
	return &Server{
		Recommender: rec,
		Matcher:     matcher,
		Store:       store,
		logger:      logger,
	}
}

func (s *Server) SetupRouter() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestID(), s.accessLog())

	r.POST("/recommend", s.Recommend)
	r.GET("/explain", s.Explain)
	r.GET("/healthz", s.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.POST("/admin/reload", s.Reload)

	return r
}

func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.New().String()
		}
		c.Set("request_id", id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func (s *Server) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		evt := s.logger.Info()
		if c.Writer.Status() >= http.StatusInternalServerError {
			evt = s.logger.Error()
		}
		evt.Str("request_id", c.GetString("request_id")).
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Msg("request")
	}
}

// RecommendRequest carries either a known user or the self-reported
// attributes of an anonymous one.
type RecommendRequest struct {
	UserID          string `json:"user_id"`
	GrowingStress   string `json:"growing_stress"`
	MoodSwings      string `json:"mood_swings"`
	SocialWeakness  string `json:"social_weakness"`
	CopingStruggles string `json:"coping_struggles"`
	WorkInterest    string `json:"work_interest"`
	Strategy        string `json:"strategy" binding:"omitempty,oneof=graph neural hybrid"`
	Limit           int    `json:"limit" binding:"omitempty,min=1,max=100"`
}

func (s *Server) Recommend(c *gin.Context) {
	var req RecommendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	creq := core.Request{
		UserID:   req.UserID,
		Limit:    req.Limit,
		Strategy: model.Strategy(req.Strategy),
	}
	if req.UserID == "" {
		creq.Attributes = &model.Attributes{
			GrowingStress:   req.GrowingStress,
			MoodSwings:      req.MoodSwings,
			SocialWeakness:  req.SocialWeakness,
			CopingStruggles: req.CopingStruggles,
			WorkInterest:    req.WorkInterest,
		}
	}

	ctx := c.Request.Context()
	candidates, err := s.Recommender.GetRecommendations(ctx, creq)
	if err != nil {
		if errors.Is(err, model.ErrUnknownStrategy) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown strategy"})
			return
		}
		s.logger.Error().Err(err).Str("request_id", c.GetString("request_id")).Msg("failed to compute recommendations")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute recommendations"})
		return
	}

	recs, err := s.Recommender.Annotate(ctx, req.UserID, candidates)
	if err != nil {
		s.logger.Error().Err(err).Str("request_id", c.GetString("request_id")).Msg("failed to explain recommendations")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute recommendations"})
		return
	}

	c.JSON(http.StatusOK, recs)
}

type ExplainRequest struct {
	ActivityID string `form:"activity_id" binding:"required"`
	UserID     string `form:"user_id" binding:"required"`
}

func (s *Server) Explain(c *gin.Context) {
	var req ExplainRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "activity_id and user_id are required"})
		return
	}

	text, err := s.Recommender.ExplainRecommendation(c.Request.Context(), req.ActivityID, req.UserID)
	if err != nil {
		s.logger.Error().Err(err).Str("request_id", c.GetString("request_id")).Msg("failed to explain")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to explain recommendation"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"explanation": text})
}

func (s *Server) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":             "ok",
		"embeddings_trained": s.Matcher.Trained(),
		"embedding_nodes":    s.Matcher.Size(),
	})
}

// Reload swaps in the embedding file currently on disk. The similarity
// branch goes empty when the file is missing or unreadable.
func (s *Server) Reload(c *gin.Context) {
	loaded := s.ReloadEmbeddings()
	status := http.StatusOK
	if !loaded {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, gin.H{
		"embeddings_trained": loaded,
		"embedding_nodes":    s.Matcher.Size(),
	})
}

func (s *Server) ReloadEmbeddings() bool {
	return s.Matcher.Load(s.Store)
}
