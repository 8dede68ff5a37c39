package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cadencehq/cadence/internal/models"
	"github.com/cadencehq/cadence/internal/optimizer"
	"github.com/cadencehq/cadence/internal/platform"
	"github.com/cadencehq/cadence/internal/schedule"
	"github.com/cadencehq/cadence/internal/service"
	"github.com/cadencehq/cadence/internal/trends"
)

type createContentRequest struct {
	Body        string  `json:"body" binding:"required"`
	Platform    string  `json:"platform" binding:"required"`
	WorkflowID  *string `json:"workflow_id"`
	AIGenerated bool    `json:"ai_generated"`
}

func (s *Server) handleCreateContent(c *gin.Context) {
	var req createContentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	content, err := s.ContentService.CreateDraft(req.Body, platform.Platform(req.Platform), req.WorkflowID, req.AIGenerated)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, content)
}

func (s *Server) handleListContent(c *gin.Context) {
	query := s.DB.Order("created_at desc").Limit(100)
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var items []models.Content
	if err := query.Find(&items).Error; err != nil {
		s.Logger.Error("Failed to list content", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list content"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"content": items})
}

func (s *Server) handleGetContent(c *gin.Context) {
	var content models.Content
	if err := s.DB.Preload("Metrics").Where("id = ?", c.Param("id")).First(&content).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Content not found"})
		return
	}

	c.JSON(http.StatusOK, content)
}

type scheduleContentRequest struct {
	ScheduledAt time.Time `json:"scheduled_at" binding:"required"`
}

func (s *Server) handleScheduleContent(c *gin.Context) {
	var req scheduleContentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	content, err := s.ContentService.ScheduleContent(c.Param("id"), req.ScheduledAt)
	if err != nil {
		var validationErr *optimizer.ValidationError
		switch {
		case errors.As(err, &validationErr):
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error": validationErr.Error(),
				"code":  string(validationErr.Code),
			})
		case errors.Is(err, service.ErrDuplicateContent):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, content)
}

func (s *Server) handleDispatchContent(c *gin.Context) {
	var content models.Content
	if err := s.DB.Where("id = ?", c.Param("id")).First(&content).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Content not found"})
		return
	}

	var wf *models.Workflow
	if content.WorkflowID != nil {
		var loaded models.Workflow
		if err := s.DB.Where("id = ?", *content.WorkflowID).First(&loaded).Error; err == nil {
			wf = &loaded
		}
	}

	result, err := s.Dispatcher.Dispatch(c.Request.Context(), &content, wf)
	if err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"content": content,
		"outcome": string(result.Outcome),
	})
}

func (s *Server) handleArchiveContent(c *gin.Context) {
	content, err := s.ContentService.ArchiveContent(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, content)
}

type optimizeRequest struct {
	Body     string `json:"body" binding:"required"`
	Platform string `json:"platform" binding:"required"`
}

func (s *Server) handleOptimizeContent(c *gin.Context) {
	var req optimizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	p := platform.Platform(req.Platform)
	if !p.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown platform"})
		return
	}

	optimized, err := optimizer.Optimize(req.Body, p, models.ContentRules{})
	if err != nil {
		var validationErr *optimizer.ValidationError
		if errors.As(err, &validationErr) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error": validationErr.Error(),
				"code":  string(validationErr.Code),
			})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, optimized)
}

func (s *Server) handleSuggestTimes(c *gin.Context) {
	p := platform.Platform(c.Query("platform"))
	if !p.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown platform"})
		return
	}
	timezone := c.DefaultQuery("timezone", "UTC")

	times, err := optimizer.SuggestPostingTimes(p, timezone, time.Now(), 5)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"suggestions": times})
}

type createWorkflowRequest struct {
	Name       string                  `json:"name" binding:"required"`
	Platforms  []string                `json:"platforms" binding:"required"`
	Automation models.AutomationConfig `json:"automation"`
}

func (s *Server) handleCreateWorkflow(c *gin.Context) {
	var req createWorkflowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	wf := &models.Workflow{
		Name:       req.Name,
		Platforms:  req.Platforms,
		Automation: req.Automation,
	}
	if err := s.ContentService.SaveWorkflow(wf); err != nil {
		var configErr *schedule.ConfigError
		if errors.As(err, &configErr) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error": configErr.Error(),
				"code":  string(configErr.Code),
			})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, wf)
}

func (s *Server) handleListWorkflows(c *gin.Context) {
	var workflows []models.Workflow
	if err := s.DB.Order("created_at desc").Find(&workflows).Error; err != nil {
		s.Logger.Error("Failed to list workflows", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list workflows"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"workflows": workflows})
}

func (s *Server) handlePauseWorkflow(c *gin.Context) {
	wf, err := s.ContentService.SetWorkflowPaused(c.Param("id"), true)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, wf)
}

func (s *Server) handleResumeWorkflow(c *gin.Context) {
	wf, err := s.ContentService.SetWorkflowPaused(c.Param("id"), false)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, wf)
}

type createTrendRequest struct {
	Topic     string      `json:"topic" binding:"required"`
	Platform  string      `json:"platform"`
	Volume    interface{} `json:"volume" binding:"required"`
	Keywords  []string    `json:"keywords"`
	ExpiresAt *time.Time  `json:"expires_at"`
}

func (s *Server) handleCreateTrend(c *gin.Context) {
	var req createTrendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	volume, err := trends.NormalizeVolume(req.Volume)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	trend := models.Trend{
		Topic:        req.Topic,
		Platform:     platform.Platform(req.Platform),
		Volume:       volume,
		Keywords:     req.Keywords,
		DiscoveredAt: time.Now(),
		ExpiresAt:    req.ExpiresAt,
	}
	if err := s.DB.Create(&trend).Error; err != nil {
		s.Logger.Error("Failed to create trend", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create trend"})
		return
	}

	c.JSON(http.StatusCreated, trend)
}

type rankTrendsRequest struct {
	Context  string `json:"context" binding:"required"`
	Platform string `json:"platform"`
}

func (s *Server) handleRankTrends(c *gin.Context) {
	var req rankTrendsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	query := s.DB.Order("discovered_at desc").Limit(200)
	if req.Platform != "" {
		query = query.Where("platform = ?", req.Platform)
	}

	var items []models.Trend
	if err := query.Find(&items).Error; err != nil {
		s.Logger.Error("Failed to load trends", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load trends"})
		return
	}

	ranked := trends.Rank(items, req.Context, time.Now())
	c.JSON(http.StatusOK, gin.H{"trends": ranked})
}

type generateRequest struct {
	Prompt  string `json:"prompt" binding:"required"`
	Context string `json:"context"`
}

func (s *Server) handleGenerate(c *gin.Context) {
	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	text, err := s.GeneratorService.GenerateOrRewrite(c.Request.Context(), req.Prompt, req.Context)
	if err != nil {
		s.Logger.Error("Text generation failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "Text generation failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"text": text})
}
