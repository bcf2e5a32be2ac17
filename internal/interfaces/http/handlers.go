package http

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/kvalencee/alfaia/internal/infrastructure/database/postgres"
	"github.com/kvalencee/alfaia/internal/infrastructure/monitoring/logging"
	"github.com/kvalencee/alfaia/pkg/errors"
	"github.com/kvalencee/alfaia/pkg/types/analysis"
)

const (
	defaultScoreLimit = 20
	maxScoreLimit     = 100
)

type handlers struct {
	analyzer Analyzer
	scores   postgres.ScoreRepository
	logger   logging.Logger
}

// analyzeRequest is the POST /api/v1/analyze body.
type analyzeRequest struct {
	Text      string `json:"text" binding:"required"`
	LearnerID string `json:"learner_id"`
}

// errorResponse is the uniform error envelope.
type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (h *handlers) analyze(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{
			Code:    string(errors.ErrCodeBadRequest),
			Message: "el cuerpo de la petición debe incluir el campo text",
		})
		return
	}

	result, err := h.analyzer.Analyze(c.Request.Context(), req.Text, strings.TrimSpace(req.LearnerID))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *handlers) listScores(c *gin.Context) {
	if h.scores == nil {
		c.JSON(http.StatusNotImplemented, errorResponse{
			Code:    string(errors.ErrCodeNotImplemented),
			Message: "el almacén de puntuaciones no está configurado",
		})
		return
	}

	learnerID := c.Param("learner_id")
	limit := defaultScoreLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			c.JSON(http.StatusBadRequest, errorResponse{
				Code:    string(errors.ErrCodeValidation),
				Message: "limit debe ser un entero positivo",
			})
			return
		}
		if n > maxScoreLimit {
			n = maxScoreLimit
		}
		limit = n
	}

	records, err := h.scores.ListByLearner(c.Request.Context(), learnerID, limit)
	if err != nil {
		h.writeError(c, err)
		return
	}
	if records == nil {
		records = []analysis.ScoreRecord{}
	}
	c.JSON(http.StatusOK, gin.H{"learner_id": learnerID, "scores": records})
}

func (h *handlers) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *handlers) readiness(check ReadyChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		if check != nil {
			if err := check(c.Request.Context()); err != nil {
				h.logger.Warn("readiness check failed", logging.Err(err))
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	}
}

func (h *handlers) writeError(c *gin.Context, err error) {
	code := errors.GetCode(err)
	if code == errors.CodeUnknown {
		code = errors.ErrCodeInternal
	}
	status := errors.HTTPStatusForCode(code)
	msg := "error interno del servidor"
	if ae, ok := errors.AsAppError(err); ok {
		msg = ae.Message
	}
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed", logging.String("code", string(code)), logging.Err(err))
	}
	c.JSON(status, errorResponse{Code: string(code), Message: msg})
}
