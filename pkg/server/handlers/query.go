package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/txlens/txlens/pkg/driver"
	"github.com/txlens/txlens/pkg/graph"
	"github.com/txlens/txlens/pkg/interpret"
	"github.com/txlens/txlens/pkg/llm"
	"github.com/txlens/txlens/pkg/server/dto"
	"github.com/txlens/txlens/pkg/service"
)

// QueryHandler handles natural-language and direct query requests
type QueryHandler struct {
	svc    *service.Service
	logger *slog.Logger
}

// NewQueryHandler creates a new query handler
func NewQueryHandler(svc *service.Service, logger *slog.Logger) *QueryHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &QueryHandler{
		svc:    svc,
		logger: logger,
	}
}

// Ask handles POST /api/v1/query
func (h *QueryHandler) Ask(c *gin.Context) {
	var req dto.QueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "invalid_request",
			Message: err.Error(),
		})
		return
	}

	resp, err := h.svc.Ask(c.Request.Context(), req.Prompt)
	if err != nil {
		status, code := classifyError(err)
		h.logger.Error("query failed", "error", err, "status", status)
		c.JSON(status, dto.ErrorResponse{
			Error:   code,
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, dto.QueryResponse{
		Query:       resp.Query,
		Explanation: resp.Explanation,
		Results:     resp.Results,
		Narration:   resp.Narration,
		Intent:      string(resp.Intent),
		Confidence:  resp.Confidence,
	})
}

// Execute handles POST /api/v1/graphql. It runs the query directly
// against the catalog without involving the language model.
func (h *QueryHandler) Execute(c *gin.Context) {
	var req dto.GraphQLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "invalid_request",
			Message: err.Error(),
		})
		return
	}

	data, err := h.svc.Execute(c.Request.Context(), req.Query, req.Variables)
	if err != nil {
		// The envelope carries the error; the HTTP status stays 200
		// for execution failures, as GraphQL clients expect.
		c.JSON(http.StatusOK, dto.GraphQLResponse{
			Data:   nil,
			Errors: []dto.GraphQLError{{Message: err.Error()}},
		})
		return
	}

	c.JSON(http.StatusOK, dto.GraphQLResponse{Data: data})
}

// Validate handles POST /api/v1/validate
func (h *QueryHandler) Validate(c *gin.Context) {
	var req dto.ValidateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "invalid_request",
			Message: err.Error(),
		})
		return
	}

	issues := interpret.Validate(req.Query)
	c.JSON(http.StatusOK, dto.ValidateResponse{
		Valid:  len(issues) == 0,
		Issues: issues,
	})
}

// classifyError maps pipeline errors onto HTTP statuses. Caller input
// problems are 4xx, upstream completion problems are 502, everything
// else is 500.
func classifyError(err error) (int, string) {
	switch {
	case errors.Is(err, graph.ErrMissingVariables),
		errors.Is(err, graph.ErrUnknownQuery):
		return http.StatusBadRequest, "invalid_query"
	case errors.Is(err, llm.ErrRateLimited):
		return http.StatusTooManyRequests, "rate_limited"
	case errors.Is(err, llm.ErrAuthInvalid):
		return http.StatusBadGateway, "completion_auth"
	case errors.Is(err, llm.ErrTimeout),
		errors.Is(err, llm.ErrNetwork),
		errors.Is(err, llm.ErrInvalidResponse):
		return http.StatusBadGateway, "completion_failed"
	case errors.Is(err, interpret.ErrParse):
		return http.StatusBadGateway, "unparseable_response"
	case errors.Is(err, driver.ErrQueryFailed):
		return http.StatusInternalServerError, "query_failed"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}
