package api

import (
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/roach88/dropscope/internal/importer"
	"github.com/roach88/dropscope/internal/metrics"
	"github.com/roach88/dropscope/internal/model"
	"github.com/roach88/dropscope/internal/query"
	"github.com/roach88/dropscope/internal/store"
)

// Error codes in JSON error bodies.
const (
	CodeBadRequest = "BAD_REQUEST"
	CodeValidation = "VALIDATION"
	CodeConstraint = "CONSTRAINT"
	CodeNotReady   = "NOT_READY"
	CodeInternal   = "INTERNAL"
)

type listResponse struct {
	Items []model.RankedAirdrop `json:"items"`
}

type importResponse struct {
	OK      bool   `json:"ok"`
	Count   int    `json:"count"`
	BatchID string `json:"batch_id"`
}

type errorResponse struct {
	OK     bool                  `json:"ok"`
	Code   string                `json:"code"`
	Error  string                `json:"error"`
	Fields []importer.FieldError `json:"fields,omitempty"`
}

func errorBody(code, msg string) errorResponse {
	return errorResponse{OK: false, Code: code, Error: msg}
}

func (s *Server) listAirdrops(c *gin.Context) {
	f := filterFromQuery(c)

	items, err := s.store.List(c.Request.Context(), f)
	if err != nil {
		s.log.Error("list airdrops failed", "error", err)
		c.JSON(http.StatusInternalServerError, errorBody(CodeInternal, err.Error()))
		return
	}

	s.metrics.ObserveList(len(items))
	c.JSON(http.StatusOK, listResponse{Items: items})
}

func (s *Server) importBatch(c *gin.Context) {
	var payload model.ImportPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		s.metrics.ObserveImport(metrics.ResultInvalid, 0)
		c.JSON(http.StatusBadRequest, errorBody(CodeBadRequest, err.Error()))
		return
	}

	res, err := s.importer.Import(c.Request.Context(), payload.Items)
	if err != nil {
		var ve *importer.ValidationError
		switch {
		case errors.As(err, &ve):
			s.metrics.ObserveImport(metrics.ResultInvalid, 0)
			body := errorBody(CodeValidation, err.Error())
			body.Fields = ve.Fields
			c.JSON(http.StatusBadRequest, body)
		case store.IsConstraintError(err):
			s.metrics.ObserveImport(metrics.ResultConstraint, 0)
			c.JSON(http.StatusConflict, errorBody(CodeConstraint, err.Error()))
		default:
			s.metrics.ObserveImport(metrics.ResultError, 0)
			s.log.Error("import failed", "error", err)
			c.JSON(http.StatusInternalServerError, errorBody(CodeInternal, err.Error()))
		}
		return
	}

	s.metrics.ObserveImport(metrics.ResultApplied, res.Applied)
	c.JSON(http.StatusOK, importResponse{OK: true, Count: res.Applied, BatchID: res.BatchID})
}

func (s *Server) health(c *gin.Context) {
	counts, err := s.store.Counts(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, errorBody(CodeNotReady, err.Error()))
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "counts": counts})
}

// filterFromQuery builds a listing filter from query parameters.
// Bad values are dropped rather than rejected.
func filterFromQuery(c *gin.Context) query.Filter {
	f := query.Filter{
		Chain: c.Query("chain"),
		Q:     c.Query("q"),
		Sort:  query.SortRank,
	}
	if st, ok := model.ParseStatus(c.Query("status")); ok {
		f.Status = st
	}
	if so, ok := query.ParseSort(c.Query("sort")); ok {
		f.Sort = so
	}
	f.RiskMin = parseBound(c.Query("riskMin"), math.Ceil)
	f.RiskMax = parseBound(c.Query("riskMax"), math.Floor)
	return f
}

// parseBound parses a numeric bound. Risk scores are integers, so a
// fractional lower bound rounds up and a fractional upper bound rounds down.
func parseBound(raw string, round func(float64) float64) *int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	r := math.Max(math.MinInt32, math.Min(math.MaxInt32, round(v)))
	n := int(r)
	return &n
}
