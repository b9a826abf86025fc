package server

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	gojson "github.com/goccy/go-json"
	"github.com/hupe1980/quarry"
	"github.com/hupe1980/quarry/resource"
)

// QueryRequest is the body of POST /v1/query.
type QueryRequest struct {
	Query      string `json:"query" binding:"required"`
	Mode       string `json:"mode"`
	Offset     int    `json:"offset"`
	MaxResults int    `json:"maxResults"`
}

// QueryResponse is the list-mode answer of POST /v1/query.
type QueryResponse struct {
	Fields []string       `json:"fields"`
	Tuples []quarry.Tuple `json:"tuples"`
}

// FieldInfo describes one registered field.
type FieldInfo struct {
	Name   string `json:"name"`
	Type   string `json:"type"`
	Stored bool   `json:"stored"`
}

// TypeInfo describes one registered entity type.
type TypeInfo struct {
	Name     string      `json:"name"`
	Entities int         `json:"entities"`
	Fields   []FieldInfo `json:"fields"`
}

func statusOf(err error) int {
	switch {
	case quarry.IsCompileError(err):
		return http.StatusBadRequest
	case errors.Is(err, quarry.ErrClosed):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) handleQuery(c *gin.Context) {
	var req QueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Mode == "" {
		req.Mode = quarry.ModeList
	}
	if req.Mode != quarry.ModeList && req.Mode != quarry.ModeStream {
		c.JSON(http.StatusBadRequest, gin.H{"error": "mode must be list or stream"})
		return
	}

	q, err := s.db.Query(req.Query)
	if err != nil {
		c.JSON(statusOf(err), gin.H{"error": err.Error()})
		return
	}

	opts := []quarry.RunOption{quarry.WithOffset(req.Offset), quarry.WithMaxResults(req.MaxResults)}
	if req.Mode == quarry.ModeStream {
		s.stream(c, q, opts)
		return
	}

	tuples, err := q.List(c.Request.Context(), opts...)
	if err != nil {
		c.JSON(statusOf(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, QueryResponse{Fields: q.Fields(), Tuples: tuples})
}

// stream writes one JSON line per tuple. The request context ends the stream,
// and with it the cursor, when the client goes away.
func (s *Server) stream(c *gin.Context, q *quarry.Query, opts []quarry.RunOption) {
	ctx := c.Request.Context()
	var w io.Writer = c.Writer
	if rc := s.db.Resources(); rc != nil {
		w = resource.NewRateLimitedWriter(ctx, c.Writer, rc)
	}
	enc := gojson.NewEncoder(w)
	started := false

	for t, err := range q.Stream(ctx, opts...) {
		if err != nil {
			if !started {
				c.JSON(statusOf(err), gin.H{"error": err.Error()})
				return
			}
			if ctx.Err() == nil {
				_ = enc.Encode(gin.H{"error": err.Error()})
			}
			return
		}
		if !started {
			c.Header("Content-Type", "application/x-ndjson")
			c.Status(http.StatusOK)
			started = true
		}
		if err := enc.Encode(t); err != nil {
			s.logger.WarnContext(ctx, "stream write failed", "error", err)
			return
		}
		c.Writer.Flush()
	}

	if !started {
		c.Header("Content-Type", "application/x-ndjson")
		c.Status(http.StatusOK)
		c.Writer.WriteHeaderNow()
	}
}

func (s *Server) handleTypes(c *gin.Context) {
	cat := s.db.Catalog()

	types := []TypeInfo{}
	for _, name := range cat.Types() {
		fields, err := cat.Fields(name)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		info := TypeInfo{Name: name, Entities: s.db.Len(name), Fields: make([]FieldInfo, len(fields))}
		for i, f := range fields {
			info.Fields[i] = FieldInfo{Name: f.Name, Type: f.Type.String(), Stored: f.Stored}
		}
		types = append(types, info)
	}
	c.JSON(http.StatusOK, gin.H{"types": types})
}
