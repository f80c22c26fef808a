package ui

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"findash/app"
	"findash/domain/table"
	"findash/internal/errors"
	"findash/models"

	"github.com/gin-gonic/gin"
)

// chatRequest is the body of POST /chat
type chatRequest struct {
	Option  string          `json:"option"`
	Data    json.RawMessage `json:"data"`
	Address *string         `json:"address,omitempty"`
	Render  string          `json:"render,omitempty"` // "html" adds reply_html
}

// chatResponse is the body returned by POST /chat
type chatResponse struct {
	Reply     string  `json:"reply"`
	ReplyHTML string  `json:"reply_html,omitempty"`
	Address   *string `json:"address"`
}

// columnResponse is one normalized column with plain JSON scalars
type columnResponse struct {
	Name   string           `json:"name"`
	Type   table.ColumnType `json:"type"`
	Values []any            `json:"values"`
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleOptions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"options": s.chat.Options()})
}

// handleChat normalizes the posted range and asks the backend about it
func (s *Server) handleChat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, errors.InvalidInput("invalid JSON body"))
		return
	}
	if !s.chat.HasOption(req.Option) {
		s.respondError(c, errors.InvalidInput("invalid option key"))
		return
	}
	raw, err := decodeGrid(req.Data)
	if err != nil {
		s.respondError(c, err)
		return
	}

	result, err := s.runChat(c, app.ChatRequest{
		RequestID: requestIDFrom(c),
		Source:    models.SourceChat,
		Option:    req.Option,
		Data:      raw,
		Address:   req.Address,
	})
	if err != nil {
		s.respondError(c, err)
		return
	}

	resp := chatResponse{Reply: result.Reply, Address: req.Address}
	if strings.EqualFold(req.Render, "html") {
		resp.ReplyHTML = renderMarkdown(result.Reply)
	}
	c.JSON(http.StatusOK, resp)
}

// handleAnalyze takes an uploaded workbook and an analysis_type
func (s *Server) handleAnalyze(c *gin.Context) {
	option := c.PostForm("analysis_type")
	if option == "" {
		option = c.Query("analysis_type")
	}
	if !s.chat.HasOption(option) {
		s.respondError(c, errors.InvalidInput("invalid option key"))
		return
	}

	raw, err := s.readUpload(c)
	if err != nil {
		s.respondError(c, err)
		return
	}

	result, err := s.runChat(c, app.ChatRequest{
		RequestID: requestIDFrom(c),
		Source:    models.SourceAnalyze,
		Option:    option,
		Data:      raw,
	})
	if err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"summary": result.Reply})
}

// handleNormalize returns the normalized table without calling the backend.
// It accepts a JSON {data} body or a multipart file.
func (s *Server) handleNormalize(c *gin.Context) {
	var raw table.RawTable
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		var err error
		if raw, err = s.readUpload(c); err != nil {
			s.respondError(c, err)
			return
		}
	} else {
		var req struct {
			Data json.RawMessage `json:"data"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			s.respondError(c, errors.InvalidInput("invalid JSON body"))
			return
		}
		var err error
		if raw, err = decodeGrid(req.Data); err != nil {
			s.respondError(c, err)
			return
		}
	}

	normalized := s.chat.Normalize(raw)
	body := gin.H{
		"rows":    normalized.NumRows(),
		"columns": columnsResponse(normalized),
	}
	if wantProfile, _ := strconv.ParseBool(c.Query("profile")); wantProfile {
		profile, err := s.chat.Profile(normalized)
		if err != nil {
			s.respondError(c, err)
			return
		}
		body["profile"] = profile
	}
	c.JSON(http.StatusOK, body)
}

func (s *Server) handleRecentChats(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	chats, err := s.chat.RecentChats(c.Request.Context(), limit)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"chats": chats})
}

// handleUsage aggregates chats per option; days defaults to 30
func (s *Server) handleUsage(c *gin.Context) {
	days, err := strconv.Atoi(c.DefaultQuery("days", "30"))
	if err != nil || days < 1 {
		s.respondError(c, errors.InvalidInput("days must be a positive integer"))
		return
	}
	end := time.Now().UTC()
	start := end.AddDate(0, 0, -days)

	usage, err := s.chat.Usage(c.Request.Context(), start, end)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"start": start, "end": end, "usage": usage})
}

// handleStatic serves the task pane; directories resolve to index.html
func (s *Server) handleStatic(c *gin.Context) {
	if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.FileFromFS(c.Request.URL.Path, http.Dir(s.config.StaticDir))
}

// runChat waits for a backend slot and runs the exchange
func (s *Server) runChat(c *gin.Context, req app.ChatRequest) (*app.ChatResult, error) {
	ctx := c.Request.Context()
	waitCtx, cancel := context.WithTimeout(ctx, s.queueWait)
	defer cancel()
	if err := s.backend.Acquire(waitCtx, 1); err != nil {
		return nil, errors.Unavailable("too many analyses in progress, try again shortly")
	}
	defer s.backend.Release(1)

	return s.chat.Chat(ctx, req)
}

// readUpload decodes the multipart "file" field into a raw table
func (s *Server) readUpload(c *gin.Context) (table.RawTable, error) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		s.logger.Debug("upload rejected: %v", err)
		return table.RawTable{}, errors.InvalidInput("no file uploaded")
	}
	defer file.Close()

	s.logger.Info("reading upload %s (%d bytes)", header.Filename, header.Size)
	return s.reader.Read(c.Request.Context(), header.Filename, file)
}

// decodeGrid parses the JSON data field, which must be an array of arrays
func decodeGrid(data json.RawMessage) (table.RawTable, error) {
	invalid := errors.InvalidInput("data must be a 2-D array")

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return table.RawTable{}, invalid
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()
	var rows [][]any
	if err := dec.Decode(&rows); err != nil {
		return table.RawTable{}, invalid
	}
	for _, row := range rows {
		if row == nil {
			return table.RawTable{}, invalid
		}
	}
	return table.RawTable{Rows: rows}, nil
}

func columnsResponse(t *table.NormalizedTable) []columnResponse {
	out := make([]columnResponse, len(t.Columns))
	for j, col := range t.Columns {
		values := make([]any, len(col.Values))
		for i, v := range col.Values {
			switch {
			case v.Missing:
				values[i] = nil
			case v.Type == table.ColumnTemporal:
				values[i] = v.String()
			default:
				values[i] = v.Interface()
			}
		}
		out[j] = columnResponse{Name: col.Name, Type: col.Type, Values: values}
	}
	return out
}

// respondError maps an error to its HTTP status. Backend failures use the
// {error, detail} shape the task pane expects.
func (s *Server) respondError(c *gin.Context, err error) {
	status := errors.HTTPStatus(err)
	appErr, ok := errors.As(err)

	switch {
	case status == http.StatusBadGateway:
		detail := err.Error()
		if ok && appErr.Detail != "" {
			detail = appErr.Detail
		}
		c.JSON(status, gin.H{"error": "upstream error", "detail": detail})
	case ok && (status < http.StatusInternalServerError || status == http.StatusServiceUnavailable):
		c.JSON(status, gin.H{"error": appErr.Message})
	default:
		s.logger.Error("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		c.JSON(status, gin.H{"error": "internal error"})
	}
}
