// Package web serves the upload page and the server-rendered analysis page.
package web

import (
	"bytes"
	"context"
	"embed"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"rezum-backend/internal/analyses"
	"rezum-backend/internal/shared/server/middleware"
	"rezum-backend/internal/shared/telemetry"
)

//go:embed templates/*.html
var templateFS embed.FS

// Analyzer runs an analysis for a stored file.
type Analyzer interface {
	Analyze(ctx context.Context, fileID string) (analyses.Result, error)
}

// Handler renders the HTML pages.
type Handler struct {
	analyzer       Analyzer
	maxUploadBytes int64
	apiBase        string
	tmpl           *template.Template
	md             goldmark.Markdown
}

// NewHandler parses the embedded templates.
func NewHandler(analyzer Analyzer, maxUploadBytes int64) (*Handler, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	return &Handler{
		analyzer:       analyzer,
		maxUploadBytes: maxUploadBytes,
		apiBase:        "/api/v1",
		tmpl:           tmpl,
		md:             goldmark.New(goldmark.WithExtensions(extension.GFM)),
	}, nil
}

// RegisterRoutes attaches page routes to the root group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/", h.index)
	rg.GET("/ats/:fileId", h.result)
}

type indexPage struct {
	Title          string
	APIBase        string
	MaxUploadBytes int64
	MaxUploadMB    int64
}

type resultPage struct {
	Title        string
	Result       analyses.Result
	AnalysisHTML template.HTML
	HasScore     bool
	Score        int
	ScoreLabel   string
	ScoreClass   string
	Error        string
}

func (h *Handler) index(c *gin.Context) {
	h.render(c, http.StatusOK, "index", indexPage{
		Title:          "Upload",
		APIBase:        h.apiBase,
		MaxUploadBytes: h.maxUploadBytes,
		MaxUploadMB:    h.maxUploadBytes >> 20,
	})
}

func (h *Handler) result(c *gin.Context) {
	fileID := c.Param("fileId")
	c.Set("fileId", fileID)

	ctx := analyses.WithRequestID(c.Request.Context(), middleware.RequestIDFromContext(c))
	res, err := h.analyzer.Analyze(ctx, fileID)
	if err != nil {
		status, _, msg, _ := analyses.ErrorResponse(err)
		h.render(c, status, "result", resultPage{Title: "Analysis", Error: msg})
		return
	}

	page := resultPage{
		Title:        "Analysis",
		Result:       res,
		AnalysisHTML: h.markdown(res.Analysis),
	}
	if res.ATSScore != nil {
		page.HasScore = true
		page.Score = *res.ATSScore
		page.ScoreLabel, page.ScoreClass = ScoreBand(*res.ATSScore)
	}
	h.render(c, http.StatusOK, "result", page)
}

// ScoreBand returns the display label and CSS class for an ATS score.
func ScoreBand(score int) (string, string) {
	switch {
	case score >= 80:
		return "Excellent", "score-excellent"
	case score >= 60:
		return "Good", "score-good"
	default:
		return "Needs Improvement", "score-poor"
	}
}

func (h *Handler) markdown(src string) template.HTML {
	var buf bytes.Buffer
	if err := h.md.Convert([]byte(src), &buf); err != nil {
		telemetry.Warn("web.markdown.failed", map[string]any{"err": err})
		return template.HTML("<pre>" + template.HTMLEscapeString(src) + "</pre>")
	}
	// goldmark escapes raw HTML unless WithUnsafe is set.
	return template.HTML(buf.String())
}

func (h *Handler) render(c *gin.Context, status int, name string, data any) {
	var buf bytes.Buffer
	if err := h.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		telemetry.Error("web.render.failed", map[string]any{"template": name, "err": err})
		c.String(http.StatusInternalServerError, "internal error")
		return
	}
	c.Data(status, "text/html; charset=utf-8", buf.Bytes())
}
