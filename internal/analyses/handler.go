package analyses

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"rezum-backend/internal/shared/server/middleware"
	"rezum-backend/internal/shared/server/respond"
	"rezum-backend/internal/uploads"
)

const (
	msgNotFound       = "File not found"
	msgAnalysisFailed = "File not found, not a PDF, or analysis failed"
	// MsgEmptyText is shown when a PDF has no text layer.
	MsgEmptyText = "No text could be extracted from this PDF. It may contain only images."
)

// Handler wires HTTP handlers to the analyses service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches analysis routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/upload/analyze/:fileId", h.analyze)
}

func (h *Handler) analyze(c *gin.Context) {
	fileID := c.Param("fileId")
	c.Set("fileId", fileID)

	ctx := WithRequestID(c.Request.Context(), middleware.RequestIDFromContext(c))
	result, err := h.Svc.Analyze(ctx, fileID)
	if err != nil {
		status, code, msg, details := ErrorResponse(err)
		respond.Error(c, status, code, msg, details)
		return
	}

	respond.OK(c, result)
}

// ErrorResponse maps an Analyze error to its HTTP status, error code,
// message and details. Every analysis failure answers 404; the code names
// the cause.
func ErrorResponse(err error) (int, string, string, any) {
	switch {
	case errors.Is(err, uploads.ErrNotFound):
		return http.StatusNotFound, "not_found", msgNotFound, nil
	case errors.Is(err, uploads.ErrNotPDF):
		return http.StatusNotFound, "not_pdf", msgAnalysisFailed, nil
	case errors.Is(err, uploads.ErrExtractionFailed):
		return http.StatusNotFound, "extraction_failed", msgAnalysisFailed, nil
	case errors.Is(err, ErrEmptyText):
		return http.StatusNotFound, "empty_text", MsgEmptyText, nil
	case errors.Is(err, ErrUpstream):
		return http.StatusNotFound, "analysis_failed", msgAnalysisFailed, gin.H{"reason": FailureReason(err)}
	default:
		return http.StatusInternalServerError, "internal", "Unexpected analysis error", nil
	}
}
