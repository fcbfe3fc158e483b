package uploads

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"rezum-backend/internal/shared/server/respond"
)

// multipartOverhead is the request body slack above MaxBytes that still lets
// an oversize file be reported by size rather than as a broken body.
const multipartOverhead = 1 << 20

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches upload routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/upload", h.upload)
	rg.GET("/upload", h.list)
	rg.GET("/upload/text/:fileId", h.text)
	rg.GET("/upload/:fileId", h.download)
	rg.DELETE("/upload/:fileId", h.delete)
}

type uploadResponse struct {
	Message  string `json:"message"`
	FileID   string `json:"fileId"`
	Filename string `json:"filename"`
	Size     int64  `json:"size"`
	Mimetype string `json:"mimetype"`
}

type fileSummaryResponse struct {
	FileID     string    `json:"fileId"`
	Size       int64     `json:"size"`
	Filename   string    `json:"filename"`
	Mimetype   string    `json:"mimetype"`
	UploadedAt time.Time `json:"uploadedAt"`
}

func (h *Handler) upload(c *gin.Context) {
	limit := h.Svc.MaxBytes
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit+multipartOverhead)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) || c.Request.ContentLength >= limit+multipartOverhead {
			h.tooLarge(c)
			return
		}
		respond.Error(c, http.StatusBadRequest, "validation_error", "No file uploaded", nil)
		return
	}
	if fileHeader.Size >= limit {
		h.tooLarge(c)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "Unable to read uploaded file", nil)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, limit))
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "Unable to read uploaded file", nil)
		return
	}

	f, err := h.Svc.Upload(c.Request.Context(), fileHeader.Filename, fileHeader.Header.Get("Content-Type"), data)
	if err != nil {
		switch {
		case errors.Is(err, ErrFileTooLarge):
			h.tooLarge(c)
		case errors.Is(err, ErrFileRequired):
			respond.Error(c, http.StatusBadRequest, "validation_error", "No file uploaded", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal", "Failed to store file", nil)
		}
		return
	}
	c.Set("fileId", f.ID)

	respond.OK(c, uploadResponse{
		Message:  "File uploaded successfully",
		FileID:   f.ID,
		Filename: f.Name,
		Size:     f.Size(),
		Mimetype: f.MimeType,
	})
}

func (h *Handler) tooLarge(c *gin.Context) {
	msg := fmt.Sprintf("File too large. Maximum size is %dMB.", h.Svc.MaxBytes>>20)
	respond.Error(c, http.StatusBadRequest, "file_too_large", msg, gin.H{"maxBytes": h.Svc.MaxBytes})
}

func (h *Handler) list(c *gin.Context) {
	files, err := h.Svc.List(c.Request.Context())
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal", "Failed to list files", nil)
		return
	}

	resp := make([]fileSummaryResponse, 0, len(files))
	for _, f := range files {
		resp = append(resp, fileSummaryResponse{
			FileID:     f.ID,
			Size:       f.Size,
			Filename:   f.Name,
			Mimetype:   f.MimeType,
			UploadedAt: f.CreatedAt,
		})
	}
	respond.OK(c, gin.H{"files": resp})
}

func (h *Handler) download(c *gin.Context) {
	id := c.Param("fileId")
	c.Set("fileId", id)

	f, err := h.Svc.Get(c.Request.Context(), id)
	if err != nil {
		h.fileError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", f.ID))
	c.Header("Content-Length", strconv.FormatInt(f.Size(), 10))
	c.Data(http.StatusOK, "application/octet-stream", f.Data)
}

func (h *Handler) text(c *gin.Context) {
	id := c.Param("fileId")
	c.Set("fileId", id)

	text, err := h.Svc.ExtractText(c.Request.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotPDF):
			respond.Error(c, http.StatusNotFound, "not_pdf", "File not found or not a PDF", nil)
		case errors.Is(err, ErrExtractionFailed):
			respond.Error(c, http.StatusNotFound, "extraction_failed", "File not found or not a PDF", nil)
		default:
			h.fileError(c, err)
		}
		return
	}

	respond.OK(c, gin.H{"text": text})
}

func (h *Handler) delete(c *gin.Context) {
	id := c.Param("fileId")
	c.Set("fileId", id)

	if err := h.Svc.Delete(c.Request.Context(), id); err != nil {
		h.fileError(c, err)
		return
	}
	respond.Message(c, "File deleted successfully")
}

func (h *Handler) fileError(c *gin.Context, err error) {
	if errors.Is(err, ErrNotFound) {
		respond.Error(c, http.StatusNotFound, "not_found", "File not found", nil)
		return
	}
	respond.Error(c, http.StatusInternalServerError, "internal", "Unexpected storage error", nil)
}
