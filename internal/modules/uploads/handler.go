package uploads

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"eventadmin/internal/domain/media"
	"eventadmin/internal/pkg/notice"
	"eventadmin/internal/pkg/response"
)

// Handler exposes upload batches so a client can select, review and upload
// files before it submits an event form.
type Handler struct {
	registry *media.Registry
	log      logrus.FieldLogger
}

func NewHandler(registry *media.Registry, log logrus.FieldLogger) *Handler {
	return &Handler{registry: registry, log: log}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	batches := r.Group("/uploads/batches")
	{
		batches.POST("", h.Open)
		batches.GET("/:id", h.Get)
		batches.POST("/:id/files", h.SelectFiles)
		batches.DELETE("/:id/files/:index", h.RemoveFile)
		batches.POST("/:id/upload", h.Upload)
		batches.DELETE("/:id", h.Discard)
	}
}

type OpenBatchRequest struct {
	Mode media.Mode `json:"mode" binding:"required"`
}

type BatchResponse struct {
	ID          string           `json:"id"`
	Mode        media.Mode       `json:"mode"`
	MaxFiles    int              `json:"max_files"`
	MaxFileSize int64            `json:"max_file_size"`
	Pending     []media.FileInfo `json:"pending"`
	Uploaded    []string         `json:"uploaded"`
	Notices     []notice.Notice  `json:"notices,omitempty"`
}

func batchResponse(b *media.Batch, notices []notice.Notice) BatchResponse {
	p := b.Policy()
	return BatchResponse{
		ID:          b.ID(),
		Mode:        p.Mode,
		MaxFiles:    p.MaxFiles,
		MaxFileSize: p.MaxFileSize,
		Pending:     b.Pending(),
		Uploaded:    b.Uploaded(),
		Notices:     notices,
	}
}

func (h *Handler) Open(c *gin.Context) {
	var req OpenBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}

	b, err := h.registry.Open(req.Mode)
	if err != nil {
		h.fail(c, err, nil)
		return
	}
	response.Success(c, http.StatusCreated, batchResponse(b, nil))
}

func (h *Handler) Get(c *gin.Context) {
	b, ok := h.batch(c)
	if !ok {
		return
	}
	response.Success(c, http.StatusOK, batchResponse(b, nil))
}

func (h *Handler) SelectFiles(c *gin.Context) {
	b, ok := h.batch(c)
	if !ok {
		return
	}

	form, err := c.MultipartForm()
	if err != nil || len(form.File["files"]) == 0 {
		response.Error(c, http.StatusBadRequest, "INVALID_REQUEST", "no files provided")
		return
	}

	limit := b.Policy().MaxFileSize
	files := make([]media.File, 0, len(form.File["files"]))
	for _, fh := range form.File["files"] {
		f, err := media.FromMultipart(fh, limit)
		if err != nil {
			h.log.WithError(err).WithField("file", fh.Filename).Warn("reading selected file failed")
			response.Error(c, http.StatusBadRequest, "INVALID_FILE", "Could not read "+fh.Filename)
			return
		}
		files = append(files, f)
	}

	notices, err := b.SelectFiles(files)
	if err != nil {
		h.fail(c, err, notices)
		return
	}
	response.Success(c, http.StatusOK, batchResponse(b, notices))
}

func (h *Handler) RemoveFile(c *gin.Context) {
	b, ok := h.batch(c)
	if !ok {
		return
	}

	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_INDEX", "Invalid file index")
		return
	}
	if err := b.RemoveFile(index); err != nil {
		h.fail(c, err, nil)
		return
	}
	response.Success(c, http.StatusOK, batchResponse(b, nil))
}

// Upload sends the pending files. It only fails when not a single file made it.
func (h *Handler) Upload(c *gin.Context) {
	b, ok := h.batch(c)
	if !ok {
		return
	}

	res, err := b.Upload(c.Request.Context())
	if err != nil {
		h.fail(c, err, res.Notices)
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"batch":  batchResponse(b, nil),
		"result": res,
	})
}

func (h *Handler) Discard(c *gin.Context) {
	if !h.registry.Discard(c.Param("id")) {
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Upload batch not found")
		return
	}
	response.NoContent(c)
}

func (h *Handler) batch(c *gin.Context) (*media.Batch, bool) {
	b, err := h.registry.Get(c.Param("id"))
	if err != nil {
		h.fail(c, err, nil)
		return nil, false
	}
	return b, true
}

func (h *Handler) fail(c *gin.Context, err error, notices []notice.Notice) {
	var violation *media.PolicyViolation
	switch {
	case errors.As(err, &violation):
		notices = append(notices, notice.Error("Error", violation.Reason))
		response.ErrorWithNotices(c, http.StatusUnprocessableEntity, "POLICY_VIOLATION", violation.Reason, "", notices)
	case errors.Is(err, media.ErrBatchNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Upload batch not found")
	case errors.Is(err, media.ErrNothingUploaded):
		response.ErrorWithNotices(c, http.StatusBadGateway, "UPLOAD_FAILED", err.Error(), "", notices)
	default:
		h.log.WithError(err).Error("unexpected upload handler error")
		response.Error(c, http.StatusInternalServerError, "INTERNAL", "Internal error")
	}
}
