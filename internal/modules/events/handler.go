package events

import (
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"eventadmin/internal/cache"
	"eventadmin/internal/domain/event"
	"eventadmin/internal/domain/media"
	"eventadmin/internal/pkg/notice"
	"eventadmin/internal/pkg/response"
)

const listingVariant = "all"

type Handler struct {
	svc     *Service
	listing cache.Listing
	log     logrus.FieldLogger
}

func NewHandler(svc *Service, listing cache.Listing, log logrus.FieldLogger) *Handler {
	if listing == nil {
		listing = cache.Nop{}
	}
	return &Handler{svc: svc, listing: listing, log: log}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	events := r.Group("/events")
	{
		events.GET("", h.List)
		events.GET("/new", h.NewForm)
		events.GET("/:id", h.Get)
		events.GET("/:id/form", h.EditForm)
		events.POST("", h.Create)
		events.PUT("/:id", h.Update)
		events.PATCH("/:id", h.Patch)
		events.DELETE("/:id", h.Delete)
	}
}

// List returns every event. The encoded listing is cached until the next write.
// The cache generation is read before the store so that a write landing in
// between leaves the filled entry unreachable.
func (h *Handler) List(c *gin.Context) {
	ctx := c.Request.Context()

	gen, err := h.listing.Generation(ctx)
	cacheable := err == nil
	if err != nil {
		h.log.WithError(err).Warn("listing cache generation read failed")
	}
	if cacheable {
		payload, ok, err := h.listing.Get(ctx, listingVariant, gen)
		if err != nil {
			h.log.WithError(err).Warn("listing cache read failed")
		}
		if ok {
			c.Header("X-Cache", "HIT")
			c.Data(http.StatusOK, "application/json; charset=utf-8", payload)
			return
		}
	}

	items, err := h.svc.List(ctx)
	if err != nil {
		h.storeFailure(c, "Failed to load events.")
		return
	}
	if items == nil {
		items = []event.Event{}
	}

	payload, err := json.Marshal(gin.H{"success": true, "data": items})
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL", "Internal error")
		return
	}
	if cacheable {
		if err := h.listing.Set(ctx, listingVariant, gen, payload); err != nil {
			h.log.WithError(err).Warn("listing cache write failed")
		}
	}

	c.Header("X-Cache", "MISS")
	c.Data(http.StatusOK, "application/json; charset=utf-8", payload)
}

func (h *Handler) Get(c *gin.Context) {
	e, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.storeFailure(c, "Failed to load event.")
		return
	}
	if e == nil {
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Event not found")
		return
	}
	response.Success(c, http.StatusOK, e)
}

func (h *Handler) NewForm(c *gin.Context) {
	editor, err := h.svc.NewForm(c.Request.Context())
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL", "Internal error")
		return
	}
	response.Success(c, http.StatusOK, FormResponse{Mode: "create", Values: editor.Values()})
}

func (h *Handler) EditForm(c *gin.Context) {
	id := c.Param("id")
	editor, err := h.svc.EditForm(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err, "Failed to load event.")
		return
	}
	response.Success(c, http.StatusOK, FormResponse{Mode: "edit", ID: id, Values: editor.Values()})
}

func (h *Handler) Create(c *gin.Context) {
	values, uploads, ok := h.bindSubmission(c)
	if !ok {
		return
	}

	sub, err := h.svc.Create(c.Request.Context(), values, uploads)
	if err != nil {
		h.fail(c, err, "Failed to create event. Please try again.")
		return
	}
	response.Success(c, http.StatusCreated, sub)
}

func (h *Handler) Update(c *gin.Context) {
	values, uploads, ok := h.bindSubmission(c)
	if !ok {
		return
	}

	sub, err := h.svc.Update(c.Request.Context(), c.Param("id"), values, uploads)
	if err != nil {
		h.fail(c, err, "Failed to update event. Please try again.")
		return
	}
	response.Success(c, http.StatusOK, sub)
}

func (h *Handler) Patch(c *gin.Context) {
	p, err := event.DecodePatch(c.Request.Body)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_PATCH", err.Error())
		return
	}

	updated, err := h.svc.Patch(c.Request.Context(), c.Param("id"), p)
	if err != nil {
		h.fail(c, err, "Failed to update event. Please try again.")
		return
	}
	response.Success(c, http.StatusOK, updated)
}

// Delete needs ?confirm=true; the dashboard asks the operator before sending it.
func (h *Handler) Delete(c *gin.Context) {
	if c.Query("confirm") != "true" {
		response.Error(c, http.StatusPreconditionRequired, "CONFIRMATION_REQUIRED",
			"Are you sure you want to delete this event? Repeat the request with confirm=true.")
		return
	}

	id := c.Param("id")
	outcome, err := h.svc.Delete(c.Request.Context(), id)
	if err != nil {
		h.storeFailure(c, "Failed to delete event. Please try again.")
		return
	}
	response.Success(c, http.StatusOK, DeleteResponse{ID: id, Deleted: outcome == Deleted, Outcome: outcome})
}

// bindSubmission accepts either a JSON body or a multipart form with a JSON
// "payload" field plus optional "banner" and "images" files.
func (h *Handler) bindSubmission(c *gin.Context) (FormValues, Uploads, bool) {
	var values FormValues

	if !strings.HasPrefix(c.ContentType(), "multipart/") {
		if err := c.ShouldBindJSON(&values); err != nil {
			response.Error(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
			return values, Uploads{}, false
		}
		return values, Uploads{}, true
	}

	form, err := c.MultipartForm()
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid multipart form")
		return values, Uploads{}, false
	}
	if raw := form.Value["payload"]; len(raw) > 0 {
		if err := json.Unmarshal([]byte(raw[0]), &values); err != nil {
			response.Error(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid payload field")
			return values, Uploads{}, false
		}
	}

	var uploads Uploads
	if uploads.Banner, err = readFiles(form.File["banner"], media.SingleMaxFileSize); err == nil {
		uploads.Images, err = readFiles(form.File["images"], media.MultiMaxFileSize)
	}
	if err != nil {
		h.log.WithError(err).Warn("reading submitted files failed")
		response.Error(c, http.StatusBadRequest, "INVALID_FILE", "Could not read uploaded file")
		return values, Uploads{}, false
	}
	return values, uploads, true
}

func readFiles(headers []*multipart.FileHeader, limit int64) ([]media.File, error) {
	files := make([]media.File, 0, len(headers))
	for _, fh := range headers {
		f, err := media.FromMultipart(fh, limit)
		if err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	return files, nil
}

func (h *Handler) fail(c *gin.Context, err error, storeMessage string) {
	var (
		fieldErr  *FieldError
		patchErr  *PatchError
		uploadErr *UploadError
		storeErr  *event.StoreError
	)
	switch {
	case errors.As(err, &fieldErr):
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", fieldErr.Message, fieldErr)
	case errors.As(err, &patchErr):
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid patch", patchErr.Fields)
	case errors.As(err, &uploadErr):
		var violation *media.PolicyViolation
		if errors.As(err, &violation) {
			response.ErrorWithNotices(c, http.StatusUnprocessableEntity, "POLICY_VIOLATION", violation.Reason,
				uploadErr.Field, uploadErr.Notices)
			return
		}
		response.ErrorWithNotices(c, http.StatusBadGateway, "UPLOAD_FAILED", uploadErr.Error(),
			uploadErr.Field, uploadErr.Notices)
	case errors.Is(err, ErrNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Event not found")
	case errors.Is(err, ErrFormClosed), errors.Is(err, ErrSubmitting):
		response.Error(c, http.StatusConflict, "CONFLICT", err.Error())
	case errors.As(err, &storeErr):
		h.storeFailure(c, storeMessage)
	default:
		h.log.WithError(err).Error("unexpected event handler error")
		response.Error(c, http.StatusInternalServerError, "INTERNAL", "Internal error")
	}
}

func (h *Handler) storeFailure(c *gin.Context, message string) {
	response.ErrorWithNotices(c, http.StatusInternalServerError, "STORE_ERROR", message, "",
		[]notice.Notice{notice.Error("Error", message)})
}
