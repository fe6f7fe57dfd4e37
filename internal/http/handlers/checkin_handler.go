package handlers

import (
	"bytes"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"github.com/tbourn/go-checkin-backend/internal/checkin"
	"github.com/tbourn/go-checkin-backend/internal/http/middleware"
)

// PostUpload godoc
// @ID          postUpload
// @Summary     Submit a check-in
// @Description Classifies the scanned code against the 08:20 cutoff, stores the record and returns the verdict.
// @Description Unknown codes are stored too and answered with status "error".
// @Tags        Check-in
// @Accept      json
// @Produce     json
//
// @Param       X-Device-ID  header  string  false  "Scanner identity (rate limiting)"  example(scanner-1)
// @Param       body         body    handlers.UploadRequest  true  "Check-in payload"
//
// @Success     200  {object}  handlers.UploadResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Not a JSON object, unparseable body or malformed time"
// @Failure     413  {object}  handlers.ErrorResponse  "Body too large"
// @Failure     429  {object}  handlers.ErrorResponse  "Rate limited"
// @Failure     500  {object}  handlers.ErrorResponse  "Check-in could not be stored"
// @Router      /upload [post]
func (h *Handlers) PostUpload(c *gin.Context) {
	if c.ContentType() != gin.MIMEJSON {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "expected JSON")
		return
	}
	raw, err := c.GetRawData()
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			fail(c, http.StatusRequestEntityTooLarge, ErrCodePayloadTooLarge, "request body too large")
			return
		}
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "unreadable request body")
		return
	}
	// null, arrays and scalars would bind to an empty request
	if body := bytes.TrimSpace(raw); len(body) == 0 || body[0] != '{' {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "request body must be a JSON object")
		return
	}
	var req UploadRequest
	if err := binding.JSON.BindBody(raw, &req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	if _, _, err := checkin.ParseClientTimestamp(req.Time); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "time must be an ISO-8601 timestamp")
		return
	}

	res, err := h.svc.Submit(c.Request.Context(), checkin.Submission{
		Code:            req.ID,
		DeclaredLabel:   req.Type,
		Device:          req.Device,
		ClientTimestamp: req.Time,
	})
	if err != nil {
		_ = c.Error(err)
		fail(c, http.StatusInternalServerError, ErrCodePersistFailed, "check-in could not be stored")
		return
	}
	ok(c, http.StatusOK, uploadResponse(res))
}

// GetUpload godoc
// @ID          getUpload
// @Summary     Check in from a browser or QR link
// @Description Same classification and storage as POST, for a bare code in the query string.
// @Description Returns a small HTML page localized by Accept-Language (ru, en); format=json returns the JSON verdict instead.
// @Tags        Check-in
// @Produce     html
// @Produce     json
//
// @Param       id               query   string  false  "Scanned code"  example(ABC123)
// @Param       format           query   string  false  "Response format"  Enums(html, json)
// @Param       Accept-Language  header  string  false  "Page language"  example(ru)
//
// @Success     200  {string}  string  "HTML verdict page, or handlers.UploadResponse when format=json"
// @Failure     429  {object}  handlers.ErrorResponse  "Rate limited"
// @Failure     500  {object}  handlers.ErrorResponse  "Check-in could not be stored"
// @Router      /upload [get]
func (h *Handlers) GetUpload(c *gin.Context) {
	res, err := h.svc.Submit(c.Request.Context(), checkin.Submission{Code: c.Query("id")})
	if err != nil {
		_ = c.Error(err)
		fail(c, http.StatusInternalServerError, ErrCodePersistFailed, "check-in could not be stored")
		return
	}
	if c.Query("format") == "json" {
		ok(c, http.StatusOK, uploadResponse(res))
		return
	}

	page, err := renderVerdictPage(c.GetHeader("Accept-Language"), res.Record.Code, res.Verdict)
	if err != nil {
		_ = c.Error(err)
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not render page")
		return
	}
	middleware.SetHTMLPolicy(c)
	c.Data(http.StatusOK, "text/html; charset=utf-8", page)
}
