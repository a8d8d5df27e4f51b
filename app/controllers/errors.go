package controllers

import (
	"context"
	"errors"
	"net/http"

	"github.com/cn-address-resolver/app/responses"
	"github.com/cn-address-resolver/app/services"
	"github.com/cn-address-resolver/internal/gazetteer"
	"github.com/cn-address-resolver/internal/normalizer"
	"github.com/cn-address-resolver/internal/search"
	"github.com/cn-address-resolver/internal/table"
	"github.com/gin-gonic/gin"
)

type errorMapping struct {
	target error
	status int
	code   string
}

var errorMappings = []errorMapping{
	{table.ErrColumnNotFound, http.StatusBadRequest, "COLUMN_NOT_FOUND"},
	{table.ErrUnsupportedInputType, http.StatusBadRequest, "UNSUPPORTED_INPUT"},
	{table.ErrColumnConflict, http.StatusBadRequest, "COLUMN_CONFLICT"},
	{table.ErrLengthMismatch, http.StatusBadRequest, "INVALID_TABLE"},
	{normalizer.ErrInvalidCodeFormat, http.StatusBadRequest, "INVALID_CODE"},
	{services.ErrTooManyAddresses, http.StatusBadRequest, "TOO_MANY_ADDRESSES"},
	{services.ErrUnsupportedFormat, http.StatusBadRequest, "UNSUPPORTED_FORMAT"},
	{services.ErrInvalidFilter, http.StatusBadRequest, "INVALID_FILTER"},
	{search.ErrEmptyQuery, http.StatusBadRequest, "EMPTY_QUERY"},
	{gazetteer.ErrNotFound, http.StatusNotFound, "REGION_NOT_FOUND"},
	{services.ErrJobNotFound, http.StatusNotFound, "JOB_NOT_FOUND"},
	{services.ErrJobNotFinished, http.StatusConflict, "JOB_NOT_FINISHED"},
	{services.ErrMongoDisabled, http.StatusServiceUnavailable, "BACKEND_DISABLED"},
	{services.ErrSearchDisabled, http.StatusServiceUnavailable, "BACKEND_DISABLED"},
	{context.Canceled, http.StatusServiceUnavailable, "REQUEST_CANCELED"},
	{context.DeadlineExceeded, http.StatusServiceUnavailable, "REQUEST_TIMEOUT"},
}

// classifyError map lỗi domain sang HTTP status và mã lỗi
func classifyError(err error) (int, string) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE"
	}
	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			return m.status, m.code
		}
	}
	return http.StatusInternalServerError, "INTERNAL_ERROR"
}

func respondError(c *gin.Context, err error) {
	status, code := classifyError(err)
	c.JSON(status, responses.NewErrorResponse(code, err.Error()))
}

// bindError trả lời lỗi đọc body JSON: body vượt giới hạn là 413, còn lại là 400
func bindError(c *gin.Context, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		respondError(c, err)
		return
	}
	badRequest(c, "Request không hợp lệ: "+err.Error())
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, responses.NewErrorResponse("INVALID_REQUEST", message))
}
