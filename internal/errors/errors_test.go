package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestGuidanceErrors(t *testing.T) {
	cases := []struct {
		err     *AppError
		code    ErrorCode
		message string
		status  int
	}{
		{MissingPartiesError(), ErrCodeMissingField, "Please populate the matter parties before generating a draft.", http.StatusUnprocessableEntity},
		{NoDocumentForClauseError(), ErrCodeNoDocument, "Generate the base draft before inserting clauses.", http.StatusConflict},
		{NoDocumentForExportError(), ErrCodeNoDocument, "Generate the contract before downloading.", http.StatusConflict},
		{NoUploadError(), ErrCodeNoUpload, "Please upload a contract first.", http.StatusConflict},
		{NoAnalysisError(), ErrCodeNoAnalysis, "Run the analysis before downloading the report.", http.StatusConflict},
		{UnsupportedFileError("text/plain"), ErrCodeUnsupportedFile, "Upload a PDF or DOCX contract.", http.StatusUnsupportedMediaType},
		{StaleResultError("analyze"), ErrCodeStaleResult, "A newer request superseded this one.", http.StatusConflict},
	}
	for _, tc := range cases {
		t.Run(string(tc.code), func(t *testing.T) {
			assert.Equal(t, tc.code, tc.err.Code)
			assert.Equal(t, tc.message, tc.err.Message)
			assert.True(t, tc.err.IsGuidance())
			assert.Equal(t, tc.status, HTTPStatus(tc.err))
		})
	}
	assert.Equal(t, SeverityInfo, StaleResultError("x").Severity)
}

func TestGetAppErrorUnwraps(t *testing.T) {
	inner := NoUploadError()
	wrapped := fmt.Errorf("analyze: %w", inner)

	assert.True(t, IsAppError(wrapped))
	assert.True(t, IsGuidance(wrapped))
	assert.True(t, HasCode(wrapped, ErrCodeNoUpload))
	assert.Same(t, inner, GetAppError(wrapped))

	plain := stderrors.New("boom")
	converted := GetAppError(plain)
	assert.Equal(t, ErrCodeInternalError, converted.Code)
	assert.ErrorIs(t, converted, plain)
	assert.False(t, IsGuidance(plain))
}

func TestCLIFormat(t *testing.T) {
	h := NewCLIErrorHandler(false, nil)
	assert.Equal(t, "👉 Please upload a contract first.", h.FormatError(NoUploadError()))
	assert.Equal(t, "ℹ️  INFO: clause not found", h.FormatError(NotFoundError("clause")))
	assert.EqualError(t, h.HandleError(ValidationError("bad")), "⚠️  WARNING: bad")

	verbose := NewCLIErrorHandler(true, nil)
	assert.Equal(t, "❌ ERROR: Library operation failed: load (disk)", verbose.FormatError(LibraryError("load", stderrors.New("disk"))))
}

func TestHTTPErrorResponse(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	h := NewHTTPErrorHandler(true, zap.New(core))

	rec := httptest.NewRecorder()
	h.WriteHTTPError(rec, UnsupportedFileError("text/plain"))

	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), `"code":"UNSUPPORTED_FILE"`)
	assert.Contains(t, rec.Body.String(), `"mime_type":"text/plain"`)

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, zapcore.DebugLevel, entry.Level, "guidance logs at debug")
	assert.Equal(t, "UNSUPPORTED_FILE", entry.ContextMap()["code"])
}

func TestTUIStyle(t *testing.T) {
	h := NewTUIErrorHandler(true, zap.NewNop())
	icon, _ := h.GetErrorStyle(NoDocumentForClauseError())
	assert.Equal(t, "👉", icon)
	icon, _ = h.GetErrorStyle(InternalError("x"))
	assert.Equal(t, "🔥", icon)
	assert.Equal(t, "bad\nDetails: why", h.FormatError(ValidationError("bad").WithDetails("why")))
}
