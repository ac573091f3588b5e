package drive

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"
)

// capturedUpload is what the fake Drive endpoint saw.
type capturedUpload struct {
	method        string
	path          string
	query         map[string]string
	authorization string
	userAgent     string
	metadata      map[string]any
	mediaType     string
	media         []byte
}

// fakeDrive starts a server answering files.create with status and body,
// recording each request.
func fakeDrive(t *testing.T, status int, body string) (*httptest.Server, *capturedUpload, *atomic.Int32) {
	t.Helper()

	captured := &capturedUpload{}
	calls := &atomic.Int32{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)

		captured.method = r.Method
		captured.path = r.URL.Path
		captured.authorization = r.Header.Get("Authorization")
		captured.userAgent = r.Header.Get("User-Agent")
		captured.query = map[string]string{}
		for k := range r.URL.Query() {
			captured.query[k] = r.URL.Query().Get(k)
		}

		mediaType, params, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
		if err == nil && strings.HasPrefix(mediaType, "multipart/") {
			mr := multipart.NewReader(r.Body, params["boundary"])

			part, err := mr.NextPart()
			if err == nil {
				_ = json.NewDecoder(part).Decode(&captured.metadata)
			}

			part, err = mr.NextPart()
			if err == nil {
				captured.mediaType = part.Header.Get("Content-Type")
				captured.media, _ = io.ReadAll(part)
			}
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)

	return srv, captured, calls
}

func newTestUploader(srv *httptest.Server, opts ...Option) *Uploader {
	base := []Option{
		WithEndpoint(srv.URL + "/drive/v3/"),
		WithHTTPClient(srv.Client()),
	}
	return NewUploader(append(base, opts...)...)
}

func TestUploadAndConvert_Success(t *testing.T) {
	srv, captured, calls := fakeDrive(t, http.StatusOK, `{"webViewLink":"https://drive.example/view?id=42"}`)
	data := []byte{0x50, 0x4B, 0x03, 0x04, 0x00, 0x01}

	url, err := newTestUploader(srv).UploadAndConvert(context.Background(), "Budget2024", data, "tok123")
	require.NoError(t, err)

	assert.Equal(t, "https://drive.example/view?id=42", url)
	assert.Equal(t, int32(1), calls.Load())

	assert.Equal(t, http.MethodPost, captured.method)
	assert.True(t, strings.HasSuffix(captured.path, "/files"), "path = %s", captured.path)
	assert.Equal(t, "multipart", captured.query["uploadType"])
	assert.Equal(t, "webViewLink", captured.query["fields"])
	assert.Equal(t, "Bearer tok123", captured.authorization)

	assert.Equal(t, "Budget2024", captured.metadata["name"])
	assert.Equal(t, MIMETypeGoogleSpreadsheet, captured.metadata["mimeType"])

	assert.Equal(t, MIMETypeExcel, captured.mediaType)
	assert.Equal(t, data, captured.media)
}

func TestUploadAndConvert_CustomMIMETypes(t *testing.T) {
	srv, captured, _ := fakeDrive(t, http.StatusOK, `{"webViewLink":"https://drive.example/view?id=7"}`)

	xlsxMIME := "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	u := newTestUploader(srv, WithSourceMIMEType(xlsxMIME), WithTargetMIMEType(""))

	_, err := u.UploadAndConvert(context.Background(), "Doc", []byte("x"), "tok")
	require.NoError(t, err)

	assert.Equal(t, xlsxMIME, captured.mediaType)
	// empty override keeps the default
	assert.Equal(t, MIMETypeGoogleSpreadsheet, captured.metadata["mimeType"])
}

func TestUploadAndConvert_UserAgent(t *testing.T) {
	srv, captured, _ := fakeDrive(t, http.StatusOK, `{"webViewLink":"https://drive.example/view?id=7"}`)

	_, err := newTestUploader(srv, WithUserAgent("docexport/9.9.9")).UploadAndConvert(context.Background(), "Doc", []byte("x"), "tok")
	require.NoError(t, err)

	assert.Contains(t, captured.userAgent, "docexport/9.9.9")
}

func TestUploadAndConvert_MissingLink(t *testing.T) {
	srv, _, calls := fakeDrive(t, http.StatusOK, `{}`)

	url, err := newTestUploader(srv).UploadAndConvert(context.Background(), "Doc", []byte("x"), "tok")

	assert.ErrorIs(t, err, ErrInvalidResponse)
	assert.Empty(t, url)
	assert.Equal(t, int32(1), calls.Load())
}

func TestUploadAndConvert_ProviderErrorIsReturnedUnwrapped(t *testing.T) {
	body := `{"error":{"code":403,"message":"quota exceeded","errors":[{"domain":"usageLimits","reason":"quotaExceeded","message":"quota exceeded"}]}}`
	srv, _, calls := fakeDrive(t, http.StatusForbidden, body)

	_, err := newTestUploader(srv).UploadAndConvert(context.Background(), "Doc", []byte("x"), "tok")
	require.Error(t, err)

	var apiErr *googleapi.Error
	require.True(t, errors.As(err, &apiErr), "want *googleapi.Error, got %T", err)
	assert.Equal(t, http.StatusForbidden, apiErr.Code)
	require.Len(t, apiErr.Errors, 1)
	assert.Equal(t, "quota exceeded", apiErr.Errors[0].Message)

	// single request, no retry
	assert.Equal(t, int32(1), calls.Load())
}

func TestUploadAndConvert_CancelledContext(t *testing.T) {
	srv, _, _ := fakeDrive(t, http.StatusOK, `{"webViewLink":"https://drive.example/view?id=1"}`)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestUploader(srv).UploadAndConvert(ctx, "Doc", []byte("x"), "tok")
	assert.ErrorIs(t, err, context.Canceled)
}
