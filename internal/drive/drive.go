// Package drive uploads spreadsheet binaries to Google Drive and asks Drive to
// convert them into native Google Spreadsheets.
package drive

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"golang.org/x/oauth2"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// MIME types used for the upload and the conversion target.
const (
	MIMETypeExcel             = "application/vnd.ms-excel"
	MIMETypeGoogleSpreadsheet = "application/vnd.google-apps.spreadsheet"
)

// ErrInvalidResponse is returned when Drive accepts the upload but does not
// return a share link.
var ErrInvalidResponse = errors.New("google api has not returned valid response")

// shareLinkField is the only field requested from files.create.
const shareLinkField googleapi.Field = "webViewLink"

// Uploader creates converted spreadsheets in the caller's Drive.
// It holds no per-request state and is safe for concurrent use.
type Uploader struct {
	endpoint   string
	userAgent  string
	sourceMIME string
	targetMIME string
	httpClient *http.Client
	logger     *slog.Logger
}

// Option configures an Uploader.
type Option func(*Uploader)

// WithEndpoint overrides the Drive API base URL.
func WithEndpoint(endpoint string) Option {
	return func(u *Uploader) {
		u.endpoint = endpoint
	}
}

// WithUserAgent sets the User-Agent sent with API requests.
func WithUserAgent(ua string) Option {
	return func(u *Uploader) {
		u.userAgent = ua
	}
}

// WithSourceMIMEType sets the MIME type declared for the uploaded binary.
func WithSourceMIMEType(mime string) Option {
	return func(u *Uploader) {
		if mime != "" {
			u.sourceMIME = mime
		}
	}
}

// WithTargetMIMEType sets the MIME type Drive converts the upload into.
func WithTargetMIMEType(mime string) Option {
	return func(u *Uploader) {
		if mime != "" {
			u.targetMIME = mime
		}
	}
}

// WithHTTPClient sets the base HTTP client. Its transport is wrapped to add
// the caller's bearer token.
func WithHTTPClient(client *http.Client) Option {
	return func(u *Uploader) {
		if client != nil {
			u.httpClient = client
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(u *Uploader) {
		if logger != nil {
			u.logger = logger
		}
	}
}

// NewUploader creates an Uploader.
func NewUploader(opts ...Option) *Uploader {
	u := &Uploader{
		sourceMIME: MIMETypeExcel,
		targetMIME: MIMETypeGoogleSpreadsheet,
		httpClient: http.DefaultClient,
		logger:     slog.Default(),
	}

	for _, opt := range opts {
		opt(u)
	}

	u.logger = u.logger.With("component", "drive")

	return u
}

// UploadAndConvert creates a spreadsheet named name from data using the
// caller's access token and returns its share link.
//
// Exactly one files.create request is issued: the upload is a single
// multipart request with chunking disabled and is never retried. Errors from
// the Drive API are returned as-is (typically *googleapi.Error).
func (u *Uploader) UploadAndConvert(ctx context.Context, name string, data []byte, credential string) (string, error) {
	svc, err := u.service(ctx, credential)
	if err != nil {
		return "", err
	}

	u.logger.Debug("creating converted spreadsheet",
		"name", name,
		"bytes", len(data),
		"source_mime_type", u.sourceMIME,
		"target_mime_type", u.targetMIME,
	)

	meta := &drive.File{
		Name:     name,
		MimeType: u.targetMIME,
	}

	file, err := svc.Files.Create(meta).
		Media(bytes.NewReader(data),
			googleapi.ContentType(u.sourceMIME),
			googleapi.ChunkSize(0),
		).
		Fields(shareLinkField).
		Context(ctx).
		Do()
	if err != nil {
		return "", err
	}

	if file == nil || file.WebViewLink == "" {
		return "", ErrInvalidResponse
	}

	return file.WebViewLink, nil
}

// service builds a Drive client authorized with the caller's token. Tokens
// are per request, so a client is built per call.
func (u *Uploader) service(ctx context.Context, credential string) (*drive.Service, error) {
	ts := oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: credential,
		TokenType:   "Bearer",
	})

	client := &http.Client{
		Transport: &oauth2.Transport{Source: ts, Base: u.httpClient.Transport},
		Timeout:   u.httpClient.Timeout,
	}

	opts := []option.ClientOption{option.WithHTTPClient(client)}
	if u.endpoint != "" {
		opts = append(opts, option.WithEndpoint(u.endpoint))
	}

	svc, err := drive.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create drive client; %w", err)
	}
	svc.UserAgent = u.userAgent

	return svc, nil
}
