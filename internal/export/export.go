// Package export sends documents to Google Drive as converted spreadsheets.
//
// The Orchestrator runs a fixed sequence per request: check the caller's
// access token, render the document with the spreadsheet Exporter, upload the
// result through the Provider, and return the share link. Nothing is retried,
// cached or shared between requests.
package export

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"time"

	"google.golang.org/api/googleapi"

	"github.com/leefowlercu/docexport/internal/document"
	"github.com/leefowlercu/docexport/internal/drive"
	"github.com/leefowlercu/docexport/internal/metrics"
)

var (
	// ErrMissingCredential is returned before any work when the request has no access token.
	ErrMissingCredential = errors.New("no access token - can't send file to Google Drive")

	// ErrInvalidResponse is returned when the provider succeeds without a share link.
	ErrInvalidResponse = drive.ErrInvalidResponse
)

// Query parameter names read from the inbound request.
const (
	ParamAccessToken = "access_token"
	ParamTitle       = "title"
)

// Exporter renders a document as a spreadsheet binary. Options are read from
// the original request query.
type Exporter interface {
	Export(ctx context.Context, doc *document.Document, query url.Values) ([]byte, error)
}

// Provider uploads a spreadsheet binary and returns a share link for the
// converted file.
type Provider interface {
	UploadAndConvert(ctx context.Context, name string, data []byte, credential string) (string, error)
}

// Request carries the per-request inputs of an export.
type Request struct {
	Credential string
	DocID      string
	UserID     string
	Title      string

	// Query is the original request query, passed through to the Exporter.
	Query url.Values
}

// RequestFromQuery builds a Request from inbound query parameters.
func RequestFromQuery(docID, userID string, query url.Values) Request {
	return Request{
		Credential: query.Get(ParamAccessToken),
		DocID:      docID,
		UserID:     userID,
		Title:      query.Get(ParamTitle),
		Query:      query,
	}
}

// PreparedFile is a rendered document ready for upload.
type PreparedFile struct {
	// Name is the destination file name, without extension.
	Name string
	Data []byte
}

// Result is the response body of a successful export.
type Result struct {
	URL string `json:"url"`
}

// Orchestrator exports documents to Drive. It is safe for concurrent use.
type Orchestrator struct {
	exporter Exporter
	provider Provider
	logger   *slog.Logger
}

// NewOrchestrator creates an Orchestrator. A nil logger uses slog.Default().
func NewOrchestrator(exporter Exporter, provider Provider, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		exporter: exporter,
		provider: provider,
		logger:   logger.With("component", "export"),
	}
}

// Handle exports doc to Drive and returns the share link.
//
// Errors from the Exporter are returned unchanged. Provider errors carrying at
// least one error item are reduced to a plain error with the first item's
// message; only that first message is surfaced. Any other provider error is
// returned unchanged.
func (o *Orchestrator) Handle(ctx context.Context, doc *document.Document, req Request) (*Result, error) {
	start := time.Now()

	if err := CheckCredential(req); err != nil {
		return nil, err
	}

	// The credential is never added to the logger.
	logger := o.logger.With("doc_id", req.DocID, "user_id", req.UserID)

	logger.Debug("preparing file for export")
	file, err := o.PrepareFile(ctx, doc, req)
	if err != nil {
		metrics.ExportsTotal.WithLabelValues(metrics.ResultExportError).Inc()
		return nil, err
	}

	metrics.UploadBytes.Observe(float64(len(file.Data)))

	link, err := o.provider.UploadAndConvert(ctx, file.Name, file.Data, req.Credential)
	if err == nil && link == "" {
		err = ErrInvalidResponse
	}
	if err != nil {
		logger.Error("error while sending file to drive", "error", err)
		if errors.Is(err, ErrInvalidResponse) {
			metrics.ExportsTotal.WithLabelValues(metrics.ResultInvalidResponse).Inc()
		} else {
			metrics.ExportsTotal.WithLabelValues(metrics.ResultProviderError).Inc()
		}
		return nil, providerError(err)
	}

	logger.Debug("file exported", "url", link)
	metrics.ExportsTotal.WithLabelValues(metrics.ResultSuccess).Inc()
	metrics.ExportDuration.Observe(time.Since(start).Seconds())

	return &Result{URL: link}, nil
}

// CheckCredential returns ErrMissingCredential when req carries no access
// token. Callers may use it to reject a request before loading the document.
func CheckCredential(req Request) error {
	if req.Credential == "" {
		metrics.ExportsTotal.WithLabelValues(metrics.ResultMissingCredential).Inc()
		return ErrMissingCredential
	}
	return nil
}

// PrepareFile renders doc and resolves the destination name: the request
// title when set, otherwise the document name.
func (o *Orchestrator) PrepareFile(ctx context.Context, doc *document.Document, req Request) (*PreparedFile, error) {
	data, err := o.exporter.Export(ctx, doc, req.Query)
	if err != nil {
		return nil, err
	}

	name := req.Title
	if name == "" {
		name = doc.Name()
	}

	return &PreparedFile{Name: name, Data: data}, nil
}

// providerError unwraps a structured provider error to its first message.
func providerError(err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) && len(apiErr.Errors) > 0 {
		return errors.New(apiErr.Errors[0].Message)
	}
	return err
}
