package controllers

import (
	"context"
	"errors"
	"log/slog"

	"github.com/adamanr/onboarding_dashboard/internal/entity"
	"github.com/adamanr/onboarding_dashboard/internal/hrapi"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type UploadStatus string

const (
	UploadUploading UploadStatus = "uploading"
	UploadCompleted UploadStatus = "completed"
	UploadFailed    UploadStatus = "error"
)

type UploadItem struct {
	ID       string       `json:"id"`
	Name     string       `json:"name"`
	Size     int64        `json:"size"`
	Type     string       `json:"type"`
	Category string       `json:"category"`
	Status   UploadStatus `json:"status"`
	Progress int          `json:"progress"`
	Error    string       `json:"error,omitempty"`
}

type UploadMetrics struct {
	uploads *prometheus.CounterVec
}

func NewUploadMetrics(reg prometheus.Registerer) *UploadMetrics {
	return &UploadMetrics{
		uploads: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "document_uploads_total",
				Help: "Documents uploaded per outcome",
			},
			[]string{"status"},
		),
	}
}

func (m *UploadMetrics) inc(status UploadStatus) {
	if m == nil {
		return
	}

	m.uploads.WithLabelValues(string(status)).Inc()
}

// UploadBatch is one multi-file upload into an (employee, category) pair.
type UploadBatch struct {
	EmployeeID string
	Category   string
	Files      []hrapi.File
	// OnProgress sees every status change of every item.
	OnProgress func(UploadItem)
	// OnSuccess runs once per accepted file, never for a rejected one.
	OnSuccess func(ctx context.Context, doc entity.DocumentRecord) error
}

type BatchUploader struct {
	api     DocumentsAPI
	metrics *UploadMetrics
	logger  *slog.Logger
}

func NewBatchUploader(api DocumentsAPI, metrics *UploadMetrics, logger *slog.Logger) *BatchUploader {
	if logger == nil {
		logger = slog.Default()
	}

	return &BatchUploader{api: api, metrics: metrics, logger: logger}
}

// Upload sends the files one by one. A rejected file is marked as failed and the
// batch moves on; the returned error joins the *UploadError of every failed file.
func (u *BatchUploader) Upload(ctx context.Context, batch UploadBatch) ([]UploadItem, error) {
	items := make([]UploadItem, len(batch.Files))
	for i, f := range batch.Files {
		items[i] = UploadItem{
			ID:       uuid.NewString(),
			Name:     f.Name,
			Size:     f.Size,
			Type:     f.MimeType,
			Category: batch.Category,
		}
	}

	notify := func(item UploadItem) {
		if batch.OnProgress != nil {
			batch.OnProgress(item)
		}
	}

	var errs []error
	for i, f := range batch.Files {
		item := &items[i]
		item.Status, item.Progress = UploadUploading, 50
		notify(*item)

		doc, err := u.api.UploadDocument(ctx, batch.EmployeeID, batch.Category, f)
		if err != nil {
			item.Status, item.Progress, item.Error = UploadFailed, 0, err.Error()
			u.metrics.inc(UploadFailed)
			u.logger.Warn("Error uploading document",
				slog.String("file", f.Name),
				slog.String("employee_id", batch.EmployeeID),
				slog.String("category", batch.Category),
				slog.String("error", err.Error()),
			)
			errs = append(errs, &UploadError{File: f.Name, Err: err})
			notify(*item)

			continue
		}

		item.Status, item.Progress = UploadCompleted, 100
		u.metrics.inc(UploadCompleted)
		notify(*item)

		if batch.OnSuccess != nil {
			if err = batch.OnSuccess(ctx, *doc); err != nil && !errors.Is(err, ErrSuperseded) {
				u.logger.Warn("Error refreshing after upload", slog.String("file", f.Name), slog.String("error", err.Error()))
			}
		}
	}

	return items, errors.Join(errs...)
}
