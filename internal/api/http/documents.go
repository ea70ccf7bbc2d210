package api

import (
	"fmt"
	"io"
	"log/slog"
	"mime"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/adamanr/onboarding_dashboard/internal/hrapi"
)

const maxUploadMemory = 32 << 20

func (s *Server) navigatorResponse(w http.ResponseWriter, r *http.Request, data map[string]any) {
	if data == nil {
		data = map[string]any{}
	}
	data["navigator"] = s.workspace(r).Navigator.View()

	s.httpResponse(w, http.StatusOK, data, "success")
}

func (s *Server) DocumentsView(w http.ResponseWriter, r *http.Request) {
	s.navigatorResponse(w, r, nil)
}

func (s *Server) LoadDocumentUsers(w http.ResponseWriter, r *http.Request) {
	if err := s.workspace(r).Navigator.LoadUsers(r.Context()); err != nil {
		s.errorResponse(w, "Error loading document users", err)
		return
	}

	s.navigatorResponse(w, r, nil)
}

func (s *Server) SelectUser(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID string `json:"user_id"`
	}
	if !s.decodeBody(w, r, &req) {
		return
	}

	if err := s.workspace(r).Navigator.SelectUser(r.Context(), req.UserID); err != nil {
		s.errorResponse(w, "Error selecting user", err)
		return
	}

	s.navigatorResponse(w, r, nil)
}

func (s *Server) SelectCategory(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Category string `json:"category"`
	}
	if !s.decodeBody(w, r, &req) {
		return
	}

	if err := s.workspace(r).Navigator.SelectCategory(r.Context(), req.Category); err != nil {
		s.errorResponse(w, "Error selecting category", err)
		return
	}

	s.navigatorResponse(w, r, nil)
}

func (s *Server) Back(w http.ResponseWriter, r *http.Request) {
	s.workspace(r).Navigator.Back()
	s.navigatorResponse(w, r, nil)
}

func (s *Server) RefreshDocuments(w http.ResponseWriter, r *http.Request) {
	if err := s.workspace(r).Navigator.RefreshDocuments(r.Context()); err != nil {
		s.errorResponse(w, "Error refreshing documents", err)
		return
	}

	s.navigatorResponse(w, r, nil)
}

func (s *Server) ToggleUpload(w http.ResponseWriter, r *http.Request) {
	if _, err := s.workspace(r).Navigator.ToggleUploadView(); err != nil {
		s.errorResponse(w, "Error toggling upload view", err)
		return
	}

	s.navigatorResponse(w, r, nil)
}

// UploadDocuments takes every `files` part of the form. Rejected files are
// reported per item and do not fail the request.
func (s *Server) UploadDocuments(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		s.httpResponse(w, http.StatusBadRequest, map[string]string{"error": "Invalid multipart form"}, "error")
		return
	}
	defer func() {
		if err := r.MultipartForm.RemoveAll(); err != nil {
			s.deps.Logger.Warn("Error removing multipart temp files", slog.String("error", err.Error()))
		}
	}()

	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		s.httpResponse(w, http.StatusBadRequest, map[string]string{"error": "no files selected"}, "error")
		return
	}

	files := make([]hrapi.File, 0, len(headers))
	parts := make([]multipart.File, 0, len(headers))
	defer func() {
		for _, part := range parts {
			_ = part.Close()
		}
	}()

	for _, fh := range headers {
		part, err := fh.Open()
		if err != nil {
			s.errorResponse(w, "Error reading uploaded file", fmt.Errorf("open %s: %w", fh.Filename, err))
			return
		}
		parts = append(parts, part)

		files = append(files, hrapi.File{
			Name:     fh.Filename,
			MimeType: fh.Header.Get("Content-Type"),
			Size:     fh.Size,
			Content:  part,
		})
	}

	items, err := s.workspace(r).Upload(r.Context(), files, nil)
	if items == nil && err != nil {
		s.errorResponse(w, "Error uploading documents", err)
		return
	}

	respType := "success"
	if err != nil {
		respType = "partial"
	}

	data := map[string]any{
		"uploads":   items,
		"navigator": s.workspace(r).Navigator.View(),
	}
	s.httpResponse(w, http.StatusOK, data, respType)
}

// DownloadDocument streams a document of the selected category.
func (s *Server) DownloadDocument(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathParam(w, r, "id")
	if !ok {
		return
	}

	download, err := s.workspace(r).Navigator.Download(r.Context(), id)
	if err != nil {
		s.errorResponse(w, "Error downloading document", err)
		return
	}
	defer download.Body.Close()

	contentType := download.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)

	if download.FileName != "" {
		w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": download.FileName}))
	}
	if download.Size > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(download.Size, 10))
	}

	if _, err = io.Copy(w, download.Body); err != nil {
		s.deps.Logger.Error("Error streaming document", slog.String("id", id), slog.String("error", err.Error()))
	}
}
