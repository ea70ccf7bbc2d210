package hrapi

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"

	"github.com/adamanr/onboarding_dashboard/internal/entity"
)

// File is one document to upload.
type File struct {
	Name     string
	MimeType string
	Size     int64
	Content  io.Reader
}

// Download is a streamed document body. The caller must close Body.
type Download struct {
	Body        io.ReadCloser
	ContentType string
	FileName    string
	Size        int64
}

func (c *Client) ListDocumentUsers(ctx context.Context) ([]entity.EmployeeRecord, error) {
	var resp entity.DocumentUsersResponse
	if err := c.doJSON(ctx, request{op: "fetch users for document", method: http.MethodGet, path: "/documents/users"}, &resp); err != nil {
		return nil, err
	}

	return resp.Users, nil
}

func (c *Client) ListCategories(ctx context.Context, userID string) ([]entity.DocumentCategory, error) {
	path := "/documents/user/" + url.PathEscape(userID) + "/categories"

	var resp entity.CategoriesResponse
	if err := c.doJSON(ctx, request{op: "fetch user document categories", method: http.MethodGet, path: path}, &resp); err != nil {
		return nil, err
	}

	return resp.Categories, nil
}

func (c *Client) ListDocuments(ctx context.Context, userID, category string) ([]entity.DocumentRecord, error) {
	path := "/documents/user/" + url.PathEscape(userID) + "/category/" + url.PathEscape(category)

	var resp entity.DocumentsResponse
	if err := c.doJSON(ctx, request{op: "fetch documents", method: http.MethodGet, path: path}, &resp); err != nil {
		return nil, err
	}

	return resp.Documents, nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func (c *Client) UploadDocument(ctx context.Context, employeeID, category string, file File) (*entity.DocumentRecord, error) {
	var body bytes.Buffer
	form := multipart.NewWriter(&body)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, quoteEscaper.Replace(file.Name)))

	mimeType := file.MimeType
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	header.Set("Content-Type", mimeType)

	part, err := form.CreatePart(header)
	if err != nil {
		return nil, &FetchError{Op: "upload document", Err: err}
	}

	if _, err = io.Copy(part, file.Content); err != nil {
		return nil, &FetchError{Op: "upload document", Err: fmt.Errorf("read %s: %w", file.Name, err)}
	}

	if err = form.WriteField("employee_id", employeeID); err != nil {
		return nil, &FetchError{Op: "upload document", Err: err}
	}
	if err = form.WriteField("category", category); err != nil {
		return nil, &FetchError{Op: "upload document", Err: err}
	}
	if err = form.Close(); err != nil {
		return nil, &FetchError{Op: "upload document", Err: err}
	}

	req := request{
		op:          "upload document",
		method:      http.MethodPost,
		path:        "/documents/upload",
		body:        &body,
		contentType: form.FormDataContentType(),
	}

	var resp entity.UploadResponse
	if err = c.doJSON(ctx, req, &resp); err != nil {
		return nil, err
	}

	return &resp.Document, nil
}

func (c *Client) DownloadDocument(ctx context.Context, documentID string) (*Download, error) {
	resp, err := c.send(ctx, request{
		op:     "download",
		method: http.MethodGet,
		path:   "/documents/download/" + url.PathEscape(documentID),
	})
	if err != nil {
		return nil, err
	}

	download := &Download{
		Body:        resp.Body,
		ContentType: resp.Header.Get("Content-Type"),
		Size:        resp.ContentLength,
	}

	if _, params, parseErr := mime.ParseMediaType(resp.Header.Get("Content-Disposition")); parseErr == nil {
		download.FileName = params["filename"]
	}

	return download, nil
}
