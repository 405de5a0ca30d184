// internal/app/system/backend/documents.go
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"

	"github.com/dalemusser/hrportal/internal/domain/models"
)

// DocumentsByEmployeeID lists the documents uploaded by an employee.
func (c *Client) DocumentsByEmployeeID(ctx context.Context, employeeID string) ([]models.Document, error) {
	var out []models.Document
	if err := c.call(ctx, http.MethodGet, "/documents/employee/"+url.PathEscape(employeeID), nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// DownloadDocument fetches the raw file of a document.
func (c *Client) DownloadDocument(ctx context.Context, id string) (*models.FileUpload, error) {
	raw, err := c.do(ctx, http.MethodGet, "/documents/"+url.PathEscape(id)+"/download", nil, nil, "")
	if err != nil {
		return nil, err
	}
	file := &models.FileUpload{
		Filename:    id,
		ContentType: raw.Header.Get("Content-Type"),
		Data:        raw.Body,
	}
	if _, params, err := mime.ParseMediaType(raw.Header.Get("Content-Disposition")); err == nil && params["filename"] != "" {
		file.Filename = params["filename"]
	}
	if file.ContentType == "" {
		file.ContentType = "application/octet-stream"
	}
	return file, nil
}

// UpdateDocument replaces a document's file and metadata. It is also how
// review markers are stamped onto a document.
func (c *Client) UpdateDocument(ctx context.Context, id string, file models.FileUpload, meta models.DocumentMetadata) (*models.Document, error) {
	return c.sendDocument(ctx, http.MethodPut, "/documents/"+url.PathEscape(id), file, meta)
}

// UploadDocument creates a new document for the employee in meta.
func (c *Client) UploadDocument(ctx context.Context, file models.FileUpload, meta models.DocumentMetadata) (*models.Document, error) {
	return c.sendDocument(ctx, http.MethodPost, "/documents", file, meta)
}

func (c *Client) sendDocument(ctx context.Context, method, path string, file models.FileUpload, meta models.DocumentMetadata) (*models.Document, error) {
	body, contentType, err := multipartBody(file, meta)
	if err != nil {
		return nil, err
	}
	raw, err := c.do(ctx, method, path, nil, body, contentType)
	if err != nil {
		return nil, err
	}
	var out models.Document
	if err := unwrap(raw, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// multipartBody encodes a "file" part and a JSON "metadata" part.
func multipartBody(file models.FileUpload, meta models.DocumentMetadata) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	metaJSON, err := json.Marshal(meta)
	if err != nil {
		return nil, "", fmt.Errorf("backend: encode document metadata: %w", err)
	}
	mh := make(textproto.MIMEHeader)
	mh.Set("Content-Disposition", `form-data; name="metadata"`)
	mh.Set("Content-Type", "application/json")
	pw, err := mw.CreatePart(mh)
	if err != nil {
		return nil, "", err
	}
	if _, err := pw.Write(metaJSON); err != nil {
		return nil, "", err
	}

	if len(file.Data) > 0 {
		ct := file.ContentType
		if ct == "" {
			ct = "application/octet-stream"
		}
		fh := make(textproto.MIMEHeader)
		fh.Set("Content-Disposition", mime.FormatMediaType("form-data", map[string]string{
			"name":     "file",
			"filename": file.Filename,
		}))
		fh.Set("Content-Type", ct)
		fw, err := mw.CreatePart(fh)
		if err != nil {
			return nil, "", err
		}
		if _, err := fw.Write(file.Data); err != nil {
			return nil, "", err
		}
	}

	if err := mw.Close(); err != nil {
		return nil, "", err
	}
	return &buf, mw.FormDataContentType(), nil
}
