package service

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/microcosm-cc/bluemonday"

	"github.com/noah-isme/qazaq-teachers/internal/dto"
	"github.com/noah-isme/qazaq-teachers/internal/observability"
)

var uploadPolicy = bluemonday.UGCPolicy()

// ReadUpload loads a multipart file into memory, enforcing maxBytes. The
// declared content type is kept unless it is missing or generic, in which
// case it is sniffed from the payload. HTML documents are served back inline,
// so their markup is reduced to the user generated content policy.
func ReadUpload(file *multipart.FileHeader, maxBytes int64) (*dto.FileUpload, error) {
	if file == nil {
		return nil, nil
	}

	if maxBytes > 0 && file.Size > maxBytes {
		observability.UploadRejected().WithLabelValues("size").Inc()
		return nil, ErrFileTooLarge
	}

	handle, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer handle.Close()

	reader := io.Reader(handle)
	if maxBytes > 0 {
		reader = io.LimitReader(handle, maxBytes+1)
	}

	buf := bytes.NewBuffer(nil)
	if _, err := io.Copy(buf, reader); err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if maxBytes > 0 && int64(buf.Len()) > maxBytes {
		observability.UploadRejected().WithLabelValues("size").Inc()
		return nil, ErrFileTooLarge
	}

	name := strings.TrimSpace(file.Filename)
	if name != "" {
		name = filepath.Base(name)
	}

	kind := contentType(file.Header.Get("Content-Type"), buf.Bytes())
	data := buf.Bytes()
	if strings.HasPrefix(kind, "text/html") {
		data = uploadPolicy.SanitizeBytes(data)
	}

	return &dto.FileUpload{
		Name:        name,
		ContentType: kind,
		Data:        data,
	}, nil
}

func contentType(declared string, payload []byte) string {
	declared = strings.TrimSpace(declared)
	if declared != "" && !strings.HasPrefix(declared, "application/octet-stream") {
		return declared
	}
	return mimetype.Detect(payload).String()
}

// checkUpload enforces the size limit for uploads built outside ReadUpload.
func checkUpload(file *dto.FileUpload, maxBytes int64) error {
	if file == nil || maxBytes <= 0 {
		return nil
	}
	if file.Size() > maxBytes {
		observability.UploadRejected().WithLabelValues("size").Inc()
		return ErrFileTooLarge
	}
	return nil
}

func observeUpload(kind string, file *dto.FileUpload) {
	if file == nil || len(file.Data) == 0 {
		return
	}
	observability.UploadBytes().WithLabelValues(kind).Observe(float64(len(file.Data)))
}
