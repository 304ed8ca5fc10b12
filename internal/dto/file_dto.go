package dto

// FileUpload is an uploaded blob read from a multipart form.
type FileUpload struct {
	Name        string
	ContentType string
	Data        []byte
}

// Size returns the blob length in bytes.
func (f *FileUpload) Size() int64 {
	if f == nil {
		return 0
	}
	return int64(len(f.Data))
}

// FileDownload is a stored blob ready to be streamed back to a client.
type FileDownload struct {
	Name        string
	ContentType string
	Data        []byte
}
