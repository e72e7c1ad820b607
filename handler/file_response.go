package handler

import (
	"bytes"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
)

// Attachment buffers the output of write and serves it as a download named
// filename. Nothing is written to the client when write fails.
func Attachment(filename, contentType string, write func(io.Writer) error) Response {
	return attachment{filename: filename, contentType: contentType, write: write}
}

type attachment struct {
	filename    string
	contentType string
	write       func(io.Writer) error
}

func (a attachment) Render(w http.ResponseWriter, _ *http.Request) error {
	var buf bytes.Buffer
	if err := a.write(&buf); err != nil {
		return fmt.Errorf("render attachment %s: %w", a.filename, err)
	}
	w.Header().Set("Content-Type", a.contentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": a.filename}))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, err := buf.WriteTo(w)
	return err
}
