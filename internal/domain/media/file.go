package media

import (
	"fmt"
	"io"
	"mime/multipart"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// File is a local file selected for upload.
type File struct {
	Name        string
	Size        int64
	ContentType string
	Content     []byte
}

// FileInfo is what callers see of a pending file.
type FileInfo struct {
	Index       int    `json:"index"`
	Name        string `json:"name"`
	Size        int64  `json:"size"`
	ContentType string `json:"content_type"`
}

// NewFile sniffs the content type from the bytes themselves, ignoring the file name.
func NewFile(name string, content []byte) File {
	return File{
		Name:        name,
		Size:        int64(len(content)),
		ContentType: mimetype.Detect(content).String(),
		Content:     content,
	}
}

// FromMultipart reads an uploaded form file into memory. Files over limit
// bytes are not read; they keep their declared size so policy checks reject them.
func FromMultipart(fh *multipart.FileHeader, limit int64) (File, error) {
	if fh.Size > limit {
		return File{Name: fh.Filename, Size: fh.Size}, nil
	}

	src, err := fh.Open()
	if err != nil {
		return File{}, fmt.Errorf("failed to open file: %w", err)
	}
	defer src.Close()

	content, err := io.ReadAll(io.LimitReader(src, limit+1))
	if err != nil {
		return File{}, fmt.Errorf("failed to read file: %w", err)
	}
	f := NewFile(fh.Filename, content)
	if f.Size < fh.Size {
		f.Size = fh.Size
	}
	return f, nil
}

func (f File) IsImage() bool {
	return strings.HasPrefix(f.ContentType, "image/")
}
