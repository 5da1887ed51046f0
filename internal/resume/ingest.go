package resume

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"code.sajari.com/docconv"
	"github.com/google/uuid"
)

// ErrUnsupportedType is returned for upload extensions the ingestor
// cannot convert to text.
var ErrUnsupportedType = errors.New("unsupported file type")

// Ingestor converts uploaded resume files into plain text. Binary
// formats go through docconv; the parser itself only ever sees text.
type Ingestor struct {
	uploadsDir string
}

type IngestedFile struct {
	Filename   string // original upload name
	StoredPath string // path of the saved copy
	FileType   string // lower-cased extension
	FileSize   int64
	Text       string
}

func NewIngestor(uploadsDir string) *Ingestor {
	return &Ingestor{uploadsDir: uploadsDir}
}

// Ingest saves the upload under a collision-free name and extracts its
// text. PDF and word-processor formats are converted with docconv; plain
// text formats are read as-is.
func (in *Ingestor) Ingest(filename string, reader io.Reader) (*IngestedFile, error) {
	fileType := strings.ToLower(filepath.Ext(filename))
	if !supportedType(fileType) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, fileType)
	}

	if err := os.MkdirAll(in.uploadsDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create uploads dir: %w", err)
	}

	storedPath := filepath.Join(in.uploadsDir, uuid.New().String()+fileType)
	file, err := os.Create(storedPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	size, err := io.Copy(file, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to save file: %w", err)
	}

	var text string
	switch fileType {
	case ".pdf", ".docx", ".doc", ".rtf", ".odt":
		res, err := docconv.ConvertPath(storedPath)
		if err != nil {
			return nil, fmt.Errorf("failed to convert document: %w", err)
		}
		text = res.Body
	case ".txt", ".md":
		content, err := os.ReadFile(storedPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read text file: %w", err)
		}
		text = string(content)
	}

	return &IngestedFile{
		Filename:   filename,
		StoredPath: storedPath,
		FileType:   fileType,
		FileSize:   size,
		Text:       text,
	}, nil
}

func supportedType(ext string) bool {
	switch ext {
	case ".pdf", ".docx", ".doc", ".rtf", ".odt", ".txt", ".md":
		return true
	}
	return false
}
