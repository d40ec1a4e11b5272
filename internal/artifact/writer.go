package artifact

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dgallion1/casereport/internal/layout"
)

// Writer serializes a finished document.
type Writer interface {
	Write(w io.Writer, doc *layout.Document) error
	Ext() string
	ContentType() string
}

// ForFormat returns the writer for "pdf" or "docx".
func ForFormat(format string) (Writer, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "pdf":
		return &PDF{Compress: true}, nil
	case "docx":
		return &DOCX{}, nil
	default:
		return nil, fmt.Errorf("unsupported report format: %s", format)
	}
}

// Save writes doc to a new file at path. An existing file is never
// overwritten; the error then matches fs.ErrExist. Errors from creating,
// writing and closing the file are all reported, and a partly written file
// is removed.
func Save(path string, wr Writer, doc *layout.Document) (err error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", path, cerr)
		}
		if err != nil {
			os.Remove(path)
		}
	}()

	if err := wr.Write(f, doc); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
