package mailer

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/sungwon/quick-mail/internal/mailutil"
)

// StageAttachment copies r into the upload temp directory so it can be
// attached by path. The file name keeps the base of name behind a unique
// prefix. The caller removes the file once the message is sent.
func StageAttachment(uploadTmpDir, name string, r io.Reader) (string, error) {
	base := filepath.Base(name)
	if base == "." || base == string(filepath.Separator) {
		base = "attachment"
	}

	path := mailutil.TempPath(uploadTmpDir) + uuid.NewString() + "-" + base

	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		return "", fmt.Errorf("create attachment: %w", err)
	}

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("write attachment: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("close attachment: %w", err)
	}

	return path, nil
}
