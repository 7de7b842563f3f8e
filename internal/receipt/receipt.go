package receipt

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/avstrong/discovertours/internal/apperr"
)

const sniffLen = 512

// allowed maps sniffed content types to the stored file extension.
var allowed = map[string]string{
	"image/png":       ".png",
	"image/jpeg":      ".jpg",
	"image/gif":       ".gif",
	"image/webp":      ".webp",
	"application/pdf": ".pdf",
}

type Config struct {
	Dir      string
	URLPath  string
	MaxBytes int64
}

type Store struct {
	dir      string
	urlPath  string
	maxBytes int64
}

func New(conf Config) (*Store, error) {
	if err := os.MkdirAll(conf.Dir, 0o750); err != nil { //nolint:gomnd
		return nil, fmt.Errorf("create uploads dir %s: %w", conf.Dir, err)
	}

	urlPath := "/" + strings.Trim(conf.URLPath, "/") + "/"

	return &Store{
		dir:      conf.Dir,
		urlPath:  urlPath,
		maxBytes: conf.MaxBytes,
	}, nil
}

func invalid(msg string) error {
	inputErr := apperr.NewInputError()
	inputErr.Add("receipt", msg)

	return inputErr
}

// Save writes body under a random name and returns the served path.
// The client-supplied filename is ignored apart from logging by the caller.
func (s *Store) Save(_ context.Context, _ string, body io.Reader) (string, error) {
	br := bufio.NewReaderSize(body, sniffLen)

	head, err := br.Peek(sniffLen)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		return "", fmt.Errorf("read receipt: %w", err)
	}

	if len(head) == 0 {
		return "", invalid("receipt file is empty")
	}

	contentType := http.DetectContentType(head)
	if i := strings.IndexByte(contentType, ';'); i >= 0 {
		contentType = contentType[:i]
	}

	ext, ok := allowed[contentType]
	if !ok {
		return "", invalid(fmt.Sprintf("unsupported receipt type %s", contentType))
	}

	name := uuid.NewString() + ext
	full := filepath.Join(s.dir, name)

	f, err := os.OpenFile(full, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o640) //nolint:gomnd
	if err != nil {
		return "", fmt.Errorf("create receipt file: %w", err)
	}

	n, err := io.Copy(f, io.LimitReader(br, s.maxBytes+1))
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}

	if err == nil && n > s.maxBytes {
		err = invalid(fmt.Sprintf("receipt must not exceed %d bytes", s.maxBytes))
	}

	if err != nil {
		_ = os.Remove(full)

		if apperr.IsInputError(err) != nil {
			return "", err
		}

		return "", fmt.Errorf("write receipt file: %w", err)
	}

	return s.urlPath + name, nil
}

// Remove deletes a file previously returned by Save.
func (s *Store) Remove(_ context.Context, servedPath string) error {
	name := path.Base(servedPath)
	if !strings.HasPrefix(servedPath, s.urlPath) || name == "." || name == "/" {
		return fmt.Errorf("path %s is not a receipt: %w", servedPath, apperr.ErrNotFound)
	}

	if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove receipt %s: %w", name, err)
	}

	return nil
}

func (s *Store) URLPath() string {
	return s.urlPath
}

// Handler serves stored receipts read-only. Directory listings are refused.
func (s *Store) Handler() http.Handler {
	fs := http.FileServer(http.Dir(s.dir))

	return http.StripPrefix(strings.TrimSuffix(s.urlPath, "/"), http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r)

			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		fs.ServeHTTP(w, r)
	}))
}
