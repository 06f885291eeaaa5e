package server

import (
	"fmt"
	"io"
	"math/rand"
	"mime/multipart"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/devlog/devlog-server/users"
)

const filenameCharset = "0za1qw2sc3de4rf5vb6gt7yh8nm9juiklop"

// uploadFilename builds a collision resistant name for an uploaded
// file: username, timestamp and a short random suffix, keeping the
// original extension.
func uploadFilename(username, originalName string) string {
	ext := filepath.Ext(originalName)
	date := time.Now().Format("20060102_1504_05.000000")
	date = strings.ReplaceAll(date, ".", "")
	suffix := make([]byte, 8)
	for i := range suffix {
		suffix[i] = filenameCharset[rand.Intn(len(filenameCharset))]
	}
	return fmt.Sprintf("%s_%s%s%s", username, date, suffix, ext)
}

// saveUploadedFile streams the multipart file into the user's
// directory under dir and returns the public URL of the stored file.
func (s *Server) saveUploadedFile(dir string, user *users.User, header *multipart.FileHeader) (string, error) {
	if header == nil || strings.TrimSpace(header.Filename) == "" {
		return "", errors.New("[server saveUploadedFile] empty filename")
	}

	uploadDir := filepath.Join(dir, strconv.FormatInt(user.ID, 10))
	if err := os.MkdirAll(uploadDir, 0o755); err != nil {
		return "", errors.Wrap(err, "[server saveUploadedFile] mkdir")
	}

	src, err := header.Open()
	if err != nil {
		return "", errors.Wrap(err, "[server saveUploadedFile] open upload")
	}
	defer src.Close()

	filePath := filepath.Join(uploadDir, uploadFilename(user.Username, header.Filename))
	dst, err := os.Create(filePath)
	if err != nil {
		return "", errors.Wrap(err, "[server saveUploadedFile] create file")
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", errors.Wrap(err, "[server saveUploadedFile] write file")
	}

	rel, err := filepath.Rel(s.config.GetMediaDir(), filePath)
	if err != nil {
		return "", errors.Wrap(err, "[server saveUploadedFile] relativize path")
	}
	return s.config.GetMediaURLPrefix() + "/" + filepath.ToSlash(rel), nil
}
