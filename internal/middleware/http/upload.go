package middleware_http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"mime"
	"mime/multipart"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"eshop-api/internal/apperror"
	"eshop-api/internal/logger"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel"
)

var uploadTracer = otel.Tracer("UploadMiddleware")

const (
	maxUploadMemory = 32 << 20
	MaxGalleryFiles = 10
)

var imageTypes = map[string]string{
	"image/png":  "png",
	"image/jpeg": "jpeg",
	"image/jpg":  "jpg",
}

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// UploadField names a multipart file field. Multiple fields accept up to
// MaxGalleryFiles files.
type UploadField struct {
	Name     string
	Multiple bool
}

// Uploads maps a form field to the public paths of the files saved for it.
type Uploads map[string][]string

func (u Uploads) First(field string) (string, bool) {
	if paths := u[field]; len(paths) > 0 {
		return paths[0], true
	}
	return "", false
}

type uploadsKey struct{}

func UploadsFromContext(ctx context.Context) Uploads {
	u, _ := ctx.Value(uploadsKey{}).(Uploads)
	return u
}

// Uploader writes image uploads into dir and exposes them under publicPath.
type Uploader struct {
	dir        string
	publicPath string
	now        func() time.Time
}

func NewUploader(dir, publicPath string) *Uploader {
	return &Uploader{dir: dir, publicPath: strings.TrimRight(publicPath, "/"), now: time.Now}
}

// Accept persists the listed fields of multipart requests. Other requests
// pass through untouched.
func (u *Uploader) Accept(fields ...UploadField) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
			if err != nil || mediaType != "multipart/form-data" {
				next.ServeHTTP(w, r)
				return
			}

			ctx, span := uploadTracer.Start(r.Context(), "UploadMiddleware.Accept")
			if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
				span.End()
				apperror.Write(ctx, w, apperror.Validation("Invalid multipart form"))
				return
			}

			uploads, written, err := u.save(ctx, r.MultipartForm, fields)
			span.End()
			if err != nil {
				apperror.Write(ctx, w, err)
				return
			}

			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(context.WithValue(r.Context(), uploadsKey{}, uploads)))

			// A rejected request keeps nothing on disk.
			if ww.Status() >= http.StatusBadRequest {
				removeAll(written)
				if len(written) > 0 {
					logger.Info(ctx, "UploadMiddleware discarded files",
						slog.Int("status", ww.Status()),
						slog.Int("files", len(written)),
					)
				}
			}
		})
	}
}

// save writes the accepted files and returns their public paths together
// with their locations on disk.
func (u *Uploader) save(ctx context.Context, form *multipart.Form, fields []UploadField) (Uploads, []string, error) {
	for _, f := range fields {
		files := form.File[f.Name]
		if !f.Multiple && len(files) > 1 {
			return nil, nil, apperror.Validation(fmt.Sprintf("Only one file is allowed in %s", f.Name))
		}
		if len(files) > MaxGalleryFiles {
			return nil, nil, apperror.Validation(fmt.Sprintf("At most %d files are allowed in %s", MaxGalleryFiles, f.Name))
		}
		for _, fh := range files {
			if _, ok := imageTypes[fileType(fh)]; !ok {
				return nil, nil, apperror.Validation("Invalid image type")
			}
		}
	}

	uploads := Uploads{}
	var written []string
	for _, f := range fields {
		for _, fh := range form.File[f.Name] {
			name, err := u.write(fh)
			if err != nil {
				removeAll(written)
				return nil, nil, apperror.Internal("Error saving upload", err)
			}
			written = append(written, filepath.Join(u.dir, name))
			uploads[f.Name] = append(uploads[f.Name], path.Join(u.publicPath, name))
		}
	}

	if len(written) > 0 {
		attrs := make([]slog.Attr, 0, len(uploads))
		for field, paths := range uploads {
			attrs = append(attrs, slog.String("upload."+field, strings.Join(paths, ",")))
		}
		logger.Info(ctx, "UploadMiddleware", attrs...)
	}
	return uploads, written, nil
}

func removeAll(paths []string) {
	for _, p := range paths {
		_ = os.Remove(p)
	}
}

func (u *Uploader) write(fh *multipart.FileHeader) (string, error) {
	if err := os.MkdirAll(u.dir, 0o755); err != nil {
		return "", err
	}

	src, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	base := sanitizeFileName(fh.Filename)
	nanos := u.now().UnixNano()
	var (
		name string
		dst  *os.File
	)
	for attempt := 0; ; attempt++ {
		name = fmt.Sprintf("%d-%s", nanos+int64(attempt), base)
		dst, err = os.OpenFile(filepath.Join(u.dir, name), os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
		if err == nil {
			break
		}
		if !errors.Is(err, fs.ErrExist) || attempt == 9 {
			return "", err
		}
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		_ = os.Remove(dst.Name())
		return "", err
	}
	return name, dst.Close()
}

func fileType(fh *multipart.FileHeader) string {
	mediaType, _, err := mime.ParseMediaType(fh.Header.Get("Content-Type"))
	if err != nil {
		return ""
	}
	return strings.ToLower(mediaType)
}

func sanitizeFileName(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	name = strings.Join(strings.Fields(name), "-")
	name = unsafeChars.ReplaceAllString(name, "")
	name = strings.TrimLeft(name, ".")
	if name == "" {
		return "upload"
	}
	return name
}
