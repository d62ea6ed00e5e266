package middleware

import (
	"compress/gzip"
	"io"
	"net/http"
	"strings"

	chimw "github.com/go-chi/chi/v5/middleware"
)

// compressibleTypes перечисляет сжимаемые типы ответов. Поток событий
// (text/event-stream) не сжимается.
var compressibleTypes = []string{
	"application/json",
	"text/html",
	"text/plain",
}

type gzipReadCloser struct {
	*gzip.Reader
	body io.ReadCloser
}

func (g *gzipReadCloser) Close() error {
	if err := g.Reader.Close(); err != nil {
		return err
	}
	return g.body.Close()
}

// GzipMiddleware распаковывает тела запросов с Content-Encoding: gzip и
// сжимает ответы для клиентов, принимающих gzip.
func GzipMiddleware(next http.Handler) http.Handler {
	compressed := chimw.Compress(gzip.DefaultCompression, compressibleTypes...)(next)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.Header.Get("Content-Encoding"), "gzip") {
			zr, err := gzip.NewReader(r.Body)
			if err != nil {
				http.Error(w, "invalid gzip body", http.StatusBadRequest)
				return
			}
			r.Body = &gzipReadCloser{Reader: zr, body: r.Body}
			r.Header.Del("Content-Encoding")
			r.Header.Del("Content-Length")
			r.ContentLength = -1
		}

		compressed.ServeHTTP(w, r)
	})
}
