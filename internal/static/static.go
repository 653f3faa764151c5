// Package static serves the site's image assets under /static, either from
// the copy embedded in the binary or from an object store.
package static

import (
	"context"
	"embed"
	"errors"
	"io/fs"
	"mime"
	"net/http"
	"path"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/twiese99/EmojiApp/internal/store"
)

//go:embed images
var embedded embed.FS

// Images is the bundled image directory.
func Images() fs.FS {
	sub, err := fs.Sub(embedded, "images")
	if err != nil {
		panic(err)
	}
	return sub
}

// Source fetches an asset by key.
type Source interface {
	Download(ctx context.Context, key string) ([]byte, string, error)
}

// Handler serves assets from src, or from the embedded images when src is
// nil. Mount it behind http.StripPrefix.
func Handler(src Source) http.Handler {
	if src == nil {
		return http.FileServer(http.FS(Images()))
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := strings.TrimPrefix(path.Clean("/"+r.URL.Path), "/")
		if key == "" {
			http.NotFound(w, r)
			return
		}

		data, contentType, err := src.Download(r.Context(), key)
		if errors.Is(err, store.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		if err != nil {
			log.Error().Err(err).Str("key", key).Msg("asset download failed")
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if contentType == "" {
			contentType = mime.TypeByExtension(path.Ext(key))
		}
		if contentType != "" {
			w.Header().Set("Content-Type", contentType)
		}
		w.Write(data)
	})
}

// Uploader stores assets in an object store.
type Uploader interface {
	Exists(ctx context.Context, key string) (bool, error)
	Upload(ctx context.Context, key string, data []byte, contentType string) error
}

// Seed copies every embedded image missing from dst into it.
func Seed(ctx context.Context, dst Uploader) error {
	images := Images()
	return fs.WalkDir(images, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		ok, err := dst.Exists(ctx, p)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
		data, err := fs.ReadFile(images, p)
		if err != nil {
			return err
		}
		log.Info().Str("key", p).Msg("seeding asset")
		return dst.Upload(ctx, p, data, mime.TypeByExtension(path.Ext(p)))
	})
}
