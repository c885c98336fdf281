package media

import (
	"context"
	"net/url"
	"os"
	"strings"

	"facedetection/internal/config"
	"facedetection/internal/logger"
	"facedetection/internal/models"
	"facedetection/internal/repository"
)

const (
	// MediaDocumentsAuthority is the authority of document references
	// issued by the system media picker.
	MediaDocumentsAuthority = "com.android.providers.media.documents"

	contentScheme = "content"
	fileScheme    = "file"
)

// Resolver turns content references and paths into filesystem paths.
type Resolver struct {
	store  repository.MediaStore
	root   string
	logger *logger.Logger
}

// NewResolver creates a Resolver backed by store. Primary-volume documents
// resolve relative to cfg.ExternalStorageRoot.
func NewResolver(store repository.MediaStore, cfg *config.Config, logger *logger.Logger) *Resolver {
	return &Resolver{
		store:  store,
		root:   cfg.ExternalStorageRoot,
		logger: logger,
	}
}

// Resolve returns the filesystem path for ref. ok is false when the
// reference cannot be resolved; lookup errors are logged, never returned.
func (r *Resolver) Resolve(ctx context.Context, ref string) (path string, ok bool) {
	if ref == "" {
		return "", false
	}

	if exists(ref) {
		return ref, true
	}

	u, err := url.Parse(ref)
	if err != nil {
		r.logger.Warning("Unparseable media reference %q: %v", ref, err)
		return "", false
	}

	if u.Path != "" && exists(u.Path) {
		return u.Path, true
	}

	switch {
	case u.Scheme == contentScheme && u.Host == MediaDocumentsAuthority:
		return r.resolveDocument(ctx, u)
	case u.Scheme == contentScheme:
		return r.queryData(ctx, ref, "")
	case u.Scheme == fileScheme:
		return "", false
	}

	r.logger.Warning("Unsupported media reference %q", ref)
	return "", false
}

// resolveDocument handles content://<media documents>/document/<type>:<id>.
func (r *Resolver) resolveDocument(ctx context.Context, u *url.URL) (string, bool) {
	docID, found := strings.CutPrefix(u.Path, "/document/")
	if !found || docID == "" {
		r.logger.Warning("Media document reference without id: %s", u)
		return "", false
	}

	docType, id, found := strings.Cut(docID, ":")
	if !found || id == "" {
		r.logger.Warning("Malformed document id %q", docID)
		return "", false
	}

	if strings.EqualFold(docType, "primary") {
		return strings.TrimRight(r.root, "/") + "/" + id, true
	}

	var kind models.MediaKind
	switch docType {
	case "image":
		kind = models.MediaImage
	case "video":
		kind = models.MediaVideo
	case "audio":
		kind = models.MediaAudio
	default:
		r.logger.Warning("Unsupported document type %q", docType)
		return "", false
	}

	return r.queryData(ctx, kind.Table(), repository.ColumnID+"=?", id)
}

// queryData reads the _data column of the first row matched by the lookup.
func (r *Resolver) queryData(ctx context.Context, target, selection string, args ...any) (string, bool) {
	if r.store == nil {
		return "", false
	}

	cursor, err := r.store.Query(ctx, target, []string{repository.ColumnData}, selection, args...)
	if err != nil {
		r.logger.Error("Media lookup failed for %s: %v", target, err)
		return "", false
	}
	defer func() {
		if err := cursor.Close(); err != nil {
			r.logger.Warning("Failed to close media cursor: %v", err)
		}
	}()

	if !cursor.Next() {
		if err := cursor.Err(); err != nil {
			r.logger.Error("Media lookup failed for %s: %v", target, err)
		}
		return "", false
	}

	var data *string
	if err := cursor.Scan(&data); err != nil {
		r.logger.Error("Failed to read media path for %s: %v", target, err)
		return "", false
	}
	if data == nil || *data == "" {
		return "", false
	}

	return *data, true
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
