package media

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"time"

	"facedetection/internal/models"
	"facedetection/internal/repository"
)

// Scan walks dir and returns a MediaItem for every file with a known image,
// audio or video extension, sorted by path. Paths are absolute.
func Scan(dir string) ([]models.MediaItem, int, error) {
	root, err := filepath.Abs(dir)
	if err != nil {
		return nil, 0, err
	}

	var items []models.MediaItem
	skipped := 0

	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		kind, mime, ok := models.ClassifyFile(d.Name())
		if !ok {
			skipped++
			return nil
		}

		info, err := d.Info()
		if err != nil {
			skipped++
			return nil
		}

		items = append(items, models.MediaItem{
			Kind:        kind,
			Data:        path,
			DisplayName: d.Name(),
			MimeType:    mime,
			Size:        info.Size(),
			DateAdded:   info.ModTime().Truncate(time.Second),
		})
		return nil
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to scan %s: %w", dir, err)
	}

	sort.Slice(items, func(i, j int) bool { return items[i].Data < items[j].Data })
	return items, skipped, nil
}

// Index inserts items into repo, setting their IDs, and returns the content
// URI of each row in item order. progress, when set, is called after each insert.
func Index(ctx context.Context, repo repository.MediaRepository, items []models.MediaItem, progress func()) ([]string, error) {
	uris := make([]string, 0, len(items))
	for i := range items {
		id, err := repo.Insert(ctx, &items[i])
		if err != nil {
			return uris, fmt.Errorf("failed to index %s: %w", items[i].Data, err)
		}
		items[i].ID = id
		uris = append(uris, repository.ContentURI(items[i].Kind.Table(), id))
		if progress != nil {
			progress()
		}
	}
	return uris, nil
}
