package database

import (
	"context"
	"strings"

	"facedetection/internal/repository"
	"facedetection/internal/repository/postgres"
	"facedetection/internal/repository/sqlite"
)

// IsPostgres reports whether url addresses a PostgreSQL server.
func IsPostgres(url string) bool {
	return strings.HasPrefix(url, "postgres://") || strings.HasPrefix(url, "postgresql://")
}

// Open returns a PostgreSQL store for postgres:// URLs and a SQLite store
// for anything else, treating it as a file path.
func Open(ctx context.Context, url string) (repository.Store, error) {
	if IsPostgres(url) {
		return postgres.New(ctx, url)
	}
	return sqlite.Open(strings.TrimPrefix(url, "sqlite://"))
}
