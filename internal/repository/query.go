package repository

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

const (
	// ColumnID is the row id column of every media table.
	ColumnID = "_id"
	// ColumnData holds the absolute filesystem path of a media item.
	ColumnData = "_data"
)

var (
	ErrUnknownTable  = errors.New("unknown media table")
	ErrUnknownColumn = errors.New("unknown media column")
	ErrInvalidURI    = errors.New("invalid content uri")
)

var tables = map[string]bool{
	"images": true,
	"audio":  true,
	"video":  true,
}

var columns = map[string]bool{
	ColumnID:        true,
	ColumnData:      true,
	"_display_name": true,
	"_size":         true,
	"mime_type":     true,
	"date_added":    true,
}

// ContentURI builds the content URI addressing a single media row.
func ContentURI(table string, id int64) string {
	return fmt.Sprintf("content://media/external/%s/media/%d", table, id)
}

// ParseTarget maps a table name or a content URI of the form
// content://media/<volume>/<images|audio|video>/media[/<id>] to a table and
// an optional row id.
func ParseTarget(target string) (table string, id int64, hasID bool, err error) {
	if tables[target] {
		return target, 0, false, nil
	}

	u, err := url.Parse(target)
	if err != nil || u.Scheme != "content" || u.Host != "media" {
		return "", 0, false, fmt.Errorf("%w: %s", ErrInvalidURI, target)
	}

	// /<volume>/<table>/media[/<id>]
	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(segments) < 3 || segments[2] != "media" {
		return "", 0, false, fmt.Errorf("%w: %s", ErrInvalidURI, target)
	}

	table = segments[1]
	if !tables[table] {
		return "", 0, false, fmt.Errorf("%w: %s", ErrUnknownTable, table)
	}

	switch len(segments) {
	case 3:
		return table, 0, false, nil
	case 4:
		id, err := strconv.ParseInt(segments[3], 10, 64)
		if err != nil {
			return "", 0, false, fmt.Errorf("%w: bad id in %s", ErrInvalidURI, target)
		}
		return table, id, true, nil
	}
	return "", 0, false, fmt.Errorf("%w: %s", ErrInvalidURI, target)
}

// BuildQuery validates the target and projection and returns a SELECT with
// ? placeholders together with its final argument list.
func BuildQuery(target string, projection []string, selection string, args []any) (string, []any, error) {
	table, id, hasID, err := ParseTarget(target)
	if err != nil {
		return "", nil, err
	}

	if len(projection) == 0 {
		return "", nil, fmt.Errorf("%w: empty projection", ErrUnknownColumn)
	}
	for _, c := range projection {
		if !columns[c] {
			return "", nil, fmt.Errorf("%w: %s", ErrUnknownColumn, c)
		}
	}

	query := "SELECT " + strings.Join(projection, ", ") + " FROM " + table + " WHERE 1=1"
	out := append([]any{}, args...)

	if selection != "" {
		query += " AND (" + selection + ")"
	}
	if hasID {
		query += " AND " + ColumnID + " = ?"
		out = append(out, id)
	}
	query += " ORDER BY " + ColumnID

	return query, out, nil
}
