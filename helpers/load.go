// Package helpers loads tabular input (delimited text, JSON, SQLite) into a
// dataset.Table from a local path or an s3:// URI.
package helpers

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/spektr-org/autochart/dataset"
	"github.com/spektr-org/autochart/schema"
	"github.com/spektr-org/autochart/storage"
)

// LoadOptions controls Load.
type LoadOptions struct {
	CSV CSVOptions
	// S3 configures access when the location is an s3:// URI.
	S3 storage.S3Config
}

// DefaultLoadOptions reads delimited data with a header row, separator by
// extension.
func DefaultLoadOptions() LoadOptions {
	return LoadOptions{CSV: DefaultCSVOptions(), S3: storage.DefaultS3Config()}
}

// Load reads a dataset by extension:
//
//	.csv .txt            delimited text (separator from opts, default ',')
//	.tsv                 tab-separated unless opts names a separator
//	.json .jsonl .ndjson array of objects or one object per line
//	.db .sqlite .sqlite3 one table; "data.db#orders" picks the table
//
// Locations starting with s3:// are downloaded first.
func Load(ctx context.Context, location string, opts LoadOptions) (*dataset.Table, error) {
	loc, table, _ := strings.Cut(location, "#")
	ext := strings.ToLower(path.Ext(loc))

	switch ext {
	case ".csv", ".txt", ".tsv":
		data, err := fetch(ctx, loc, opts)
		if err != nil {
			return nil, err
		}
		csvOpts := opts.CSV
		if csvOpts.Sep == 0 && ext == ".tsv" {
			csvOpts.Sep = '\t'
		}
		return ParseCSV(data, csvOpts)

	case ".json", ".jsonl", ".ndjson":
		data, err := fetch(ctx, loc, opts)
		if err != nil {
			return nil, err
		}
		return ParseJSON(data)

	case ".db", ".sqlite", ".sqlite3":
		if !strings.HasPrefix(loc, "s3://") {
			return LoadSQLite(ctx, loc, table)
		}
		data, err := fetch(ctx, loc, opts)
		if err != nil {
			return nil, err
		}
		tmp, err := os.CreateTemp("", "autochart-*"+ext)
		if err != nil {
			return nil, fmt.Errorf("failed to stage database: %w", err)
		}
		defer os.Remove(tmp.Name())
		if _, err := tmp.Write(data); err != nil {
			tmp.Close()
			return nil, fmt.Errorf("failed to stage database: %w", err)
		}
		if err := tmp.Close(); err != nil {
			return nil, fmt.Errorf("failed to stage database: %w", err)
		}
		return LoadSQLite(ctx, tmp.Name(), table)
	}

	return nil, schema.NewConfigError(schema.CodeUnsupportedFormat,
		fmt.Sprintf("input %q has an unsupported extension %q", location, ext)).
		WithDetails(map[string]interface{}{"extension": ext})
}

// fetch reads a local file or an S3 object.
func fetch(ctx context.Context, loc string, opts LoadOptions) ([]byte, error) {
	if !strings.HasPrefix(loc, "s3://") {
		data, err := os.ReadFile(filepath.Clean(loc))
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", loc, err)
		}
		return data, nil
	}

	bucket, key, err := storage.ParseS3URI(loc)
	if err != nil {
		return nil, err
	}
	store, err := storage.NewS3Store(ctx, bucket, opts.S3)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", loc, err)
	}
	data, err := store.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to download %s: %w", loc, err)
	}
	return data, nil
}
