// Package resultstore uploads analysis results to a blob bucket addressed
// by URL (file://, gs://, s3://).
package resultstore

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"gocloud.dev/blob"
	_ "gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/gcsblob"
	_ "gocloud.dev/blob/s3blob"

	"github.com/exfilwatch/file-analysis/pkg/api/forensic"
)

type ResultStore struct {
	bucket        string
	basePath      string
	constructPath bool
}

type (
	Option interface{ set(*ResultStore) }
	option func(*ResultStore) // option implements Option.
)

func (o option) set(rs *ResultStore) { o(rs) }

// ConstructPath will cause Save() to append a date-based suffix to the
// base path, grouping uploaded results by analysis day.
func ConstructPath() Option {
	return option(func(rs *ResultStore) { rs.constructPath = true })
}

// BasePath sets the base path used while saving results to storage.
func BasePath(base string) Option {
	return option(func(rs *ResultStore) { rs.basePath = base })
}

func New(bucket string, options ...Option) *ResultStore {
	rs := &ResultStore{
		bucket: bucket,
	}
	for _, o := range options {
		o.set(rs)
	}
	return rs
}

func (rs *ResultStore) String() string {
	s := rs.bucket + "/" + rs.basePath
	if rs.constructPath {
		s += "+"
	}
	return s
}

func (rs *ResultStore) openBucket(ctx context.Context) (*blob.Bucket, error) {
	return blob.OpenBucket(ctx, rs.bucket)
}

func (rs *ResultStore) generatePath(result *forensic.AnalysisResult) string {
	path := rs.basePath
	if rs.constructPath {
		path = filepath.Join(path, result.CreatedAt.UTC().Format("2006-01-02"))
	}
	return path
}

// MakeFilename returns the upload filename for a result: its analysis ID
// when present, otherwise a sanitized form of the file's base name.
func MakeFilename(result *forensic.AnalysisResult) string {
	if result.ID != "" {
		return result.ID + ".json"
	}
	name := strings.ReplaceAll(filepath.Base(result.Path), string(filepath.Separator), "_")
	if name == "" || name == "." {
		name = "result"
	}
	return name + ".json"
}

// SaveWithFilename uploads the result to the bucket under the given filename.
func (rs *ResultStore) SaveWithFilename(ctx context.Context, result *forensic.AnalysisResult, filename string) error {
	if filename == "" {
		return fmt.Errorf("filename cannot be empty")
	}

	b, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}

	bkt, err := rs.openBucket(ctx)
	if err != nil {
		return err
	}
	defer bkt.Close()

	uploadPath := filepath.Join(rs.generatePath(result), filename)
	slog.InfoContext(ctx, "Uploading result",
		"bucket", rs.bucket,
		"path", uploadPath,
		"risk_level", result.RiskLevel)

	w, err := bkt.NewWriter(ctx, uploadPath, nil)
	if err != nil {
		return err
	}
	if _, err := w.Write(b); err != nil {
		return err
	}
	return w.Close()
}

// Save uploads the result with the default filename.
func (rs *ResultStore) Save(ctx context.Context, result *forensic.AnalysisResult) error {
	return rs.SaveWithFilename(ctx, result, MakeFilename(result))
}

// SaveBatchSummary uploads a compact index of a batch run: one line of
// assessment per analyzed file.
func (rs *ResultStore) SaveBatchSummary(ctx context.Context, results []*forensic.AnalysisResult) error {
	type line struct {
		ID        string             `json:"id"`
		Path      string             `json:"path"`
		RiskScore float64            `json:"risk_score"`
		RiskLevel forensic.RiskLevel `json:"risk_level"`
		Sensitive bool               `json:"is_sensitive"`
	}

	summary := struct {
		CreatedTimestamp int64  `json:"created_timestamp"`
		Count            int    `json:"count"`
		Results          []line `json:"results"`
	}{
		CreatedTimestamp: time.Now().UTC().Unix(),
		Count:            len(results),
	}
	for _, result := range results {
		summary.Results = append(summary.Results, line{
			ID:        result.ID,
			Path:      result.Path,
			RiskScore: result.RiskScore,
			RiskLevel: result.RiskLevel,
			Sensitive: result.Sensitive,
		})
	}

	b, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal summary: %w", err)
	}

	bkt, err := rs.openBucket(ctx)
	if err != nil {
		return err
	}
	defer bkt.Close()

	uploadPath := filepath.Join(rs.basePath, "summary.json")
	w, err := bkt.NewWriter(ctx, uploadPath, nil)
	if err != nil {
		return err
	}
	if _, err := w.Write(b); err != nil {
		return err
	}
	return w.Close()
}
