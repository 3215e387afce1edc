package report

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"path"
	"time"

	"github.com/spektr-org/autochart/engine"
	"github.com/spektr-org/autochart/storage"
)

// ============================================================================
// MANIFEST — machine-readable index of a pass
// ============================================================================

// File names written next to the artifacts.
const (
	ManifestFile = "manifest.json"
	ReportFile   = "report.md"
)

// Manifest lists what a pass produced.
type Manifest struct {
	RunID       string        `json:"runId"`
	CreatedAt   time.Time     `json:"createdAt"`
	Target      string        `json:"target,omitempty"`
	ProblemType string        `json:"problemType"`
	Classes     []string      `json:"classes,omitempty"`
	Rows        int           `json:"rows"`
	SourceRows  int           `json:"sourceRows"`
	Elapsed     string        `json:"elapsed"`
	Location    string        `json:"location,omitempty"`
	Buckets     []BucketEntry `json:"buckets"`
	Warnings    []string      `json:"warnings,omitempty"`
	Errors      []string      `json:"errors,omitempty"`
}

// BucketEntry is one non-empty bucket.
type BucketEntry struct {
	Family      engine.Family   `json:"family"`
	Heading     string          `json:"heading"`
	Subheadings []string        `json:"subheadings,omitempty"`
	Artifacts   []ArtifactEntry `json:"artifacts"`
}

// ArtifactEntry is one chart file. DataPath names the CSV export of the
// chart's series, when it has one.
type ArtifactEntry struct {
	Name     string `json:"name"`
	Title    string `json:"title"`
	Format   string `json:"format"`
	Path     string `json:"path,omitempty"`
	DataPath string `json:"dataPath,omitempty"`
}

// BuildManifest indexes res. The overall bucket is listed even without
// artifacts since it carries the dataset summary.
func BuildManifest(res *engine.Result) *Manifest {
	m := &Manifest{
		RunID:     res.RunID,
		CreatedAt: time.Now().UTC(),
		Elapsed:   res.Elapsed.Round(time.Millisecond).String(),
		Location:  res.Location,
		Errors:    res.Errors,
	}
	if cls := res.Classification; cls != nil {
		m.Target = cls.Target
		m.ProblemType = cls.ProblemType.String()
		m.Classes = cls.Classes
		m.Rows = cls.Rows
		m.SourceRows = cls.SourceRows
		m.Warnings = cls.Warnings
	}
	if res.Buckets == nil {
		return m
	}

	for _, b := range ordered(res.Buckets) {
		if b.Empty() && b.Family != engine.FamilyOverall {
			continue
		}
		entry := BucketEntry{
			Family:      b.Family,
			Heading:     b.Heading,
			Subheadings: b.Subheadings,
			Artifacts:   make([]ArtifactEntry, 0, len(b.Artifacts)),
		}
		for _, a := range b.Artifacts {
			ae := ArtifactEntry{Name: a.Name, Title: a.Title, Format: a.Format, Path: a.Path}
			if a.Chart != nil {
				ae.DataPath = a.Name + ".csv"
			}
			entry.Artifacts = append(entry.Artifacts, ae)
		}
		m.Buckets = append(m.Buckets, entry)
	}
	return m
}

// ============================================================================
// SAVE — manifest, report and chart data into the artifact directory
// ============================================================================

// Save writes the manifest, the Markdown report and one CSV per chart with
// series data under dir in store. It returns the keys written.
func Save(ctx context.Context, store storage.Store, dir string, res *engine.Result) ([]string, error) {
	var written []string
	put := func(name, contentType string, data []byte) error {
		key := path.Join(dir, name)
		if err := store.Put(ctx, key, data, contentType); err != nil {
			return fmt.Errorf("failed to save %s: %w", key, err)
		}
		written = append(written, key)
		return nil
	}

	m := BuildManifest(res)
	if res.Buckets != nil {
		for _, b := range res.Buckets.All() {
			for _, a := range b.Artifacts {
				if a.Chart == nil {
					continue
				}
				var buf bytes.Buffer
				if err := ChartCSV(&buf, a.Chart); err != nil {
					log.Printf("⚠️  autochart: no data export for %s: %v", a.Name, err)
					clearDataPath(m, a.Name)
					continue
				}
				if err := put(a.Name+".csv", "text/csv", buf.Bytes()); err != nil {
					return written, err
				}
			}
		}
	}

	var md bytes.Buffer
	if err := Markdown(&md, res); err != nil {
		return written, fmt.Errorf("failed to render report: %w", err)
	}
	if err := put(ReportFile, "text/markdown", md.Bytes()); err != nil {
		return written, err
	}

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return written, fmt.Errorf("failed to marshal manifest: %w", err)
	}
	if err := put(ManifestFile, "application/json", data); err != nil {
		return written, err
	}
	return written, nil
}

func clearDataPath(m *Manifest, name string) {
	for i := range m.Buckets {
		for j := range m.Buckets[i].Artifacts {
			if m.Buckets[i].Artifacts[j].Name == name {
				m.Buckets[i].Artifacts[j].DataPath = ""
			}
		}
	}
}
