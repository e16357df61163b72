package resultstore

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/exfilwatch/file-analysis/internal/utils"
	"github.com/exfilwatch/file-analysis/pkg/api/forensic"
)

func TestSaveToFileBucket(t *testing.T) {
	tmpDir := t.TempDir()
	rs := New("file://" + tmpDir)

	result := &forensic.AnalysisResult{
		ID:        "b2c3d4e5-0000-0000-0000-000000000001",
		Path:      "/evidence/export.zip",
		FileType:  forensic.CategoryZip,
		RiskScore: 55,
		RiskLevel: forensic.RiskHigh,
		CreatedAt: time.Now().UTC(),
	}

	if err := rs.Save(context.Background(), result); err != nil {
		t.Fatalf("Save() = %v", err)
	}

	data, err := os.ReadFile(filepath.Join(tmpDir, result.ID+".json"))
	if err != nil {
		t.Fatalf("read uploaded result: %v", err)
	}

	var restored forensic.AnalysisResult
	if err := json.Unmarshal(data, &restored); err != nil {
		t.Fatalf("unmarshal uploaded result: %v", err)
	}
	if restored.ID != result.ID || restored.RiskLevel != forensic.RiskHigh {
		t.Errorf("restored = %+v", restored)
	}

	direct, err := json.Marshal(result)
	if err != nil {
		t.Fatal(err)
	}
	if equal, err := utils.JSONEquals(data, direct); err != nil || !equal {
		t.Errorf("uploaded JSON differs from direct serialization (equal=%v, err=%v)", equal, err)
	}
}

func TestSaveConstructPath(t *testing.T) {
	tmpDir := t.TempDir()
	rs := New("file://"+tmpDir, BasePath("scans"), ConstructPath())

	created := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	result := &forensic.AnalysisResult{ID: "abc", CreatedAt: created}

	if err := rs.Save(context.Background(), result); err != nil {
		t.Fatalf("Save() = %v", err)
	}

	want := filepath.Join(tmpDir, "scans", "2026-03-14", "abc.json")
	if _, err := os.Stat(want); err != nil {
		t.Errorf("expected upload at %s: %v", want, err)
	}
}

func TestMakeFilename(t *testing.T) {
	tests := []struct {
		name   string
		result *forensic.AnalysisResult
		want   string
	}{
		{"with id", &forensic.AnalysisResult{ID: "xyz", Path: "/a/b.pdf"}, "xyz.json"},
		{"without id", &forensic.AnalysisResult{Path: "/a/report.pdf"}, "report.pdf.json"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := MakeFilename(test.result); got != test.want {
				t.Errorf("MakeFilename() = %q, want %q", got, test.want)
			}
		})
	}
}

func TestSaveBatchSummary(t *testing.T) {
	tmpDir := t.TempDir()
	rs := New("file://" + tmpDir)

	results := []*forensic.AnalysisResult{
		{ID: "one", Path: "/a", RiskScore: 10, RiskLevel: forensic.RiskLow},
		{ID: "two", Path: "/b", RiskScore: 80, RiskLevel: forensic.RiskCritical, Sensitive: true},
	}

	if err := rs.SaveBatchSummary(context.Background(), results); err != nil {
		t.Fatalf("SaveBatchSummary() = %v", err)
	}

	data, err := os.ReadFile(filepath.Join(tmpDir, "summary.json"))
	if err != nil {
		t.Fatalf("read summary: %v", err)
	}

	var summary struct {
		Count   int `json:"count"`
		Results []struct {
			ID        string             `json:"id"`
			RiskLevel forensic.RiskLevel `json:"risk_level"`
		} `json:"results"`
	}
	if err := json.Unmarshal(data, &summary); err != nil {
		t.Fatal(err)
	}
	if summary.Count != 2 || summary.Results[1].RiskLevel != forensic.RiskCritical {
		t.Errorf("summary = %+v", summary)
	}
}
