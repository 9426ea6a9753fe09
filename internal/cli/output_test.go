package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/hyperjump/vecshard/internal/models"
	"github.com/hyperjump/vecshard/internal/store"
)

func sampleResponse() *models.SearchResponse {
	return models.NewSearchResponse([]store.Match{
		{ID: "doc-1", Score: 0.99},
		{ID: "doc-2", Score: 0.5},
	}, 2, 7)
}

func TestWriteSearchResults_JSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteSearchResults(&buf, sampleResponse(), OutputJSON); err != nil {
		t.Fatalf("WriteSearchResults(json): %v", err)
	}
	var decoded models.SearchResponse
	if err := json.NewDecoder(&buf).Decode(&decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if len(decoded.TopK) != 2 || decoded.TopK[0] != "doc-1" {
		t.Errorf("top_k = %v", decoded.TopK)
	}
	if decoded.QueryTime != 7 {
		t.Errorf("query_time_ms = %d", decoded.QueryTime)
	}
}

func TestWriteSearchResults_JSON_empty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteSearchResults(&buf, models.NewSearchResponse(nil, 5, 0), OutputJSON); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), `"matches": []`) {
		t.Errorf("empty matches should encode as [], got:\n%s", buf.String())
	}
}

func TestWriteSearchResults_text(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteSearchResults(&buf, sampleResponse(), OutputText); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, sub := range []string{"Found 2 results", "7ms", "k=2", "1. doc-1", "0.9900", "2. doc-2"} {
		if !strings.Contains(out, sub) {
			t.Errorf("text output missing %q:\n%s", sub, out)
		}
	}
}

func TestWriteSearchResults_compact(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteSearchResults(&buf, sampleResponse(), OutputCompact); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("want 2 lines, got %d:\n%s", len(lines), buf.String())
	}
	if lines[0] != "1\t0.9900\tdoc-1" {
		t.Errorf("first line = %q", lines[0])
	}
}

func TestWriteVector(t *testing.T) {
	var buf bytes.Buffer
	v := &models.VectorResponse{ID: "a", Vector: []float32{1, 0.5}}
	if err := WriteVector(&buf, v, OutputText); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, "id:        a") || !strings.Contains(out, "[1, 0.5]") {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestWriteStatus(t *testing.T) {
	cached := 7
	s := &models.StatusResponse{
		ShardCount: 2,
		Total:      3,
		Store: store.Stats{
			Shards: []store.ShardStats{{Index: 0, Count: 3, Dimension: 4}, {Index: 1}},
			Total:  3,
		},
		Embedding: models.EmbeddingInfo{Provider: "dft", Dimensions: 10, CacheEntries: &cached},
		DefaultK:  10,
		MaxK:      1000,
	}
	var buf bytes.Buffer
	if err := WriteStatus(&buf, s, OutputText); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, sub := range []string{"shards:          2", "vectors:         3", "dft (10 dims)", "embedding_cache: 7", "dimension 4", "dimension unset"} {
		if !strings.Contains(out, sub) {
			t.Errorf("status output missing %q:\n%s", sub, out)
		}
	}

	buf.Reset()
	if err := WriteStatus(&buf, s, OutputJSON); err != nil {
		t.Fatal(err)
	}
	var decoded models.StatusResponse
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded.Total != 3 || len(decoded.Store.Shards) != 2 {
		t.Errorf("decoded status = %+v", decoded)
	}
}

func TestParseOutputFormat(t *testing.T) {
	if f, err := ParseOutputFormat("compact", OutputText, OutputCompact, OutputJSON); err != nil || f != OutputCompact {
		t.Errorf("compact: got %q, %v", f, err)
	}
	if _, err := ParseOutputFormat("compact", OutputText, OutputJSON); err == nil {
		t.Error("compact should be rejected when not allowed")
	}
	if _, err := ParseOutputFormat("xml", OutputText, OutputJSON); err == nil {
		t.Error("expected error for xml")
	}
}
