package e2e

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hyperjump/vecshard/internal/config"
	"github.com/hyperjump/vecshard/internal/embedding"
	"github.com/hyperjump/vecshard/internal/models"
	"github.com/hyperjump/vecshard/internal/server"
	"github.com/hyperjump/vecshard/internal/store"
	"github.com/vmihailenco/msgpack/v5"
	"go.uber.org/zap"
)

const e2eShards = 8

func startServer(t *testing.T, exact bool) string {
	t.Helper()
	cfg := config.Default()
	cfg.Store.ShardCount = e2eShards
	cfg.Store.ExactSearch = exact
	embedder, err := embedding.New(embedding.Options{
		Provider:   cfg.Embedding.Provider,
		Dimensions: cfg.Embedding.Dimensions,
		CacheSize:  cfg.Embedding.CacheSize,
	})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = embedder.Close() })
	st, err := store.New(cfg.Store.ShardCount, store.WithExactSearch(exact))
	if err != nil {
		t.Fatal(err)
	}
	ts := httptest.NewServer(server.NewServer(st, embedder, cfg, zap.NewNop()).Handler())
	t.Cleanup(ts.Close)
	return ts.URL
}

func postJSON(t *testing.T, url string, body, out any) int {
	t.Helper()
	b, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(b))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if out != nil && resp.StatusCode == http.StatusOK {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatal(err)
		}
	}
	return resp.StatusCode
}

func loadCorpus(t *testing.T, url string, c *Corpus) {
	t.Helper()
	for _, in := range c.VectorInputs() {
		if code := postJSON(t, url+"/api/v1/vectors", in, nil); code != http.StatusOK {
			t.Fatalf("upsert %s: status %d", in.ID, code)
		}
	}
}

func search(t *testing.T, url string, q models.SearchQuery) *models.SearchResponse {
	t.Helper()
	var resp models.SearchResponse
	if code := postJSON(t, url+"/api/v1/search", q, &resp); code != http.StatusOK {
		t.Fatalf("search %q: status %d", q.Statement, code)
	}
	return &resp
}

func TestE2E_StatementsFindThemselves(t *testing.T) {
	url := startServer(t, false)
	corpus := BuildCorpus(100)
	loadCorpus(t, url, corpus)
	t.Logf("loaded %d statements; running %d query cases", len(corpus.Statements), len(corpus.TestCases))

	for _, tc := range corpus.TestCases {
		t.Run(tc.ExpectedID, func(t *testing.T) {
			resp := search(t, url, models.SearchQuery{Statement: tc.Statement, K: 5})
			if len(resp.TopK) != 5 {
				t.Fatalf("want 5 results, got %d", len(resp.TopK))
			}
			if resp.TopK[0] != tc.ExpectedID {
				t.Errorf("query %q: top result %s, want %s (all: %v)", tc.Statement, resp.TopK[0], tc.ExpectedID, resp.TopK)
			}
			for i := 1; i < len(resp.Matches); i++ {
				if resp.Matches[i].Score > resp.Matches[i-1].Score {
					t.Errorf("results out of order at %d: %v", i, resp.Matches)
				}
			}
		})
	}
}

func TestE2E_ExactAndTwoPhaseAgreeWhenQuiescent(t *testing.T) {
	corpus := BuildCorpus(100)
	twoPhase := startServer(t, false)
	exact := startServer(t, true)
	loadCorpus(t, twoPhase, corpus)
	loadCorpus(t, exact, corpus)

	for _, tc := range corpus.TestCases[:20] {
		q := models.SearchQuery{Statement: tc.Statement, K: 10}
		a := search(t, twoPhase, q)
		b := search(t, exact, q)
		if len(a.Matches) != len(b.Matches) {
			t.Fatalf("%q: %d vs %d matches", tc.Statement, len(a.Matches), len(b.Matches))
		}
		for i := range a.Matches {
			if a.Matches[i].Score != b.Matches[i].Score {
				t.Errorf("%q rank %d: two-phase %v, exact %v", tc.Statement, i, a.Matches[i], b.Matches[i])
			}
		}
	}
}

func TestE2E_DeletedStatementsDisappear(t *testing.T) {
	url := startServer(t, false)
	corpus := BuildCorpus(40)
	loadCorpus(t, url, corpus)

	deleted := make(map[string]bool)
	for i, s := range corpus.Statements {
		if i%2 == 1 {
			continue
		}
		req, _ := http.NewRequest(http.MethodDelete, url+"/api/v1/vectors/"+s.ID, nil)
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("delete %s: status %d", s.ID, resp.StatusCode)
		}
		deleted[s.ID] = true
	}

	resp := search(t, url, models.SearchQuery{Statement: corpus.Statements[0].Text, K: 40})
	if len(resp.TopK) != 20 {
		t.Errorf("want 20 survivors, got %d", len(resp.TopK))
	}
	for _, id := range resp.TopK {
		if deleted[id] {
			t.Errorf("deleted id %s returned", id)
		}
	}

	var status models.StatusResponse
	r, err := http.Get(url + "/api/v1/status")
	if err != nil {
		t.Fatal(err)
	}
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(&status); err != nil {
		t.Fatal(err)
	}
	if status.Total != 20 {
		t.Errorf("status total = %d, want 20", status.Total)
	}
}

func TestE2E_MsgpackClient(t *testing.T) {
	url := startServer(t, false)
	corpus := BuildCorpus(10)
	loadCorpus(t, url, corpus)

	body, err := msgpack.Marshal(models.SearchQuery{Statement: corpus.Statements[3].Text, K: 1})
	if err != nil {
		t.Fatal(err)
	}
	req, _ := http.NewRequest(http.MethodPost, url+"/api/v1/search", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/msgpack")
	req.Header.Set("Accept", "application/msgpack")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}
	var out models.SearchResponse
	if err := msgpack.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	if len(out.TopK) != 1 || out.TopK[0] != corpus.Statements[3].ID {
		t.Errorf("msgpack search = %v", out.TopK)
	}
}
