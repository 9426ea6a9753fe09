// Package e2e runs a statement corpus through the HTTP API and checks what comes back.
package e2e

import (
	"fmt"

	"github.com/hyperjump/vecshard/internal/models"
)

// Statement is one corpus entry.
type Statement struct {
	ID   string
	Text string
}

// QueryTestCase is a search statement and the id that must rank first for it.
type QueryTestCase struct {
	Statement  string
	ExpectedID string
}

// Corpus holds statements and query cases for E2E tests.
type Corpus struct {
	Statements []Statement
	TestCases  []QueryTestCase
}

var subjects = []string{
	"the shard router",
	"a contiguous arena",
	"the query aggregator",
	"cosine similarity",
	"a reader writer lock",
	"the embedding cache",
	"swap delete",
	"the rate limiter",
	"config hot reload",
	"a graceful shutdown",
}

var predicates = []string{
	"keeps lookups fast under load",
	"rejects vectors of the wrong length",
	"returns results most similar first",
	"fans out across every partition",
	"never blocks other readers",
	"copies data on the way in and out",
	"is covered by table driven tests",
	"logs at debug level only",
	"survives an empty store",
	"scales with the number of cores",
}

// BuildCorpus returns n statements built from subject/predicate pairs with
// distinct ids, and one query case per statement: searching a statement's own
// text must return it first.
func BuildCorpus(n int) *Corpus {
	limit := len(subjects) * len(predicates)
	if n > limit {
		n = limit
	}
	c := &Corpus{
		Statements: make([]Statement, 0, n),
		TestCases:  make([]QueryTestCase, 0, n),
	}
	for i := 0; i < n; i++ {
		text := fmt.Sprintf("%s %s", subjects[i%len(subjects)], predicates[i/len(subjects)])
		id := fmt.Sprintf("e2e-%03d", i+1)
		c.Statements = append(c.Statements, Statement{ID: id, Text: text})
		c.TestCases = append(c.TestCases, QueryTestCase{Statement: text, ExpectedID: id})
	}
	return c
}

// VectorInputs converts the corpus to upsert requests.
func (c *Corpus) VectorInputs() []models.VectorInput {
	out := make([]models.VectorInput, len(c.Statements))
	for i, s := range c.Statements {
		out[i] = models.VectorInput{ID: s.ID, Statement: s.Text}
	}
	return out
}
