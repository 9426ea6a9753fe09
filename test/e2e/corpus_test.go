package e2e

import (
	"testing"
)

func TestBuildCorpus_Size(t *testing.T) {
	c := BuildCorpus(100)
	if len(c.Statements) != 100 || len(c.TestCases) != 100 {
		t.Errorf("got %d statements, %d cases", len(c.Statements), len(c.TestCases))
	}
	if got := len(BuildCorpus(1000).Statements); got != len(subjects)*len(predicates) {
		t.Errorf("corpus should be capped at %d, got %d", len(subjects)*len(predicates), got)
	}
}

func TestBuildCorpus_UniqueIDsAndTexts(t *testing.T) {
	c := BuildCorpus(100)
	ids := make(map[string]bool)
	texts := make(map[string]bool)
	for _, s := range c.Statements {
		if ids[s.ID] {
			t.Errorf("duplicate id %s", s.ID)
		}
		if texts[s.Text] {
			t.Errorf("duplicate text %q", s.Text)
		}
		ids[s.ID] = true
		texts[s.Text] = true
	}
}

func TestCorpus_VectorInputs(t *testing.T) {
	c := BuildCorpus(10)
	inputs := c.VectorInputs()
	if len(inputs) != 10 {
		t.Fatalf("got %d inputs", len(inputs))
	}
	for i, in := range inputs {
		if err := in.Validate(); err != nil {
			t.Errorf("input %d invalid: %v", i, err)
		}
		if in.ID != c.Statements[i].ID || in.Statement != c.Statements[i].Text {
			t.Errorf("input %d = %+v", i, in)
		}
	}
}
