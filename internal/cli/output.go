// Package cli formats API responses for the vecshard command line.
package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/hyperjump/vecshard/internal/models"
	"github.com/hyperjump/vecshard/pkg/utils"
)

// OutputFormat selects how results are written.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputCompact prints one "rank score id" line per match.
	OutputCompact OutputFormat = "compact"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

// ParseOutputFormat validates a --output flag value. allowed lists the
// formats the calling subcommand supports.
func ParseOutputFormat(s string, allowed ...OutputFormat) (OutputFormat, error) {
	for _, f := range allowed {
		if OutputFormat(s) == f {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown output format %q", s)
}

// WriteSearchResults writes search results to w in the given format.
func WriteSearchResults(w io.Writer, response *models.SearchResponse, format OutputFormat) error {
	switch format {
	case OutputJSON:
		return writeJSON(w, response)
	case OutputCompact:
		for i, m := range response.Matches {
			if _, err := fmt.Fprintf(w, "%d\t%.4f\t%s\n", i+1, m.Score, m.ID); err != nil {
				return err
			}
		}
		return nil
	default:
		fmt.Fprintf(w, "\nFound %d results in %dms (k=%d)\n\n", len(response.Matches), response.QueryTime, response.K)
		for i, m := range response.Matches {
			fmt.Fprintf(w, "%3d. %-40s score %.4f\n", i+1, m.ID, m.Score)
		}
		return nil
	}
}

// WriteVector prints a fetched record. Long vectors are abbreviated in text mode.
func WriteVector(w io.Writer, v *models.VectorResponse, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, v)
	}
	_, err := fmt.Fprintf(w, "id:        %s\ndimension: %d\nvector:    %s\n", v.ID, len(v.Vector), utils.FormatVector(v.Vector, 16))
	return err
}

// WriteStatus prints the server status.
func WriteStatus(w io.Writer, s *models.StatusResponse, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, s)
	}
	fmt.Fprintf(w, "shards:          %d\n", s.ShardCount)
	fmt.Fprintf(w, "vectors:         %d   # total across shards\n", s.Total)
	fmt.Fprintf(w, "exact_search:    %t\n", s.Store.Exact)
	fmt.Fprintf(w, "embedding:       %s (%d dims)\n", s.Embedding.Provider, s.Embedding.Dimensions)
	if s.Embedding.CacheEntries != nil {
		fmt.Fprintf(w, "embedding_cache: %d\n", *s.Embedding.CacheEntries)
	}
	fmt.Fprintf(w, "default_k:       %d\n", s.DefaultK)
	fmt.Fprintf(w, "max_k:           %d\n", s.MaxK)
	if len(s.Store.Shards) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "# shards")
		for _, sh := range s.Store.Shards {
			dim := "unset"
			if sh.Dimension > 0 {
				dim = fmt.Sprint(sh.Dimension)
			}
			fmt.Fprintf(w, "shard %-3d count %-8d dimension %s\n", sh.Index, sh.Count, dim)
		}
	}
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
