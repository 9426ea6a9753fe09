// Package models defines the request and response shapes of the HTTP API.
// Every type carries json and msgpack tags; the server picks the codec from
// Content-Type and Accept.
package models

import "fmt"

// VectorInput upserts a record. Exactly one of Statement or Vector must be set;
// a statement is embedded server-side.
type VectorInput struct {
	ID        string    `json:"id" msgpack:"id"`
	Statement string    `json:"statement,omitempty" msgpack:"statement,omitempty"`
	Vector    []float32 `json:"vector,omitempty" msgpack:"vector,omitempty"`
}

// Validate checks required fields.
func (in *VectorInput) Validate() error {
	if in.ID == "" {
		return fmt.Errorf("id is required")
	}
	if in.Statement == "" && len(in.Vector) == 0 {
		return fmt.Errorf("statement or vector is required")
	}
	if in.Statement != "" && len(in.Vector) > 0 {
		return fmt.Errorf("statement and vector are mutually exclusive")
	}
	return nil
}

// UpsertResponse acknowledges an upsert.
type UpsertResponse struct {
	ID        string `json:"id" msgpack:"id"`
	Status    string `json:"status" msgpack:"status"`
	Dimension int    `json:"dimension" msgpack:"dimension"`
}

// VectorResponse is a fetched record.
type VectorResponse struct {
	ID     string    `json:"id" msgpack:"id"`
	Vector []float32 `json:"vector" msgpack:"vector"`
}

// StatusMessage is a plain status acknowledgement such as {"status":"deleted"}.
type StatusMessage struct {
	Status string `json:"status" msgpack:"status"`
}

// ErrorResponse is returned with every non-2xx status.
type ErrorResponse struct {
	Error string `json:"error" msgpack:"error"`
}
