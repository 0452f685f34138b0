// Package binder drives the per-row binding workflow and the batch run.
package binder

import (
	"github.com/hmkz/google-cloud-add-bindings/internal/parser"
)

// Status is the outcome of processing one binding request.
type Status string

const (
	StatusApplied   Status = "applied"
	StatusSimulated Status = "simulated"
	StatusFailed    Status = "failed"
)

// ErrorKind categorizes row-scoped failures.
type ErrorKind string

const (
	ErrorKindUnknownAssetType  ErrorKind = "UnknownAssetType"
	ErrorKindAssetNameMismatch ErrorKind = "AssetNameMismatch"
	ErrorKindPolicyConflict    ErrorKind = "PolicyConflict"
	ErrorKindAPIError          ErrorKind = "ApiError"
)

// BindingResult records the outcome of one binding request. It is created
// once by the applier and never mutated afterwards.
type BindingResult struct {
	Request parser.BindingRequest
	Status  Status
	Member  string // resolved IAM member, e.g. user:alice@example.com

	// Set only when Status is StatusFailed.
	ErrorKind ErrorKind
	Detail    string
}

// Report aggregates the results of one batch run in input order.
type Report struct {
	Total     int
	Applied   int
	Simulated int
	Failed    int
	Results   []BindingResult
}

// HasFailures reports whether any row failed; the CLI turns this into the
// process exit code.
func (r *Report) HasFailures() bool {
	return r.Failed > 0
}
