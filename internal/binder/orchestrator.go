package binder

import (
	"context"

	"github.com/hmkz/google-cloud-add-bindings/internal/parser"
)

// ProcessBatch runs the applier over all requests sequentially, in input
// order. A failed row never aborts the batch; every request produces exactly
// one result. Rows are processed one at a time so that two rows touching the
// same resource cannot race the fetch-then-submit cycle.
func ProcessBatch(ctx context.Context, a *Applier, requests []parser.BindingRequest) *Report {
	report := &Report{
		Total:   len(requests),
		Results: make([]BindingResult, 0, len(requests)),
	}

	for _, req := range requests {
		res := a.Apply(ctx, req)
		switch res.Status {
		case StatusApplied:
			report.Applied++
		case StatusSimulated:
			report.Simulated++
		case StatusFailed:
			report.Failed++
		}
		report.Results = append(report.Results, res)
	}

	return report
}
