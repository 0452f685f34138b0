package binder

import (
	"context"
	"errors"

	"github.com/hmkz/google-cloud-add-bindings/internal/definitions"
	"github.com/hmkz/google-cloud-add-bindings/internal/parser"
	"github.com/hmkz/google-cloud-add-bindings/internal/policy"
	"github.com/hmkz/google-cloud-add-bindings/internal/resolver"
)

// Applier processes one binding request end-to-end: descriptor lookup, asset
// name resolution, policy fetch, additive merge, and submit (or simulate).
type Applier struct {
	Registry *definitions.Registry
	Store    policy.Store
	DryRun   bool
}

// Apply processes a single request and returns its result. Failures are
// recorded in the result; Apply never aborts the surrounding batch.
func (a *Applier) Apply(ctx context.Context, req parser.BindingRequest) BindingResult {
	res := BindingResult{Request: req}

	at, err := a.Registry.Lookup(req.AssetType)
	if err != nil {
		return failed(res, ErrorKindUnknownAssetType, err)
	}

	ids, err := resolver.Resolve(at, req.AssetName)
	if err != nil {
		return failed(res, ErrorKindAssetNameMismatch, err)
	}

	target := policy.Target{
		ResourceType: at.ResourceType,
		ProjectID:    req.ProjectID,
		IDs:          ids,
	}

	current, err := a.Store.GetPolicy(ctx, target)
	if err != nil {
		return failed(res, classify(err), err)
	}

	member := policy.UserMember(req.UserEmail)
	res.Member = member

	if a.DryRun {
		res.Status = StatusSimulated
		return res
	}

	// Already bound: idempotent no-op, still reported as applied.
	if policy.HasMember(current, req.Role, member) {
		res.Status = StatusApplied
		return res
	}

	updated := policy.AddMember(current, req.Role, member)
	if err := a.Store.SetPolicy(ctx, target, updated); err != nil {
		return failed(res, classify(err), err)
	}

	res.Status = StatusApplied
	return res
}

func failed(res BindingResult, kind ErrorKind, err error) BindingResult {
	res.Status = StatusFailed
	res.ErrorKind = kind
	res.Detail = err.Error()
	return res
}

func classify(err error) ErrorKind {
	if errors.Is(err, policy.ErrConflict) {
		return ErrorKindPolicyConflict
	}
	return ErrorKindAPIError
}
