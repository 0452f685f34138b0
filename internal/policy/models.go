// Package policy models IAM policies as role-to-members bindings and
// provides the backends that fetch and submit them.
package policy

import (
	"context"
	"errors"
)

// Binding associates a role with the members who hold it.
type Binding struct {
	Role    string
	Members []string
}

// Policy is a snapshot of a resource's IAM policy. Etag is the optimistic
// concurrency token returned by the fetch and validated on submit.
type Policy struct {
	Etag     string
	Bindings []Binding
}

// Target identifies one resource instance for policy operations.
// ResourceType selects the backend; IDs are the identifiers extracted from
// the asset name, in capture group order.
type Target struct {
	ResourceType string
	ProjectID    string
	IDs          []string
}

// ErrConflict indicates the concurrency token was rejected on submit:
// the policy changed between fetch and submit. The caller should re-run
// rather than overwrite.
var ErrConflict = errors.New("policy conflict")

// Store fetches and submits IAM policies for resolved targets.
type Store interface {
	GetPolicy(ctx context.Context, t Target) (*Policy, error)
	SetPolicy(ctx context.Context, t Target, p *Policy) error
}

// UserMember renders a user email as an IAM member string.
func UserMember(email string) string {
	return "user:" + email
}
