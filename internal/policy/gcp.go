package policy

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"google.golang.org/api/bigquery/v2"
	"google.golang.org/api/cloudresourcemanager/v1"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/storage/v1"
)

// GCPStore implements Store against the Google Cloud APIs. It dispatches on
// the target's resource type: project (Cloud Resource Manager), bucket
// (Cloud Storage), dataset and table (BigQuery).
type GCPStore struct {
	crm *cloudresourcemanager.Service
	gcs *storage.Service
	bq  *bigquery.Service

	// Last fetched dataset per target, so access entries the binding model
	// cannot express (views, authorized datasets, special groups) survive a
	// submit unchanged.
	mu       sync.Mutex
	datasets map[string]*bigquery.Dataset
}

// NewGCPStore builds API clients using the given service account key file,
// or application default credentials when credentialsFile is empty.
func NewGCPStore(ctx context.Context, credentialsFile string) (*GCPStore, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	crm, err := cloudresourcemanager.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create cloudresourcemanager client: %w", err)
	}
	gcs, err := storage.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	bq, err := bigquery.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create bigquery client: %w", err)
	}

	return &GCPStore{
		crm:      crm,
		gcs:      gcs,
		bq:       bq,
		datasets: make(map[string]*bigquery.Dataset),
	}, nil
}

func (s *GCPStore) GetPolicy(ctx context.Context, t Target) (*Policy, error) {
	switch t.ResourceType {
	case "project":
		return s.getProjectPolicy(ctx, t)
	case "bucket":
		return s.getBucketPolicy(ctx, t)
	case "dataset":
		return s.getDatasetPolicy(ctx, t)
	case "table":
		return s.getTablePolicy(ctx, t)
	default:
		return nil, fmt.Errorf("no policy backend for resource type %q", t.ResourceType)
	}
}

func (s *GCPStore) SetPolicy(ctx context.Context, t Target, p *Policy) error {
	switch t.ResourceType {
	case "project":
		return s.setProjectPolicy(ctx, t, p)
	case "bucket":
		return s.setBucketPolicy(ctx, t, p)
	case "dataset":
		return s.setDatasetPolicy(ctx, t, p)
	case "table":
		return s.setTablePolicy(ctx, t, p)
	default:
		return fmt.Errorf("no policy backend for resource type %q", t.ResourceType)
	}
}

// Projects

func (s *GCPStore) getProjectPolicy(ctx context.Context, t Target) (*Policy, error) {
	if len(t.IDs) < 1 {
		return nil, fmt.Errorf("project target needs 1 identifier, got %d", len(t.IDs))
	}
	resp, err := s.crm.Projects.GetIamPolicy(t.IDs[0], &cloudresourcemanager.GetIamPolicyRequest{}).Context(ctx).Do()
	if err != nil {
		return nil, translateAPIError(err)
	}

	p := &Policy{Etag: resp.Etag}
	for _, b := range resp.Bindings {
		p.Bindings = append(p.Bindings, Binding{
			Role:    b.Role,
			Members: append([]string(nil), b.Members...),
		})
	}
	return p, nil
}

func (s *GCPStore) setProjectPolicy(ctx context.Context, t Target, p *Policy) error {
	if len(t.IDs) < 1 {
		return fmt.Errorf("project target needs 1 identifier, got %d", len(t.IDs))
	}
	req := &cloudresourcemanager.SetIamPolicyRequest{
		Policy: &cloudresourcemanager.Policy{Etag: p.Etag},
	}
	for _, b := range p.Bindings {
		req.Policy.Bindings = append(req.Policy.Bindings, &cloudresourcemanager.Binding{
			Role:    b.Role,
			Members: append([]string(nil), b.Members...),
		})
	}
	_, err := s.crm.Projects.SetIamPolicy(t.IDs[0], req).Context(ctx).Do()
	return translateAPIError(err)
}

// Buckets

func (s *GCPStore) getBucketPolicy(ctx context.Context, t Target) (*Policy, error) {
	if len(t.IDs) < 1 {
		return nil, fmt.Errorf("bucket target needs 1 identifier, got %d", len(t.IDs))
	}
	resp, err := s.gcs.Buckets.GetIamPolicy(t.IDs[0]).Context(ctx).Do()
	if err != nil {
		return nil, translateAPIError(err)
	}

	p := &Policy{Etag: resp.Etag}
	for _, b := range resp.Bindings {
		p.Bindings = append(p.Bindings, Binding{
			Role:    b.Role,
			Members: append([]string(nil), b.Members...),
		})
	}
	return p, nil
}

func (s *GCPStore) setBucketPolicy(ctx context.Context, t Target, p *Policy) error {
	if len(t.IDs) < 1 {
		return fmt.Errorf("bucket target needs 1 identifier, got %d", len(t.IDs))
	}
	req := &storage.Policy{Etag: p.Etag}
	for _, b := range p.Bindings {
		req.Bindings = append(req.Bindings, &storage.PolicyBindings{
			Role:    b.Role,
			Members: append([]string(nil), b.Members...),
		})
	}
	_, err := s.gcs.Buckets.SetIamPolicy(t.IDs[0], req).Context(ctx).Do()
	return translateAPIError(err)
}

// Datasets. BigQuery datasets carry access entries instead of role/member
// bindings; the entries are normalized to bindings on fetch and only the
// additions are written back, so entries outside the binding model are
// preserved.

func datasetKey(t Target) string {
	return t.IDs[0] + "/" + t.IDs[1]
}

func (s *GCPStore) getDatasetPolicy(ctx context.Context, t Target) (*Policy, error) {
	if len(t.IDs) < 2 {
		return nil, fmt.Errorf("dataset target needs 2 identifiers, got %d", len(t.IDs))
	}
	ds, err := s.bq.Datasets.Get(t.IDs[0], t.IDs[1]).Context(ctx).Do()
	if err != nil {
		return nil, translateAPIError(err)
	}

	s.mu.Lock()
	s.datasets[datasetKey(t)] = ds
	s.mu.Unlock()

	p := &Policy{Etag: ds.Etag}
	for _, access := range ds.Access {
		member := accessMember(access)
		if access.Role == "" || member == "" {
			continue
		}
		p = AddMember(p, bqRoleToIAM(access.Role), member)
	}
	return p, nil
}

func (s *GCPStore) setDatasetPolicy(ctx context.Context, t Target, p *Policy) error {
	if len(t.IDs) < 2 {
		return fmt.Errorf("dataset target needs 2 identifiers, got %d", len(t.IDs))
	}

	s.mu.Lock()
	ds := s.datasets[datasetKey(t)]
	s.mu.Unlock()
	if ds == nil || ds.Etag != p.Etag {
		return fmt.Errorf("%w: dataset %s was not fetched with this token", ErrConflict, datasetKey(t))
	}

	access := append([]*bigquery.DatasetAccess(nil), ds.Access...)
	for _, b := range p.Bindings {
		for _, member := range b.Members {
			if !datasetHasAccess(ds.Access, b.Role, member) {
				access = append(access, accessEntry(b.Role, member))
			}
		}
	}

	call := s.bq.Datasets.Patch(t.IDs[0], t.IDs[1], &bigquery.Dataset{Access: access}).Context(ctx)
	call.Header().Set("If-Match", p.Etag)
	_, err := call.Do()
	return translateAPIError(err)
}

func datasetHasAccess(access []*bigquery.DatasetAccess, role, member string) bool {
	for _, a := range access {
		if bqRoleToIAM(a.Role) == role && accessMember(a) == member {
			return true
		}
	}
	return false
}

// accessMember renders a dataset access entry as an IAM member string, or
// "" for entry kinds outside the binding model.
func accessMember(a *bigquery.DatasetAccess) string {
	switch {
	case a.UserByEmail != "":
		return "user:" + a.UserByEmail
	case a.GroupByEmail != "":
		return "group:" + a.GroupByEmail
	case a.Domain != "":
		return "domain:" + a.Domain
	case a.IamMember != "":
		return a.IamMember
	default:
		return ""
	}
}

// accessEntry builds a dataset access entry for a role/member pair.
func accessEntry(role, member string) *bigquery.DatasetAccess {
	a := &bigquery.DatasetAccess{Role: bqRoleFromIAM(role)}
	switch {
	case strings.HasPrefix(member, "user:"):
		a.UserByEmail = strings.TrimPrefix(member, "user:")
	case strings.HasPrefix(member, "serviceAccount:"):
		a.UserByEmail = strings.TrimPrefix(member, "serviceAccount:")
	case strings.HasPrefix(member, "group:"):
		a.GroupByEmail = strings.TrimPrefix(member, "group:")
	case strings.HasPrefix(member, "domain:"):
		a.Domain = strings.TrimPrefix(member, "domain:")
	default:
		a.IamMember = member
	}
	return a
}

// bqRoleToIAM maps a dataset access role to its IAM role name. Short names
// such as "dataViewer" become "roles/bigquery.dataViewer"; the legacy
// uppercase roles (READER, WRITER, OWNER) and full role paths pass through.
func bqRoleToIAM(role string) string {
	if role == "" || strings.Contains(role, "/") || role == strings.ToUpper(role) {
		return role
	}
	return "roles/bigquery." + role
}

// bqRoleFromIAM is the inverse mapping used when writing access entries.
func bqRoleFromIAM(role string) string {
	return strings.TrimPrefix(role, "roles/bigquery.")
}

// Tables

func tableResource(t Target) string {
	return fmt.Sprintf("projects/%s/datasets/%s/tables/%s", t.IDs[0], t.IDs[1], t.IDs[2])
}

func (s *GCPStore) getTablePolicy(ctx context.Context, t Target) (*Policy, error) {
	if len(t.IDs) < 3 {
		return nil, fmt.Errorf("table target needs 3 identifiers, got %d", len(t.IDs))
	}
	resp, err := s.bq.Tables.GetIamPolicy(tableResource(t), &bigquery.GetIamPolicyRequest{}).Context(ctx).Do()
	if err != nil {
		return nil, translateAPIError(err)
	}

	p := &Policy{Etag: resp.Etag}
	for _, b := range resp.Bindings {
		p.Bindings = append(p.Bindings, Binding{
			Role:    b.Role,
			Members: append([]string(nil), b.Members...),
		})
	}
	return p, nil
}

func (s *GCPStore) setTablePolicy(ctx context.Context, t Target, p *Policy) error {
	if len(t.IDs) < 3 {
		return fmt.Errorf("table target needs 3 identifiers, got %d", len(t.IDs))
	}
	req := &bigquery.SetIamPolicyRequest{
		Policy: &bigquery.Policy{Etag: p.Etag},
	}
	for _, b := range p.Bindings {
		req.Policy.Bindings = append(req.Policy.Bindings, &bigquery.Binding{
			Role:    b.Role,
			Members: append([]string(nil), b.Members...),
		})
	}
	_, err := s.bq.Tables.SetIamPolicy(tableResource(t), req).Context(ctx).Do()
	return translateAPIError(err)
}

// translateAPIError maps a rejected concurrency token (409 or 412) to
// ErrConflict. Everything else passes through for the caller to report.
func translateAPIError(err error) error {
	if err == nil {
		return nil
	}
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		if gerr.Code == http.StatusConflict || gerr.Code == http.StatusPreconditionFailed {
			return fmt.Errorf("%w: %v", ErrConflict, err)
		}
	}
	return err
}
