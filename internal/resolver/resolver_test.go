package resolver

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/hmkz/google-cloud-add-bindings/internal/definitions"
)

func mustLookup(t *testing.T, r *definitions.Registry, assetType string) definitions.AssetType {
	t.Helper()
	at, err := r.Lookup(assetType)
	if err != nil {
		t.Fatalf("Lookup(%q) returned error: %v", assetType, err)
	}
	return at
}

func TestResolve(t *testing.T) {
	r := definitions.NewRegistry()

	tests := []struct {
		name      string
		assetType string
		assetName string
		want      []string
	}{
		{
			name:      "Project",
			assetType: "cloudresourcemanager.googleapis.com/Project",
			assetName: "//cloudresourcemanager.googleapis.com/projects/my-project",
			want:      []string{"my-project"},
		},
		{
			name:      "Bucket",
			assetType: "storage.googleapis.com/Bucket",
			assetName: "//storage.googleapis.com/projects/_/buckets/my-bucket",
			want:      []string{"my-bucket"},
		},
		{
			name:      "Dataset",
			assetType: "bigquery.googleapis.com/Dataset",
			assetName: "//bigquery.googleapis.com/projects/my-project/datasets/my_ds",
			want:      []string{"my-project", "my_ds"},
		},
		{
			name:      "Table",
			assetType: "bigquery.googleapis.com/Table",
			assetName: "//bigquery.googleapis.com/projects/my-project/datasets/my_ds/tables/my_table",
			want:      []string{"my-project", "my_ds", "my_table"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			at := mustLookup(t, r, tt.assetType)

			got, err := Resolve(at, tt.assetName)
			if err != nil {
				t.Fatalf("Resolve() returned error: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Resolve() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestResolveMismatch(t *testing.T) {
	r := definitions.NewRegistry()

	tests := []struct {
		name      string
		assetType string
		assetName string
	}{
		{
			name:      "Wrong Service",
			assetType: "storage.googleapis.com/Bucket",
			assetName: "//bigquery.googleapis.com/projects/p/datasets/d",
		},
		{
			name:      "Trailing Segment",
			assetType: "cloudresourcemanager.googleapis.com/Project",
			assetName: "//cloudresourcemanager.googleapis.com/projects/my-project/extra",
		},
		{
			name:      "Prefix Only",
			assetType: "bigquery.googleapis.com/Dataset",
			assetName: "//bigquery.googleapis.com/projects/my-project",
		},
		{
			name:      "Empty Name",
			assetType: "storage.googleapis.com/Bucket",
			assetName: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			at := mustLookup(t, r, tt.assetType)

			got, err := Resolve(at, tt.assetName)
			if !errors.Is(err, ErrAssetNameMismatch) {
				t.Errorf("Resolve() error = %v, want ErrAssetNameMismatch", err)
			}
			if got != nil {
				t.Errorf("Resolve() = %v, want nil on mismatch", got)
			}
		})
	}
}
