package parser

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bindings.csv")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write CSV fixture: %v", err)
	}
	return path
}

func TestParseCSV(t *testing.T) {
	content := `user_email,project_id,asset_name,asset_type,role
alice@example.com,proj1,//storage.googleapis.com/projects/_/buckets/b1,storage.googleapis.com/Bucket,roles/storage.objectViewer
bob@example.com,proj2,//cloudresourcemanager.googleapis.com/projects/proj2,cloudresourcemanager.googleapis.com/Project,roles/viewer
`
	want := []BindingRequest{
		{
			Row:       2,
			UserEmail: "alice@example.com",
			ProjectID: "proj1",
			AssetName: "//storage.googleapis.com/projects/_/buckets/b1",
			AssetType: "storage.googleapis.com/Bucket",
			Role:      "roles/storage.objectViewer",
		},
		{
			Row:       3,
			UserEmail: "bob@example.com",
			ProjectID: "proj2",
			AssetName: "//cloudresourcemanager.googleapis.com/projects/proj2",
			AssetType: "cloudresourcemanager.googleapis.com/Project",
			Role:      "roles/viewer",
		},
	}

	got, err := ParseCSV(writeCSV(t, content))
	if err != nil {
		t.Fatalf("ParseCSV() returned error: %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ParseCSV() mismatch (-want +got):\n%s", diff)
	}
}

func TestParseCSVColumnOrderIndependent(t *testing.T) {
	content := `role,asset_type,asset_name,project_id,user_email
roles/viewer,cloudresourcemanager.googleapis.com/Project,//cloudresourcemanager.googleapis.com/projects/p1,p1,carol@example.com
`
	got, err := ParseCSV(writeCSV(t, content))
	if err != nil {
		t.Fatalf("ParseCSV() returned error: %v", err)
	}
	if len(got) != 1 || got[0].UserEmail != "carol@example.com" || got[0].Role != "roles/viewer" {
		t.Errorf("ParseCSV() = %+v, want carol@example.com with roles/viewer", got)
	}
}

func TestParseCSVErrors(t *testing.T) {
	tests := []struct {
		name       string
		content    string
		wantSubstr string
	}{
		{
			name:       "Missing Column",
			content:    "user_email,project_id,asset_name,role\na@b.com,p,n,r\n",
			wantSubstr: "asset_type",
		},
		{
			name: "Empty Field",
			content: "user_email,project_id,asset_name,asset_type,role\n" +
				"a@b.com,p,n,t,r\n" +
				"a@b.com,,n,t,r\n",
			wantSubstr: "row 3",
		},
		{
			name: "Whitespace Only Field",
			content: "user_email,project_id,asset_name,asset_type,role\n" +
				"a@b.com,p,n,t,  \n",
			wantSubstr: `column "role" is empty`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCSV(writeCSV(t, tt.content))
			if err == nil {
				t.Fatal("ParseCSV() returned nil error")
			}
			if !strings.Contains(err.Error(), tt.wantSubstr) {
				t.Errorf("ParseCSV() error = %q, want substring %q", err, tt.wantSubstr)
			}
		})
	}
}

func TestParseCSVMissingFile(t *testing.T) {
	if _, err := ParseCSV(filepath.Join(t.TempDir(), "missing.csv")); err == nil {
		t.Error("ParseCSV() returned nil error for missing file")
	}
}
