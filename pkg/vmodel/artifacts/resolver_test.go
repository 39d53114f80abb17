package artifacts_test

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"go.githedgehog.com/provisioner/pkg/vmodel/artifacts"
	"go.githedgehog.com/provisioner/pkg/vmodel/artifacts/embedded"
	"go.githedgehog.com/provisioner/pkg/vmodel/artifacts/file"
)

type mapProvider map[string]string

func (m mapProvider) Get(name string) io.ReadCloser {
	s, ok := m[name]
	if !ok {
		return nil
	}
	return io.NopCloser(strings.NewReader(s))
}

func TestResolver_Resolve(t *testing.T) {
	p := mapProvider{
		"vendorA/ProductX/conf.tmpl": "product",
		"vendorA/conf.tmpl":          "generic",
		"vendorA/other.tmpl":         "other",
	}
	type args struct {
		vendor  string
		product string
		name    string
	}
	tests := []struct {
		name     string
		args     args
		want     string
		wantPath string
		wantErr  error
	}{
		{
			name:     "product specific override",
			args:     args{"vendorA", "ProductX", "conf"},
			want:     "product",
			wantPath: "vendorA/ProductX/conf.tmpl",
		},
		{
			name:     "vendor generic fallback",
			args:     args{"vendorA", "ProductY", "conf"},
			want:     "generic",
			wantPath: "vendorA/conf.tmpl",
		},
		{
			name:     "no product identity",
			args:     args{"vendorA", "", "other"},
			want:     "other",
			wantPath: "vendorA/other.tmpl",
		},
		{
			name:    "not found",
			args:    args{"vendorA", "ProductX", "missing"},
			wantErr: artifacts.ErrArtifactNotFound,
		},
		{
			name:    "path traversal in name",
			args:    args{"vendorA", "ProductX", "../conf"},
			wantErr: artifacts.ErrInvalidArtifactName,
		},
		{
			name:    "path traversal in product",
			args:    args{"vendorA", "..", "conf"},
			wantErr: artifacts.ErrInvalidArtifactName,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := artifacts.NewResolver(p, "tmpl")
			got, err := r.Resolve(tt.args.vendor, tt.args.product, tt.args.name)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Resolver.Resolve() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if tt.wantErr != nil {
				return
			}
			if string(got.Content) != tt.want || got.Path != tt.wantPath {
				t.Errorf("Resolver.Resolve() = %s (%s), want %s (%s)", got.Content, got.Path, tt.want, tt.wantPath)
			}
		})
	}
}

func TestResolver_Candidates(t *testing.T) {
	r := artifacts.NewResolver(nil, artifacts.DefaultExtension)
	want := []string{"hp/ProLiant DL380 Gen9/hpsum.sh.tmpl", "hp/hpsum.sh.tmpl"}
	if got := r.Candidates("hp", "ProLiant DL380 Gen9", "hpsum.sh"); !reflect.DeepEqual(got, want) {
		t.Errorf("Candidates() = %v, want %v", got, want)
	}
}

func TestChainedProviders(t *testing.T) {
	dir := t.TempDir()
	override := filepath.Join(dir, "hp", "ProLiant DL380 Gen9")
	if err := os.MkdirAll(override, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(override, "raidconf.sh.tmpl"), []byte("override"), 0o644); err != nil {
		t.Fatal(err)
	}
	r := artifacts.NewResolver(artifacts.New(file.Provider(dir), embedded.Provider()), artifacts.DefaultExtension)

	got, err := r.Resolve("hp", "ProLiant DL380 Gen9", "raidconf.sh")
	if err != nil {
		t.Fatalf("Resolve() = %v", err)
	}
	if string(got.Content) != "override" {
		t.Errorf("Resolve() = %s, want the file override", got.Content)
	}

	got, err = r.Resolve("hp", "ProLiant DL380 Gen9", "hpsum.sh")
	if err != nil {
		t.Fatalf("Resolve() = %v", err)
	}
	if got.Path != "hp/hpsum.sh.tmpl" || !strings.HasPrefix(string(got.Content), "#!/bin/sh") {
		t.Errorf("Resolve() = %s from %s, want the embedded script", got.Content, got.Path)
	}

	if _, err := r.Resolve("dell", "", "hpsum.sh"); !errors.Is(err, artifacts.ErrArtifactNotFound) {
		t.Errorf("Resolve() error = %v, want %v", err, artifacts.ErrArtifactNotFound)
	}
}
