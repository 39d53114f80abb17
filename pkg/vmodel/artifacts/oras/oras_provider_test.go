package oras

import (
	"context"
	"testing"
	"time"
)

func TestProvider(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		opts    []ProviderOption
		wantErr bool
		wantTag string
	}{
		{
			name:    "valid registry URL",
			url:     "oci://registry.local:5000/provisioner/artifacts",
			wantTag: "latest",
		},
		{
			name:    "tag option",
			url:     "oci://registry.local:5000/provisioner",
			opts:    []ProviderOption{ProviderOptionTag("v1.2"), ProviderOptionTimeout(time.Second)},
			wantTag: "v1.2",
		},
		{
			name:    "wrong scheme",
			url:     "https://registry.local:5000/provisioner",
			wantErr: true,
		},
		{
			name:    "unparsable URL",
			url:     "oci://registry.local:5000/%zz",
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Provider(context.Background(), tt.url, tt.opts...)
			if (err != nil) != tt.wantErr {
				t.Errorf("Provider() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if tt.wantErr {
				return
			}
			op := got.(*orasProvider)
			if op.tag != tt.wantTag {
				t.Errorf("tag = %s, want %s", op.tag, tt.wantTag)
			}
		})
	}
}

func Test_repositoryName(t *testing.T) {
	tests := []struct {
		prefix   string
		artifact string
		want     string
	}{
		{"/provisioner", "hp/raidconf.sh.tmpl", "provisioner/hp/raidconf.sh.tmpl"},
		{"", "hp/ProLiant DL380 Gen9/raidconf.sh.tmpl", "hp/proliant-dl380-gen9/raidconf.sh.tmpl"},
		{"/a", "huawei/RH2288H V3/bios+temp.xml.tmpl", "a/huawei/rh2288h-v3/bios-temp.xml.tmpl"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := repositoryName(tt.prefix, tt.artifact); got != tt.want {
				t.Errorf("repositoryName() = %v, want %v", got, tt.want)
			}
		})
	}
}
