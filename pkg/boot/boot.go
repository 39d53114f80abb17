// Copyright 2023 Hedgehog
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package boot renders the iPXE scripts which are chainloaded by a node.
package boot

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"text/template"

	"go.githedgehog.com/provisioner/pkg/vmodel"
)

var ErrMissingImage = errors.New("boot: missing image")

// Image is a kernel and initrd pair with its command line
type Image struct {
	Kernel  string `json:"kernel" yaml:"kernel"`
	Initrd  string `json:"initrd" yaml:"initrd"`
	Cmdline string `json:"cmdline,omitempty" yaml:"cmdline,omitempty"`
}

func (i Image) validate() error {
	if i.Kernel == "" || i.Initrd == "" {
		return fmt.Errorf("%w: kernel and initrd are required", ErrMissingImage)
	}
	return nil
}

// Config configures the orchestrator
type Config struct {
	// BaseURL is the externally reachable URL of the provisioning server
	BaseURL string `yaml:"base_url"`

	// Microkernel is the image of the boot agent
	Microkernel Image `yaml:"microkernel"`
}

const ipxeScript = `#!ipxe
echo {{ .Message }}
kernel {{ .Image.Kernel }}{{ range .Args }} {{ . }}{{ end }}
initrd {{ .Image.Initrd }}
boot
`

var scriptTemplate = template.Must(template.New("ipxe").Parse(ipxeScript))

type scriptData struct {
	Message string
	Image   Image
	Args    []string
}

// Orchestrator decides what a node boots
type Orchestrator struct {
	cfg Config
}

var _ vmodel.BootOrchestrator = &Orchestrator{}

// New creates an orchestrator
func New(cfg Config) (*Orchestrator, error) {
	if err := cfg.Microkernel.validate(); err != nil {
		return nil, fmt.Errorf("microkernel: %w", err)
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("boot: base URL: %w", err)
	}
	return &Orchestrator{cfg: cfg}, nil
}

// NextBoot chainloads the boot agent while a node is in hardware
// configuration. The agent learns where to call back on the kernel command line.
func (o *Orchestrator) NextBoot(_ context.Context, node *vmodel.Node, policyID string) (string, error) {
	args := append(fields(o.cfg.Microkernel.Cmdline),
		"provisioner.server="+strings.TrimRight(o.cfg.BaseURL, "/"),
		"provisioner.policy="+policyID,
	)
	if node != nil {
		args = append(args, "provisioner.node="+node.UUID)
	}
	return render(scriptData{
		Message: "booting the boot agent for hardware configuration",
		Image:   o.cfg.Microkernel,
		Args:    args,
	})
}

// Install chainloads the installer of an OS deployment
func (o *Orchestrator) Install(_ context.Context, node *vmodel.Node, policyID string, img Image) (string, error) {
	if err := img.validate(); err != nil {
		return "", err
	}
	args := append(fields(img.Cmdline), "provisioner.server="+strings.TrimRight(o.cfg.BaseURL, "/"), "provisioner.policy="+policyID)
	if node != nil {
		args = append(args, "provisioner.node="+node.UUID)
	}
	return render(scriptData{
		Message: "booting the OS installer",
		Image:   img,
		Args:    args,
	})
}

func fields(s string) []string {
	return strings.Fields(s)
}

func render(d scriptData) (string, error) {
	var buf bytes.Buffer
	if err := scriptTemplate.Execute(&buf, d); err != nil {
		return "", fmt.Errorf("boot: render: %w", err)
	}
	return buf.String(), nil
}
