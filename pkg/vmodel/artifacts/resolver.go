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

// Package artifacts resolves the scripts and configuration files the boot
// agent fetches during a hardware configuration phase.
package artifacts

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path"
	"strings"

	"go.githedgehog.com/provisioner/pkg/log"
	"go.uber.org/zap"
)

// DefaultExtension is the templating extension of all artifact files
const DefaultExtension = ".tmpl"

var (
	ErrArtifactNotFound    = errors.New("artifacts: not found")
	ErrInvalidArtifactName = errors.New("artifacts: invalid name")
)

func artifactNotFoundError(vendor, product, name string) error {
	return fmt.Errorf("%w: vendor '%s', product '%s', artifact '%s'", ErrArtifactNotFound, vendor, product, name)
}

// Artifact is a resolved, unrendered artifact
type Artifact struct {
	Name    string
	Path    string
	Content []byte
}

// Resolver looks up artifacts with a product specific override
type Resolver struct {
	p   Provider
	ext string
}

// NewResolver creates a resolver on top of provider `p`. All artifact
// file names carry the extension `ext`.
func NewResolver(p Provider, ext string) *Resolver {
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return &Resolver{p: p, ext: ext}
}

// Candidates returns the paths which are tried in order for an artifact
func (r *Resolver) Candidates(vendor, product, name string) []string {
	ret := make([]string, 0, 2)
	if product = strings.TrimSpace(product); product != "" {
		ret = append(ret, path.Join(vendor, product, name+r.ext))
	}
	return append(ret, path.Join(vendor, name+r.ext))
}

// Resolve returns `vendor/product/name.ext` if it exists, otherwise
// `vendor/name.ext`, otherwise it fails with ErrArtifactNotFound.
func (r *Resolver) Resolve(vendor, product, name string) (*Artifact, error) {
	if err := validName(vendor); err != nil {
		return nil, err
	}
	if err := validName(name); err != nil {
		return nil, err
	}
	if strings.ContainsRune(product, '/') || product == ".." {
		return nil, fmt.Errorf("%w: product '%s'", ErrInvalidArtifactName, product)
	}
	for _, p := range r.Candidates(vendor, product, name) {
		rc := r.p.Get(p)
		if rc == nil {
			continue
		}
		b, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("artifacts: reading '%s': %w", p, err)
		}
		log.L().Debug("artifact resolved", zap.String("artifact", name), zap.String("path", p))
		return &Artifact{Name: name, Path: p, Content: b}, nil
	}
	return nil, artifactNotFoundError(vendor, product, name)
}

func validName(s string) error {
	if s == "" || strings.Contains(s, "/") || !fs.ValidPath(s) {
		return fmt.Errorf("%w: '%s'", ErrInvalidArtifactName, s)
	}
	return nil
}
