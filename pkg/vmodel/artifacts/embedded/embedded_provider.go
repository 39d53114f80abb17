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

package embedded

import (
	"embed"
	"errors"
	"io"
	"io/fs"

	"go.githedgehog.com/provisioner/pkg/log"
	"go.githedgehog.com/provisioner/pkg/vmodel/artifacts"
	"go.uber.org/zap"
)

// Provider serves the vendor-generic artifacts which are compiled into the
// binary. Product specific overrides are expected from a file or OCI provider
// in front of it.
func Provider() artifacts.Provider {
	sub, err := fs.Sub(content, "artifacts")
	if err != nil {
		panic(err)
	}
	return &embeddedProvider{fs: sub}
}

//go:embed artifacts/hp/*
//go:embed artifacts/huawei/*
var content embed.FS

type embeddedProvider struct {
	fs fs.FS
}

// Get implements artifacts.Provider
func (p *embeddedProvider) Get(artifact string) io.ReadCloser {
	f, err := p.fs.Open(artifact)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrInvalid) {
			log.L().Debug("no such artifact", zap.String("provider", "embedded"), zap.String("artifact", artifact))
		} else {
			log.L().Error("open failed", zap.String("provider", "embedded"), zap.String("artifact", artifact), zap.Error(err))
		}
		return nil
	}
	return f
}

var _ artifacts.Provider = &embeddedProvider{}
