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

package oras

import (
	"bytes"
	"context"
	"crypto/rand"
	"crypto/tls"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	v1 "github.com/opencontainers/image-spec/specs-go/v1"
	"go.githedgehog.com/provisioner/pkg/log"
	"go.githedgehog.com/provisioner/pkg/vmodel/artifacts"
	"go.uber.org/zap"
	"oras.land/oras-go/v2"
	"oras.land/oras-go/v2/content"
	"oras.land/oras-go/v2/content/memory"
	"oras.land/oras-go/v2/registry/remote"
	"oras.land/oras-go/v2/registry/remote/auth"
)

const defaultTag = "latest"

type orasProvider struct {
	ctx     context.Context
	timeout time.Duration

	serverCAPath   string
	clientCertPath string
	clientKeyPath  string
	username       string
	password       string
	accessToken    string
	refreshToken   string
	tag            string

	url      *url.URL
	registry *remote.Registry
}

var _ artifacts.Provider = &orasProvider{}

// Provider creates an artifacts provider which pulls every artifact as a
// single layer OCI artifact from the registry at `registryURL`. The URL must
// have the `oci` scheme, its path is the repository prefix, e.g.
// `oci://registry.local:5000/provisioner/artifacts`.
func Provider(ctx context.Context, registryURL string, options ...ProviderOption) (artifacts.Provider, error) {
	var err error
	ret := &orasProvider{
		ctx:     ctx,
		timeout: 60 * time.Second,
		tag:     defaultTag,
	}
	for _, opt := range options {
		opt(ret)
	}

	ret.url, err = url.Parse(registryURL)
	if err != nil {
		return nil, fmt.Errorf("parsing registry URL: %w", err)
	}
	if ret.url.Scheme != "oci" {
		return nil, fmt.Errorf("registry URL must have OCI scheme, got '%s'", ret.url.Scheme)
	}

	ret.registry, err = remote.NewRegistry(ret.url.Host)
	if err != nil {
		return nil, fmt.Errorf("create ORAS client: %w", err)
	}

	creds := func(_ context.Context, target string) (auth.Credential, error) {
		if ret.username != "" || ret.password != "" || ret.accessToken != "" || ret.refreshToken != "" {
			if target == ret.url.Host {
				return auth.Credential{
					Username:     ret.username,
					Password:     ret.password,
					AccessToken:  ret.accessToken,
					RefreshToken: ret.refreshToken,
				}, nil
			}
		}
		return auth.EmptyCredential, nil
	}

	ret.registry.Client = &auth.Client{
		Credential: creds,
		Cache:      auth.NewCache(),
		Client: &http.Client{
			Transport: &http.Transport{
				Proxy: http.ProxyFromEnvironment,
				DialContext: (&net.Dialer{
					Timeout:       30 * time.Second,
					KeepAlive:     30 * time.Second,
					FallbackDelay: 600 * time.Millisecond,
				}).DialContext,
				DisableKeepAlives:     false,
				MaxIdleConns:          10,
				MaxConnsPerHost:       3,
				IdleConnTimeout:       90 * time.Second,
				TLSHandshakeTimeout:   10 * time.Second,
				ExpectContinueTimeout: 1 * time.Second,

				// a custom DialContext and TLSClientConfig disable HTTP/2 unless forced
				ForceAttemptHTTP2: true,

				TLSClientConfig: &tls.Config{
					Rand:         rand.Reader,
					Time:         time.Now,
					RootCAs:      caPool(ret.serverCAPath),
					Certificates: clientCertificates(ret.clientCertPath, ret.clientKeyPath),
					MinVersion:   tls.VersionTLS12,
				},
			},
		},
	}

	return ret, nil
}

// repositoryName maps an artifact path onto a valid OCI repository name.
// Product names usually contain spaces and upper case letters which are
// not allowed in repository names.
func repositoryName(prefix, artifact string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(path.Join(prefix, artifact)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '/', r == '.', r == '_', r == '-':
			b.WriteRune(r)
		default:
			b.WriteRune('-')
		}
	}
	// we need to remove the left most '/' as it would render an invalid repository name
	return strings.TrimLeft(b.String(), "/")
}

// Get implements artifacts.Provider
func (op *orasProvider) Get(artifact string) io.ReadCloser {
	ctx, cancel := context.WithTimeout(op.ctx, op.timeout)
	defer cancel()

	repoName := repositoryName(op.url.Path, artifact)
	src, err := op.registry.Repository(ctx, repoName)
	if err != nil {
		log.L().Error("oras: getting repository reference failed", zap.String("repo", repoName), zap.Error(err))
		return nil
	}

	dst := memory.New()
	rootDesc, err := oras.Copy(ctx, src, op.tag, dst, op.tag, oras.DefaultCopyOptions)
	if err != nil {
		// product overrides are optional, so a missing repository is not an error
		log.L().Debug("oras: copying artifact into memory failed", zap.String("repo", repoName), zap.String("tag", op.tag), zap.Error(err))
		return nil
	}

	nodes, err := content.Successors(ctx, dst, rootDesc)
	if err != nil {
		log.L().Error("oras: fetching successors failed", zap.String("repo", repoName), zap.Error(err))
		return nil
	}

	// a single layer is the artifact, otherwise the first image layer is
	for _, node := range nodes {
		if len(nodes) == 1 || node.MediaType == v1.MediaTypeImageLayer {
			// the context is cancelled on return, so the layer is read fully here
			b, err := content.FetchAll(ctx, dst, node)
			if err != nil {
				log.L().Error("oras: fetch layer content failed", zap.String("repo", repoName), zap.Error(err))
				return nil
			}
			return io.NopCloser(bytes.NewReader(b))
		}
	}

	log.L().Error("oras: no image layers in artifact", zap.String("repo", repoName))
	return nil
}
