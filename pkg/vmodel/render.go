package vmodel

import (
	"bytes"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"text/template"
)

type renderData struct {
	Metadata  map[string]string
	Namespace string
	Enabled   bool
	Config    map[string]any
	Artifacts []string
}

// render resolves artifact `name` for the bound node and executes it as a
// text/template. Scripts use `callback` and `artifact` to build the URLs
// they report back to.
func (p *phasedFSM) render(vm *VModel, call Call, spec phaseSpec, name string) (string, error) {
	a, err := p.svc.Artifacts.Resolve(p.def.Vendor, call.Node.ProductName(), name)
	if err != nil {
		return "", err
	}

	cfg := p.config(vm, spec.phase)
	e := enabled(cfg)
	if spec.phase == PhaseFirmware {
		e = vm.Config.Firmware
	}
	data := renderData{
		Metadata:  NodeMetadata(vm, p, call),
		Namespace: spec.prefix,
		Enabled:   e != nil && *e,
		Config:    cfg,
		Artifacts: p.def.Artifacts(spec.state),
	}
	if data.Config == nil {
		data.Config = map[string]any{}
	}

	t, err := template.New(a.Path).Funcs(template.FuncMap{
		"callback": func(namespace string, action ...string) string {
			return CallbackURL(call.BaseURL, call.PolicyID, namespace, action...)
		},
		"artifact": func(namespace, artifact string) string {
			if artifact == "" {
				return CallbackURL(call.BaseURL, call.PolicyID, namespace, p.verb)
			}
			return CallbackURL(call.BaseURL, call.PolicyID, namespace, p.verb, artifact)
		},
	}).Parse(string(a.Content))
	if err != nil {
		return "", fmt.Errorf("vmodel: parse artifact '%s': %w", a.Path, err)
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("vmodel: render artifact '%s': %w", a.Path, err)
	}
	return buf.String(), nil
}

// CallbackURL builds the URL the boot agent calls back to:
// `{base}/policy/callback/{policyID}/{namespace}/{action...}`
func CallbackURL(base, policyID, namespace string, action ...string) string {
	segs := []string{strings.TrimRight(base, "/"), "policy", "callback", url.PathEscape(policyID), url.PathEscape(namespace)}
	for _, a := range action {
		segs = append(segs, url.PathEscape(a))
	}
	return strings.Join(segs, "/")
}

// NodeMetadata returns the values which describe the node and instance to an artifact
func NodeMetadata(vm *VModel, t Template, call Call) map[string]string {
	ret := map[string]string{
		"policy_uuid":        call.PolicyID,
		"vmodel_uuid":        vm.UUID,
		"vmodel_label":       vm.Label,
		"vmodel_name":        t.Name(),
		"vmodel_description": t.Description(),
		"vmodel_template":    vm.Template,
		"policy_count":       strconv.Itoa(vm.Counter),
		"node_uuid":          "",
		"tags":               "",
		"productname":        "",
	}
	if call.Node != nil {
		ret["node_uuid"] = call.Node.UUID
		ret["tags"] = strings.Join(call.Node.Tags, ",")
		ret["productname"] = call.Node.ProductName()
	}
	return ret
}
