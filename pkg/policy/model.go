package policy

import (
	"context"
	"fmt"

	"go.githedgehog.com/provisioner/pkg/boot"
	"go.githedgehog.com/provisioner/pkg/log"
	"go.githedgehog.com/provisioner/pkg/vmodel"
	"go.uber.org/zap"
)

// NamespaceOS is the callback namespace of an OS deployment
const NamespaceOS = "os"

// Installer renders the boot script of an OS installer
type Installer interface {
	Install(ctx context.Context, node *vmodel.Node, policyID string, img boot.Image) (string, error)
}

// OSModelSpec is the declarative part of an OS deployment model
type OSModelSpec struct {
	UUID      string     `json:"uuid" yaml:"uuid"`
	Label     string     `json:"label,omitempty" yaml:"label,omitempty"`
	OSName    string     `json:"os_name" yaml:"os_name"`
	OSVersion string     `json:"os_version" yaml:"os_version"`
	Image     boot.Image `json:"image" yaml:"image"`
}

// OSModel deploys an operating system once hardware configuration is done
type OSModel struct {
	spec      OSModelSpec
	installer Installer
}

var _ Model = &OSModel{}

// NewOSModel creates a model from its declaration
func NewOSModel(spec OSModelSpec, installer Installer) *OSModel {
	return &OSModel{spec: spec, installer: installer}
}

func (m *OSModel) UUID() string {
	return m.spec.UUID
}

// Spec returns the declaration of the model
func (m *OSModel) Spec() OSModelSpec {
	return m.spec
}

// Callback acknowledges the progress reports of the installer
func (m *OSModel) Callback(_ context.Context, node *vmodel.Node, policyID, namespace string, args []string) (string, error) {
	if namespace != NamespaceOS {
		return "", fmt.Errorf("%w: '%s' is not a callback namespace of model %s", vmodel.ErrUnknownNamespace, namespace, m.spec.UUID)
	}
	if len(args) == 0 {
		return "error", nil
	}
	switch args[0] {
	case "start", "end", "postinstall":
		nodeID := ""
		if node != nil {
			nodeID = node.UUID
		}
		log.L().Info("os deployment progress",
			zap.String("model", m.spec.UUID),
			zap.String("policy", policyID),
			zap.String("node", nodeID),
			zap.String("os", m.spec.OSName+" "+m.spec.OSVersion),
			zap.String("event", args[0]),
		)
		return "ok", nil
	default:
		return "error", nil
	}
}

// MkCall tells an idle boot agent to reboot into the installer
func (m *OSModel) MkCall(_ context.Context, node *vmodel.Node, _ string) (*vmodel.MkCallReply, error) {
	if node == nil || node.LastState != vmodel.NodeStateIdle {
		return vmodel.Acknowledged(), nil
	}
	return &vmodel.MkCallReply{Action: "reboot", Params: map[string]any{}}, nil
}

// BootCall boots the installer of the model
func (m *OSModel) BootCall(ctx context.Context, node *vmodel.Node, policyID string) (string, error) {
	return m.installer.Install(ctx, node, policyID, m.spec.Image)
}
