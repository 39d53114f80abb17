package main

import (
	"fmt"
	"os"
	"time"

	"go.githedgehog.com/provisioner/pkg/boot"
	"go.githedgehog.com/provisioner/pkg/policy"
	"go.githedgehog.com/provisioner/pkg/vmodel"
	"gopkg.in/yaml.v3"
)

const (
	StorageMemory     = "memory"
	StorageBadger     = "badger"
	StorageKubernetes = "kubernetes"
)

// Config is the configuration file of the provisioning server
type Config struct {
	// Server holds the HTTP listeners
	Server *BindInfo `json:"server" yaml:"server"`

	// BaseURL is the URL under which boot agents reach this server. It is used to build callback URLs.
	BaseURL string `json:"base_url" yaml:"base_url"`

	// Artifacts configures where vendor artifacts are loaded from. The builtin artifacts are always
	// used as the last resort.
	Artifacts *Artifacts `json:"artifacts" yaml:"artifacts"`

	// Storage selects the backend for vendor model instances
	Storage *Storage `json:"storage" yaml:"storage"`

	// Events enables publishing of transitions
	Events *Events `json:"events" yaml:"events"`

	// Microkernel is the image of the boot agent which runs the hardware configuration phases
	Microkernel boot.Image `json:"microkernel" yaml:"microkernel"`

	// Inventory holds the discovered nodes, the OS models and the active policies
	Inventory *Inventory `json:"inventory" yaml:"inventory"`
}

// BindInfo provides all the necessary information for binding to an address and configuring TLS as necessary.
type BindInfo struct {
	// Addresses is a set of addresses that the server should bind on. At least one address must be provided.
	Addresses []string `json:"addresses" yaml:"addresses"`

	// ClientCAPath points to a file containing one or more CA certificates that client certificates will be
	// validated against if a client certificate is provided.
	ClientCAPath string `json:"client_ca" yaml:"client_ca"`

	// ServerKeyPath points to a file containing the server key used for the TLS server. If this is empty,
	// a plain HTTP server will be initiated.
	ServerKeyPath string `json:"server_key" yaml:"server_key"`

	// ServerCertPath points to a file containing the server certificate used for the TLS server.
	ServerCertPath string `json:"server_cert" yaml:"server_cert"`
}

type Artifacts struct {
	// Directory is searched before the registry and the builtin artifacts
	Directory string `json:"directory" yaml:"directory"`

	// Extension of artifact templates, defaults to .tmpl
	Extension string `json:"extension" yaml:"extension"`

	Registry *Registry `json:"registry" yaml:"registry"`
}

// Registry is an OCI registry which holds one artifact per repository
type Registry struct {
	// URL must have the oci scheme, its path is the repository prefix
	URL        string        `json:"url" yaml:"url"`
	Tag        string        `json:"tag" yaml:"tag"`
	Timeout    time.Duration `json:"timeout" yaml:"timeout"`
	ServerCA   string        `json:"server_ca" yaml:"server_ca"`
	ClientCert string        `json:"client_cert" yaml:"client_cert"`
	ClientKey  string        `json:"client_key" yaml:"client_key"`
	Username   string        `json:"username" yaml:"username"`
	Password   string        `json:"password" yaml:"password"`
}

type Storage struct {
	// Backend is one of memory, badger or kubernetes
	Backend string `json:"backend" yaml:"backend"`

	// Path is the database directory of the badger backend
	Path string `json:"path" yaml:"path"`

	// Namespace holds the VModel objects of the kubernetes backend
	Namespace string `json:"namespace" yaml:"namespace"`

	// TimerInterval is how often instances are checked for timeouts by backends without a controller
	TimerInterval time.Duration `json:"timer_interval" yaml:"timer_interval"`
}

type Events struct {
	NATSURL       string `json:"nats_url" yaml:"nats_url"`
	SubjectPrefix string `json:"subject_prefix" yaml:"subject_prefix"`
}

type Inventory struct {
	Nodes    []vmodel.Node        `json:"nodes" yaml:"nodes"`
	Models   []policy.OSModelSpec `json:"models" yaml:"models"`
	Policies []policy.Policy      `json:"policies" yaml:"policies"`
}

// ReferenceConfig will be displayed when requested through the CLI
var ReferenceConfig = Config{
	Server: &BindInfo{
		Addresses:      []string{"192.168.42.11:8026"},
		ClientCAPath:   "/etc/hedgehog/provisioner/client-ca-cert.pem",
		ServerKeyPath:  "/etc/hedgehog/provisioner/server-key.pem",
		ServerCertPath: "/etc/hedgehog/provisioner/server-cert.pem",
	},
	BaseURL: "https://192.168.42.11:8026",
	Artifacts: &Artifacts{
		Directory: "/var/lib/hedgehog/provisioner/artifacts",
		Extension: ".tmpl",
		Registry: &Registry{
			URL:      "oci://registry.local:5000/provisioner/artifacts",
			Tag:      "latest",
			Timeout:  time.Minute,
			ServerCA: "/etc/hedgehog/provisioner/registry-ca-cert.pem",
		},
	},
	Storage: &Storage{
		Backend:       StorageBadger,
		Path:          "/var/lib/hedgehog/provisioner/db",
		Namespace:     "default",
		TimerInterval: 30 * time.Second,
	},
	Events: &Events{
		NATSURL:       "nats://127.0.0.1:4222",
		SubjectPrefix: "provisioner.vmodel",
	},
	Microkernel: boot.Image{
		Kernel:  "https://192.168.42.11:8026/image/mk/kernel",
		Initrd:  "https://192.168.42.11:8026/image/mk/initrd",
		Cmdline: "console=ttyS0,115200",
	},
	Inventory: &Inventory{
		Nodes: []vmodel.Node{
			{
				UUID:       "00000000-0000-0000-0000-0025b5000001",
				LastState:  vmodel.NodeStateIdle,
				Attributes: map[string]string{"productname": "ProLiant DL380 Gen9"},
				Tags:       []string{"rack1", "hp"},
			},
		},
		Models: []policy.OSModelSpec{
			{
				UUID:      "ubuntu-2204",
				Label:     "Ubuntu 22.04",
				OSName:    "ubuntu",
				OSVersion: "22.04",
				Image: boot.Image{
					Kernel: "https://192.168.42.11:8026/image/ubuntu/vmlinuz",
					Initrd: "https://192.168.42.11:8026/image/ubuntu/initrd",
				},
			},
		},
		Policies: []policy.Policy{
			{
				UUID:       "rack1-hp",
				Label:      "rack 1 HP servers",
				Template:   policy.TemplateLinuxDeploy,
				NodeUUID:   "00000000-0000-0000-0000-0025b5000001",
				ModelUUID:  "ubuntu-2204",
				VModelUUID: "00000000-0000-0000-0000-000000000001",
			},
		},
	},
}

func marshalReferenceConfig() ([]byte, error) {
	return yaml.Marshal(&ReferenceConfig)
}

func loadConfig(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open '%s': %w", path, err)
	}
	defer f.Close()
	var cfg Config
	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("config yaml decode: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Server == nil || len(c.Server.Addresses) == 0 {
		return fmt.Errorf("config: no server addresses")
	}
	if c.Storage == nil {
		c.Storage = &Storage{Backend: StorageMemory}
	}
	switch c.Storage.Backend {
	case "", StorageMemory:
		c.Storage.Backend = StorageMemory
	case StorageBadger:
		if c.Storage.Path == "" {
			return fmt.Errorf("config: badger storage requires a path")
		}
	case StorageKubernetes:
		if c.Storage.Namespace == "" {
			c.Storage.Namespace = "default"
		}
	default:
		return fmt.Errorf("config: unknown storage backend '%s'", c.Storage.Backend)
	}
	if c.Storage.TimerInterval <= 0 {
		c.Storage.TimerInterval = 30 * time.Second
	}
	if c.Inventory != nil {
		for i := range c.Inventory.Policies {
			if err := c.Inventory.Policies[i].Validate(); err != nil {
				return fmt.Errorf("config: %w", err)
			}
		}
	}
	return nil
}
