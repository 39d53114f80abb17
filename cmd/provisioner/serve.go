package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/go-logr/zapr"
	"go.githedgehog.com/provisioner/pkg/boot"
	"go.githedgehog.com/provisioner/pkg/engine"
	"go.githedgehog.com/provisioner/pkg/events"
	"go.githedgehog.com/provisioner/pkg/k8s/controllers"
	"go.githedgehog.com/provisioner/pkg/policy"
	"go.githedgehog.com/provisioner/pkg/server"
	"go.githedgehog.com/provisioner/pkg/store"
	"go.githedgehog.com/provisioner/pkg/store/badger"
	"go.githedgehog.com/provisioner/pkg/store/kube"
	"go.githedgehog.com/provisioner/pkg/store/memory"
	"go.githedgehog.com/provisioner/pkg/vmodel"
	"go.githedgehog.com/provisioner/pkg/vmodel/artifacts"
	"go.githedgehog.com/provisioner/pkg/vmodel/artifacts/embedded"
	"go.githedgehog.com/provisioner/pkg/vmodel/artifacts/file"
	"go.githedgehog.com/provisioner/pkg/vmodel/artifacts/oras"
	"go.uber.org/zap"
	"k8s.io/apimachinery/pkg/runtime"
	utilruntime "k8s.io/apimachinery/pkg/util/runtime"
	clientgoscheme "k8s.io/client-go/kubernetes/scheme"
	ctrl "sigs.k8s.io/controller-runtime"

	provisionerv1alpha1 "go.githedgehog.com/provisioner/pkg/k8s/api/v1alpha1"
)

func artifactsProvider(ctx context.Context, cfg *Artifacts) (*artifacts.Resolver, error) {
	var providers []artifacts.Provider
	ext := artifacts.DefaultExtension
	if cfg != nil {
		if cfg.Extension != "" {
			ext = cfg.Extension
		}
		if cfg.Directory != "" {
			providers = append(providers, file.Provider(cfg.Directory))
		}
		if r := cfg.Registry; r != nil && r.URL != "" {
			opts := []oras.ProviderOption{
				oras.ProviderOptionTag(r.Tag),
				oras.ProviderOptionTimeout(r.Timeout),
			}
			if r.ServerCA != "" {
				opts = append(opts, oras.ProviderOptionServerCA(r.ServerCA))
			}
			if r.ClientCert != "" || r.ClientKey != "" {
				opts = append(opts, oras.ProviderOptionTLSClientAuth(r.ClientCert, r.ClientKey))
			}
			if r.Username != "" {
				opts = append(opts, oras.ProviderOptionBasicAuth(r.Username, r.Password))
			}
			p, err := oras.Provider(ctx, r.URL, opts...)
			if err != nil {
				return nil, fmt.Errorf("artifacts registry: %w", err)
			}
			providers = append(providers, p)
		}
	}
	providers = append(providers, embedded.Provider())
	return artifacts.NewResolver(artifacts.New(providers...), ext), nil
}

func inventory(cfg *Inventory, installer policy.Installer) (*memory.Store, error) {
	if cfg == nil {
		return memory.New(), nil
	}
	nodes := make([]*vmodel.Node, 0, len(cfg.Nodes))
	for i := range cfg.Nodes {
		nodes = append(nodes, &cfg.Nodes[i])
	}
	models := make([]policy.Model, 0, len(cfg.Models))
	for _, spec := range cfg.Models {
		if spec.UUID == "" {
			return nil, fmt.Errorf("inventory: model without uuid")
		}
		models = append(models, policy.NewOSModel(spec, installer))
	}
	policies := make([]*policy.Policy, 0, len(cfg.Policies))
	for i := range cfg.Policies {
		policies = append(policies, &cfg.Policies[i])
	}
	return memory.New(
		memory.WithNodes(nodes...),
		memory.WithModels(models...),
		memory.WithPolicies(policies...),
	), nil
}

// backend is a vendor model store with its lifecycle
type backend struct {
	store.VModelStore

	// expirer is set when a controller takes care of timeouts
	expirer func(controllers.Expirer) error
	close   func()
}

func newBackend(ctx context.Context, cfg *Storage, inv *memory.Store) (*backend, error) {
	switch cfg.Backend {
	case StorageBadger:
		s, err := badger.Open(cfg.Path)
		if err != nil {
			return nil, err
		}
		return &backend{
			VModelStore: s,
			close: func() {
				if err := s.Close(); err != nil {
					l.Warn("closing database failed", zap.Error(err))
				}
			},
		}, nil
	case StorageKubernetes:
		return kubeBackend(ctx, cfg)
	default:
		return &backend{VModelStore: inv, close: func() {}}, nil
	}
}

func kubeBackend(ctx context.Context, cfg *Storage) (*backend, error) {
	scheme := runtime.NewScheme()
	utilruntime.Must(clientgoscheme.AddToScheme(scheme))
	utilruntime.Must(provisionerv1alpha1.AddToScheme(scheme))

	ctrl.SetLogger(zapr.NewLogger(zl.Named("controller")))

	restConfig, err := ctrl.GetConfig()
	if err != nil {
		return nil, fmt.Errorf("kubernetes config: %w", err)
	}
	mgr, err := ctrl.NewManager(restConfig, ctrl.Options{
		Scheme:             scheme,
		Namespace:          cfg.Namespace,
		MetricsBindAddress: "0",
	})
	if err != nil {
		return nil, fmt.Errorf("kubernetes manager: %w", err)
	}

	mctx, cancel := context.WithCancel(ctx)
	b := &backend{
		VModelStore: kube.New(mgr.GetClient(), cfg.Namespace, kube.WithReader(mgr.GetAPIReader())),
		close:       cancel,
	}
	b.expirer = func(e controllers.Expirer) error {
		if err := (&controllers.VModelTimeoutReconciler{
			Client:  mgr.GetClient(),
			Scheme:  mgr.GetScheme(),
			Expirer: e,
			Clock:   time.Now,
		}).SetupWithManager(mgr); err != nil {
			return fmt.Errorf("vmodel controller: %w", err)
		}
		go func() {
			if err := mgr.Start(mctx); err != nil {
				l.Error("kubernetes manager stopped", zap.Error(err))
			}
		}()
		if !mgr.GetCache().WaitForCacheSync(mctx) {
			return fmt.Errorf("kubernetes cache sync failed")
		}
		return nil
	}
	return b, nil
}

func serve(pctx context.Context, cfg *Config) error {
	ctx, cancel := context.WithCancel(pctx)
	defer cancel()

	resolver, err := artifactsProvider(ctx, cfg.Artifacts)
	if err != nil {
		return err
	}
	orchestrator, err := boot.New(boot.Config{BaseURL: cfg.BaseURL, Microkernel: cfg.Microkernel})
	if err != nil {
		return err
	}
	catalog := vmodel.NewCatalog(vmodel.Services{Artifacts: resolver, Boot: orchestrator})

	inv, err := inventory(cfg.Inventory, orchestrator)
	if err != nil {
		return err
	}
	b, err := newBackend(ctx, cfg.Storage, inv)
	if err != nil {
		return err
	}
	defer b.close()

	deps := engine.Dependencies{
		Nodes:    inv,
		Policies: inv,
		Models:   inv,
		VModels:  b,
		Boot:     orchestrator,
		Catalog:  catalog,
	}
	if cfg.Events != nil && cfg.Events.NATSURL != "" {
		pub, err := events.NewPublisher(cfg.Events.NATSURL, cfg.Events.SubjectPrefix)
		if err != nil {
			return err
		}
		defer pub.Close()
		deps.Notifier = pub
	}
	e, err := engine.New(deps, engine.WithBaseURL(cfg.BaseURL))
	if err != nil {
		return err
	}

	if b.expirer != nil {
		if err := b.expirer(e); err != nil {
			return err
		}
	} else {
		go e.RunTimer(ctx, cfg.Storage.TimerInterval)
	}

	s, err := server.New(&server.BindInfo{
		Address:        cfg.Server.Addresses,
		ClientCAPath:   cfg.Server.ClientCAPath,
		ServerKeyPath:  cfg.Server.ServerKeyPath,
		ServerCertPath: cfg.Server.ServerCertPath,
	}, e)
	if err != nil {
		return err
	}

	// register TERM and INT signals
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

	l.Info("Provisioner starting...", zap.Strings("addresses", cfg.Server.Addresses), zap.String("storage", cfg.Storage.Backend))
	s.Start()
	done := s.Done()
	var wg sync.WaitGroup
	var signalReceived bool
mainLoop:
	for {
		select {
		case sig := <-signals:
			if signalReceived {
				l.Info("received additional signal, ignoring...", zap.String("signal", sig.String()))
				break
			}
			l.Info("received signal, stopping provisioner...", zap.String("signal", sig.String()))
			signalReceived = true
			wg.Add(1)
			sctx, scancel := context.WithTimeout(context.Background(), time.Minute)
			go func(ctx context.Context, cancel context.CancelFunc) {
				defer cancel()
				s.Stop(ctx)
				l.Info("server shutdown complete")
				wg.Done()
			}(sctx, scancel)
		case err := <-done:
			l.Info("Provisioner stopped", zap.Error(err))
			break mainLoop
		}
	}
	l.Debug("Waiting for server shutdown to complete...")
	wg.Wait()
	l.Debug("Finished waiting for server shutdown")
	return nil
}
