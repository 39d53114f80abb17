package main

import (
	"encoding/json"
	"fmt"
	"os"

	"go.githedgehog.com/provisioner/pkg/engine"
	"go.githedgehog.com/provisioner/pkg/log"
	"go.githedgehog.com/provisioner/pkg/server"
	"go.githedgehog.com/provisioner/pkg/version"
	"go.githedgehog.com/provisioner/pkg/vmodel"
	"go.githedgehog.com/provisioner/pkg/vmodel/artifacts"
	"go.githedgehog.com/provisioner/pkg/vmodel/artifacts/embedded"
	"go.githedgehog.com/provisioner/pkg/vmodel/metadata"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"
)

var (
	defaultLogLevel = zapcore.InfoLevel
)

var (
	zl = zap.Must(log.NewConsole(zapcore.DebugLevel, "console", true))
	l  = log.NewZapWrappedLogger(zl)
)

var description = `
This is the Hedgehog bare-metal provisioning server. Nodes chainload into it
over iPXE, and every node bound to a policy is walked through the hardware
configuration workflow of its vendor model before its operating system gets
installed.

There are several components that need to be configured:
- bind info / listeners for the HTTP server which serves boot agents and the
  administrative API
- the artifacts provider which can load vendor artifacts from a directory or
  an OCI registry
- the storage backend of vendor model instances: memory, badger or kubernetes
- the microkernel image which runs the hardware configuration phases
- the inventory of nodes, OS models and policies
`

func main() {
	app := &cli.App{
		Name:        "provisioner",
		Usage:       "bare-metal provisioning server",
		UsageText:   "provisioner [global options] command [command options]",
		Description: description[1 : len(description)-1],
		Version:     version.Version,
		Flags: []cli.Flag{
			&cli.GenericFlag{
				Name:  "log-level",
				Usage: "minimum log level to log at",
				Value: &defaultLogLevel,
			},
			&cli.StringFlag{
				Name:  "log-format",
				Usage: "log format to use: json or console",
				Value: "json",
			},
			&cli.BoolFlag{
				Name:  "log-development",
				Usage: "enables development log settings",
				Value: false,
			},
		},
		Before: func(ctx *cli.Context) error {
			var err error
			zl, err = log.NewConsole(
				*ctx.Generic("log-level").(*zapcore.Level),
				ctx.String("log-format"),
				ctx.Bool("log-development"),
			)
			if err != nil {
				return err
			}
			l = log.NewZapWrappedLogger(zl)
			log.ReplaceGlobals(l)
			return nil
		},
		After: func(ctx *cli.Context) error {
			if err := l.Sync(); err != nil {
				l.Debug("Flushing logger failed", zap.Error(err))
			}
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "runs the provisioning server",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "reference-config",
						Usage: "prints a reference config to stdout and exits",
					},
					&cli.PathFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "load configuration from `FILE`",
						Value:   "/etc/hedgehog/provisioner/config.yaml",
					},
				},
				Action: func(ctx *cli.Context) error {
					// display reference config if requested
					if ctx.Bool("reference-config") {
						b, err := marshalReferenceConfig()
						if err != nil {
							return err
						}
						_, err = os.Stdout.Write(append(b, []byte("\n")...))
						return err
					}

					cfg, err := loadConfig(ctx.Path("config"))
					if err != nil {
						return err
					}
					l.Info("Successfully loaded configuration", zap.String("path", ctx.Path("config")), zap.Reflect("config", cfg))
					return serve(ctx.Context, cfg)
				},
			},
			{
				Name:  "templates",
				Usage: "lists the vendor model templates and their metadata",
				Action: func(ctx *cli.Context) error {
					return printTemplates(os.Stdout)
				},
			},
			{
				Name:  "metadata",
				Usage: "asks for the metadata of a template and prints a create request",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "template",
						Aliases:  []string{"t"},
						Usage:    "name of the vendor model template",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "label",
						Aliases:  []string{"l"},
						Usage:    "label of the new instance",
						Required: true,
					},
				},
				Action: func(ctx *cli.Context) error {
					return collectMetadata(ctx.String("template"), ctx.String("label"))
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		l.Fatal("provisioner failed", zap.Error(err))
	}
}

// offlineCatalog is used by the commands which only need template definitions
func offlineCatalog() *vmodel.Catalog {
	return vmodel.NewCatalog(vmodel.Services{
		Artifacts: artifacts.NewResolver(embedded.Provider(), artifacts.DefaultExtension),
	})
}

func templateInfos() []engine.TemplateInfo {
	list := offlineCatalog().List()
	ret := make([]engine.TemplateInfo, 0, len(list))
	for _, t := range list {
		ret = append(ret, engine.NewTemplateInfo(t))
	}
	return ret
}

func printTemplates(w *os.File) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(templateInfos()); err != nil {
		return err
	}
	return enc.Close()
}

func collectMetadata(name, label string) error {
	tmpl, err := offlineCatalog().Get(name)
	if err != nil {
		return err
	}
	p := metadata.NewAccessiblePrompter(os.Stdin, os.Stderr)
	if term.IsTerminal(int(os.Stdin.Fd())) {
		p = metadata.NewTerminalPrompter(os.Stderr)
	}
	values, err := p.Collect(tmpl.Metadata())
	if err != nil {
		return err
	}
	b, err := json.MarshalIndent(server.CreateRequest{
		Template: tmpl.Name(),
		Label:    label,
		Metadata: values,
	}, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(os.Stdout, string(b))
	return err
}
