// Package events publishes vendor model transitions to NATS
package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"go.githedgehog.com/provisioner/pkg/log"
	"go.githedgehog.com/provisioner/pkg/vmodel"
	"go.uber.org/zap"
)

// DefaultSubjectPrefix is the subject prefix of transition events. The
// instance UUID is appended as the last token.
const DefaultSubjectPrefix = "provisioner.vmodel"

var ErrNotConnected = errors.New("events: nats not connected")

// Event is the payload of a transition event
type Event struct {
	VModel     string                  `json:"vmodel"`
	Label      string                  `json:"label"`
	Template   string                  `json:"template"`
	Complete   bool                    `json:"complete"`
	Transition vmodel.TransitionRecord `json:"transition"`
}

// Publisher implements engine.Notifier
type Publisher struct {
	nc      *nats.Conn
	prefix  string
	publish func(subject string, data []byte) error
}

// NewPublisher connects to the NATS server(s) at `url`
func NewPublisher(url, prefix string) (*Publisher, error) {
	if prefix == "" {
		prefix = DefaultSubjectPrefix
	}
	opts := []nats.Option{
		nats.Name("provisioner"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2 * time.Second),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.L().Named("events").Warn("nats disconnected", zap.Error(err))
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.L().Named("events").Info("nats reconnected", zap.String("url", nc.ConnectedUrl()))
		}),
	}
	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("events: connecting to %s: %w", url, err)
	}
	p := &Publisher{nc: nc, prefix: strings.TrimSuffix(prefix, ".")}
	p.publish = func(subject string, data []byte) error {
		if p.nc.IsClosed() {
			return ErrNotConnected
		}
		return p.nc.Publish(subject, data)
	}
	return p, nil
}

// Subject returns the subject of the events of instance `id`
func (p *Publisher) Subject(id string) string {
	return p.prefix + "." + id
}

func (p *Publisher) Notify(_ context.Context, vm *vmodel.VModel, rec vmodel.TransitionRecord) error {
	data, err := json.Marshal(Event{
		VModel:     vm.UUID,
		Label:      vm.Label,
		Template:   vm.Template,
		Complete:   rec.State == vm.FinalState,
		Transition: rec,
	})
	if err != nil {
		return err
	}
	return p.publish(p.Subject(vm.UUID), data)
}

func (p *Publisher) Close() {
	if p.nc != nil {
		if err := p.nc.Drain(); err != nil {
			log.L().Named("events").Debug("nats drain", zap.Error(err))
		}
		p.nc.Close()
	}
}
