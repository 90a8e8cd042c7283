package gatekeeper

import (
	"context"
	"fmt"
	"time"

	"github.com/viant/afs"
	"github.com/viant/gatekeeper/extension"
	"github.com/viant/gatekeeper/ledger"
	"github.com/viant/gatekeeper/model/types"
	"github.com/viant/gatekeeper/policy"
	"github.com/viant/gatekeeper/service/action/supplies"
	"github.com/viant/gatekeeper/service/approval"
	amemory "github.com/viant/gatekeeper/service/approval/memory"
	"github.com/viant/gatekeeper/service/event"
	"github.com/viant/gatekeeper/service/history"
	"github.com/viant/gatekeeper/service/messaging"
	mfs "github.com/viant/gatekeeper/service/messaging/fs"
	"github.com/viant/gatekeeper/service/orchestrator"
	"github.com/viant/gatekeeper/tracing"
	"github.com/viant/x"
)

// Service is the high-level façade wiring the ledger, the risk policy, the
// approval gateway and the transaction orchestrator together, and exposing
// the office-supply operations as registered tool services.
type Service struct {
	config       *Config
	ledger       *ledger.Service
	history      *history.Service
	gateway      approval.Service
	policy       *policy.Policy
	orchestrator *orchestrator.Service
	actions      *extension.Actions
	eventService *event.Service

	extensionTypes      []*x.Type
	extensionServices   []types.Service
	orchestratorOptions []orchestrator.Option

	stopExpire func()
}

// New creates a fully wired service.  With no options it serves the default
// office-supply catalog with a $5,000 monthly budget, an in-memory approval
// gateway and blocking approval semantics.
func New(options ...Option) (*Service, error) {
	ret := &Service{config: DefaultConfig()}
	if err := ret.init(options); err != nil {
		return nil, err
	}
	return ret, nil
}

func (s *Service) init(options []Option) error {
	for _, option := range options {
		option(s)
	}
	if s.config == nil {
		s.config = DefaultConfig()
	}
	if err := s.config.Validate(); err != nil {
		return err
	}
	if err := s.ensureBaseSetup(); err != nil {
		return err
	}

	orchestratorOptions := append([]orchestrator.Option{
		orchestrator.WithLedger(s.ledger),
		orchestrator.WithGateway(s.gateway),
		orchestrator.WithPolicy(s.policy),
		orchestrator.WithHistory(s.history),
	}, s.orchestratorOptions...)
	if s.config.Approval.WaitMode != "" {
		orchestratorOptions = append(orchestratorOptions, orchestrator.WithWaitMode(orchestrator.WaitMode(s.config.Approval.WaitMode)))
	}
	if s.config.Approval.Timeout > 0 {
		orchestratorOptions = append(orchestratorOptions, orchestrator.WithApprovalTimeout(s.config.Approval.Timeout))
	}
	if s.eventService != nil {
		publisher, err := event.PublisherOf[*orchestrator.Transaction](s.eventService)
		if err != nil {
			return err
		}
		orchestratorOptions = append(orchestratorOptions, orchestrator.WithEventPublisher(publisher))
	}
	var err error
	if s.orchestrator, err = orchestrator.New(orchestratorOptions...); err != nil {
		return err
	}

	s.actions = extension.NewActions(s.extensionTypes...)
	s.actions.Register(supplies.New(s.orchestrator, s.ledger, s.history, s.policy))
	for _, service := range s.extensionServices {
		s.actions.Register(service)
	}
	return nil
}

func (s *Service) ensureBaseSetup() error {
	if s.config.Tracing != nil {
		if err := tracing.Init(s.config.Tracing.ServiceName, s.config.Tracing.ServiceVersion, s.config.Tracing.OutputFile); err != nil {
			return err
		}
	}
	if s.ledger == nil {
		var ledgerOptions []ledger.Option
		if s.config.Budget.MaxLimit > 0 {
			ledgerOptions = append(ledgerOptions, ledger.WithMaxLimit(ledger.Cents(s.config.Budget.MaxLimit)))
		}
		s.ledger = ledger.New(s.config.budget(), s.config.catalog(), ledgerOptions...)
	}
	if s.history == nil {
		s.history = history.New(s.config.History.Limit)
	}
	if s.policy == nil {
		s.policy = s.config.riskPolicy()
	}
	if s.gateway == nil {
		gateway, err := s.newGateway()
		if err != nil {
			return err
		}
		s.gateway = gateway
	}
	return nil
}

// newGateway builds the approval gateway backed by the configured queue
// vendor.
func (s *Service) newGateway() (approval.Service, error) {
	switch s.config.Approval.QueueVendor {
	case "", string(messaging.VendorMemory):
		return amemory.New(), nil
	case string(messaging.VendorFs):
		config := mfs.DefaultConfig()
		if s.config.Approval.QueueBasePath != "" {
			config.BasePath = s.config.Approval.QueueBasePath
		}
		queue, err := mfs.NewQueue[approval.Event](afs.New(), config)
		if err != nil {
			return nil, err
		}
		return amemory.New(amemory.WithEventQueue(queue)), nil
	}
	return nil, fmt.Errorf("unsupported approval queue vendor: %v", s.config.Approval.QueueVendor)
}

// Start launches background workers: the notify-mode decision watcher and
// the approval expiry sweeper.
func (s *Service) Start(ctx context.Context) {
	s.orchestrator.Start(ctx)
	if s.config.Approval.Timeout > 0 && s.stopExpire == nil {
		s.stopExpire = approval.AutoExpire(ctx, s.gateway, "no decision within approval window", time.Second)
	}
}

// Shutdown stops background workers.
func (s *Service) Shutdown() {
	s.orchestrator.Shutdown()
	if s.stopExpire != nil {
		s.stopExpire()
		s.stopExpire = nil
	}
}

// RegisterExtensionTypes registers additional data types.
func (s *Service) RegisterExtensionTypes(types ...*x.Type) {
	for i := range types {
		s.actions.Types().Register(types[i])
	}
}

// RegisterExtensionServices registers additional tool services.
func (s *Service) RegisterExtensionServices(services ...types.Service) {
	for i := range services {
		s.actions.Register(services[i])
	}
}

// Config returns the effective configuration.
func (s *Service) Config() *Config { return s.config }

// Ledger returns the budget + inventory ledger.
func (s *Service) Ledger() *ledger.Service { return s.ledger }

// History returns the purchase history recorder.
func (s *Service) History() *history.Service { return s.history }

// Gateway returns the approval gateway.
func (s *Service) Gateway() approval.Service { return s.gateway }

// Orchestrator returns the transaction orchestrator.
func (s *Service) Orchestrator() *orchestrator.Service { return s.orchestrator }

// Actions returns the tool service registry.
func (s *Service) Actions() *extension.Actions { return s.actions }
