package gatekeeper

import (
	"time"

	"github.com/viant/gatekeeper/ledger"
	"github.com/viant/gatekeeper/model/types"
	"github.com/viant/gatekeeper/policy"
	"github.com/viant/gatekeeper/service/approval"
	"github.com/viant/gatekeeper/service/event"
	"github.com/viant/gatekeeper/service/history"
	"github.com/viant/gatekeeper/service/orchestrator"
	"github.com/viant/gatekeeper/tracing"
	"github.com/viant/x"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

type Option func(s *Service)

// WithConfig replaces the default configuration.
func WithConfig(config *Config) Option {
	return func(s *Service) { s.config = config }
}

// WithLedger replaces the ledger built from the configuration.
func WithLedger(l *ledger.Service) Option {
	return func(s *Service) { s.ledger = l }
}

// WithApprovalService sets the approval gateway.
func WithApprovalService(svc approval.Service) Option {
	return func(s *Service) { s.gateway = svc }
}

// WithPolicy replaces the risk policy built from the configuration.
func WithPolicy(p *policy.Policy) Option {
	return func(s *Service) { s.policy = p }
}

// WithHistory replaces the purchase history recorder.
func WithHistory(h *history.Service) Option {
	return func(s *Service) { s.history = h }
}

// WithEventService attaches a typed event service; terminal transaction
// transitions are published through it.
func WithEventService(service *event.Service) Option {
	return func(s *Service) { s.eventService = service }
}

// WithExtensionTypes sets the extension types
func WithExtensionTypes(types ...*x.Type) Option {
	return func(s *Service) { s.extensionTypes = types }
}

// WithExtensionServices sets the extension services
func WithExtensionServices(services ...types.Service) Option {
	return func(s *Service) { s.extensionServices = services }
}

// WithApprovalTimeout bounds how long gated operations wait for a decision.
func WithApprovalTimeout(timeout time.Duration) Option {
	return func(s *Service) { s.config.Approval.Timeout = timeout }
}

// WithWaitMode selects blocking or notify semantics for gated submissions.
func WithWaitMode(mode orchestrator.WaitMode) Option {
	return func(s *Service) { s.config.Approval.WaitMode = string(mode) }
}

// WithOrchestratorOptions appends options passed through to the orchestrator
// constructor.
func WithOrchestratorOptions(opts ...orchestrator.Option) Option {
	return func(s *Service) {
		s.orchestratorOptions = append(s.orchestratorOptions, opts...)
	}
}

// WithTracing configures OpenTelemetry tracing for the service. If outputFile is empty the
// stdout exporter is used; otherwise traces are written to the supplied file path. The function is
// safe to call multiple times – the first successful initialisation wins.
func WithTracing(serviceName, serviceVersion, outputFile string) Option {
	return func(s *Service) {
		_ = tracing.Init(serviceName, serviceVersion, outputFile)
	}
}

// WithTracingExporter configures OpenTelemetry tracing using a custom SpanExporter. This enables
// integrations with exporters other than the built-in stdout exporter, for example OTLP, Jaeger or
// Zipkin. The function is safe to call multiple times – the first successful initialisation wins.
func WithTracingExporter(serviceName, serviceVersion string, exporter sdktrace.SpanExporter) Option {
	return func(s *Service) {
		_ = tracing.InitWithExporter(serviceName, serviceVersion, exporter)
	}
}
