package teamrequests

import "github.com/leeford/team-request-app/core"

type Config = core.Config

type Option = core.Option

type Service = core.Service

type TeamRequest = core.TeamRequest
type AppConfig = core.AppConfig
type SubmitRequestInput = core.SubmitRequestInput
type NameValidationResult = core.NameValidationResult
type DirectoryUser = core.DirectoryUser

type GraphClient = core.GraphClient
type RequestStore = core.RequestStore
type RequestLocker = core.RequestLocker
type ProvisionDispatcher = core.ProvisionDispatcher

var (
	WithLogger              = core.WithLogger
	WithLoggerProvider      = core.WithLoggerProvider
	WithMetricsRecorder     = core.WithMetricsRecorder
	WithErrorFactory        = core.WithErrorFactory
	WithErrorMapper         = core.WithErrorMapper
	WithConfigProvider      = core.WithConfigProvider
	WithOptionsResolver     = core.WithOptionsResolver
	WithGraphClient         = core.WithGraphClient
	WithRequestStore        = core.WithRequestStore
	WithRequestLocker       = core.WithRequestLocker
	WithProvisionDispatcher = core.WithProvisionDispatcher
	WithClock               = core.WithClock
)

func DefaultConfig() Config {
	return core.DefaultConfig()
}

func NewService(cfg Config, opts ...Option) (*Service, error) {
	return core.NewService(cfg, opts...)
}
