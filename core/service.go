package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	glog "github.com/goliatone/go-logger/glog"
	"github.com/google/uuid"
)

// Service is the intake boundary plus the provisioning orchestrator. Intake
// validates and persists requests; the orchestrator runs detached and
// communicates only through the persisted record.
type Service struct {
	config          Config
	logger          Logger
	loggerProvider  LoggerProvider
	metricsRecorder MetricsRecorder
	errorFactory    ErrorFactory
	errorMapper     ErrorMapper
	configProvider  ConfigProvider
	optionsResolver OptionsResolver
	graphClient     GraphClient
	requestStore    RequestStore
	requestLocker   RequestLocker
	dispatcher      ProvisionDispatcher
	nameValidator   *NameValidator
	nowFn           func() time.Time
}

func NewService(cfg Config, options ...Option) (*Service, error) {
	builder := defaultServiceBuilder(cfg)
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&builder)
	}

	provider, logger := glog.Resolve("team-requests", builder.loggerProvider, builder.logger)
	logger = glog.Ensure(logger)
	if provider != nil {
		if named := provider.GetLogger("team-requests"); named != nil {
			logger = glog.Ensure(named)
		}
	}

	if builder.errorFactory == nil {
		builder.errorFactory = goerrors.New
	}
	if builder.errorMapper == nil {
		builder.errorMapper = defaultErrorMapper
	}
	if builder.metricsRecorder == nil {
		builder.metricsRecorder = NopMetricsRecorder{}
	}
	if builder.configProvider == nil {
		builder.configProvider = NewCfgxConfigProvider(nil)
	}
	if builder.optionsResolver == nil {
		builder.optionsResolver = GoOptionsResolver{}
	}
	if builder.requestLocker == nil {
		builder.requestLocker = NewMemoryRequestLocker()
	}
	if builder.nowFn == nil {
		builder.nowFn = func() time.Time { return time.Now().UTC() }
	}

	defaults := DefaultConfig()
	loaded, err := builder.configProvider.Load(context.Background(), defaults)
	if err != nil {
		return nil, mapBuildError(builder.errorMapper, err)
	}
	finalConfig, err := builder.optionsResolver.Resolve(defaults, loaded, builder.runtimeConfig)
	if err != nil {
		return nil, mapBuildError(builder.errorMapper, err)
	}

	service := &Service{
		config:          finalConfig,
		logger:          logger,
		loggerProvider:  provider,
		metricsRecorder: builder.metricsRecorder,
		errorFactory:    builder.errorFactory,
		errorMapper:     builder.errorMapper,
		configProvider:  builder.configProvider,
		optionsResolver: builder.optionsResolver,
		graphClient:     builder.graphClient,
		requestStore:    builder.requestStore,
		requestLocker:   builder.requestLocker,
		nowFn:           builder.nowFn,
	}
	service.nameValidator = NewNameValidator(builder.graphClient)
	service.dispatcher = builder.dispatcher
	if service.dispatcher == nil {
		service.dispatcher = NewGoroutineDispatcher(service)
	}
	return service, nil
}

func mapBuildError(mapper ErrorMapper, err error) error {
	if err == nil {
		return nil
	}
	if mapper == nil {
		return err
	}
	if mapped := mapper(err); mapped != nil {
		return mapped
	}
	return err
}

func (s *Service) Config() Config {
	if s == nil {
		return Config{}
	}
	return s.config
}

func (s *Service) mapError(err error) error {
	if s == nil || s.errorMapper == nil {
		return err
	}
	if err == nil {
		return nil
	}
	if mapped := s.errorMapper(err); mapped != nil {
		return mapped
	}
	return err
}

// SubmitRequestInput is the validated creation payload accepted from the
// excluded HTTP layer. Owner and member entries are directory user ids; the
// service normalizes them into graph bind URLs before persisting.
type SubmitRequestInput struct {
	RequestedByUserID string
	TeamDisplayName   string
	TeamDescription   string
	TeamVisibility    TeamVisibility
	TeamAllowGuests   bool
	TeamTemplate      TeamTemplate
	TeamOwnerIDs      []string
	TeamMemberIDs     []string
}

// SubmitRequest validates the intake payload, persists the request in
// Requested state and hands it to the orchestrator without waiting for
// provisioning to finish. The stored record is the only result channel.
func (s *Service) SubmitRequest(ctx context.Context, in SubmitRequestInput) (TeamRequest, error) {
	if s == nil {
		return TeamRequest{}, fmt.Errorf("core: service is nil")
	}
	if s.requestStore == nil {
		return TeamRequest{}, s.mapError(fmt.Errorf("core: request store is required"))
	}

	config, err := s.requestStore.GetConfiguration(ctx)
	if err != nil {
		return TeamRequest{}, s.mapError(err)
	}

	now := s.now()
	request := TeamRequest{
		ID:                uuid.NewString(),
		RequestedByUserID: strings.TrimSpace(in.RequestedByUserID),
		RequestedAt:       now,
		TeamDisplayName:   strings.TrimSpace(in.TeamDisplayName),
		TeamDescription:   strings.TrimSpace(in.TeamDescription),
		TeamVisibility:    in.TeamVisibility,
		TeamAllowGuests:   in.TeamAllowGuests,
		TeamTemplate:      in.TeamTemplate,
		TeamOwners:        userBindURLs(in.TeamOwnerIDs),
		TeamMembers:       userBindURLs(in.TeamMemberIDs),
		Status:            RequestStatusRequested,
		StatusHistory: []StatusHistoryEntry{
			{Status: RequestStatusRequested, At: now},
		},
		GraphRequests: []GraphRequestEntry{},
	}
	if err := request.Validate(config.MinimumTeamOwners); err != nil {
		return TeamRequest{}, s.mapError(err)
	}

	stored, err := s.requestStore.Upsert(ctx, request)
	if err != nil {
		return TeamRequest{}, s.mapError(err)
	}

	if err := s.dispatcher.Dispatch(ctx, stored.ID, stored.RequestedByUserID); err != nil {
		// The request is persisted; a dispatch failure is surfaced so the
		// caller can re-submit the run, not the request.
		s.logError(ctx, "provision dispatch failed", map[string]any{
			"request_id": stored.ID,
			"error":      err.Error(),
		})
		return stored, s.mapError(err)
	}
	return stored, nil
}

// GetRequest returns a single request scoped to its owner.
func (s *Service) GetRequest(ctx context.Context, id string, ownerID string) (TeamRequest, error) {
	if s == nil || s.requestStore == nil {
		return TeamRequest{}, fmt.Errorf("core: request store is required")
	}
	request, err := s.requestStore.Get(ctx, strings.TrimSpace(id), strings.TrimSpace(ownerID))
	if err != nil {
		return TeamRequest{}, s.mapError(err)
	}
	return request, nil
}

// ListRequests returns the owner's requests, most recent first.
func (s *Service) ListRequests(ctx context.Context, ownerID string) ([]TeamRequest, error) {
	if s == nil || s.requestStore == nil {
		return nil, fmt.Errorf("core: request store is required")
	}
	limit := s.config.Intake.ListPageSize
	if limit <= 0 {
		limit = DefaultConfig().Intake.ListPageSize
	}
	requests, err := s.requestStore.ListForOwner(ctx, strings.TrimSpace(ownerID), limit)
	if err != nil {
		return nil, s.mapError(err)
	}
	return requests, nil
}

// GetConfiguration returns the app configuration, creating defaults on
// first read.
func (s *Service) GetConfiguration(ctx context.Context) (AppConfig, error) {
	if s == nil || s.requestStore == nil {
		return AppConfig{}, fmt.Errorf("core: request store is required")
	}
	config, err := s.requestStore.GetConfiguration(ctx)
	if err != nil {
		return AppConfig{}, s.mapError(err)
	}
	return config, nil
}

// UpdateConfiguration replaces the singleton app configuration.
func (s *Service) UpdateConfiguration(ctx context.Context, config AppConfig) (AppConfig, error) {
	if s == nil || s.requestStore == nil {
		return AppConfig{}, fmt.Errorf("core: request store is required")
	}
	if config.MinimumTeamOwners < 1 {
		return AppConfig{}, s.mapError(fmt.Errorf("%w: minimum team owners must be at least 1", ErrMissingRequiredField))
	}
	if err := config.TeamVisibilityDefault.Validate(); err != nil {
		return AppConfig{}, s.mapError(err)
	}
	stored, err := s.requestStore.UpsertConfiguration(ctx, config)
	if err != nil {
		return AppConfig{}, s.mapError(err)
	}
	return stored, nil
}

// SearchUsers is a pass-through to the directory for owner/member lookup.
func (s *Service) SearchUsers(ctx context.Context, query string) ([]DirectoryUser, error) {
	if s == nil || s.graphClient == nil {
		return nil, fmt.Errorf("core: graph client is required")
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, s.mapError(fmt.Errorf("core: search query is required"))
	}
	users, err := s.graphClient.SearchUsers(ctx, query)
	if err != nil {
		return nil, s.mapError(err)
	}
	return users, nil
}

// ValidateTeamName negotiates a conforming display name with the directory
// and checks it for uniqueness.
func (s *Service) ValidateTeamName(ctx context.Context, name string, onBehalfOfUserID string) (NameValidationResult, error) {
	if s == nil || s.nameValidator == nil {
		return NameValidationResult{}, fmt.Errorf("core: name validator is required")
	}
	result, err := s.nameValidator.Validate(ctx, onBehalfOfUserID, name)
	if err != nil {
		return NameValidationResult{}, s.mapError(err)
	}
	return result, nil
}

func (s *Service) now() time.Time {
	if s == nil || s.nowFn == nil {
		return time.Now().UTC()
	}
	return s.nowFn().UTC()
}

func userBindURLs(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		out = append(out, UserBindURL(id))
	}
	return out
}

// UserBindURL renders the directory bind reference for a user id, the form
// the external service expects in membership payloads.
func UserBindURL(userID string) string {
	return fmt.Sprintf("https://graph.microsoft.com/v1.0/users('%s')", strings.TrimSpace(userID))
}
