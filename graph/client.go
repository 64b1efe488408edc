package graph

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"

	"github.com/leeford/team-request-app/core"
)

const (
	defaultBaseURL        = "https://graph.microsoft.com/v1.0"
	defaultBetaURL        = "https://graph.microsoft.com/beta"
	defaultRequestTimeout = 30 * time.Second
	maxResponseBodyBytes  = 1 << 20
)

type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// TokenProvider supplies a bearer token for outgoing calls. Implementations
// own caching and refresh.
type TokenProvider interface {
	Token(ctx context.Context) (string, error)
}

// StaticTokenProvider returns a fixed token; test and CLI use.
type StaticTokenProvider string

func (p StaticTokenProvider) Token(context.Context) (string, error) {
	token := strings.TrimSpace(string(p))
	if token == "" {
		return "", fmt.Errorf("graph: static token is empty")
	}
	return token, nil
}

type Config struct {
	BaseURL        string
	BetaURL        string
	TokenProvider  TokenProvider
	HTTPClient     HTTPDoer
	RequestTimeout time.Duration
}

// Client is the core.GraphClient implementation backed by the Microsoft
// Graph REST API.
type Client struct {
	config     Config
	httpClient HTTPDoer
}

func NewClient(cfg Config) *Client {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	betaURL := strings.TrimRight(strings.TrimSpace(cfg.BetaURL), "/")
	if betaURL == "" {
		betaURL = defaultBetaURL
	}
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Client{
		config: Config{
			BaseURL:        baseURL,
			BetaURL:        betaURL,
			TokenProvider:  cfg.TokenProvider,
			RequestTimeout: timeout,
		},
		httpClient: httpClient,
	}
}

func (c *Client) SearchUsers(ctx context.Context, query string) ([]core.DirectoryUser, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, goerrors.New("graph: search query is required", goerrors.CategoryBadInput)
	}
	endpoint := fmt.Sprintf(
		"%s/users?$filter=%s&$select=id,displayName,jobTitle&$top=10",
		c.config.BaseURL,
		url.QueryEscape(fmt.Sprintf("startswith(displayName,'%s')", escapeODataLiteral(query))),
	)
	var envelope struct {
		Value []userPayload `json:"value"`
	}
	if _, err := c.do(ctx, http.MethodGet, endpoint, nil, http.StatusOK, &envelope); err != nil {
		return nil, err
	}
	users := make([]core.DirectoryUser, 0, len(envelope.Value))
	for _, payload := range envelope.Value {
		users = append(users, core.DirectoryUser{
			ID:          payload.ID,
			DisplayName: payload.DisplayName,
			JobTitle:    payload.JobTitle,
		})
	}
	return users, nil
}

func (c *Client) FindTeamsByName(ctx context.Context, displayName string) ([]core.TeamSummary, error) {
	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		return nil, goerrors.New("graph: display name is required", goerrors.CategoryBadInput)
	}
	// Filtering on resourceProvisioningOptions is only available on the
	// beta surface.
	filter := fmt.Sprintf(
		"displayName eq '%s' and resourceProvisioningOptions/Any(x:x eq 'Team')",
		escapeODataLiteral(displayName),
	)
	endpoint := fmt.Sprintf(
		"%s/groups?$filter=%s&$select=id,displayName",
		c.config.BetaURL,
		url.QueryEscape(filter),
	)
	var envelope struct {
		Value []groupPayload `json:"value"`
	}
	if _, err := c.do(ctx, http.MethodGet, endpoint, nil, http.StatusOK, &envelope); err != nil {
		return nil, err
	}
	teams := make([]core.TeamSummary, 0, len(envelope.Value))
	for _, payload := range envelope.Value {
		teams = append(teams, core.TeamSummary{ID: payload.ID, DisplayName: payload.DisplayName})
	}
	return teams, nil
}

func (c *Client) ValidateProperties(ctx context.Context, props core.ValidationProperties) ([]core.ValidationViolation, error) {
	endpoint := c.config.BaseURL + "/directoryObjects/validateProperties"
	response, err := c.send(ctx, http.MethodPost, endpoint, props)
	if err != nil {
		return nil, err
	}
	defer response.Body.Close()

	body, err := readBody(response)
	if err != nil {
		return nil, err
	}
	switch response.StatusCode {
	case http.StatusNoContent:
		return nil, nil
	case http.StatusUnprocessableEntity:
		return parseValidationViolations(body)
	default:
		return nil, statusError("validate properties", response.StatusCode, body)
	}
}

func (c *Client) CreateTeam(ctx context.Context, body core.TeamCreateBody) (core.OperationHandle, error) {
	response, err := c.send(ctx, http.MethodPost, c.config.BaseURL+"/teams", body)
	if err != nil {
		return core.OperationHandle{}, err
	}
	defer response.Body.Close()

	payload, err := readBody(response)
	if err != nil {
		return core.OperationHandle{}, err
	}
	if response.StatusCode != http.StatusAccepted {
		if mapped := statusError("create team", response.StatusCode, payload); mapped != nil {
			return core.OperationHandle{}, mapped
		}
		return core.OperationHandle{}, fmt.Errorf("%w: status %d", core.ErrCreationNotAccepted, response.StatusCode)
	}
	location := strings.TrimSpace(response.Header.Get("Location"))
	if location == "" {
		return core.OperationHandle{}, fmt.Errorf("%w: missing operation location", core.ErrCreationNotAccepted)
	}
	return core.OperationHandle{Location: location}, nil
}

func (c *Client) PollOperation(ctx context.Context, handle core.OperationHandle) (core.OperationStatus, error) {
	if handle.IsZero() {
		return core.OperationStatus{}, goerrors.New("graph: operation handle is required", goerrors.CategoryBadInput)
	}
	endpoint := handle.Location
	if !strings.HasPrefix(endpoint, "http") {
		endpoint = c.config.BaseURL + "/" + strings.TrimLeft(endpoint, "/")
	}
	var payload operationPayload
	if _, err := c.do(ctx, http.MethodGet, endpoint, nil, http.StatusOK, &payload); err != nil {
		return core.OperationStatus{}, err
	}
	return core.OperationStatus{
		State:            mapOperationState(payload.Status),
		TargetResourceID: strings.TrimSpace(payload.TargetResourceID),
	}, nil
}

func (c *Client) GetGroup(ctx context.Context, groupID string) (core.Group, error) {
	groupID = strings.TrimSpace(groupID)
	if groupID == "" {
		return core.Group{}, goerrors.New("graph: group id is required", goerrors.CategoryBadInput)
	}
	endpoint := fmt.Sprintf("%s/groups/%s?$select=id,displayName", c.config.BaseURL, url.PathEscape(groupID))
	var payload groupPayload
	if _, err := c.do(ctx, http.MethodGet, endpoint, nil, http.StatusOK, &payload); err != nil {
		return core.Group{}, err
	}
	return core.Group{ID: payload.ID, DisplayName: payload.DisplayName}, nil
}

func (c *Client) AddTeamMember(ctx context.Context, teamID string, member core.ConversationMemberBody) error {
	teamID = strings.TrimSpace(teamID)
	if teamID == "" {
		return goerrors.New("graph: team id is required", goerrors.CategoryBadInput)
	}
	endpoint := fmt.Sprintf("%s/teams/%s/members", c.config.BaseURL, url.PathEscape(teamID))
	_, err := c.do(ctx, http.MethodPost, endpoint, member, http.StatusCreated, nil)
	return err
}

func (c *Client) CreateGroupSetting(ctx context.Context, groupID string, setting core.GroupSettingBody) error {
	groupID = strings.TrimSpace(groupID)
	if groupID == "" {
		return goerrors.New("graph: group id is required", goerrors.CategoryBadInput)
	}
	endpoint := fmt.Sprintf("%s/groups/%s/settings", c.config.BaseURL, url.PathEscape(groupID))
	_, err := c.do(ctx, http.MethodPost, endpoint, setting, http.StatusCreated, nil)
	return err
}

func (c *Client) DeleteTeam(ctx context.Context, teamID string) error {
	teamID = strings.TrimSpace(teamID)
	if teamID == "" {
		return goerrors.New("graph: team id is required", goerrors.CategoryBadInput)
	}
	endpoint := fmt.Sprintf("%s/groups/%s", c.config.BaseURL, url.PathEscape(teamID))
	_, err := c.do(ctx, http.MethodDelete, endpoint, nil, http.StatusNoContent, nil)
	return err
}

// do sends the request, enforces the expected status and decodes the payload
// into out when provided.
func (c *Client) do(ctx context.Context, method string, endpoint string, body any, wantStatus int, out any) (*http.Response, error) {
	response, err := c.send(ctx, method, endpoint, body)
	if err != nil {
		return nil, err
	}
	defer response.Body.Close()

	payload, err := readBody(response)
	if err != nil {
		return nil, err
	}
	if response.StatusCode != wantStatus {
		return nil, statusError(fmt.Sprintf("%s %s", strings.ToLower(method), endpoint), response.StatusCode, payload)
	}
	if out != nil && len(payload) > 0 {
		if err := json.Unmarshal(payload, out); err != nil {
			return nil, goerrors.Wrap(err, goerrors.CategoryExternal, "graph: decode response")
		}
	}
	return response, nil
}

func (c *Client) send(ctx context.Context, method string, endpoint string, body any) (*http.Response, error) {
	if c == nil || c.httpClient == nil {
		return nil, fmt.Errorf("graph: http client is not configured")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	requestCtx := ctx
	cancel := func() {}
	if c.config.RequestTimeout > 0 {
		requestCtx, cancel = context.WithTimeout(ctx, c.config.RequestTimeout)
	}

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			cancel()
			return nil, fmt.Errorf("graph: encode request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}
	request, err := http.NewRequestWithContext(requestCtx, method, endpoint, reader)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("graph: build request: %w", err)
	}
	if body != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	request.Header.Set("Accept", "application/json")
	if c.config.TokenProvider != nil {
		token, err := c.config.TokenProvider.Token(requestCtx)
		if err != nil {
			cancel()
			return nil, goerrors.Wrap(err, goerrors.CategoryAuth, "graph: resolve access token")
		}
		request.Header.Set("Authorization", "Bearer "+token)
	}

	response, err := c.httpClient.Do(request)
	if err != nil {
		cancel()
		return nil, goerrors.Wrap(err, goerrors.CategoryExternal, "graph: request failed")
	}
	response.Body = &cancelOnCloseBody{ReadCloser: response.Body, cancel: cancel}
	return response, nil
}

// cancelOnCloseBody releases the per-request timeout context when the
// response body is closed.
type cancelOnCloseBody struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (b *cancelOnCloseBody) Close() error {
	err := b.ReadCloser.Close()
	if b.cancel != nil {
		b.cancel()
	}
	return err
}

func readBody(response *http.Response) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(response.Body, maxResponseBodyBytes+1))
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryExternal, "graph: read response body")
	}
	if int64(len(body)) > maxResponseBodyBytes {
		return nil, goerrors.New(
			fmt.Sprintf("graph: response exceeds %d bytes", maxResponseBodyBytes),
			goerrors.CategoryExternal,
		)
	}
	return body, nil
}

// escapeODataLiteral doubles single quotes, the OData escape for string
// literals.
func escapeODataLiteral(value string) string {
	return strings.ReplaceAll(value, "'", "''")
}
