// Habitica v3 API implementation of [Gateway]
//
// Endpoint and header conventions per https://habitica.com/apidoc/
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"habitvault/internal/models"
	"habitvault/internal/shared"
)

const (
	// DefaultBaseURL is the production Habitica API root.
	DefaultBaseURL = "https://habitica.com/api/v3"

	// DefaultClientID is sent as the x-client header on every request, per
	// the API's client identification guideline.
	DefaultClientID = "habitvault-backup-importer"

	unknownErrorMessage = "An unknown error occurred"
)

// envelope is the uniform Habitica response wrapper.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

// message returns the service-supplied error message, or the given fallback
// when the response carried none (or was unparsable).
func (e *envelope) message(fallback string) string {
	if e != nil && e.Message != "" {
		return e.Message
	}
	return fallback
}

// HabiticaService implements [Gateway] against the Habitica v3 REST API.
//
// An optional [rate.Limiter] throttles all outbound requests; Habitica
// enforces 30 requests per minute per user.
type HabiticaService struct {
	baseURL    string
	clientID   string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// HabiticaOpts contains configuration options for creating a HabiticaService.
type HabiticaOpts struct {
	BaseURL    string
	ClientID   string
	HTTPClient *http.Client
	Limiter    *rate.Limiter
}

// NewHabiticaService creates a new Habitica API gateway.
func NewHabiticaService(opts HabiticaOpts) *HabiticaService {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.ClientID == "" {
		opts.ClientID = DefaultClientID
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}

	return &HabiticaService{
		baseURL:    opts.BaseURL,
		clientID:   opts.ClientID,
		httpClient: opts.HTTPClient,
		limiter:    opts.Limiter,
	}
}

// LimiterForRPM builds a request limiter for the given requests-per-minute
// budget. Zero or negative disables throttling.
func LimiterForRPM(rpm int) *rate.Limiter {
	if rpm <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Limit(float64(rpm)/60.0), 1)
}

// doRequest performs one authenticated request and decodes the response
// envelope. The envelope is returned even for non-2xx statuses so callers
// can surface the service message; it is nil only when the body was
// unparsable.
func (s *HabiticaService) doRequest(ctx context.Context, method, path string, creds models.Credentials, body any) (int, *envelope, error) {
	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return 0, nil, fmt.Errorf("rate limiter wait failed: %w", err)
		}
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return 0, nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, reqBody)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-user", creds.UserID)
	req.Header.Set("x-api-key", creds.APIToken)
	req.Header.Set("x-client", s.clientID)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("failed to read response: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return resp.StatusCode, nil, nil
	}
	return resp.StatusCode, &env, nil
}

// FetchProfileName authenticates with the given credentials and returns the
// account's display name.
func (s *HabiticaService) FetchProfileName(ctx context.Context, creds models.Credentials) (string, error) {
	status, env, err := s.doRequest(ctx, http.MethodGet, "/user", creds, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", shared.ErrAuth, err)
	}
	if status < 200 || status >= 300 {
		return "", fmt.Errorf("%w: %s", shared.ErrAuth,
			env.message("Failed to fetch user profile name. Check credentials."))
	}

	return profileName(env), nil
}

// profileName extracts data.profile.name from a /user envelope.
func profileName(env *envelope) string {
	var user struct {
		Profile struct {
			Name string `json:"name"`
		} `json:"profile"`
	}
	if env != nil {
		json.Unmarshal(env.Data, &user)
	}
	if user.Profile.Name == "" {
		return "Unknown User"
	}
	return user.Profile.Name
}

// fetchCollection retrieves one task collection (habits, dailys, or todos).
func (s *HabiticaService) fetchCollection(ctx context.Context, creds models.Credentials, tt models.TaskType) ([]models.Task, error) {
	name := tt.Collection()

	status, env, err := s.doRequest(ctx, http.MethodGet, "/tasks/user?type="+name, creds, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", shared.ErrFetch, name, err)
	}
	if status < 200 || status >= 300 {
		return nil, fmt.Errorf("%w: %s: %s", shared.ErrFetch, name, env.message(unknownErrorMessage))
	}
	if env == nil {
		return nil, fmt.Errorf("%w: %s: unparsable response", shared.ErrFetch, name)
	}

	var tasks []models.Task
	if err := json.Unmarshal(env.Data, &tasks); err != nil {
		return nil, fmt.Errorf("%w: %s: failed to decode task collection: %v", shared.ErrFetch, name, err)
	}
	return tasks, nil
}

// FetchAllTasks fetches the three task collections and the profile identity
// concurrently. The first failure wins; in-flight siblings finish and their
// results are discarded.
func (s *HabiticaService) FetchAllTasks(ctx context.Context, creds models.Credentials) (*UserExport, error) {
	collections := make([][]models.Task, len(models.TaskTypes))
	var username string

	g := new(errgroup.Group)
	for i, tt := range models.TaskTypes {
		g.Go(func() error {
			tasks, err := s.fetchCollection(ctx, creds, tt)
			if err != nil {
				return err
			}
			collections[i] = tasks
			return nil
		})
	}
	g.Go(func() error {
		status, env, err := s.doRequest(ctx, http.MethodGet, "/user", creds, nil)
		if err != nil {
			return fmt.Errorf("%w: user: %v", shared.ErrFetch, err)
		}
		if status < 200 || status >= 300 {
			return fmt.Errorf("%w: user: %s", shared.ErrFetch, env.message(unknownErrorMessage))
		}
		username = profileName(env)
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Concatenation order is fixed (habits, dailys, todos) regardless of
	// which request settled first.
	var tasks []models.Task
	for _, collection := range collections {
		tasks = append(tasks, collection...)
	}

	return &UserExport{Tasks: tasks, Username: username}, nil
}

// CreateTask submits one task for creation on the account identified by
// creds. Service-managed fields are stripped before submission.
func (s *HabiticaService) CreateTask(ctx context.Context, creds models.Credentials, task models.Task) (*models.Task, error) {
	stripped := task.StripServiceFields()

	status, env, err := s.doRequest(ctx, http.MethodPost, "/tasks/user", creds, stripped)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", shared.ErrCreateTask, task.Text, err)
	}
	if status < 200 || status >= 300 {
		return nil, fmt.Errorf("%w: %q: %s", shared.ErrCreateTask, task.Text, env.message(unknownErrorMessage))
	}

	// The task exists on the target even if the acknowledgement is
	// unparsable; hand back what was sent in that case.
	created := stripped
	if env != nil {
		json.Unmarshal(env.Data, &created)
	}
	return &created, nil
}
