// Package googletasks mirrors board todo lists into Google Tasks.
package googletasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"golang.org/x/sync/errgroup"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	tasks "google.golang.org/api/tasks/v1"

	"boardctl/internal/config"
	"boardctl/internal/service"
)

const (
	// APITimeout is the timeout for API calls.
	APITimeout = 5 * time.Second

	// Scope is the OAuth scope for Google Tasks.
	Scope = "https://www.googleapis.com/auth/tasks"

	statusCompleted   = "completed"
	statusNeedsAction = "needsAction"
)

// ErrAuth means the stored Google token is missing, expired or revoked.
var ErrAuth = errors.New("google token expired or revoked (run: boardctl mirror-login)")

// Result counts what a sync changed.
type Result struct {
	ListID    string
	Created   int
	Updated   int
	Unchanged int
}

// Mirror writes todo lists to Google Tasks.
type Mirror struct {
	svc *tasks.Service
	log *zap.Logger
}

// OAuthConfig loads oauth_client.json from the config directory.
func OAuthConfig(cfg *config.Config) (*oauth2.Config, error) {
	clientJSON, err := os.ReadFile(cfg.OAuthClientPath())
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", config.OAuthClientFile, err)
	}
	oauthConfig, err := google.ConfigFromJSON(clientJSON, Scope)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", config.OAuthClientFile, err)
	}
	return oauthConfig, nil
}

// LoadToken reads the stored Google token.
func LoadToken(cfg *config.Config) (*oauth2.Token, error) {
	data, err := os.ReadFile(cfg.GoogleTokenPath())
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", config.GoogleTokenFile, err)
	}
	var token oauth2.Token
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", config.GoogleTokenFile, err)
	}
	return &token, nil
}

// SaveToken stores a Google token with mode 0600.
func SaveToken(cfg *config.Config, token *oauth2.Token) error {
	if err := cfg.EnsureDir(); err != nil {
		return err
	}
	data, err := json.MarshalIndent(token, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(cfg.GoogleTokenPath(), data, 0600)
}

// New creates a mirror from oauth_client.json and google_token.json.
func New(ctx context.Context, cfg *config.Config) (*Mirror, error) {
	oauthConfig, err := OAuthConfig(cfg)
	if err != nil {
		return nil, err
	}
	token, err := LoadToken(cfg)
	if err != nil {
		return nil, err
	}

	httpClient := oauth2.NewClient(ctx, oauthConfig.TokenSource(ctx, token))
	svc, err := tasks.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("failed to create tasks service: %w", err)
	}
	m := &Mirror{svc: svc, log: zap.NewNop()}
	if cfg.Log != nil {
		m.log = cfg.Log.Named("mirror")
	}
	return m, nil
}

// NewWithHTTPClient creates a mirror with a custom HTTP client and endpoint
// (for testing).
func NewWithHTTPClient(ctx context.Context, httpClient *http.Client, endpoint string) (*Mirror, error) {
	svc, err := tasks.NewService(ctx, option.WithHTTPClient(httpClient), option.WithEndpoint(endpoint))
	if err != nil {
		return nil, err
	}
	return &Mirror{svc: svc, log: zap.NewNop()}, nil
}

// Sync makes a Google task list named after list hold one task per item,
// with matching completion state. Tasks are matched by title; nothing is
// deleted.
func (m *Mirror) Sync(ctx context.Context, list service.TodoList) (Result, error) {
	listID, err := m.EnsureList(ctx, list.Title)
	if err != nil {
		return Result{}, err
	}
	res, err := m.SyncItems(ctx, listID, list)
	res.ListID = listID
	return res, err
}

// EnsureList returns the ID of the task list with the given title
// (case-insensitive, trimmed), creating it when missing.
func (m *Mirror) EnsureList(ctx context.Context, title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		title = "boardctl"
	}

	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	var found string
	err := m.svc.Tasklists.List().MaxResults(100).Pages(ctx, func(resp *tasks.TaskLists) error {
		for _, l := range resp.Items {
			if found == "" && strings.EqualFold(strings.TrimSpace(l.Title), title) {
				found = l.Id
			}
		}
		return nil
	})
	if err != nil {
		return "", wrapError(err)
	}
	if found != "" {
		return found, nil
	}

	created, err := m.svc.Tasklists.Insert(&tasks.TaskList{Title: title}).Context(ctx).Do()
	if err != nil {
		return "", wrapError(err)
	}
	m.log.Debug("task list created", zap.String("title", title), zap.String("id", created.Id))
	return created.Id, nil
}

// SyncItems creates missing tasks and patches tasks whose status differs.
func (m *Mirror) SyncItems(ctx context.Context, listID string, list service.TodoList) (Result, error) {
	existing, err := m.tasksByTitle(ctx, listID)
	if err != nil {
		return Result{}, err
	}

	var due string
	if list.Deadline != nil {
		due = list.Deadline.UTC().Format(time.RFC3339)
	}

	var (
		mu  sync.Mutex
		res Result
	)
	count := func(n *int) {
		mu.Lock()
		*n++
		mu.Unlock()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for _, it := range list.Items {
		title := strings.TrimSpace(it.Text)
		if title == "" {
			continue
		}
		status := statusNeedsAction
		if it.Completed {
			status = statusCompleted
		}

		task, ok := existing[strings.ToLower(title)]
		switch {
		case !ok:
			g.Go(func() error {
				if err := m.insert(gctx, listID, &tasks.Task{Title: title, Status: status, Due: due}); err != nil {
					return err
				}
				count(&res.Created)
				return nil
			})
		case task.Status != status:
			id := task.Id
			g.Go(func() error {
				if err := m.patch(gctx, listID, id, status); err != nil {
					return err
				}
				count(&res.Updated)
				return nil
			})
		default:
			count(&res.Unchanged)
		}
	}
	err = g.Wait()
	return res, err
}

func (m *Mirror) tasksByTitle(ctx context.Context, listID string) (map[string]*tasks.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	out := make(map[string]*tasks.Task)
	err := m.svc.Tasks.List(listID).
		MaxResults(100).
		ShowCompleted(true).
		ShowHidden(true).
		Pages(ctx, func(resp *tasks.Tasks) error {
			for _, t := range resp.Items {
				key := strings.ToLower(strings.TrimSpace(t.Title))
				if _, dup := out[key]; !dup {
					out[key] = t
				}
			}
			return nil
		})
	if err != nil {
		return nil, wrapError(err)
	}
	return out, nil
}

func (m *Mirror) insert(ctx context.Context, listID string, task *tasks.Task) error {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	if _, err := m.svc.Tasks.Insert(listID, task).Context(ctx).Do(); err != nil {
		return wrapError(err)
	}
	return nil
}

func (m *Mirror) patch(ctx context.Context, listID, taskID, status string) error {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	patch := &tasks.Task{Status: status}
	if status == statusNeedsAction {
		// Reopening requires clearing the completion time.
		patch.NullFields = []string{"Completed"}
	}
	if _, err := m.svc.Tasks.Patch(listID, taskID, patch).Context(ctx).Do(); err != nil {
		return wrapError(err)
	}
	return nil
}

// wrapError wraps API errors with user-friendly messages.
func wrapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("request timed out")
	}
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusUnauthorized, http.StatusForbidden:
			return ErrAuth
		case http.StatusNotFound:
			return fmt.Errorf("task list %w", service.ErrNotFound)
		}
	}
	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) {
		return ErrAuth
	}
	return err
}
