// Package boardapi implements service.Board against the board web backend.
package boardapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/sync/singleflight"

	"boardctl/internal/config"
	"boardctl/internal/service"
)

const (
	// MaxUploadSize is the largest image the server accepts.
	MaxUploadSize = 5 << 20

	// DeadlineLayout is the wire format of todo list deadlines.
	DeadlineLayout = "2006-01-02 15:04"

	// SessionCookie carries the session token after a successful login.
	SessionCookie = "Authorization"

	// RequestIDHeader is set on every request.
	RequestIDHeader = "X-Request-ID"
)

// Client implements service.Board over HTTP.
type Client struct {
	baseURL string
	boardID string
	hc      *http.Client
	log     *zap.Logger

	emails singleflight.Group
}

// New creates a client for the configured server and board. When a session
// token is stored, requests carry it as a bearer token.
func New(ctx context.Context, cfg *config.Config) (*Client, error) {
	token, err := cfg.Token()
	if err != nil {
		return nil, err
	}

	base := &http.Client{Transport: &requestIDTransport{base: http.DefaultTransport}}
	hc := base
	if token != "" {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, base)
		hc = oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
			AccessToken: token,
			TokenType:   "Bearer",
		}))
	}
	hc.Timeout = cfg.Timeout

	c := NewWithHTTPClient(cfg.BaseURL, cfg.BoardID, hc)
	if cfg.Log != nil {
		c.log = cfg.Log.Named("boardapi")
	}
	return c, nil
}

// NewWithHTTPClient creates a client with a custom HTTP client (for testing).
// Redirects are never followed: the server answers form posts with 302.
func NewWithHTTPClient(baseURL, boardID string, hc *http.Client) *Client {
	cp := *hc
	cp.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		boardID: boardID,
		hc:      &cp,
		log:     zap.NewNop(),
	}
}

// CheckEmail implements service.Board. Concurrent checks of the same address
// share one request; the address is sent as given.
func (c *Client) CheckEmail(ctx context.Context, email string) (bool, error) {
	v, err, _ := c.emails.Do(email, func() (any, error) {
		var out struct {
			Exists bool `json:"exists"`
		}
		err := c.getJSON(ctx, "/users/check_email/"+url.PathEscape(email), &out)
		return out.Exists, err
	})
	if err != nil {
		return false, err
	}
	return v.(bool), nil
}

// Register implements service.Board. The server redirects to the login page
// on success and re-renders the form otherwise.
func (c *Client) Register(ctx context.Context, reg service.Registration) error {
	resp, err := c.postForm(ctx, "/users/registration", url.Values{
		"email":     {reg.Email},
		"username":  {reg.Username},
		"password":  {reg.Password},
		"password2": {reg.Password2},
	})
	if err != nil {
		return err
	}
	defer drain(resp)

	if isRedirect(resp.StatusCode) {
		return nil
	}
	if resp.StatusCode >= 400 {
		return errorFromResponse(resp)
	}
	return fmt.Errorf("registration refused: %w", service.ErrRejected)
}

// Login implements service.Board and returns the session token from the
// Authorization cookie.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	resp, err := c.postForm(ctx, "/users/login", url.Values{
		"email":    {email},
		"password": {password},
	})
	if err != nil {
		return "", err
	}
	defer drain(resp)

	if resp.StatusCode >= 400 {
		return "", errorFromResponse(resp)
	}
	for _, ck := range resp.Cookies() {
		if ck.Name != SessionCookie {
			continue
		}
		token := config.StripBearer(strings.Trim(ck.Value, `"`))
		if token != "" {
			return token, nil
		}
	}
	return "", fmt.Errorf("invalid email or password: %w", service.ErrRejected)
}

// CreateBoard implements service.Board. The new ID is the last segment of
// the redirect location.
func (c *Client) CreateBoard(ctx context.Context, name string) (service.ID, error) {
	resp, err := c.postForm(ctx, "/board/main_page/add_board", url.Values{"boardName": {name}})
	if err != nil {
		return "", err
	}
	defer drain(resp)

	if !isRedirect(resp.StatusCode) {
		if resp.StatusCode >= 400 {
			return "", errorFromResponse(resp)
		}
		return "", fmt.Errorf("create board: unexpected status %d", resp.StatusCode)
	}
	loc, err := url.Parse(resp.Header.Get("Location"))
	if err != nil || loc.Path == "" {
		return "", fmt.Errorf("create board: bad redirect %q", resp.Header.Get("Location"))
	}
	return service.ID(path.Base(loc.Path)), nil
}

// AddText implements service.Board.
func (c *Client) AddText(ctx context.Context, text string) (service.ID, error) {
	var out struct {
		TextID service.ID `json:"text_id"`
	}
	if err := c.boardPost(ctx, "add_text", map[string]any{"text": text}, &out); err != nil {
		return "", err
	}
	if out.TextID == "" {
		return "", fmt.Errorf("add text: response has no text_id")
	}
	return out.TextID, nil
}

// UpdateText implements service.Board.
func (c *Client) UpdateText(ctx context.Context, textID service.ID, text string) error {
	return c.boardPost(ctx, "update_text", map[string]any{
		"text_id": textID,
		"text":    text,
	}, nil)
}

// CreateTodoList implements service.Board.
func (c *Client) CreateTodoList(ctx context.Context, req service.NewTodoList) (service.CreatedTodoList, error) {
	body := map[string]any{
		"title": req.Title,
		"text":  req.InitialText,
	}
	if req.Deadline != nil {
		body["deadline"] = req.Deadline.Format(DeadlineLayout)
	}
	var out struct {
		ListID service.ID `json:"to_do_list_id"`
		ItemID service.ID `json:"to_do_list_new_item"`
	}
	if err := c.boardPost(ctx, "add_to_do_list", body, &out); err != nil {
		return service.CreatedTodoList{}, err
	}
	if out.ListID == "" {
		return service.CreatedTodoList{}, fmt.Errorf("create list: response has no to_do_list_id")
	}
	return service.CreatedTodoList{ListID: out.ListID, ItemID: out.ItemID}, nil
}

// AddTodoItem implements service.Board.
func (c *Client) AddTodoItem(ctx context.Context, listID service.ID, text string) (service.ID, error) {
	var out struct {
		ItemID service.ID `json:"to_do_list_new_item"`
	}
	err := c.boardPost(ctx, "add_to_do_list_item", map[string]any{
		"to_do_list_id": listID,
		"text":          text,
	}, &out)
	if err != nil {
		return "", err
	}
	if out.ItemID == "" {
		return "", fmt.Errorf("add task: response has no to_do_list_new_item")
	}
	return out.ItemID, nil
}

// UpdateTodoItem implements service.Board.
func (c *Client) UpdateTodoItem(ctx context.Context, upd service.TodoItemUpdate) error {
	return c.boardPost(ctx, "update_to_do_list_item", map[string]any{
		"to_do_list_id":      upd.ListID,
		"to_do_list_item_id": upd.ItemID,
		"text":               upd.Text,
		"completed":          upd.Completed,
	}, nil)
}

// UploadImage implements service.Board. Size and type are checked before
// anything is sent.
func (c *Client) UploadImage(ctx context.Context, filename string, r io.Reader) (string, error) {
	contentType, ok := imageTypes[strings.ToLower(filepath.Ext(filename))]
	if !ok {
		return "", ErrUnsupportedType
	}
	data, err := io.ReadAll(io.LimitReader(r, MaxUploadSize+1))
	if err != nil {
		return "", fmt.Errorf("read %s: %w", filename, err)
	}
	if len(data) > MaxUploadSize {
		return "", ErrTooLarge
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filepath.Base(filename)))
	h.Set("Content-Type", contentType)
	part, err := mw.CreatePart(h)
	if err != nil {
		return "", err
	}
	if _, err := part.Write(data); err != nil {
		return "", err
	}
	if err := mw.WriteField("is_main", "true"); err != nil {
		return "", err
	}
	if err := mw.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/image/upload-image", &buf)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var out struct {
		URL string `json:"url"`
	}
	if err := c.do(req, &out); err != nil {
		return "", err
	}
	return out.URL, nil
}

var imageTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
}

// ChangePassword implements service.Board.
func (c *Client) ChangePassword(ctx context.Context, oldPassword, newPassword string) error {
	resp, err := c.postForm(ctx, "/profile/main_page/change_password", url.Values{
		"old_password": {oldPassword},
		"new_password": {newPassword},
	})
	if err != nil {
		return err
	}
	defer drain(resp)
	if resp.StatusCode >= 400 {
		return errorFromResponse(resp)
	}
	return nil
}

func (c *Client) boardPost(ctx context.Context, action string, body, out any) error {
	if c.boardID == "" {
		return ErrNoBoard
	}
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}
	u := fmt.Sprintf("%s/board/main_page/%s/%s", c.baseURL, url.PathEscape(c.boardID), action)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) getJSON(ctx context.Context, p string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+p, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) postForm(ctx context.Context, p string, form url.Values) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+p, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.send(req)
}

// do sends req, fails on a non-2xx status and decodes the body into out
// when out is non-nil.
func (c *Client) do(req *http.Request, out any) error {
	req.Header.Set("Accept", "application/json")
	resp, err := c.send(req)
	if err != nil {
		return err
	}
	defer drain(resp)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return errorFromResponse(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", req.URL.Path, err)
	}
	return nil
}

func (c *Client) send(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		c.log.Debug("request failed",
			zap.String("method", req.Method),
			zap.String("path", req.URL.Path),
			zap.Error(err))
		return nil, wrapError(err)
	}
	c.log.Debug("request",
		zap.String("method", req.Method),
		zap.String("path", req.URL.Path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)))
	return resp, nil
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
}

func isRedirect(code int) bool {
	return code == http.StatusFound || code == http.StatusSeeOther || code == http.StatusMovedPermanently
}

// requestIDTransport tags each request with a fresh request ID.
type requestIDTransport struct {
	base http.RoundTripper
}

func (t *requestIDTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get(RequestIDHeader) != "" {
		return t.base.RoundTrip(req)
	}
	r := req.Clone(req.Context())
	r.Header.Set(RequestIDHeader, uuid.NewString())
	return t.base.RoundTrip(r)
}

var _ service.Board = (*Client)(nil)
