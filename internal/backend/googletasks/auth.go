package googletasks

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
)

const (
	// DefaultCallbackTimeout bounds the wait for the browser redirect.
	DefaultCallbackTimeout = 5 * time.Minute

	// ExchangeTimeout bounds the code-for-token exchange.
	ExchangeTimeout = 30 * time.Second

	successPage = `<html><body><h1>boardctl is connected to Google Tasks</h1><p>You may close this window.</p></body></html>`
)

// DefaultCallbackPorts are tried in order for the loopback redirect.
var DefaultCallbackPorts = []int{8085, 8086, 8087, 8088, 8089}

// Loopback runs the installed-app OAuth flow with PKCE and a redirect to a
// local HTTP listener. Zero values use the defaults; port 0 picks any free
// port.
type Loopback struct {
	Ports   []int
	Timeout time.Duration
}

type callback struct {
	code string
	err  error
}

// Authorize starts the listener, hands the consent URL to prompt and
// exchanges the code the browser brings back.
func (l Loopback) Authorize(ctx context.Context, oc *oauth2.Config, prompt func(authURL string)) (*oauth2.Token, error) {
	ln, err := l.listen()
	if err != nil {
		return nil, err
	}

	conf := *oc
	conf.RedirectURL = fmt.Sprintf("http://localhost:%d/callback", ln.Addr().(*net.TCPAddr).Port)
	state := uuid.NewString()
	verifier := oauth2.GenerateVerifier()

	results := make(chan callback, 1)
	r := chi.NewRouter()
	r.Get("/callback", func(w http.ResponseWriter, req *http.Request) {
		q := req.URL.Query()
		res := callback{code: q.Get("code")}
		switch {
		case q.Get("state") != state:
			res.err = errors.New("oauth callback: state mismatch")
		case q.Get("error") != "":
			res.err = fmt.Errorf("oauth callback: %s", q.Get("error"))
		case res.code == "":
			res.err = errors.New("oauth callback: no code")
		}
		if res.err != nil {
			http.Error(w, res.err.Error(), http.StatusBadRequest)
		} else {
			w.Header().Set("Content-Type", "text/html")
			fmt.Fprint(w, successPage)
		}
		select {
		case results <- res:
		default:
		}
	})

	srv := &http.Server{Handler: r, ReadHeaderTimeout: 10 * time.Second}
	go srv.Serve(ln)
	defer srv.Close()

	prompt(conf.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.S256ChallengeOption(verifier)))

	timeout := l.Timeout
	if timeout <= 0 {
		timeout = DefaultCallbackTimeout
	}
	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var res callback
	select {
	case res = <-results:
	case <-waitCtx.Done():
		return nil, fmt.Errorf("waiting for oauth callback: %w", waitCtx.Err())
	}
	if res.err != nil {
		return nil, res.err
	}

	exCtx, exCancel := context.WithTimeout(ctx, ExchangeTimeout)
	defer exCancel()
	tok, err := conf.Exchange(exCtx, res.code, oauth2.VerifierOption(verifier))
	if err != nil {
		return nil, fmt.Errorf("exchange code: %w", err)
	}
	return tok, nil
}

func (l Loopback) listen() (net.Listener, error) {
	ports := l.Ports
	if len(ports) == 0 {
		ports = DefaultCallbackPorts
	}
	var lastErr error
	for _, p := range ports {
		ln, err := net.Listen("tcp", fmt.Sprintf("localhost:%d", p))
		if err == nil {
			return ln, nil
		}
		lastErr = err
	}
	return nil, fmt.Errorf("no free port for the oauth callback: %w", lastErr)
}
