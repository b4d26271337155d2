package session

import (
	"errors"
	"net/http"
	"sync"
)

// RetryHeader marks a request issued by the transport itself so a 401 on it
// never triggers another logout round.
const RetryHeader = "X-Retry-Request"

// ErrSessionExpired is returned to the caller whose request drew the 401, so
// it observes the failure after the session has been torn down.
var ErrSessionExpired = errors.New("session expired")

// AuthTransport wraps an http.RoundTripper and watches every response. On a
// 401 that is not itself a retry, it calls the server logout endpoint,
// clears the local session state and storage, invokes the redirect hook
// once, and fails the original request. This is the sole automatic
// session-invalidation mechanism; there is no proactive expiry check.
type AuthTransport struct {
	Base      http.RoundTripper
	Store     *Store
	LogoutURL string
	// Redirect navigates the user to the login view. Called at most once
	// per session teardown, even when concurrent requests all draw 401s.
	Redirect func()

	mu sync.Mutex
}

func (t *AuthTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}
	resp, err := base.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized || req.Header.Get(RetryHeader) != "" {
		return resp, nil
	}

	resp.Body.Close()
	t.invalidate()
	return nil, ErrSessionExpired
}

// invalidate tears the session down. The logged-in check under the lock
// collapses concurrent 401s into a single teardown.
func (t *AuthTransport) invalidate() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.Store == nil || t.Store.Current().User == nil {
		return
	}

	if t.LogoutURL != "" {
		if req, err := http.NewRequest(http.MethodGet, t.LogoutURL, nil); err == nil {
			req.Header.Set(RetryHeader, "1")
			base := t.Base
			if base == nil {
				base = http.DefaultTransport
			}
			if resp, err := base.RoundTrip(req); err == nil {
				resp.Body.Close()
			}
		}
	}

	t.Store.Dispatch(Action{Type: ActionLogout})
	if t.Redirect != nil {
		t.Redirect()
	}
}
