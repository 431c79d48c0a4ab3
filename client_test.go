package qiskit

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testApiToken = "good-token"

// fakeAPI mimics the parts of the IBM QX API the client talks to
type fakeAPI struct {
	t *testing.T

	mu       sync.Mutex
	logins   int
	token    string
	failNext int
	requests map[string]int
	routes   map[string]string
}

func newFakeAPI(t *testing.T) (*fakeAPI, *httptest.Server) {
	t.Helper()

	conf, err := os.ReadFile("backend/fake/fixtures/conf_armonk.json")
	require.NoError(t, err)
	defs, err := os.ReadFile("backend/fake/fixtures/defs_armonk.json")
	require.NoError(t, err)

	api := &fakeAPI{
		t:        t,
		requests: make(map[string]int),
		routes: map[string]string{
			"/version": `5.7`,
			"/Backends": `[
				{"name": "fake_armonk", "status": "on", "nQubits": 1, "version": "2.4.3"},
				{"name": "ibmq_qasm_simulator", "status": "on", "simulator": true, "nQubits": 32},
				{"name": "ibmqx_retired", "status": "off", "nQubits": 5}
			]`,
			"/Backends/fake_armonk/configuration":         string(conf),
			"/Backends/fake_armonk/defaults":              string(defs),
			"/Backends/fake_armonk/queue/status":          `{"state": true, "busy": false, "lengthQueue": 3}`,
			"/Backends/ibmq_qasm_simulator/configuration": `{"backend_name": "ibmq_qasm_simulator", "backend_version": "0.1.547", "n_qubits": 32, "simulator": true, "open_pulse": false}`,
			"/Network/ibm-q/Groups/open/Projects/main/devices": `[{"name": "fake_armonk", "status": "on", "nQubits": 1}]`,
			"/Network/ibm-q/Groups/open/Projects/main/devices/fake_armonk/configuration": string(conf),
			"/Network/ibm-q/Groups/open/Projects/main/devices/fake_armonk/defaults":      string(defs),
		},
	}

	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)
	return api, srv
}

func (api *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	api.mu.Lock()
	defer api.mu.Unlock()

	api.requests[r.URL.Path]++
	if r.URL.Path == "/users/loginWithToken" {
		api.login(w, r)
		return
	}

	if api.token == "" || r.URL.Query().Get("access_token") != api.token {
		writeError(w, http.StatusUnauthorized, "AUTHORIZATION_REQUIRED", "access token expired")
		return
	}
	if api.failNext > 0 {
		api.failNext--
		writeError(w, http.StatusInternalServerError, "INTERNAL", "try again")
		return
	}

	body, ok := api.routes[r.URL.Path]
	if !ok {
		writeError(w, http.StatusNotFound, "MODEL_NOT_FOUND", "unknown model")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprint(w, body)
}

func (api *fakeAPI) login(w http.ResponseWriter, r *http.Request) {
	var req loginReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Token != testApiToken {
		writeError(w, http.StatusUnauthorized, "LOGIN_FAILED", "login failed")
		return
	}

	api.logins++
	api.token = fmt.Sprintf("access-%d", api.logins)
	fmt.Fprintf(w, `{"id": %q, "userId": "user-1", "ttl": 1209600}`, api.token)
}

// revoke invalidates the current access token
func (api *fakeAPI) revoke() {
	api.mu.Lock()
	defer api.mu.Unlock()
	api.token = ""
}

func (api *fakeAPI) failRequests(n int) {
	api.mu.Lock()
	defer api.mu.Unlock()
	api.failNext = n
}

func (api *fakeAPI) count(path string) int {
	api.mu.Lock()
	defer api.mu.Unlock()
	return api.requests[path]
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	fmt.Fprintf(w, `{"error": {"status": %d, "code": %q, "message": %q}}`, status, code, msg)
}

func dialTest(t *testing.T, srv *httptest.Server, opts ...DialOption) *Conn {
	t.Helper()

	opts = append([]DialOption{
		WithApiUrl(srv.URL),
		WithApiToken(testApiToken),
		WithRetries(3),
		WithRetryDelay(time.Millisecond),
	}, opts...)
	conn, err := Dial(context.Background(), opts...)
	require.NoError(t, err)
	return conn
}

func TestDial(t *testing.T) {
	_, srv := newFakeAPI(t)

	conn := dialTest(t, srv)
	assert.Equal(t, "user-1", conn.UserID())

	t.Run("missing credentials", func(t *testing.T) {
		_, err := Dial(context.Background(), WithApiUrl(srv.URL))
		assert.ErrorIs(t, err, ErrCredentials)
	})

	t.Run("rejected token", func(t *testing.T) {
		_, err := Dial(context.Background(), WithApiUrl(srv.URL), WithApiToken("bad-token"))
		assert.ErrorIs(t, err, ErrCredentials)
	})
}

func TestClient_Version(t *testing.T) {
	_, srv := newFakeAPI(t)
	client := NewClient(dialTest(t, srv))

	v, err := client.Version(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5.7, v)
	assert.Equal(t, "user-1", client.UserID())
}

func TestConn_RenewsExpiredToken(t *testing.T) {
	api, srv := newFakeAPI(t)
	client := NewClient(dialTest(t, srv))

	api.revoke()
	v, err := client.Version(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5.7, v)
	assert.Equal(t, 2, api.count("/users/loginWithToken"))
}

func TestConn_ExpiredAccessInfoCannotRenew(t *testing.T) {
	_, srv := newFakeAPI(t)

	conn, err := Dial(context.Background(),
		WithApiUrl(srv.URL),
		WithAccessInfo("stale", "user-1"),
		WithRetryDelay(time.Millisecond),
	)
	require.NoError(t, err)

	_, err = NewClient(conn).Version(context.Background())
	assert.ErrorIs(t, err, ErrCredentials)
}

func TestConn_RetriesServerErrors(t *testing.T) {
	api, srv := newFakeAPI(t)
	client := NewClient(dialTest(t, srv))

	api.failRequests(2)
	_, err := client.Version(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, api.count("/version"))

	api.failRequests(5)
	_, err = client.Version(context.Background())
	require.Error(t, err)
	assert.Equal(t, http.StatusInternalServerError, StatusCode(err))
}

func TestConn_DoesNotRetryClientErrors(t *testing.T) {
	api, srv := newFakeAPI(t)
	conn := dialTest(t, srv)

	var v interface{}
	err := conn.get(context.Background(), "Codes/missing", "", &v)
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, StatusCode(err))
	assert.True(t, strings.Contains(err.Error(), "unknown model"))
	assert.Equal(t, 1, api.count("/Codes/missing"))
}
