package qiskit

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/goccy/go-json"
	"github.com/sirupsen/logrus"
)

const (
	// DefaultUrl is the default IBM QX API Endpoint URL
	DefaultUrl = "https://quantumexperience.ng.bluemix.net/api"
	// DefaultClientAppl is the default client application name sent in the X-Qx-Client-Application header
	DefaultClientAppl = "qiskit-experiments-go"
	// DefaultRetries is the default number of attempts every request gets
	DefaultRetries = 5
	// DefaultRetryDelay is the default base delay between attempts
	DefaultRetryDelay = 500 * time.Millisecond
	// DefaultTimeout is the default timeout for each request
	DefaultTimeout = 30 * time.Second
)

var apiLogger = logrus.WithField("component", "api")

type dialOptions struct {
	// Login Info
	apiToken    string
	email       string
	password    string
	accessToken string
	userId      string

	// API Endpoint Info
	url        string
	clientAppl string
	proxyUrls  map[string]string

	// API Request Info
	retries    int
	retryDelay time.Duration
	timeout    time.Duration
}

// DialOption configures how to connection works
type DialOption func(*dialOptions)

// WithApiToken configures the connection to obtain your access token by using your API token
func WithApiToken(token string) DialOption {
	return func(options *dialOptions) {
		options.apiToken = token
	}
}

// WithAccessInfo configures the connection already with an API Access Token and a User ID
func WithAccessInfo(token, userId string) DialOption {
	return func(options *dialOptions) {
		options.accessToken = token
		options.userId = userId
	}
}

// WithLoginInfo configures the connection to obtain your access token by using your login info
func WithLoginInfo(email, password string) DialOption {
	return func(options *dialOptions) {
		options.email = email
		options.password = password
	}
}

// WithApiUrl configures the connection to use the provided url for the API endpoints
func WithApiUrl(url string) DialOption {
	return func(options *dialOptions) {
		options.url = url
	}
}

// WithClientApplication specifies which client is using the QX Platform
func WithClientApplication(appl string) DialOption {
	return func(options *dialOptions) {
		options.clientAppl = DefaultClientAppl + ":" + appl
	}
}

// WithProxies configures the conn proxy information
// urls should be a map of:
//		http: URL
//		https: URL
func WithProxies(urls map[string]string) DialOption {
	return func(options *dialOptions) {
		options.proxyUrls = urls
	}
}

// WithRetries configures the number of attempts performed for any request
func WithRetries(retries int) DialOption {
	return func(options *dialOptions) {
		options.retries = retries
	}
}

// WithRetryDelay configures the base delay between attempts
func WithRetryDelay(delay time.Duration) DialOption {
	return func(options *dialOptions) {
		options.retryDelay = delay
	}
}

// WithTimeout configures the timeout for each request
func WithTimeout(timeout time.Duration) DialOption {
	return func(options *dialOptions) {
		options.timeout = timeout
	}
}

// Conn is a representation of a connection to the IBM QX API
type Conn struct {
	// mu guards the access token and user id, which change on re-login
	mu    sync.RWMutex
	dopts dialOptions
	c     *http.Client
}

// Dial takes a list of DialOptions and returns a connection to the IBM QX API
func Dial(ctx context.Context, options ...DialOption) (*Conn, error) {
	c := &Conn{
		c: &http.Client{},
	}

	for _, option := range options {
		option(&c.dopts)
	}

	// Check API Login info; otherwise, error
	if c.dopts.apiToken == "" && c.dopts.email == "" && c.dopts.accessToken == "" {
		return nil, NewCredentialsErr("missing credentials to obtain access token. please provide either, api token or email/password", "")
	}

	// Set defaults
	if c.dopts.url == "" {
		c.dopts.url = DefaultUrl
	}
	if c.dopts.clientAppl == "" {
		c.dopts.clientAppl = DefaultClientAppl
	}
	if c.dopts.retries <= 0 {
		c.dopts.retries = DefaultRetries
	}
	if c.dopts.retryDelay == 0 {
		c.dopts.retryDelay = DefaultRetryDelay
	}
	if c.dopts.timeout == 0 {
		c.dopts.timeout = DefaultTimeout
	}
	c.c.Timeout = c.dopts.timeout

	if len(c.dopts.proxyUrls) > 0 {
		transport := http.DefaultTransport.(*http.Transport).Clone()
		transport.Proxy = c.proxy
		c.c.Transport = transport
	}

	// Lastly, obtain access token
	if c.dopts.accessToken == "" {
		if err := c.obtainToken(ctx); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (c *Conn) proxy(req *http.Request) (*url.URL, error) {
	raw, ok := c.dopts.proxyUrls[req.URL.Scheme]
	if !ok {
		return nil, nil
	}
	return url.Parse(raw)
}

// loginReq is an internal type for making obtainToken requests
type loginReq struct {
	Token    string `json:"apiToken,omitempty"`
	Email    string `json:"email,omitempty"`
	Password string `json:"password,omitempty"`
}

type loginResp struct {
	Err     *httpErr `json:"error,omitempty"`
	Created string   `json:"created"`
	UserId  string   `json:"userId"`
	Id      string   `json:"id"`
	Ttl     float64  `json:"ttl"`
}

func (c *Conn) obtainToken(ctx context.Context) error {
	// Construct request
	loginReq := loginReq{}
	switch {
	case c.dopts.apiToken != "":
		loginReq.Token = c.dopts.apiToken
	case c.dopts.email != "" && c.dopts.password != "":
		loginReq.Email = c.dopts.email
		loginReq.Password = c.dopts.password
	default:
		return NewCredentialsErr("invalid credentials, please provide either API token or user email and password", "access token was rejected and cannot be renewed")
	}

	b, err := json.Marshal(loginReq)
	if err != nil {
		return err
	}

	// Construct request URL
	endpoint := c.dopts.url + "/users/login"
	if loginReq.Token != "" {
		endpoint += "WithToken"
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Qx-Client-Application", c.dopts.clientAppl)

	resp, err := c.c.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var r loginResp
	if err := c.decode(resp.Body, &r); err != nil {
		return err
	}
	if r.Err != nil || resp.StatusCode != http.StatusOK || r.Id == "" {
		return NewCredentialsErr("failed to obtain access token", fmt.Sprintf("login returned %d: %v", resp.StatusCode, r.Err))
	}

	c.mu.Lock()
	c.dopts.userId = r.UserId
	c.dopts.accessToken = r.Id
	c.mu.Unlock()
	apiLogger.WithField("userId", r.UserId).Debug("obtained access token")
	return nil
}

// newRequest is simply just a helper for generating requests
func (c *Conn) newRequest(ctx context.Context, method, path, params string, body []byte) (*http.Request, error) {
	var r io.Reader
	if body != nil {
		r = bytes.NewReader(body)
	}

	c.mu.RLock()
	token := c.dopts.accessToken
	c.mu.RUnlock()

	req, err := http.NewRequestWithContext(ctx, method, fmt.Sprintf("%s/%s?access_token=%s%s", c.dopts.url, path, url.QueryEscape(token), params), r)
	if err != nil {
		return nil, err
	}
	if method == http.MethodPost || method == http.MethodPut {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-Qx-Client-Application", c.dopts.clientAppl)
	return req, nil
}

// UserID returns the id of the logged in user
func (c *Conn) UserID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.dopts.userId
}

// decode is simply a helper for decoding json
func (c *Conn) decode(r io.Reader, i interface{}) error {
	return json.NewDecoder(r).Decode(i)
}

// do runs a http request and returns the response body.
// Expired tokens are renewed, and 5xx and 429 responses are retried.
func (c *Conn) do(ctx context.Context, method, path, params string, body []byte) ([]byte, error) {
	var b []byte
	err := retry.Do(
		func() error {
			req, err := c.newRequest(ctx, method, path, params, body)
			if err != nil {
				return retry.Unrecoverable(err)
			}

			resp, err := c.c.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			b, err = io.ReadAll(resp.Body)
			if err != nil {
				return err
			}

			switch {
			case resp.StatusCode == http.StatusOK:
				return nil
			case resp.StatusCode == http.StatusUnauthorized:
				// Get a new token and try again
				if err := c.obtainToken(ctx); err != nil {
					return retry.Unrecoverable(err)
				}
				return responseErr(resp.StatusCode, path, b)
			case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError:
				return responseErr(resp.StatusCode, path, b)
			default:
				return retry.Unrecoverable(responseErr(resp.StatusCode, path, b))
			}
		},
		retry.Context(ctx),
		retry.Attempts(uint(c.dopts.retries)),
		retry.Delay(c.dopts.retryDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			apiLogger.WithFields(logrus.Fields{
				"attempt": n + 1,
				"path":    path,
			}).WithError(err).Warn("request failed, retrying")
		}),
	)
	if err != nil {
		return nil, err
	}
	return b, nil
}

func responseErr(status int, path string, body []byte) error {
	var payload struct {
		Err *httpErr `json:"error,omitempty"`
	}
	if json.Unmarshal(body, &payload) == nil && payload.Err != nil {
		payload.Err.Status = status
		return ApiErr{usrMsg: fmt.Sprintf("request to %s failed", path), devMsg: payload.Err.Error(), cause: payload.Err}
	}
	return ApiErr{usrMsg: fmt.Sprintf("request to %s failed", path), devMsg: fmt.Sprintf("status %d: %s", status, body), cause: &httpErr{Status: status}}
}

// get is a convenience wrapper around a GET request that decodes the response into v
func (c *Conn) get(ctx context.Context, path, params string, v interface{}) error {
	b, err := c.do(ctx, http.MethodGet, path, params, nil)
	if err != nil {
		return err
	}
	return c.decode(bytes.NewReader(b), v)
}
