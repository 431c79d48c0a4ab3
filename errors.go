package qiskit

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrBadBackend is matched by errors for backends the API does not know about
	ErrBadBackend = errors.New("bad backend")
	// ErrCredentials is matched by errors for missing or rejected credentials
	ErrCredentials = errors.New("bad credentials")
)

// ApiErr carries a message meant for the user and one meant for the developer
type ApiErr struct {
	usrMsg, devMsg string
	cause          error
}

func (e ApiErr) Error() string { return fmt.Sprintf("usr_msg: %s\ndev_msg: %s", e.usrMsg, e.devMsg) }

func (e ApiErr) Unwrap() error { return e.cause }

// UserMessage returns the message meant for the user
func (e ApiErr) UserMessage() string { return e.usrMsg }

func NewBadBackendErr(backend string) error {
	return ApiErr{
		usrMsg: fmt.Sprintf("Could not find backend \"%s\" available", backend),
		devMsg: fmt.Sprintf("Backend \"%s\" does not exist. Please use client.AvailableBackends to see options", backend),
		cause:  ErrBadBackend,
	}
}

// NewCredentialsErr represents bad server credentials
func NewCredentialsErr(usrMsg, devMsg string) error {
	return ApiErr{usrMsg: usrMsg, devMsg: devMsg, cause: ErrCredentials}
}

// httpErr is the error object the API returns
type httpErr struct {
	Status     int    `json:"status"`
	StatusCode int    `json:"statusCode"`
	Code       string `json:"code"`
	Name       string `json:"name"`
	Message    string `json:"message"`
}

func (e *httpErr) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("http status %d", e.Status)
	}
	return fmt.Sprintf("http status %d: %s (%s)", e.Status, e.Message, e.Code)
}

// StatusCode returns the HTTP status code of a failed API request, or 0
func StatusCode(err error) int {
	var he *httpErr
	if errors.As(err, &he) {
		return he.Status
	}
	return 0
}
