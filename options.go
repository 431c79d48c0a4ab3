package qiskit

type clientOptions struct {
	// IBM Q Info
	hub     string
	group   string
	project string
}

// ClientOption configures how the client is set up
type ClientOption func(*clientOptions)

// WithIbmQInfo configures the client to use the IBM Q features.
// Backends are then looked up within the given hub, group and project.
func WithIbmQInfo(hub, group, project string) ClientOption {
	return func(options *clientOptions) {
		options.hub = hub
		options.group = group
		options.project = project
	}
}

func (o clientOptions) ibmQ() bool {
	return o.hub != "" && o.group != "" && o.project != ""
}
