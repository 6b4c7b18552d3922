package gitlab

import (
	"context"
	"errors"

	gwerrors "github.com/matzehuels/composer-gateway/pkg/errors"
	"github.com/matzehuels/composer-gateway/pkg/graphql"
	"github.com/matzehuels/composer-gateway/pkg/integrations"
)

// DefaultInstanceURL is used when no instance URL is configured.
const DefaultInstanceURL = "https://gitlab.com"

// Client runs GraphQL queries against one GitLab instance.
//
// Client is immutable; derive per-caller copies with [Client.WithHeaders].
// All methods are safe for concurrent use by multiple goroutines.
type Client struct {
	api         *integrations.Client
	instanceURL string
}

// NewClient creates a GitLab client for instanceURL that sends its
// requests through api. An empty instanceURL selects DefaultInstanceURL.
func NewClient(api *integrations.Client, instanceURL string) *Client {
	instanceURL = integrations.NormalizeBaseURL(instanceURL)
	if instanceURL == "" {
		instanceURL = DefaultInstanceURL
	}
	if api == nil {
		api = integrations.NewClient(nil, nil)
	}
	return &Client{api: api, instanceURL: instanceURL}
}

// InstanceURL returns the base URL of the GitLab instance, without a
// trailing slash.
func (c *Client) InstanceURL() string {
	return c.instanceURL
}

// Endpoint returns the GraphQL endpoint URL.
func (c *Client) Endpoint() string {
	return c.instanceURL + "/api/graphql"
}

// WithHeaders returns a copy of c that adds h to every request.
// It is used to forward a caller's credentials.
func (c *Client) WithHeaders(h map[string]string) *Client {
	cp := *c
	cp.api = c.api.WithHeaders(h)
	return &cp
}

// run executes op bound to vars and decodes the response data into v.
func (c *Client) run(ctx context.Context, op graphql.Operation, vars map[string]any, v any) error {
	req, err := op.Request(vars)
	if err != nil {
		return gwerrors.Wrap(gwerrors.ErrCodeInvalidInput, err, "build %s query", op.Name())
	}

	var resp graphql.Response
	if err := c.api.PostJSON(ctx, c.Endpoint(), req, &resp); err != nil {
		return err
	}
	if err := resp.Decode(v); err != nil {
		var gqlErrs graphql.Errors
		if errors.As(err, &gqlErrs) {
			return gwerrors.Wrap(gwerrors.ErrCodeUpstream, err, "%s query failed", op.Name())
		}
		return gwerrors.Wrap(gwerrors.ErrCodeUpstream, err, "%s query returned an unusable response", op.Name())
	}
	return nil
}
