package host

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultTimeout = 30 * time.Second

// Client talks to the note host's node API over HTTP.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
}

// ClientConfig holds connection settings for the host API.
type ClientConfig struct {
	BaseURL string
	Token   string
}

// NewClient creates a new host API client.
func NewClient(cfg ClientConfig) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: defaultTimeout},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		token:      cfg.Token,
	}
}

// createNodeRequest is the request body for node creation.
type createNodeRequest struct {
	Text     string `json:"text"`
	ParentID string `json:"parent_id,omitempty"`
}

// setContainerRequest is the request body marking a node as container.
type setContainerRequest struct {
	Container bool `json:"container"`
}

// nodeResponse is the host's representation of a node.
type nodeResponse struct {
	ID string `json:"id"`
}

// listNodesResponse is the envelope of a node search.
type listNodesResponse struct {
	Nodes []nodeResponse `json:"nodes"`
}

// CreateNode creates one node holding markup, under parent when given.
func (c *Client) CreateNode(ctx context.Context, markup string, parent *NodeRef) (*NodeRef, error) {
	body := createNodeRequest{Text: markup}
	if parent != nil {
		body.ParentID = parent.ID
	}

	var resp nodeResponse
	if err := c.do(ctx, http.MethodPost, "/api/nodes", body, &resp); err != nil {
		return nil, err
	}
	if resp.ID == "" {
		return nil, fmt.Errorf("host returned a node without an id")
	}
	return &NodeRef{ID: resp.ID}, nil
}

// SetAsContainer marks the node behind ref as a grouping container.
func (c *Client) SetAsContainer(ctx context.Context, ref NodeRef) error {
	path := "/api/nodes/" + url.PathEscape(ref.ID)
	return c.do(ctx, http.MethodPatch, path, setContainerRequest{Container: true}, nil)
}

// FindByName searches the host for a node by exact name. A host that
// knows no such node is not an error; the result is (nil, nil).
func (c *Client) FindByName(ctx context.Context, name string) (*NodeRef, error) {
	var resp listNodesResponse
	path := "/api/nodes?name=" + url.QueryEscape(name)
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	if len(resp.Nodes) == 0 {
		return nil, nil
	}
	return &NodeRef{ID: resp.Nodes[0].ID}, nil
}

// do sends one JSON request and decodes the response into out when out
// is non-nil.
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("host error (status %d): %s", resp.StatusCode, string(respBody))
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("parse response: %w", err)
		}
	}
	return nil
}
