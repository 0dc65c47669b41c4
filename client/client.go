package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/hnakamur/remotesum/msg"
	"golang.org/x/net/context"
)

// Client calls the coordinator HTTP API.
type Client struct {
	baseURL    url.URL
	httpClient *http.Client
}

// New returns a client for the coordinator at addr. A nil httpClient
// means http.DefaultClient.
func New(addr string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL:    url.URL{Scheme: "http", Host: addr},
		httpClient: httpClient,
	}
}

// SumArrays sends a and b to the coordinator. A task failure is not an
// error; it is reported by the OK field of the reply.
func (c *Client) SumArrays(ctx context.Context, a, b []int64) (*msg.SumArraysReply, error) {
	body, err := json.Marshal(&msg.SumArraysRequest{A: a, B: b})
	if err != nil {
		return nil, err
	}
	u := c.baseURL
	u.Path = "/sum"
	req, err := http.NewRequest(http.MethodPost, u.String(), bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req = req.WithContext(ctx)
	req.Header.Set("Content-Type", "application/json")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status from coordinator: %s", res.Status)
	}
	var reply msg.SumArraysReply
	if err := json.NewDecoder(res.Body).Decode(&reply); err != nil {
		return nil, fmt.Errorf("decode reply: %w", err)
	}
	return &reply, nil
}

// Verify reports whether result is the element-wise sum of a and b.
func Verify(a, b, result []int64) bool {
	if len(a) != len(b) || len(result) != len(a) {
		return false
	}
	for i := range a {
		if a[i]+b[i] != result[i] {
			return false
		}
	}
	return true
}
