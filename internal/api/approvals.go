package api

import (
	"context"
	"net/http"
	"net/url"

	"refdesk/internal/approval"
)

var _ approval.Backend = (*Client)(nil)

// ListApprovals fetches the approval queue of a resource
func (c *Client) ListApprovals(ctx context.Context, resource string, filter map[string]string) ([]approval.Request, error) {
	var q url.Values
	if len(filter) > 0 {
		q = ListQuery{Filter: filter}.values()
		q.Del("page")
	}
	var reqs []approval.Request
	if _, err := c.do(ctx, http.MethodGet, resourcePath(resource, "approval-queue"), q, nil, &reqs); err != nil {
		return nil, err
	}
	return reqs, nil
}

// ApproveRequests sends the listed requests to final approval
func (c *Client) ApproveRequests(ctx context.Context, resource string, ids []string) error {
	_, err := c.do(ctx, http.MethodPost, resourcePath(resource, "approval-queue"), nil, ids, nil)
	return err
}

// RetractRequests withdraws the listed requests
func (c *Client) RetractRequests(ctx context.Context, resource string, ids []string) error {
	_, err := c.do(ctx, http.MethodPost, resourcePath(resource, "approval-queue", "retract"), nil, ids, nil)
	return err
}

// SubmitRequest posts a new change request. The target type in the body
// identifies the resource.
func (c *Client) SubmitRequest(ctx context.Context, _ string, sub approval.Submission) error {
	_, err := c.do(ctx, http.MethodPost, apiPrefix+"/approval-requests", nil, sub, nil)
	return err
}
