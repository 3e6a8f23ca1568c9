package api

import (
	"context"
	"net/http"
	"net/url"

	"refdesk/internal/approval"
	"refdesk/internal/grid"
)

// CommonCode is a code table entry
type CommonCode struct {
	Code     string              `json:"code"`
	Name     string              `json:"code_name"`
	IsActive approval.FlexBool   `json:"is_active"`
	GroupID  approval.FlexString `json:"code_group_id"`
}

// QuestionCategories returns the active question categories of a service as select options
func (c *Client) QuestionCategories(ctx context.Context, serviceCd string) ([]grid.Option, error) {
	q := url.Values{}
	q.Set("serviceCd", serviceCd)
	var codes []CommonCode
	if _, err := c.do(ctx, http.MethodGet, apiPrefix+"/common-codes/mappings/qst-categories", q, nil, &codes); err != nil {
		return nil, err
	}
	opts := make([]grid.Option, 0, len(codes))
	for _, code := range codes {
		if !bool(code.IsActive) {
			continue
		}
		opts = append(opts, grid.Option{Label: code.Name, Value: code.Code})
	}
	return opts, nil
}
