package api

import (
	"context"
	"net/http"
	"net/url"
	"sort"
	"strconv"

	"refdesk/internal/domain"
)

// ListQuery selects a page of rows. Page is zero based.
type ListQuery struct {
	Page   int
	Size   int
	Filter map[string]string
}

func (q ListQuery) values() url.Values {
	v := url.Values{}
	v.Set("page", strconv.Itoa(q.Page))
	if q.Size > 0 {
		v.Set("size", strconv.Itoa(q.Size))
	}
	keys := make([]string, 0, len(q.Filter))
	for k := range q.Filter {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if q.Filter[k] != "" {
			v.Set(k, q.Filter[k])
		}
	}
	return v
}

func resourcePath(resource string, parts ...string) string {
	p := apiPrefix + "/" + url.PathEscape(resource)
	for _, part := range parts {
		p += "/" + part
	}
	return p
}

// List fetches one page of a resource
func (c *Client) List(ctx context.Context, resource string, q ListQuery) (domain.Page[domain.Row], error) {
	var rows []domain.Row
	meta, err := c.do(ctx, http.MethodGet, resourcePath(resource), q.values(), nil, &rows)
	if err != nil {
		return domain.Page[domain.Row]{}, err
	}
	page := domain.Page[domain.Row]{Items: rows}
	if meta != nil {
		page.Meta = *meta
	} else {
		page.Meta = domain.PageMeta{Page: q.Page, Size: q.Size, TotalElements: len(rows), TotalPages: 1}
	}
	return page, nil
}

// Get fetches a single row
func (c *Client) Get(ctx context.Context, resource, id string) (domain.Row, error) {
	var row domain.Row
	if _, err := c.do(ctx, http.MethodGet, resourcePath(resource, url.PathEscape(id)), nil, nil, &row); err != nil {
		return nil, err
	}
	return row, nil
}

// Create adds a row
func (c *Client) Create(ctx context.Context, resource string, row domain.Row) (domain.Row, error) {
	var created domain.Row
	if _, err := c.do(ctx, http.MethodPost, resourcePath(resource), nil, row, &created); err != nil {
		return nil, err
	}
	return created, nil
}

// Update replaces a row
func (c *Client) Update(ctx context.Context, resource, id string, row domain.Row) error {
	_, err := c.do(ctx, http.MethodPost, resourcePath(resource, url.PathEscape(id)), nil, row, nil)
	return err
}

// Remove deletes a row
func (c *Client) Remove(ctx context.Context, resource, id string) error {
	_, err := c.do(ctx, http.MethodPost, resourcePath(resource, url.PathEscape(id), "remove"), nil, nil, nil)
	return err
}

// BulkCreate adds several rows at once
func (c *Client) BulkCreate(ctx context.Context, resource string, rows []domain.Row) (domain.BatchResult, error) {
	var res domain.BatchResult
	if _, err := c.do(ctx, http.MethodPost, resourcePath(resource, "bulk-create"), nil, rows, &res); err != nil {
		return domain.BatchResult{}, err
	}
	return res, nil
}

// BulkRemove deletes several rows at once
func (c *Client) BulkRemove(ctx context.Context, resource string, ids []string) (domain.BatchResult, error) {
	var res domain.BatchResult
	if _, err := c.do(ctx, http.MethodPost, resourcePath(resource, "bulk-remove"), nil, ids, &res); err != nil {
		return domain.BatchResult{}, err
	}
	return res, nil
}
