package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/boddenberg/expense-feed-go/internal/domain"

	"go.opentelemetry.io/otel/attribute"
)

// FetchCategories lists every category through GET /v2/categories.
func (c *Client) FetchCategories(ctx context.Context, sort string) ([]domain.Category, error) {
	return c.SearchCategories(ctx, sort, "")
}

// SearchCategories lists categories whose name contains name. An empty
// name lists all of them.
func (c *Client) SearchCategories(ctx context.Context, sort, name string) ([]domain.Category, error) {
	ctx, span := tracer.Start(ctx, "Client.SearchCategories")
	defer span.End()
	span.SetAttributes(attribute.String("sort", sort), attribute.String("name", name))

	q := url.Values{}
	if sort != "" {
		q.Set("sort", sort)
	}
	if name != "" {
		q.Set("name", name)
	}

	var categories []domain.Category
	err := c.call(ctx, "backend/categories", func() error {
		body, err := c.do(ctx, http.MethodGet, "/v2/categories", q, nil, "", "")
		if err != nil {
			return err
		}
		categories = nil
		if err := json.Unmarshal(body, &categories); err != nil {
			return fmt.Errorf("decode categories: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if categories == nil {
		categories = []domain.Category{}
	}
	return categories, nil
}

// FetchCategoryPage fetches one page of GET /categories.
func (c *Client) FetchCategoryPage(ctx context.Context, page, size int, sort string) (domain.Page[domain.Category], error) {
	ctx, span := tracer.Start(ctx, "Client.FetchCategoryPage")
	defer span.End()
	span.SetAttributes(attribute.Int("page", page), attribute.Int("size", size))

	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("size", strconv.Itoa(size))
	if sort != "" {
		q.Set("sort", sort)
	}

	var result domain.Page[domain.Category]
	err := c.call(ctx, "backend/categories", func() error {
		body, err := c.do(ctx, http.MethodGet, "/categories", q, nil, "", "")
		if err != nil {
			return err
		}
		result = domain.Page[domain.Category]{}
		if err := json.Unmarshal(body, &result); err != nil {
			return fmt.Errorf("decode category page: %w", err)
		}
		return nil
	})
	return result, err
}

// UpsertCategory sends PUT /categories.
func (c *Client) UpsertCategory(ctx context.Context, cat domain.Category) (domain.Category, error) {
	ctx, span := tracer.Start(ctx, "Client.UpsertCategory")
	defer span.End()
	span.SetAttributes(attribute.String("category.id", cat.ID))

	saved := cat
	err := c.call(ctx, "backend/categories", func() error {
		body, err := c.do(ctx, http.MethodPut, "/categories", nil, cat, "category", cat.ID)
		if err != nil {
			return err
		}
		if len(body) == 0 {
			return nil
		}
		if err := json.Unmarshal(body, &saved); err != nil {
			return fmt.Errorf("decode category: %w", err)
		}
		return nil
	})
	if err != nil {
		return domain.Category{}, err
	}
	return saved, nil
}

// DeleteCategory sends DELETE /categories/{id}.
func (c *Client) DeleteCategory(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "Client.DeleteCategory")
	defer span.End()
	span.SetAttributes(attribute.String("category.id", id))

	return c.call(ctx, "backend/categories", func() error {
		_, err := c.do(ctx, http.MethodDelete, "/categories/"+url.PathEscape(id), nil, nil, "category", id)
		return err
	})
}
