package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/boddenberg/expense-feed-go/internal/domain"

	"go.opentelemetry.io/otel/attribute"
)

// FetchPage fetches one page of expenses. The server's last flag is
// returned as-is.
func (c *Client) FetchPage(ctx context.Context, criteria domain.Criteria) (domain.Page[domain.Expense], error) {
	ctx, span := tracer.Start(ctx, "Client.FetchPage")
	defer span.End()
	span.SetAttributes(
		attribute.Int("page", criteria.Page),
		attribute.Int("size", criteria.EffectiveSize()),
		attribute.String("sort", criteria.Sort.String()),
		attribute.String("category.id", criteria.CategoryID),
	)

	if err := criteria.Validate(); err != nil {
		return domain.Page[domain.Expense]{}, err
	}

	var page domain.Page[domain.Expense]
	err := c.call(ctx, "backend/expenses", func() error {
		body, err := c.do(ctx, http.MethodGet, "/expenses", criteria.Values(), nil, "", "")
		if err != nil {
			return err
		}
		page = domain.Page[domain.Expense]{}
		if err := json.Unmarshal(body, &page); err != nil {
			return fmt.Errorf("decode expense page: %w", err)
		}
		return nil
	})
	if err != nil {
		return domain.Page[domain.Expense]{}, err
	}
	if page.Content == nil {
		page.Content = []domain.Expense{}
	}
	return page, nil
}

// UpsertExpense sends PUT /expenses. Backends that answer without a body
// get e echoed back.
func (c *Client) UpsertExpense(ctx context.Context, e domain.Expense) (domain.Expense, error) {
	ctx, span := tracer.Start(ctx, "Client.UpsertExpense")
	defer span.End()
	span.SetAttributes(attribute.String("expense.id", e.ID))

	saved := e
	err := c.call(ctx, "backend/expenses", func() error {
		body, err := c.do(ctx, http.MethodPut, "/expenses", nil, e, "expense", e.ID)
		if err != nil {
			return err
		}
		if len(body) == 0 {
			return nil
		}
		if err := json.Unmarshal(body, &saved); err != nil {
			return fmt.Errorf("decode expense: %w", err)
		}
		return nil
	})
	if err != nil {
		return domain.Expense{}, err
	}
	return saved, nil
}

// DeleteExpense sends DELETE /expenses/{id}.
func (c *Client) DeleteExpense(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "Client.DeleteExpense")
	defer span.End()
	span.SetAttributes(attribute.String("expense.id", id))

	return c.call(ctx, "backend/expenses", func() error {
		_, err := c.do(ctx, http.MethodDelete, "/expenses/"+url.PathEscape(id), nil, nil, "expense", id)
		return err
	})
}
