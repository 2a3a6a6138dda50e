// Package client exposes the typed operations of the VPerfumes tracking API.
//
// Every method is a single request/response; no state is cached here. After
// a successful mutation callers re-fetch the order collection and the stats
// snapshot — the local copy is never treated as the record of truth.
package client

import (
	"context"
	"fmt"

	"github.com/vperfumes/tracker/app/models"
	"github.com/vperfumes/tracker/pkg/api"
)

// Client is the typed API surface.
type Client struct {
	api *api.Client
}

// New wraps an api.Client.
func New(a *api.Client) *Client { return &Client{api: a} }

// API returns the underlying transport client (used for the push channel's
// cookie binding).
func (c *Client) API() *api.Client { return c.api }

// ─── Auth ─────────────────────────────────────────────────────────────────────

// Login authenticates and persists the session cookie. The returned identity
// is handed to the session provider synchronously — no second fetch.
func (c *Client) Login(ctx context.Context, username, password string) (*models.Identity, error) {
	resp, err := c.api.Post("/auth/login").
		Body(map[string]string{"username": username, "password": password}).
		WithContext(ctx).Send()
	if err != nil {
		return nil, err
	}
	if err := resp.Throw(); err != nil {
		return nil, err
	}

	var body struct {
		User models.Identity `json:"user"`
	}
	if err := resp.JSON(&body); err != nil {
		return nil, err
	}
	if err := c.api.SaveSession(); err != nil {
		return nil, fmt.Errorf("client: save session: %w", err)
	}
	return &body.User, nil
}

// Logout invalidates the server session (best effort) and always clears the
// local cookie.
func (c *Client) Logout(ctx context.Context) error {
	resp, err := c.api.Post("/auth/logout").WithContext(ctx).Send()
	if err == nil {
		err = resp.Throw()
	}
	if clearErr := c.api.ClearSession(); clearErr != nil {
		return clearErr
	}
	return err
}

// CurrentUser performs the "who am I" request using the ambient cookie.
func (c *Client) CurrentUser(ctx context.Context) (*models.Identity, error) {
	resp, err := c.api.Get("/user").WithContext(ctx).Send()
	if err != nil {
		return nil, err
	}
	if err := resp.Throw(); err != nil {
		return nil, err
	}

	var body struct {
		User models.Identity `json:"user"`
	}
	if err := resp.JSON(&body); err != nil {
		return nil, err
	}
	return &body.User, nil
}

// Register creates a company account (admin only).
func (c *Client) Register(ctx context.Context, username, password, companyName string) error {
	resp, err := c.api.Post("/auth/register").
		Body(map[string]string{
			"username":     username,
			"password":     password,
			"company_name": companyName,
			"role":         "company",
		}).
		WithContext(ctx).Send()
	if err != nil {
		return err
	}
	return resp.Throw()
}

// ChangePassword rotates the caller's own password.
func (c *Client) ChangePassword(ctx context.Context, current, newPassword string) error {
	resp, err := c.api.Post("/auth/change-password").
		Body(map[string]string{"current_password": current, "new_password": newPassword}).
		WithContext(ctx).Send()
	if err != nil {
		return err
	}
	return resp.Throw()
}

// ─── Orders ───────────────────────────────────────────────────────────────────

// Orders fetches the full order collection. The server scopes company
// callers to their own orders; admins see everything.
func (c *Client) Orders(ctx context.Context) ([]models.Order, error) {
	resp, err := c.api.Get("/orders").WithContext(ctx).Send()
	if err != nil {
		return nil, err
	}
	if err := resp.Throw(); err != nil {
		return nil, err
	}

	var orders []models.Order
	if err := resp.JSON(&orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// CreateOrder creates an order and returns the server's copy.
func (c *Client) CreateOrder(ctx context.Context, in models.OrderInput) (*models.Order, error) {
	resp, err := c.api.Post("/orders").Body(in).WithContext(ctx).Send()
	if err != nil {
		return nil, err
	}
	if err := resp.Throw(); err != nil {
		return nil, err
	}

	var order models.Order
	if err := resp.JSON(&order); err != nil {
		return nil, err
	}
	return &order, nil
}

// UpdateOrder replaces an order's mutable fields.
func (c *Client) UpdateOrder(ctx context.Context, id string, in models.OrderInput) (*models.Order, error) {
	resp, err := c.api.Put("/orders/"+id).Body(in).WithContext(ctx).Send()
	if err != nil {
		return nil, err
	}
	if err := resp.Throw(); err != nil {
		return nil, err
	}

	var order models.Order
	if err := resp.JSON(&order); err != nil {
		return nil, err
	}
	return &order, nil
}

// DeleteOrder removes an order.
func (c *Client) DeleteOrder(ctx context.Context, id string) error {
	resp, err := c.api.Delete("/orders/" + id).WithContext(ctx).Send()
	if err != nil {
		return err
	}
	return resp.Throw()
}

// OrderHistory fetches an order's audit trail, newest first.
func (c *Client) OrderHistory(ctx context.Context, id string) ([]models.HistoryEntry, error) {
	resp, err := c.api.Get("/orders/" + id + "/history").WithContext(ctx).Send()
	if err != nil {
		return nil, err
	}
	if err := resp.Throw(); err != nil {
		return nil, err
	}

	var entries []models.HistoryEntry
	if err := resp.JSON(&entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// Report fetches the orders of a single calendar date (YYYY-MM-DD).
func (c *Client) Report(ctx context.Context, date string) ([]models.Order, error) {
	resp, err := c.api.Get("/orders/report").Query("date", date).WithContext(ctx).Send()
	if err != nil {
		return nil, err
	}
	if err := resp.Throw(); err != nil {
		return nil, err
	}

	var orders []models.Order
	if err := resp.JSON(&orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// Stats fetches the server-computed aggregate snapshot.
func (c *Client) Stats(ctx context.Context) (*models.Stats, error) {
	resp, err := c.api.Get("/stats").WithContext(ctx).Send()
	if err != nil {
		return nil, err
	}
	if err := resp.Throw(); err != nil {
		return nil, err
	}

	var stats models.Stats
	if err := resp.JSON(&stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// ─── Companies ────────────────────────────────────────────────────────────────

// Companies lists company accounts (admin only).
func (c *Client) Companies(ctx context.Context) ([]models.CompanyAccount, error) {
	resp, err := c.api.Get("/companies").WithContext(ctx).Send()
	if err != nil {
		return nil, err
	}
	if err := resp.Throw(); err != nil {
		return nil, err
	}

	var companies []models.CompanyAccount
	if err := resp.JSON(&companies); err != nil {
		return nil, err
	}
	return companies, nil
}

// DeleteCompany removes a company's login credential only. Historical orders
// are retained server-side (archival policy).
func (c *Client) DeleteCompany(ctx context.Context, id string) error {
	resp, err := c.api.Delete("/companies/" + id).WithContext(ctx).Send()
	if err != nil {
		return err
	}
	return resp.Throw()
}

// ResetCompanyPassword regenerates a company's password. The plaintext in
// the result exists exactly once — display it, never store it.
func (c *Client) ResetCompanyPassword(ctx context.Context, id string) (*models.ResetPasswordResult, error) {
	resp, err := c.api.Post("/companies/" + id + "/reset-password").WithContext(ctx).Send()
	if err != nil {
		return nil, err
	}
	if err := resp.Throw(); err != nil {
		return nil, err
	}

	var result models.ResetPasswordResult
	if err := resp.JSON(&result); err != nil {
		return nil, err
	}
	return &result, nil
}
