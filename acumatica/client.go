// Package acumatica is a thin client for the Acumatica contract-based REST
// API: cookie session auth plus paged entity reads ($skip/$top).
package acumatica

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/cookiejar"
	"time"
)

const endpointPath = "/entity/Default/24.200.001"

type Client struct {
	BaseURL  string
	Username string
	Password string
	Company  string
	PageSize int

	httpClient *http.Client
}

func NewClient(baseURL, username, password, company string, pageSize int) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}
	if pageSize <= 0 {
		pageSize = 200
	}
	return &Client{
		BaseURL:  baseURL,
		Username: username,
		Password: password,
		Company:  company,
		PageSize: pageSize,
		httpClient: &http.Client{
			Jar:     jar,
			Timeout: 60 * time.Second,
		},
	}, nil
}

func (c *Client) Login(ctx context.Context) error {
	payload := map[string]string{
		"name":     c.Username,
		"password": c.Password,
	}
	if c.Company != "" {
		payload["company"] = c.Company
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/entity/auth/login", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("ERP login request failed: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusNoContent && resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ERP login failed with status %d", resp.StatusCode)
	}
	return nil
}

func (c *Client) Logout(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/entity/auth/logout", nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("ERP logout request failed: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)
	return nil
}

// getPage fetches one $skip/$top page of an entity and decodes into dest,
// retrying up to 3 times on 429 and 5xx responses.
func (c *Client) getPage(ctx context.Context, entity string, skip int, dest interface{}) error {
	url := fmt.Sprintf("%s%s/%s?$skip=%d&$top=%d", c.BaseURL, endpointPath, entity, skip, c.PageSize)

	var lastErr error
	for attempt := 1; attempt <= 3; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return err
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("ERP %s page request failed: %w", entity, err)
		} else {
			if resp.StatusCode == http.StatusOK {
				err = json.NewDecoder(resp.Body).Decode(dest)
				resp.Body.Close()
				if err != nil {
					return fmt.Errorf("failed to decode ERP %s page: %w", entity, err)
				}
				return nil
			}
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			resp.Body.Close()
			lastErr = fmt.Errorf("ERP %s page returned status %d: %s", entity, resp.StatusCode, body)
			if resp.StatusCode != http.StatusTooManyRequests && resp.StatusCode < 500 {
				return lastErr
			}
		}

		if attempt < 3 {
			log.Printf("WARN: %v (attempt %d/3, retrying)", lastErr, attempt)
			select {
			case <-time.After(2 * time.Second):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
	return lastErr
}

func (c *Client) FetchCustomersPage(ctx context.Context, skip int) ([]Customer, error) {
	var page []Customer
	if err := c.getPage(ctx, "Customer", skip, &page); err != nil {
		return nil, err
	}
	return page, nil
}

func (c *Client) FetchInvoicesPage(ctx context.Context, skip int) ([]Invoice, error) {
	var page []Invoice
	if err := c.getPage(ctx, "Invoice", skip, &page); err != nil {
		return nil, err
	}
	return page, nil
}

func (c *Client) FetchPaymentsPage(ctx context.Context, skip int) ([]Payment, error) {
	var page []Payment
	if err := c.getPage(ctx, "Payment", skip, &page); err != nil {
		return nil, err
	}
	return page, nil
}
