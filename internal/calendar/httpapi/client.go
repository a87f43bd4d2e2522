package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	cal "github.com/campuskit/calsync/pkg/calendar"
	"github.com/campuskit/calsync/pkg/common/logger"
)

// maxBatchSize is the calendar service's hard cap on items per batch-create
// request. The client chunks transparently; callers may submit any size.
const maxBatchSize = 50

const defaultPageSize = 100

// Config for the calendar ACL client.
type Config struct {
	BaseURL   string
	AppID     string
	AppSecret string
	Timeout   time.Duration
}

// Client talks to the external calendar service's ACL endpoints.
type Client struct {
	base   string
	hc     *http.Client
	minter *tokenMinter
	log    logger.Logger
}

func NewClient(cfg Config, log logger.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		base:   strings.TrimRight(cfg.BaseURL, "/"),
		hc:     &http.Client{Timeout: timeout},
		minter: newTokenMinter(cfg.AppID, cfg.AppSecret, 10*time.Minute),
		log:    log.Child(map[string]any{"component": "calendar_client"}),
	}
}

func (c *Client) GetAllCalendarPermissions(ctx context.Context, calendarID string) ([]cal.CurrentPermission, error) {
	var all []cal.CurrentPermission
	token := ""
	for {
		page, err := c.GetCalendarPermissionList(ctx, calendarID, token, defaultPageSize)
		if err != nil {
			return nil, err
		}
		all = append(all, page.Items...)
		if page.NextPageToken == "" {
			return all, nil
		}
		token = page.NextPageToken
	}
}

func (c *Client) GetCalendarPermissionList(ctx context.Context, calendarID, pageToken string, pageSize int) (cal.PermissionPage, error) {
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	q := url.Values{}
	q.Set("page_size", strconv.Itoa(pageSize))
	if pageToken != "" {
		q.Set("page_token", pageToken)
	}
	var page cal.PermissionPage
	path := fmt.Sprintf("/v3/calendars/%s/acl?%s", url.PathEscape(calendarID), q.Encode())
	if err := c.do(ctx, http.MethodGet, path, nil, &page); err != nil {
		return cal.PermissionPage{}, err
	}
	return page, nil
}

func (c *Client) BatchCreateCalendarPermissionsLimit(ctx context.Context, calendarID string, items []cal.PermissionItem) (cal.BatchCreateResult, error) {
	var result cal.BatchCreateResult
	path := fmt.Sprintf("/v3/calendars/%s/acl:batchCreate", url.PathEscape(calendarID))
	for start := 0; start < len(items); start += maxBatchSize {
		end := start + maxBatchSize
		if end > len(items) {
			end = len(items)
		}
		chunk := items[start:end]
		body := map[string]any{"items": chunk}
		var resp cal.BatchCreateResult
		if err := c.do(ctx, http.MethodPost, path, body, &resp); err != nil {
			return result, err
		}
		c.log.Debug("batch create: calendar=%s chunk=%d..%d applied=%d", calendarID, start, end, len(resp.Items))
		result.Items = append(result.Items, resp.Items...)
	}
	return result, nil
}

func (c *Client) DeleteCalendarPermission(ctx context.Context, calendarID, userID string) error {
	path := fmt.Sprintf("/v3/calendars/%s/acl/%s", url.PathEscape(calendarID), url.PathEscape(userID))
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

// do issues one authenticated request, decoding a non-2xx response into a
// *calendar.APIError.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var rdr io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		rdr = bytes.NewReader(buf)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, rdr)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	bearer, err := c.minter.bearer()
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+bearer)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("calendar api %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &cal.APIError{StatusCode: resp.StatusCode, Code: "UNKNOWN"}
		if data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16)); err == nil && len(data) > 0 {
			_ = json.Unmarshal(data, apiErr)
		}
		if apiErr.Message == "" {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
		return apiErr
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
