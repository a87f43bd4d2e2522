package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cal "github.com/campuskit/calsync/pkg/calendar"
	"github.com/campuskit/calsync/pkg/common/logger"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(Config{
		BaseURL:   srv.URL,
		AppID:     "calsync-test",
		AppSecret: "test-secret",
		Timeout:   5 * time.Second,
	}, logger.Nop())
}

func TestRequestsCarrySignedBearerToken(t *testing.T) {
	var auth string
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		_ = json.NewEncoder(w).Encode(cal.PermissionPage{})
	}))

	_, err := client.GetCalendarPermissionList(context.Background(), "cal-1", "", 10)
	require.NoError(t, err)

	require.True(t, strings.HasPrefix(auth, "Bearer "))
	tok, err := jwt.Parse([]byte(strings.TrimPrefix(auth, "Bearer ")),
		jwt.WithKey(jwa.HS256, []byte("test-secret")),
		jwt.WithValidate(true),
		jwt.WithAudience("calendar-api"),
	)
	require.NoError(t, err)
	assert.Equal(t, "calsync-test", tok.Issuer())
}

func TestGetAllCalendarPermissionsDrainsPages(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page := cal.PermissionPage{}
		switch r.URL.Query().Get("page_token") {
		case "":
			page.Items = []cal.CurrentPermission{{UserID: "u1"}, {UserID: "u2"}}
			page.NextPageToken = "p2"
		case "p2":
			page.Items = []cal.CurrentPermission{{UserID: "u3"}}
		default:
			http.Error(w, "bad token", http.StatusBadRequest)
			return
		}
		_ = json.NewEncoder(w).Encode(page)
	}))

	perms, err := client.GetAllCalendarPermissions(context.Background(), "cal-1")
	require.NoError(t, err)
	require.Len(t, perms, 3)
	assert.Equal(t, "u3", perms[2].UserID)
}

func TestBatchCreateChunksToLimit(t *testing.T) {
	var sizes []int
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Items []cal.PermissionItem `json:"items"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		sizes = append(sizes, len(body.Items))
		res := cal.BatchCreateResult{}
		for _, item := range body.Items {
			res.Items = append(res.Items, cal.BatchCreateItem{UserID: item.UserID, Role: item.Role})
		}
		_ = json.NewEncoder(w).Encode(res)
	}))

	items := make([]cal.PermissionItem, 120)
	for i := range items {
		items[i] = cal.PermissionItem{UserID: fmt.Sprintf("u%03d", i), Role: cal.AccessReader}
	}
	res, err := client.BatchCreateCalendarPermissionsLimit(context.Background(), "cal-1", items)
	require.NoError(t, err)

	assert.Equal(t, []int{50, 50, 20}, sizes)
	assert.Len(t, res.Items, 120)
}

func TestNon2xxDecodesAPIError(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_ = json.NewEncoder(w).Encode(map[string]string{"code": "FORBIDDEN", "message": "no access to calendar"})
	}))

	_, err := client.GetAllCalendarPermissions(context.Background(), "cal-1")
	require.Error(t, err)

	var apiErr *cal.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusForbidden, apiErr.StatusCode)
	assert.Equal(t, "FORBIDDEN", apiErr.Code)
	assert.Contains(t, apiErr.Message, "no access")
}

func TestDeleteCalendarPermission(t *testing.T) {
	var method, path string
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method, path = r.Method, r.URL.Path
		w.WriteHeader(http.StatusNoContent)
	}))

	require.NoError(t, client.DeleteCalendarPermission(context.Background(), "cal-1", "u1"))
	assert.Equal(t, http.MethodDelete, method)
	assert.Equal(t, "/v3/calendars/cal-1/acl/u1", path)
}
