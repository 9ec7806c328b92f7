package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.hoarder.pics/hoarder/gateway/pkg/internal/search"
)

type stubDirectory struct{}

func (stubDirectory) SourcesByURL(context.Context, string) ([]search.Option, error) {
	return nil, nil
}

func (stubDirectory) TagsByNameOrAlias(context.Context, string) ([]search.Option, error) {
	return []search.Option{{Kind: search.OptionTag, ID: "t1", Label: "Alice"}}, nil
}

func (stubDirectory) TagTypes(context.Context) ([]search.Option, error) {
	return []search.Option{{Kind: search.OptionTagType, ID: "ty1", Label: "character"}}, nil
}

func newSearchApp(t *testing.T) *fiber.App {
	t.Helper()

	composers = newComposerRegistry(func() *search.Composer {
		return search.NewComposer(stubDirectory{})
	})

	app := fiber.New()
	app.Get("/search/suggest", suggestOptions)
	app.Post("/search/choose", chooseOption)
	app.Post("/search/clear", clearSearch)

	return app
}

type chooseResponse struct {
	Committed bool           `json:"committed"`
	State     string         `json:"state"`
	Filter    *search.Filter `json:"filter"`
}

func choose(t *testing.T, app *fiber.App, session, body string) chooseResponse {
	t.Helper()

	req := httptest.NewRequest(fiber.MethodPost, "/search/choose", strings.NewReader(body))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	if len(session) > 0 {
		req.AddCookie(&http.Cookie{Name: searchSessionCookie, Value: session})
	}

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var out chooseResponse
	require.NoError(t, jsoniter.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestSearchSessionsAreIsolated(t *testing.T) {
	app := newSearchApp(t)

	armed := choose(t, app, "alice", `{"kind":"tag_type","id":"ty1"}`)
	assert.False(t, armed.Committed)
	assert.Equal(t, search.StateTypeSelected, armed.State)

	// A different session has no pending type, so a tag choice is inert.
	other := choose(t, app, "bob", `{"kind":"tag","id":"t1"}`)
	assert.False(t, other.Committed)
	assert.Equal(t, search.StateIdle, other.State)

	// The first session's pending type is still armed.
	committed := choose(t, app, "alice", `{"kind":"tag","id":"t1"}`)
	assert.True(t, committed.Committed)
	require.NotNil(t, committed.Filter)
	assert.Equal(t, search.Filter{TagID: "t1", TypeID: "ty1"}, *committed.Filter)
	assert.Equal(t, search.StateIdle, committed.State)
}

func TestSearchSessionCookieIssued(t *testing.T) {
	app := newSearchApp(t)

	req := httptest.NewRequest(fiber.MethodGet, "/search/suggest?probe=a", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	issued := false
	for _, cookie := range resp.Cookies() {
		if cookie.Name == searchSessionCookie && len(cookie.Value) > 0 {
			issued = true
		}
	}
	assert.True(t, issued)
}
