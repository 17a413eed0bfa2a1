package jwt

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artem13815/colorfit/pkg/auth"
)

func TestGenerateAndParse_Success(t *testing.T) {
	t.Parallel()

	user := auth.User{ID: uuid.New()}
	gen := NewGenerator("super-secret", "colorfit", 0)

	tok, err := gen.Generate(context.Background(), user)
	require.NoError(t, err)

	claims, err := NewParser("super-secret", "colorfit").Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, user.ID.String(), claims.Subject)
	assert.Equal(t, "colorfit", claims.Issuer)
	require.NotNil(t, claims.IssuedAt)
	require.NotNil(t, claims.ExpiresAt)
	assert.Equal(t, DefaultTTL, claims.ExpiresAt.Sub(claims.IssuedAt.Time))
}

func TestParse_Rejections(t *testing.T) {
	t.Parallel()

	user := auth.User{ID: uuid.New()}
	valid, err := NewGenerator("secret", "colorfit", time.Hour).Generate(context.Background(), user)
	require.NoError(t, err)

	expiredGen := NewGenerator("secret", "colorfit", time.Hour)
	expiredGen.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expired, err := expiredGen.Generate(context.Background(), user)
	require.NoError(t, err)

	otherIssuer, err := NewGenerator("secret", "someone-else", time.Hour).Generate(context.Background(), user)
	require.NoError(t, err)

	cases := []struct {
		title  string
		parser *Parser
		token  string
	}{
		{title: "wrong-secret", parser: NewParser("wrong", "colorfit"), token: valid},
		{title: "expired", parser: NewParser("secret", "colorfit"), token: expired},
		{title: "wrong-issuer", parser: NewParser("secret", "colorfit"), token: otherIssuer},
		{title: "malformed", parser: NewParser("secret", "colorfit"), token: "not.a.jwt"},
		{title: "tampered", parser: NewParser("secret", "colorfit"), token: valid[:len(valid)-2] + "xx"},
	}
	for _, c := range cases {
		_, err := c.parser.Parse(c.token)
		assert.ErrorIs(t, err, auth.ErrUnauthorized, c.title)
	}
}

func TestAuthMiddleware(t *testing.T) {
	t.Parallel()

	user := auth.User{ID: uuid.New()}
	tok, err := NewGenerator("secret", "colorfit", time.Hour).Generate(context.Background(), user)
	require.NoError(t, err)

	app := fiber.New()
	app.Get("/me", NewAuthMiddleware(NewParser("secret", "colorfit")), func(c *fiber.Ctx) error {
		id, _ := c.Locals(LocalUserID).(string)
		return c.SendString(id)
	})

	cases := []struct {
		title      string
		header     string
		expStatus  int
		expSubject bool
	}{
		{title: "missing", expStatus: http.StatusUnauthorized},
		{title: "bearer", header: "Bearer " + tok, expStatus: http.StatusOK, expSubject: true},
		{title: "lowercase-bearer", header: "bearer " + tok, expStatus: http.StatusOK, expSubject: true},
		{title: "bare-token", header: tok, expStatus: http.StatusOK, expSubject: true},
		{title: "empty-bearer", header: "Bearer  ", expStatus: http.StatusUnauthorized},
		{title: "garbage", header: "Bearer abc", expStatus: http.StatusUnauthorized},
	}
	for _, c := range cases {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		if c.header != "" {
			req.Header.Set("Authorization", c.header)
		}
		resp, err := app.Test(req)
		require.NoError(t, err, c.title)
		assert.Equal(t, c.expStatus, resp.StatusCode, c.title)
		if c.expSubject {
			body, _ := io.ReadAll(resp.Body)
			assert.Equal(t, user.ID.String(), string(body), c.title)
		}
	}
}
