package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	authdomain "github.com/ThalliMega/MiniTikTok-User-Http/internal/auth/domain"
	commonerrors "github.com/ThalliMega/MiniTikTok-User-Http/internal/common/errors"
	"github.com/ThalliMega/MiniTikTok-User-Http/internal/common/logger"
	gatewayhttp "github.com/ThalliMega/MiniTikTok-User-Http/internal/gateway/http"
	profiledomain "github.com/ThalliMega/MiniTikTok-User-Http/internal/profile/domain"
	regservice "github.com/ThalliMega/MiniTikTok-User-Http/internal/registration/service"
)

type mockRegistrar struct {
	registerFunc func(ctx context.Context, in regservice.Input) (authdomain.Session, error)
	calls        int
}

func (m *mockRegistrar) Register(ctx context.Context, in regservice.Input) (authdomain.Session, error) {
	m.calls++
	if m.registerFunc != nil {
		return m.registerFunc(ctx, in)
	}
	return authdomain.Session{UserID: 1, Token: "tok"}, nil
}

type mockTokenIssuer struct {
	issueFunc func(ctx context.Context, username, password string) (authdomain.Session, error)
}

func (m *mockTokenIssuer) IssueToken(ctx context.Context, username, password string) (authdomain.Session, error) {
	if m.issueFunc != nil {
		return m.issueFunc(ctx, username, password)
	}
	return authdomain.Session{UserID: 1, Token: "tok"}, nil
}

type mockProfileReader struct {
	callerFunc func(ctx context.Context, token string) (int64, error)
	getFunc    func(ctx context.Context, token string, target int64) (profiledomain.View, error)
	calls      int
}

func (m *mockProfileReader) Caller(ctx context.Context, token string) (int64, error) {
	m.calls++
	if m.callerFunc != nil {
		return m.callerFunc(ctx, token)
	}
	return 1, nil
}

func (m *mockProfileReader) GetProfile(ctx context.Context, token string, target int64) (profiledomain.View, error) {
	m.calls++
	if m.getFunc != nil {
		return m.getFunc(ctx, token, target)
	}
	return profiledomain.View{Attributes: profiledomain.Attributes{ID: target, Name: "bob"}}, nil
}

type sessionBody struct {
	StatusCode int    `json:"status_code"`
	StatusMsg  string `json:"status_msg"`
	UserID     int64  `json:"user_id"`
	Token      string `json:"token"`
}

type userBody struct {
	StatusCode int                        `json:"status_code"`
	StatusMsg  string                     `json:"status_msg"`
	User       map[string]json.RawMessage `json:"user"`
}

type fixture struct {
	handler   http.Handler
	registrar *mockRegistrar
	tokens    *mockTokenIssuer
	profiles  *mockProfileReader
}

func setupHandler(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		registrar: &mockRegistrar{},
		tokens:    &mockTokenIssuer{},
		profiles:  &mockProfileReader{},
	}
	log := logger.NewWriter(io.Discard, "test", "INFO")
	f.handler = gatewayhttp.NewHandler(f.registrar, f.tokens, f.profiles, log)
	return f
}

func serve(t *testing.T, h http.Handler, req *http.Request, out any) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if out != nil {
		if err := json.NewDecoder(rec.Body).Decode(out); err != nil {
			t.Fatalf("decode body: %v", err)
		}
	}
	return rec
}

func TestRegister_QueryParameters(t *testing.T) {
	f := setupHandler(t)
	var got regservice.Input
	f.registrar.registerFunc = func(ctx context.Context, in regservice.Input) (authdomain.Session, error) {
		got = in
		return authdomain.Session{UserID: 42, Token: "abc"}, nil
	}

	req := httptest.NewRequest(http.MethodPost, "/douyin/user/register/?username=alice&password=secret123", nil)
	var body sessionBody
	rec := serve(t, f.handler, req, &body)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	if got.Username != "alice" || got.Password != "secret123" {
		t.Errorf("unexpected input %+v", got)
	}
	if body.StatusCode != 0 || body.UserID != 42 || body.Token != "abc" {
		t.Errorf("unexpected body %+v", body)
	}
}

func TestRegister_JSONBodyFallback(t *testing.T) {
	f := setupHandler(t)
	var got regservice.Input
	f.registrar.registerFunc = func(ctx context.Context, in regservice.Input) (authdomain.Session, error) {
		got = in
		return authdomain.Session{UserID: 7, Token: "t"}, nil
	}

	req := httptest.NewRequest(http.MethodPost, "/douyin/user/register/", strings.NewReader(`{"username":"bob","password":"pw"}`))
	req.Header.Set("Content-Type", "application/json")
	var body sessionBody
	serve(t, f.handler, req, &body)

	if got.Username != "bob" || got.Password != "pw" {
		t.Errorf("unexpected input %+v", got)
	}
	if body.UserID != 7 {
		t.Errorf("expected user_id 7, got %d", body.UserID)
	}
}

func TestRegister_InvalidJSON(t *testing.T) {
	f := setupHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/douyin/user/register/", strings.NewReader("not json"))
	var body sessionBody
	serve(t, f.handler, req, &body)

	if body.StatusCode != commonerrors.StatusClientError {
		t.Errorf("expected status_code 400, got %d", body.StatusCode)
	}
	if f.registrar.calls != 0 {
		t.Error("registrar must not be called for an invalid body")
	}
}

func TestRegister_ConflictHidesSession(t *testing.T) {
	f := setupHandler(t)
	f.registrar.registerFunc = func(context.Context, regservice.Input) (authdomain.Session, error) {
		return authdomain.Session{UserID: 9, Token: "leak"}, commonerrors.ErrUsernameOccupied
	}

	req := httptest.NewRequest(http.MethodPost, "/douyin/user/register/?username=alice&password=x", nil)
	var body sessionBody
	serve(t, f.handler, req, &body)

	if body.StatusCode != commonerrors.StatusForbidden {
		t.Errorf("expected status_code 403, got %d", body.StatusCode)
	}
	if body.StatusMsg != "The username has been occupied." {
		t.Errorf("unexpected message %q", body.StatusMsg)
	}
	if body.Token != "" || body.UserID != 0 {
		t.Errorf("session fields must be empty on failure, got %+v", body)
	}
}

func TestRegister_BackendFailureDoesNotLeakCause(t *testing.T) {
	f := setupHandler(t)
	f.registrar.registerFunc = func(context.Context, regservice.Input) (authdomain.Session, error) {
		return authdomain.Session{}, commonerrors.ErrBackendUnavailable.WithCause(errors.New("dial tcp 10.0.0.5:5432: refused"))
	}

	req := httptest.NewRequest(http.MethodPost, "/douyin/user/register/?username=a&password=b", nil)
	var body sessionBody
	serve(t, f.handler, req, &body)

	if body.StatusCode != commonerrors.StatusBackendUnavailable {
		t.Errorf("expected status_code 502, got %d", body.StatusCode)
	}
	if strings.Contains(body.StatusMsg, "10.0.0.5") {
		t.Errorf("cause leaked: %q", body.StatusMsg)
	}
}

func TestRegister_RejectsGet(t *testing.T) {
	f := setupHandler(t)

	rec := serve(t, f.handler, httptest.NewRequest(http.MethodGet, "/douyin/user/register/", nil), nil)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected 405, got %d", rec.Code)
	}
}

func TestLogin_ForwardsCredentialsUnvalidated(t *testing.T) {
	f := setupHandler(t)
	long := strings.Repeat("x", 64)
	var gotUser string
	f.tokens.issueFunc = func(ctx context.Context, username, password string) (authdomain.Session, error) {
		gotUser = username
		return authdomain.Session{UserID: 3, Token: "tok"}, nil
	}

	req := httptest.NewRequest(http.MethodPost, "/douyin/user/login/?username="+long+"&password=p", nil)
	var body sessionBody
	serve(t, f.handler, req, &body)

	if gotUser != long {
		t.Errorf("expected username forwarded untouched, got %q", gotUser)
	}
	if body.StatusCode != 0 || body.Token != "tok" || body.UserID != 3 {
		t.Errorf("unexpected body %+v", body)
	}
	if f.registrar.calls != 0 {
		t.Error("login must not touch the registration saga")
	}
}

func TestLogin_Rejected(t *testing.T) {
	f := setupHandler(t)
	f.tokens.issueFunc = func(context.Context, string, string) (authdomain.Session, error) {
		return authdomain.Session{}, commonerrors.ErrForbidden
	}

	req := httptest.NewRequest(http.MethodPost, "/douyin/user/login/?username=a&password=wrong", nil)
	var body sessionBody
	serve(t, f.handler, req, &body)

	if body.StatusCode != commonerrors.StatusForbidden {
		t.Errorf("expected status_code 403, got %d", body.StatusCode)
	}
}

func TestInfo_Success(t *testing.T) {
	f := setupHandler(t)
	var gotToken string
	var gotTarget int64
	f.profiles.getFunc = func(ctx context.Context, token string, target int64) (profiledomain.View, error) {
		gotToken, gotTarget = token, target
		return profiledomain.View{
			Attributes:  profiledomain.Attributes{ID: target, Name: "bob"},
			FollowCount: 3,
			IsFollow:    true,
		}, nil
	}

	q := url.Values{"user_id": {"5"}, "token": {"tok"}}
	var body userBody
	serve(t, f.handler, httptest.NewRequest(http.MethodGet, "/douyin/user/?"+q.Encode(), nil), &body)

	if gotToken != "tok" || gotTarget != 5 {
		t.Errorf("unexpected call token=%q target=%d", gotToken, gotTarget)
	}
	if body.StatusCode != 0 {
		t.Fatalf("expected status_code 0, got %d", body.StatusCode)
	}
	if string(body.User["name"]) != `"bob"` || string(body.User["follow_count"]) != "3" || string(body.User["is_follow"]) != "true" {
		t.Errorf("unexpected user %v", body.User)
	}
}

func TestInfo_UnauthorizedReturnsNullUser(t *testing.T) {
	f := setupHandler(t)
	f.profiles.getFunc = func(context.Context, string, int64) (profiledomain.View, error) {
		return profiledomain.View{}, commonerrors.ErrUnauthorized
	}

	rec := serve(t, f.handler, httptest.NewRequest(http.MethodGet, "/douyin/user/?user_id=5&token=bad", nil), nil)

	var raw map[string]json.RawMessage
	if err := json.NewDecoder(rec.Body).Decode(&raw); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if string(raw["status_code"]) != "401" {
		t.Errorf("expected status_code 401, got %s", raw["status_code"])
	}
	if string(raw["user"]) != "null" {
		t.Errorf("expected user null, got %s", raw["user"])
	}
}

func TestInfo_NotFound(t *testing.T) {
	f := setupHandler(t)
	f.profiles.getFunc = func(context.Context, string, int64) (profiledomain.View, error) {
		return profiledomain.View{}, commonerrors.ErrNotFound
	}

	var body userBody
	serve(t, f.handler, httptest.NewRequest(http.MethodGet, "/douyin/user/?user_id=404&token=tok", nil), &body)

	if body.StatusCode != commonerrors.StatusNotFound || body.User != nil {
		t.Errorf("expected 404 with null user, got %+v", body)
	}
}

func TestInfo_RejectedTokenWinsOverInvalidUserID(t *testing.T) {
	for _, id := range []string{"0", "-5", "abc", ""} {
		t.Run("user_id="+id, func(t *testing.T) {
			f := setupHandler(t)
			f.profiles.callerFunc = func(context.Context, string) (int64, error) {
				return 0, commonerrors.ErrUnauthorized
			}
			f.profiles.getFunc = func(context.Context, string, int64) (profiledomain.View, error) {
				return profiledomain.View{}, commonerrors.ErrUnauthorized
			}

			var body userBody
			serve(t, f.handler, httptest.NewRequest(http.MethodGet, "/douyin/user/?user_id="+id+"&token=bad", nil), &body)

			if body.StatusCode != commonerrors.StatusUnauthorized {
				t.Errorf("expected status_code 401, got %d", body.StatusCode)
			}
			if body.User != nil {
				t.Errorf("expected null user, got %+v", body.User)
			}
			if f.profiles.calls != 1 {
				t.Errorf("expected the token to be checked once, got %d calls", f.profiles.calls)
			}
		})
	}
}

func TestInfo_MalformedUserIDAfterAuthIsClientError(t *testing.T) {
	for _, id := range []string{"abc", ""} {
		t.Run("user_id="+id, func(t *testing.T) {
			f := setupHandler(t)
			var gotToken string
			f.profiles.callerFunc = func(_ context.Context, token string) (int64, error) {
				gotToken = token
				return 7, nil
			}

			var body userBody
			serve(t, f.handler, httptest.NewRequest(http.MethodGet, "/douyin/user/?user_id="+id+"&token=tok", nil), &body)

			if gotToken != "tok" {
				t.Errorf("expected the token to be authenticated, got %q", gotToken)
			}
			if body.StatusCode != commonerrors.StatusClientError {
				t.Errorf("expected status_code 400, got %d", body.StatusCode)
			}
			if body.User != nil {
				t.Errorf("expected null user, got %+v", body.User)
			}
		})
	}
}

func TestInfo_NeverIssuedUserIDIsNotFound(t *testing.T) {
	for _, id := range []string{"0", "-5"} {
		t.Run("user_id="+id, func(t *testing.T) {
			f := setupHandler(t)
			var gotTarget int64 = 1
			f.profiles.getFunc = func(_ context.Context, _ string, target int64) (profiledomain.View, error) {
				gotTarget = target
				return profiledomain.View{}, commonerrors.ErrNotFound
			}

			var body userBody
			serve(t, f.handler, httptest.NewRequest(http.MethodGet, "/douyin/user/?user_id="+id+"&token=tok", nil), &body)

			if gotTarget > 0 {
				t.Errorf("expected non-positive target to reach the aggregator, got %d", gotTarget)
			}
			if body.StatusCode != commonerrors.StatusNotFound {
				t.Errorf("expected status_code 404, got %d", body.StatusCode)
			}
		})
	}
}

func TestInfo_MissingTokenIsUnauthorized(t *testing.T) {
	f := setupHandler(t)

	var body userBody
	serve(t, f.handler, httptest.NewRequest(http.MethodGet, "/douyin/user/?user_id=5", nil), &body)

	if body.StatusCode != commonerrors.StatusUnauthorized {
		t.Errorf("expected status_code 401, got %d", body.StatusCode)
	}
	if f.profiles.calls != 0 {
		t.Error("aggregator must not run without a token")
	}
}

func TestInfo_JSONBodyFallback(t *testing.T) {
	f := setupHandler(t)
	var gotTarget int64
	f.profiles.getFunc = func(ctx context.Context, token string, target int64) (profiledomain.View, error) {
		gotTarget = target
		return profiledomain.View{Attributes: profiledomain.Attributes{ID: target}}, nil
	}

	req := httptest.NewRequest(http.MethodGet, "/douyin/user/", strings.NewReader(`{"user_id": 11, "token": "tok"}`))
	var body userBody
	serve(t, f.handler, req, &body)

	if body.StatusCode != 0 || gotTarget != 11 {
		t.Errorf("expected success for target 11, got %d target=%d", body.StatusCode, gotTarget)
	}
}

func TestInfo_UnknownSubpathIsNotRouted(t *testing.T) {
	f := setupHandler(t)

	rec := serve(t, f.handler, httptest.NewRequest(http.MethodGet, "/douyin/user/extra", nil), nil)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
	if f.profiles.calls != 0 {
		t.Error("aggregator must not run for unknown paths")
	}
}

func TestHealthCheck(t *testing.T) {
	f := setupHandler(t)

	rec := serve(t, f.handler, httptest.NewRequest(http.MethodGet, "/health_check", nil), nil)

	if rec.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", rec.Code)
	}
}
