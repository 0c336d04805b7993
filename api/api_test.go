package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aura-site/api/datastore"
	domainerrors "github.com/aura-site/api/errors"
	"github.com/aura-site/api/logger"
	"github.com/aura-site/api/models"
	"github.com/aura-site/api/palette"
	"github.com/aura-site/api/ratelimit"
	"github.com/aura-site/api/sitegen"
	"github.com/aura-site/api/validation"
)

const testSecret = "test-secret"

type fakeSiteRepo struct {
	sites []models.Site
}

func (f *fakeSiteRepo) Create(site models.Site, components []models.Component) (models.Site, []models.Component, error) {
	site.ID = len(f.sites) + 1
	f.sites = append(f.sites, site)
	return site, components, nil
}

func (f *fakeSiteRepo) GetByUsername(username string) (models.Site, error) {
	for _, s := range f.sites {
		if s.Username == username {
			return s, nil
		}
	}
	return models.Site{}, datastore.NoRowsError{NoRows: true}
}

func (f *fakeSiteRepo) GetByID(id int) (models.Site, error) {
	for _, s := range f.sites {
		if s.ID == id {
			return s, nil
		}
	}
	return models.Site{}, datastore.NoRowsError{NoRows: true}
}

func (f *fakeSiteRepo) Exists(username string) (bool, error) {
	_, err := f.GetByUsername(username)
	return err == nil, nil
}

func (f *fakeSiteRepo) Recent(limit int) ([]models.Site, error) {
	var out []models.Site
	for i := len(f.sites) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, f.sites[i])
	}
	return out, nil
}

func (f *fakeSiteRepo) TopScores(limit int) ([]models.Site, error) {
	out := append([]models.Site(nil), f.sites...)
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j].Score > out[j-1].Score; j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out[:min(limit, len(out))], nil
}

func (f *fakeSiteRepo) Count() (int, error) { return len(f.sites), nil }

func (f *fakeSiteRepo) GetByOffset(offset int) (models.Site, error) {
	if offset >= len(f.sites) {
		return models.Site{}, datastore.NoRowsError{NoRows: true}
	}
	return f.sites[offset], nil
}

func (f *fakeSiteRepo) Delete(username string) error {
	for i, s := range f.sites {
		if s.Username == username {
			f.sites = append(f.sites[:i], f.sites[i+1:]...)
			return nil
		}
	}
	return datastore.NoRowsError{NoRows: true}
}

type fakeComponentRepo struct {
	components map[int]models.Component
}

func (f *fakeComponentRepo) ListBySite(siteID int) ([]models.Component, error) {
	out := []models.Component{}
	for id := 1; id <= len(f.components); id++ {
		if c, ok := f.components[id]; ok && c.SiteID == siteID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeComponentRepo) Get(id int) (models.Component, error) {
	c, ok := f.components[id]
	if !ok {
		return models.Component{}, datastore.NoRowsError{NoRows: true}
	}
	return c, nil
}

func (f *fakeComponentRepo) CastVote(id int, option int) ([]int, error) {
	c, err := f.Get(id)
	if err != nil {
		return nil, err
	}
	if c.Type != models.BlockVoting {
		return nil, domainerrors.NotFoundf("component %d is not a poll", id)
	}
	if option >= len(c.Voting) {
		return nil, domainerrors.Validation("option out of range")
	}
	c.Voting[option]++
	f.components[id] = c
	return c.Voting, nil
}

func (f *fakeComponentRepo) Votes(id int) (models.VoteTally, error) {
	c, err := f.Get(id)
	if err != nil {
		return models.VoteTally{}, err
	}
	return models.NewVoteTally(c), nil
}

type fakeFeaturedRepo struct {
	today *models.FeaturedSite
}

func (f *fakeFeaturedRepo) Create(fs models.FeaturedSite) (models.FeaturedSite, error) {
	f.today = &fs
	return fs, nil
}

func (f *fakeFeaturedRepo) GetByDate(time.Time) (models.FeaturedSite, error) { return f.GetToday() }

func (f *fakeFeaturedRepo) GetToday() (models.FeaturedSite, error) {
	if f.today == nil {
		return models.FeaturedSite{}, datastore.NoRowsError{NoRows: true}
	}
	return *f.today, nil
}

func (f *fakeFeaturedRepo) GetAll() ([]models.FeaturedSite, error) { return nil, nil }

type fakeOperatorRepo struct {
	operator models.Operator
}

func (f *fakeOperatorRepo) Create(op models.Operator) (models.Operator, error) { return op, nil }

func (f *fakeOperatorRepo) GetByEmail(email string) (models.Operator, error) {
	if email != f.operator.Email {
		return models.Operator{}, datastore.NoRowsError{NoRows: true}
	}
	return f.operator, nil
}

func (f *fakeOperatorRepo) ValidateAndGet(creds models.Credentials) (models.Operator, error) {
	op, err := f.GetByEmail(creds.Email)
	if err != nil || !op.CheckPassword(creds.Password) {
		return models.Operator{}, domainerrors.Unauthorized("invalid email or password")
	}
	return op, nil
}

type fakeGenerator struct {
	sites *fakeSiteRepo
	err   error
}

func (f *fakeGenerator) Generate(_ context.Context, username string) (sitegen.Result, error) {
	if f.err != nil {
		return sitegen.Result{}, f.err
	}
	username = sitegen.NormalizeHandle(username)
	if site, err := f.sites.GetByUsername(username); err == nil {
		return sitegen.Result{Site: site}, nil
	}
	site, _, _ := f.sites.Create(models.Site{Username: username, Aura: "calm tide"}, nil)
	return sitegen.Result{Site: site, Created: true}, nil
}

type fakePalette struct{}

func (fakePalette) DescribeImage(data []byte) (palette.Descriptor, error) {
	if !strings.HasPrefix(string(data), "\x89P") {
		return palette.Descriptor{}, domainerrors.UnsupportedFormat("unsupported image format")
	}
	return palette.Summarize([]palette.RGB{{R: 255}}, nil), nil
}

type fakeFeaturedPicker struct {
	repo *fakeFeaturedRepo
}

func (f fakeFeaturedPicker) GenerateFeaturedSite() (models.FeaturedSite, error) {
	return f.repo.Create(models.FeaturedSite{ID: 1, SiteID: 1, Date: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)})
}

type testEnv struct {
	app        *Application
	sites      *fakeSiteRepo
	components *fakeComponentRepo
	featured   *fakeFeaturedRepo
	operator   models.Operator
}

func content(t *testing.T, v any) json.RawMessage {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	return raw
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	operator, err := models.NewOperator("ops@example.com", "hunter22")
	require.NoError(t, err)

	sites := &fakeSiteRepo{sites: []models.Site{
		{ID: 1, Username: "alice", Aura: "quiet dawn", GlobalVariant: models.VariantMinimalist, Score: 6.6, Colors: []string{"#ff0000"}},
		{ID: 2, Username: "grace", Aura: "bold storm", GlobalVariant: models.VariantBold, Score: 8.1},
	}}
	components := &fakeComponentRepo{components: map[int]models.Component{
		1: {ID: 1, SiteID: 1, Type: models.BlockHero, Variant: models.VariantMinimalist, Content: content(t, models.HeroContent{Headline: "Hi"})},
		2: {ID: 2, SiteID: 1, Type: models.BlockQuote, Variant: models.VariantMinimalist, Content: content(t, models.QuoteContent{Text: "Be"})},
		3: {ID: 3, SiteID: 2, Type: models.BlockVoting, Variant: models.VariantBold,
			Content: content(t, models.VotingContent{Question: "Tea?", Options: []string{"yes", "no"}}), Voting: []int{0, 0}},
	}}
	featured := &fakeFeaturedRepo{}

	app := &Application{
		Config: Config{
			JwtSecret:         testSecret,
			JwtAccessDuration: 3600,
			AllowedOrigins:    []string{"https://aura.example"},
		},
		Logger:        logger.Discard(),
		SiteRepo:      sites,
		ComponentRepo: components,
		FeaturedRepo:  featured,
		OperatorRepo:  &fakeOperatorRepo{operator: operator},
		Generator:     &fakeGenerator{sites: sites},
		Palette:       fakePalette{},
		Featured:      fakeFeaturedPicker{repo: featured},
		Validator:     validation.New(),
	}

	return &testEnv{app: app, sites: sites, components: components, featured: featured, operator: operator}
}

func (e *testEnv) do(t *testing.T, method, target, body string, mutate ...func(*http.Request)) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	for _, m := range mutate {
		m(req)
	}
	rec := httptest.NewRecorder()
	e.app.BuildRoutes(http.NewServeMux()).ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) withOperator(t *testing.T) func(*http.Request) {
	t.Helper()
	token, err := models.NewAccessToken(e.operator, testSecret, time.Now().Add(time.Hour))
	require.NoError(t, err)
	return func(r *http.Request) {
		r.AddCookie(&http.Cookie{Name: models.JWT.ACCESS_COOKIE_NAME, Value: token})
	}
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestHome(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Aura Site API", rec.Body.String())

	rec = env.do(t, http.MethodGet, "/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetSite(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/v1/sites/Alice", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	page := decode[SitePage](t, rec)
	assert.Equal(t, "alice", page.Site.Username)
	assert.Equal(t, "Header1", page.Decorations.Header)

	require.Len(t, page.Rows, 2)
	require.Len(t, page.Rows[0], 1)
	require.Len(t, page.Rows[1], 1)
	assert.Equal(t, models.BlockQuote, page.Rows[0][0].Type)
	assert.Equal(t, "QuoteMinimalist", page.Rows[0][0].Component)
	assert.Equal(t, models.BlockHero, page.Rows[1][0].Type)
	assert.Equal(t, "HeroMinimalist", page.Rows[1][0].Component)
	assert.Equal(t, "Hi", models.DecodeContent[models.HeroContent](page.Rows[1][0].Content).Headline)

	again := decode[SitePage](t, env.do(t, http.MethodGet, "/v1/sites/alice", ""))
	assert.Equal(t, page.Rows, again.Rows)
}

func TestGetSite_NotFound(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/v1/sites/nobody", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	herr := decode[HandlerError](t, rec)
	assert.Equal(t, "NOT_FOUND", herr.Code)
	assert.Equal(t, "Not Found", herr.ErrorName)
	assert.NotEmpty(t, herr.CallerInfo)
}

func TestCreateSite(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/v1/sites", `{"username":"peggy"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	resp := decode[models.CreateSiteResponse](t, rec)
	assert.True(t, resp.Created)
	assert.Equal(t, "peggy", resp.Site.Username)

	rec = env.do(t, http.MethodPost, "/v1/sites", `{"username":"alice"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	resp = decode[models.CreateSiteResponse](t, rec)
	assert.False(t, resp.Created)
	assert.Equal(t, "quiet dawn", resp.Site.Aura)
}

func TestCreateSite_Errors(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		body       string
		genErr     error
		wantStatus int
	}{
		{name: "wrong method", method: http.MethodGet, wantStatus: http.StatusMethodNotAllowed},
		{name: "bad json", method: http.MethodPost, body: `{"username":`, wantStatus: http.StatusBadRequest},
		{
			name:       "invalid handle",
			method:     http.MethodPost,
			body:       `{"username":"no spaces"}`,
			genErr:     domainerrors.ValidationWithDetails("validation failed", map[string]string{"username": "bad"}),
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "unknown handle",
			method:     http.MethodPost,
			body:       `{"username":"ghost"}`,
			genErr:     domainerrors.NotFound("socialdata returned status 404"),
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "provider down",
			method:     http.MethodPost,
			body:       `{"username":"ghost"}`,
			genErr:     domainerrors.New(domainerrors.CodeFetchFailure, "openai returned status 503"),
			wantStatus: http.StatusBadGateway,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			env.app.Generator = &fakeGenerator{sites: env.sites, err: tt.genErr}

			rec := env.do(t, tt.method, "/v1/sites", tt.body)
			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
		})
	}
}

func TestCreateSite_InternalErrorsAreHidden(t *testing.T) {
	env := newTestEnv(t)
	env.app.Generator = &fakeGenerator{sites: env.sites, err: assert.AnError}

	rec := env.do(t, http.MethodPost, "/v1/sites", `{"username":"ghost"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	herr := decode[HandlerError](t, rec)
	assert.Equal(t, "internal server error", herr.Description)
	assert.NotContains(t, rec.Body.String(), assert.AnError.Error())
}

func TestCreateSite_RateLimited(t *testing.T) {
	forwardedFor := func(ip string) func(*http.Request) {
		return func(r *http.Request) {
			r.RemoteAddr = "198.51.100.7:5555"
			r.Header.Set("X-Forwarded-For", ip+", 10.0.0.1")
		}
	}

	t.Run("forwarded header ignored by default", func(t *testing.T) {
		env := newTestEnv(t)
		limiter := ratelimit.PerInterval(1, time.Hour, 1)
		defer limiter.Stop()
		env.app.CreateLimiter = limiter

		rec := env.do(t, http.MethodPost, "/v1/sites", `{"username":"peggy"}`, forwardedFor("203.0.113.9"))
		assert.Equal(t, http.StatusCreated, rec.Code)

		rec = env.do(t, http.MethodPost, "/v1/sites", `{"username":"judy"}`, forwardedFor("203.0.113.10"))
		assert.Equal(t, http.StatusTooManyRequests, rec.Code)
		assert.Equal(t, "RATE_LIMITED", decode[HandlerError](t, rec).Code)
	})

	t.Run("forwarded header honoured behind a proxy", func(t *testing.T) {
		env := newTestEnv(t)
		env.app.Config.TrustProxyHeaders = true
		limiter := ratelimit.PerInterval(1, time.Hour, 1)
		defer limiter.Stop()
		env.app.CreateLimiter = limiter

		rec := env.do(t, http.MethodPost, "/v1/sites", `{"username":"peggy"}`, forwardedFor("203.0.113.9"))
		assert.Equal(t, http.StatusCreated, rec.Code)

		rec = env.do(t, http.MethodPost, "/v1/sites", `{"username":"judy"}`, forwardedFor("203.0.113.9"))
		assert.Equal(t, http.StatusTooManyRequests, rec.Code)

		rec = env.do(t, http.MethodPost, "/v1/sites", `{"username":"judy"}`, forwardedFor("203.0.113.10"))
		assert.Equal(t, http.StatusCreated, rec.Code)
	})
}

func TestRecentAndLeaderboard(t *testing.T) {
	env := newTestEnv(t)

	recent := decode[[]models.SiteCard](t, env.do(t, http.MethodGet, "/v1/sites/recent", ""))
	require.Len(t, recent, 2)
	assert.Equal(t, "grace", recent[0].Username)

	board := decode[[]models.LeaderboardEntry](t, env.do(t, http.MethodGet, "/v1/leaderboard?limit=1", ""))
	require.Len(t, board, 1)
	assert.Equal(t, 1, board[0].Rank)
	assert.Equal(t, "grace", board[0].Username)

	rec := env.do(t, http.MethodGet, "/v1/leaderboard?limit=zero", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFeatured(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/v1/featured", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, http.MethodPost, "/v1/admin/featured/generate", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(t, http.MethodPost, "/v1/admin/featured/generate", "", env.withOperator(t))
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[models.FeaturedSiteResponse](t, env.do(t, http.MethodGet, "/v1/featured", ""))
	assert.Equal(t, "2024-05-01", resp.Date)
	assert.Equal(t, "alice", resp.Site.Username)
}

func TestComponentVotes(t *testing.T) {
	env := newTestEnv(t)

	tally := decode[models.VoteTally](t, env.do(t, http.MethodGet, "/v1/components/3/votes", ""))
	assert.Equal(t, []int{0, 0}, tally.Votes)

	rec := env.do(t, http.MethodPost, "/v1/components/3/votes", `{"option":1}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	tally = decode[models.VoteTally](t, rec)
	assert.Equal(t, "Tea?", tally.Question)
	assert.Equal(t, []string{"yes", "no"}, tally.Options)
	assert.Equal(t, []int{0, 1}, tally.Votes)
	assert.Equal(t, 1, tally.Total)

	tests := []struct {
		name       string
		method     string
		target     string
		body       string
		wantStatus int
	}{
		{"missing option", http.MethodPost, "/v1/components/3/votes", `{}`, http.StatusBadRequest},
		{"negative option", http.MethodPost, "/v1/components/3/votes", `{"option":-1}`, http.StatusBadRequest},
		{"option out of range", http.MethodPost, "/v1/components/3/votes", `{"option":2}`, http.StatusBadRequest},
		{"not a poll", http.MethodPost, "/v1/components/1/votes", `{"option":0}`, http.StatusNotFound},
		{"unknown component", http.MethodGet, "/v1/components/99/votes", ``, http.StatusNotFound},
		{"bad id", http.MethodGet, "/v1/components/abc/votes", ``, http.StatusBadRequest},
		{"wrong method", http.MethodPut, "/v1/components/3/votes", ``, http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, tt.method, tt.target, tt.body)
			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
		})
	}
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/v1/auth/login", `{"email":"ops@example.com","password":"hunter22"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.NotContains(t, rec.Body.String(), "hunter22")
	assert.NotContains(t, rec.Body.String(), env.operator.HashedPassword)

	var cookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == models.JWT.ACCESS_COOKIE_NAME {
			cookie = c
		}
	}
	require.NotNil(t, cookie)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, http.SameSiteNoneMode, cookie.SameSite)

	claims, err := models.ValidateJWTToken(cookie.Value, testSecret)
	require.NoError(t, err)
	assert.Equal(t, env.operator.OperatorID, claims.OperatorID)

	rec = env.do(t, http.MethodPost, "/v1/auth/login", `{"email":"ops@example.com","password":"wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(t, http.MethodPost, "/v1/auth/login", `{"email":"not-an-email","password":"x"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPreviewPalette(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/v1/palette/preview", "\x89PNG")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(t, http.MethodPost, "/v1/palette/preview", "\x89PNG", env.withOperator(t))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	desc := decode[palette.Descriptor](t, rec)
	assert.Equal(t, "#ff0000", desc.PrimaryColor)

	rec = env.do(t, http.MethodPost, "/v1/palette/preview", "GIF89a", env.withOperator(t))
	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)

	env.app.Config.MaxUploadBytes = 2
	rec = env.do(t, http.MethodPost, "/v1/palette/preview", "\x89PNG", env.withOperator(t))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeleteSite(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodDelete, "/v1/admin/sites/alice", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	expired, err := models.NewAccessToken(env.operator, testSecret, time.Now().Add(-time.Minute))
	require.NoError(t, err)
	rec = env.do(t, http.MethodDelete, "/v1/admin/sites/alice", "", func(r *http.Request) {
		r.AddCookie(&http.Cookie{Name: models.JWT.ACCESS_COOKIE_NAME, Value: expired})
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(t, http.MethodDelete, "/v1/admin/sites/alice", "", env.withOperator(t))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = env.do(t, http.MethodDelete, "/v1/admin/sites/alice", "", env.withOperator(t))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, http.MethodGet, "/v1/admin/sites/grace", "", env.withOperator(t))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestCorsAndOrigins(t *testing.T) {
	env := newTestEnv(t)
	origin := func(o string) func(*http.Request) {
		return func(r *http.Request) { r.Header.Set("Origin", o) }
	}

	rec := env.do(t, http.MethodGet, "/v1/sites/recent", "", origin("https://aura.example"))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "https://aura.example", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.NotEmpty(t, rec.Header().Get(requestIDHeader))

	rec = env.do(t, http.MethodGet, "/v1/sites/recent", "", origin("https://evil.example"))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.do(t, http.MethodGet, "/v1/sites/recent", "", origin("http://localhost:5173"))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	env.app.Config.DevMode = true
	rec = env.do(t, http.MethodGet, "/v1/sites/recent", "", origin("http://localhost:5173"))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodOptions, "/v1/sites", "", origin("https://aura.example"))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestRequestIDIsKept(t *testing.T) {
	env := newTestEnv(t)
	id := "7d3a8c1e-2b4f-4c6d-9e8f-0a1b2c3d4e5f"

	rec := env.do(t, http.MethodGet, "/", "", func(r *http.Request) { r.Header.Set(requestIDHeader, id) })
	assert.Equal(t, id, rec.Header().Get(requestIDHeader))

	rec = env.do(t, http.MethodGet, "/", "", func(r *http.Request) { r.Header.Set(requestIDHeader, "not-a-uuid") })
	assert.NotEqual(t, "not-a-uuid", rec.Header().Get(requestIDHeader))
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name       string
		headers    map[string]string
		remote     string
		trustProxy bool
		want       string
	}{
		{"forwarded chain", map[string]string{"X-Forwarded-For": "1.1.1.1, 2.2.2.2"}, "9.9.9.9:1", true, "1.1.1.1"},
		{"forwarded single", map[string]string{"X-Forwarded-For": "1.1.1.1"}, "9.9.9.9:1", true, "1.1.1.1"},
		{"real ip", map[string]string{"X-Real-IP": "3.3.3.3"}, "9.9.9.9:1", true, "3.3.3.3"},
		{"forwarded untrusted", map[string]string{"X-Forwarded-For": "1.1.1.1"}, "9.9.9.9:1", false, "9.9.9.9"},
		{"real ip untrusted", map[string]string{"X-Real-IP": "3.3.3.3"}, "9.9.9.9:1", false, "9.9.9.9"},
		{"remote addr", nil, "9.9.9.9:4321", true, "9.9.9.9"},
		{"ipv6 remote", nil, "[::1]:4321", false, "[::1]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, getClientIP(r, tt.trustProxy))
		})
	}
}
