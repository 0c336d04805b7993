package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	domainerrors "github.com/aura-site/api/errors"
	"github.com/aura-site/api/models"
	"github.com/aura-site/api/sitegen"
)

const (
	recentLimit             = 20
	defaultLeaderboardLimit = 20
	maxLeaderboardLimit     = 100
	defaultMaxUploadBytes   = 10 << 20
)

// GET /
func (app *Application) home(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, "Aura Site API")
}

// POST /v1/sites - Generate a site, or return the one already stored
func (app *Application) createSite(w http.ResponseWriter, r *http.Request) {
	if !app.requireMethod(w, r, http.MethodPost) {
		return
	}

	var req models.CreateSiteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		app.badJSONRequest(w, r, err)
		return
	}

	result, err := app.Generator.Generate(r.Context(), req.Username)
	if err != nil {
		app.domainError(w, r, err)
		return
	}

	status := http.StatusOK
	if result.Created {
		status = http.StatusCreated
	}
	writeJSON(w, status, models.CreateSiteResponse{
		Created: result.Created,
		Site:    result.Site.Card(),
	})
}

// GET /v1/sites/recent - Latest generated sites
func (app *Application) getRecentSites(w http.ResponseWriter, r *http.Request) {
	if !app.requireMethod(w, r, http.MethodGet) {
		return
	}

	sites, err := app.SiteRepo.Recent(recentLimit)
	if err != nil {
		app.domainError(w, r, err)
		return
	}

	cards := make([]models.SiteCard, len(sites))
	for i, s := range sites {
		cards[i] = s.Card()
	}
	writeJSON(w, http.StatusOK, cards)
}

// GET /v1/sites/{username} - A site with its layout for this request
func (app *Application) getSite(w http.ResponseWriter, r *http.Request) {
	if !app.requireMethod(w, r, http.MethodGet) {
		return
	}

	site, err := app.SiteRepo.GetByUsername(sitegen.NormalizeHandle(r.PathValue("username")))
	if err != nil {
		app.domainError(w, r, err)
		return
	}

	components, err := app.ComponentRepo.ListBySite(site.ID)
	if err != nil {
		app.domainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, buildSitePage(site, components))
}

// GET /v1/leaderboard?limit=N - Sites ranked by harmony score
func (app *Application) getLeaderboard(w http.ResponseWriter, r *http.Request) {
	if !app.requireMethod(w, r, http.MethodGet) {
		return
	}

	limit := defaultLeaderboardLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			app.badRequest(w, r, errors.New("limit must be a positive integer"))
			return
		}
		limit = min(parsed, maxLeaderboardLimit)
	}

	sites, err := app.SiteRepo.TopScores(limit)
	if err != nil {
		app.domainError(w, r, err)
		return
	}

	entries := make([]models.LeaderboardEntry, len(sites))
	for i, s := range sites {
		entries[i] = models.LeaderboardEntry{Rank: i + 1, SiteCard: s.Card()}
	}
	writeJSON(w, http.StatusOK, entries)
}

// GET /v1/featured - Today's featured site
func (app *Application) getFeaturedSite(w http.ResponseWriter, r *http.Request) {
	if !app.requireMethod(w, r, http.MethodGet) {
		return
	}

	featured, err := app.FeaturedRepo.GetToday()
	if err != nil {
		app.domainError(w, r, err)
		return
	}

	site, err := app.SiteRepo.GetByID(featured.SiteID)
	if err != nil {
		app.domainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, models.FeaturedSiteResponse{
		Date: featured.Date.Format(time.DateOnly),
		Site: site.Card(),
	})
}

// GET, POST /v1/components/{id}/votes - Read or cast votes on a poll
func (app *Application) componentVotes(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil || id < 1 {
		app.badRequest(w, r, errors.New("component id must be a positive integer"))
		return
	}

	switch r.Method {
	case http.MethodGet:
	case http.MethodPost:
		var req models.VoteRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			app.badJSONRequest(w, r, err)
			return
		}
		if err := app.Validator.Validate(req); err != nil {
			app.domainError(w, r, err)
			return
		}
		if _, err := app.ComponentRepo.CastVote(id, *req.Option); err != nil {
			app.domainError(w, r, err)
			return
		}
	default:
		w.Header().Set("Allow", "GET, POST")
		writeHandlerError(w, http.StatusMethodNotAllowed, HandlerError{
			ErrorName:        "Method Not Allowed",
			Description:      "GET or POST method required for this endpoint, you used: " + r.Method,
			PossibleSolution: "Use GET to read votes or POST to vote",
			CallerInfo:       getCallerInfo(),
		})
		return
	}

	tally, err := app.ComponentRepo.Votes(id)
	if err != nil {
		app.domainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tally)
}

// POST /v1/palette/preview - Describe an uploaded PNG or JPEG
func (app *Application) previewPalette(w http.ResponseWriter, r *http.Request) {
	if !app.requireMethod(w, r, http.MethodPost) {
		return
	}

	limit := app.Config.MaxUploadBytes
	if limit <= 0 {
		limit = defaultMaxUploadBytes
	}

	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, limit))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			app.badRequest(w, r, fmt.Errorf("image exceeds %d bytes", limit))
			return
		}
		app.badRequest(w, r, err)
		return
	}

	desc, err := app.Palette.DescribeImage(data)
	if err != nil {
		app.domainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, desc)
}

// POST /v1/auth/login - Operator login, sets the access cookie
func (app *Application) login(w http.ResponseWriter, r *http.Request) {
	if !app.requireMethod(w, r, http.MethodPost) {
		return
	}

	var creds models.Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		app.badJSONRequest(w, r, err)
		return
	}
	if err := app.Validator.Validate(creds); err != nil {
		app.domainError(w, r, err)
		return
	}

	operator, err := app.OperatorRepo.ValidateAndGet(creds)
	if err != nil {
		if domainerrors.CodeOf(err) == domainerrors.CodeUnauthorized {
			app.invalidCredentials(w, r, err)
			return
		}
		app.domainError(w, r, err)
		return
	}

	accessExpiry := time.Now().Add(time.Second * time.Duration(app.Config.JwtAccessDuration))
	accessToken, err := models.NewAccessToken(operator, app.Config.JwtSecret, accessExpiry)
	if err != nil {
		app.domainError(w, r, err)
		return
	}

	sameSite := http.SameSiteStrictMode
	if app.Config.JwtDomain == "" {
		sameSite = http.SameSiteNoneMode
	}

	http.SetCookie(w, &http.Cookie{
		Name:     models.JWT.ACCESS_COOKIE_NAME,
		Value:    accessToken,
		HttpOnly: true,
		Secure:   true,
		SameSite: sameSite,
		Path:     "/",
		Domain:   app.Config.JwtDomain,
		Expires:  accessExpiry,
	})

	app.Logger.Info("operator logged in", "operator_id", operator.OperatorID)
	writeJSON(w, http.StatusOK, operator)
}

// DELETE /v1/admin/sites/{username} - Remove a site and its components
func (app *Application) deleteSite(w http.ResponseWriter, r *http.Request) {
	if !app.requireMethod(w, r, http.MethodDelete) {
		return
	}

	username := sitegen.NormalizeHandle(r.PathValue("username"))
	if err := app.SiteRepo.Delete(username); err != nil {
		app.domainError(w, r, err)
		return
	}

	app.Logger.Info("site deleted", "username", username)
	w.WriteHeader(http.StatusNoContent)
}

// POST /v1/admin/featured/generate - Pick today's featured site now
func (app *Application) generateFeaturedSite(w http.ResponseWriter, r *http.Request) {
	if !app.requireMethod(w, r, http.MethodPost) {
		return
	}

	featured, err := app.Featured.GenerateFeaturedSite()
	if err != nil {
		app.domainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, featured)
}
