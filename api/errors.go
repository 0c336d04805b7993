package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"path/filepath"
	"runtime"

	domainerrors "github.com/aura-site/api/errors"
)

// Helper function to get caller information
func getCallerInfo() string {
	_, file, line, ok := runtime.Caller(2)
	if !ok {
		return "[unknown]"
	}
	return fmt.Sprintf("[%s:%d]", filepath.Base(file), line)
}

type HandlerError struct {
	ErrorName        string `json:"errorName"`
	Description      string `json:"description"`
	PossibleSolution string `json:"possibleSolution"`
	CallerInfo       string `json:"callerInfo"`
	Code             string `json:"code,omitempty"`
	Details          any    `json:"details,omitempty"`
}

func writeHandlerError(w http.ResponseWriter, status int, handlerErr HandlerError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(handlerErr)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func (app *Application) invalidCredentials(w http.ResponseWriter, r *http.Request, err error) {
	writeHandlerError(w, http.StatusUnauthorized, HandlerError{
		ErrorName:        "Error Authorizing Operator",
		Description:      err.Error(),
		PossibleSolution: "Retry with proper credentials",
		CallerInfo:       getCallerInfo(),
		Code:             string(domainerrors.CodeUnauthorized),
	})
}

func (app *Application) invalidAuthorization(w http.ResponseWriter, r *http.Request, err error) {
	app.Logger.Debug("rejected operator request", "path", r.URL.Path, "error", err)
	writeHandlerError(w, http.StatusUnauthorized, HandlerError{
		ErrorName:        "Error Authenticating for Endpoint",
		Description:      "Invalid Authentication",
		PossibleSolution: "Log in as an operator and retry with the access cookie",
		CallerInfo:       getCallerInfo(),
		Code:             string(domainerrors.CodeUnauthorized),
	})
}

// requireMethod answers 405 and reports false unless r uses method.
func (app *Application) requireMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method == method {
		return true
	}
	w.Header().Set("Allow", method)
	writeHandlerError(w, http.StatusMethodNotAllowed, HandlerError{
		ErrorName:        method + " Method Required",
		Description:      fmt.Sprintf("%s method required for this endpoint, you used: %s", method, r.Method),
		PossibleSolution: "Use " + method + " method",
		CallerInfo:       getCallerInfo(),
	})
	return false
}

func (app *Application) badJSONRequest(w http.ResponseWriter, r *http.Request, err error) {
	writeHandlerError(w, http.StatusBadRequest, HandlerError{
		ErrorName:        "Error Parsing JSON",
		Description:      err.Error(),
		PossibleSolution: "Double check your JSON formatting",
		CallerInfo:       getCallerInfo(),
		Code:             string(domainerrors.CodeValidation),
	})
}

func (app *Application) badRequest(w http.ResponseWriter, r *http.Request, err error) {
	writeHandlerError(w, http.StatusBadRequest, HandlerError{
		ErrorName:        "Bad Request",
		Description:      err.Error(),
		PossibleSolution: "Check your request parameters",
		CallerInfo:       getCallerInfo(),
		Code:             string(domainerrors.CodeValidation),
	})
}

func (app *Application) tooManyRequests(w http.ResponseWriter, r *http.Request) {
	writeHandlerError(w, http.StatusTooManyRequests, HandlerError{
		ErrorName:        "Too Many Requests",
		Description:      "rate limit exceeded",
		PossibleSolution: "Wait a minute before trying again",
		CallerInfo:       getCallerInfo(),
		Code:             string(domainerrors.CodeRateLimited),
	})
}

// errorNames gives each code a title and a hint for the client.
var errorNames = map[domainerrors.Code][2]string{
	domainerrors.CodeValidation:        {"Validation Error", "Check your request parameters"},
	domainerrors.CodeNotFound:          {"Not Found", "Check the handle or id and try again"},
	domainerrors.CodeConflict:          {"Conflict", "The resource already exists, fetch it instead"},
	domainerrors.CodeUnauthorized:      {"Unauthorized", "Retry with proper credentials"},
	domainerrors.CodeForbidden:         {"Forbidden", "This account cannot perform the action"},
	domainerrors.CodeUnsupportedFormat: {"Unsupported Image Format", "Upload a PNG or JPEG image"},
	domainerrors.CodeDecodeFailure:     {"Unreadable Content", "The image or upstream response could not be decoded"},
	domainerrors.CodeFetchFailure:      {"Upstream Failure", "An external service failed, try again later"},
	domainerrors.CodeRateLimited:       {"Too Many Requests", "Wait a minute before trying again"},
}

// domainError writes err with the status its code maps to. Internal errors
// are logged and hidden from the client.
func (app *Application) domainError(w http.ResponseWriter, r *http.Request, err error) {
	code := domainerrors.CodeOf(err)
	status := code.HTTPStatus()

	handlerErr := HandlerError{
		Description: err.Error(),
		CallerInfo:  getCallerInfo(),
		Code:        string(code),
	}
	var domainErr *domainerrors.Error
	if domainerrors.As(err, &domainErr) {
		handlerErr.Details = domainErr.Details
	}

	if names, ok := errorNames[code]; ok {
		handlerErr.ErrorName, handlerErr.PossibleSolution = names[0], names[1]
	} else {
		handlerErr.ErrorName = "Internal Server Error"
		handlerErr.Description = "internal server error"
		handlerErr.PossibleSolution = "Internal Server Error requiring support"
		handlerErr.Details = nil
	}

	if status >= http.StatusInternalServerError {
		app.Logger.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"code", code,
			"error", err,
		)
	} else {
		app.Logger.Debug("request rejected",
			"method", r.Method,
			"path", r.URL.Path,
			"code", code,
			"error", err,
		)
	}

	writeHandlerError(w, status, handlerErr)
}
