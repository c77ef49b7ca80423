package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/Dosada05/spikezone/middleware"
	"github.com/Dosada05/spikezone/services"
	"github.com/go-chi/chi/v5"
)

type jsonResponse map[string]interface{}

const (
	codeBadRequest = "BAD_REQUEST"
	codeInternal   = "INTERNAL"
)

func readJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	maxBytes := 1_048_576 // 1MB
	r.Body = http.MaxBytesReader(w, r.Body, int64(maxBytes))

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	err := dec.Decode(dst)
	if err != nil {
		var syntaxError *json.SyntaxError
		var unmarshalTypeError *json.UnmarshalTypeError
		var invalidUnmarshalError *json.InvalidUnmarshalError
		var maxBytesError *http.MaxBytesError

		switch {
		case errors.As(err, &syntaxError):
			return fmt.Errorf("body contains badly-formed JSON (at character %d)", syntaxError.Offset)
		case errors.Is(err, io.ErrUnexpectedEOF):
			return errors.New("body contains badly-formed JSON")
		case errors.As(err, &unmarshalTypeError):
			if unmarshalTypeError.Field != "" {
				return fmt.Errorf("body contains incorrect JSON type for field %q", unmarshalTypeError.Field)
			}
			return fmt.Errorf("body contains incorrect JSON type (at character %d)", unmarshalTypeError.Offset)
		case errors.Is(err, io.EOF):
			return errors.New("body must not be empty")
		case strings.HasPrefix(err.Error(), "json: unknown field "):
			fieldName := strings.TrimPrefix(err.Error(), "json: unknown field ")
			return fmt.Errorf("body contains unknown key %s", fieldName)
		case errors.As(err, &maxBytesError):
			return fmt.Errorf("body must not be larger than %d bytes", maxBytes)
		case errors.As(err, &invalidUnmarshalError):
			panic(err) // ошибка программиста: передан не указатель
		default:
			return err
		}
	}

	err = dec.Decode(&struct{}{})
	if !errors.Is(err, io.EOF) {
		return errors.New("body must only contain a single JSON value")
	}

	return nil
}

func writeJSON(w http.ResponseWriter, status int, data interface{}, headers http.Header) error {
	js, err := json.MarshalIndent(data, "", "\t")
	if err != nil {
		return err
	}
	js = append(js, '\n')

	for key, value := range headers {
		w.Header()[key] = value
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err = w.Write(js)
	return err
}

func errorResponse(w http.ResponseWriter, r *http.Request, status int, message interface{}, code string) {
	env := jsonResponse{"error": message, "code": code}
	if err := writeJSON(w, status, env, nil); err != nil {
		slog.ErrorContext(r.Context(), "failed to write error response", slog.Any("error", err))
		w.WriteHeader(http.StatusInternalServerError)
	}
}

func serverErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	slog.ErrorContext(r.Context(), "internal server error",
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.Any("error", err),
	)
	message := "the server encountered a problem and could not process your request"
	errorResponse(w, r, http.StatusInternalServerError, message, codeInternal)
}

func badRequestResponse(w http.ResponseWriter, r *http.Request, err error) {
	errorResponse(w, r, http.StatusBadRequest, err.Error(), codeBadRequest)
}

func failedValidationResponse(w http.ResponseWriter, r *http.Request, fields map[string]string) {
	errorResponse(w, r, http.StatusUnprocessableEntity, fields, string(services.CodeValidation))
}

func unauthorizedResponse(w http.ResponseWriter, r *http.Request) {
	err := services.ErrUnauthenticated
	errorResponse(w, r, http.StatusUnauthorized, err.Message, string(err.Code))
}

// statusByCode — HTTP-статус для каждого кода доменной ошибки.
var statusByCode = map[services.Code]int{
	services.CodeValidation:      http.StatusUnprocessableEntity,
	services.CodeConflict:        http.StatusConflict,
	services.CodeNotFound:        http.StatusNotFound,
	services.CodeForbidden:       http.StatusForbidden,
	services.CodeUnauthenticated: http.StatusUnauthorized,
	services.CodeUnauthorized:    http.StatusUnauthorized,
	services.CodeUnavailable:     http.StatusServiceUnavailable,

	services.CodeTournamentNotFound:     http.StatusNotFound,
	services.CodeNeedTeam:               http.StatusNotFound,
	services.CodeTeamNotApproved:        http.StatusForbidden,
	services.CodeRegistrationNotStarted: http.StatusConflict,
	services.CodeRegistrationClosed:     http.StatusConflict,
	services.CodeTournamentFull:         http.StatusConflict,
	services.CodeAlreadyRegistered:      http.StatusConflict,
}

// mapServiceErrorToHTTP преобразует ошибки сервисного слоя в HTTP-ответы.
// Всё, что не является доменной ошибкой, логируется и отдаётся как 500.
func mapServiceErrorToHTTP(w http.ResponseWriter, r *http.Request, err error) {
	var verr *services.ValidationError
	if errors.As(err, &verr) {
		failedValidationResponse(w, r, verr.Fields)
		return
	}

	code := services.ErrorCode(err)
	status, ok := statusByCode[code]
	if !ok {
		serverErrorResponse(w, r, err)
		return
	}
	errorResponse(w, r, status, err.Error(), string(code))
}

func getIDFromURL(r *http.Request, paramName string) (int, error) {
	idStr := chi.URLParam(r, paramName)
	if idStr == "" {
		return 0, fmt.Errorf("missing %s in URL path", paramName)
	}

	id, err := strconv.Atoi(idStr)
	if err != nil {
		return 0, fmt.Errorf("invalid %s format: %q", paramName, idStr)
	}
	if id <= 0 {
		return 0, fmt.Errorf("invalid %s value: %d", paramName, id)
	}
	return id, nil
}

// currentUID возвращает uid из контекста; false — маршрут без Authenticate.
func currentUID(r *http.Request) (string, bool) {
	id, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		return "", false
	}
	return id.UID, true
}
