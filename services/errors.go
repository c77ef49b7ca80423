package services

import (
	"errors"
	"sort"
	"strings"
)

// Code — стабильный код ошибки, по которому вызывающая сторона (и тесты)
// различают причину отказа, а не только сам факт.
type Code string

const (
	CodeValidation      Code = "VALIDATION"
	CodeConflict        Code = "CONFLICT"
	CodeNotFound        Code = "NOT_FOUND"
	CodeForbidden       Code = "FORBIDDEN"
	CodeUnauthenticated Code = "UNAUTHENTICATED"
	CodeUnauthorized    Code = "UNAUTHORIZED"
	CodeUnavailable     Code = "SERVICE_UNAVAILABLE"

	CodeTournamentNotFound     Code = "TOURNAMENT_NOT_FOUND"
	CodeRegistrationNotStarted Code = "REGISTRATION_NOT_STARTED"
	CodeRegistrationClosed     Code = "REGISTRATION_CLOSED"
	CodeNeedTeam               Code = "NEED_TEAM"
	CodeTeamNotApproved        Code = "TEAM_NOT_APPROVED"
	CodeTournamentFull         Code = "TOURNAMENT_FULL"
	CodeAlreadyRegistered      Code = "ALREADY_REGISTERED"
)

// Error — доменная ошибка с кодом и сообщением для клиента.
type Error struct {
	Code    Code
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func newError(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Общие ошибки, используемые в разных сервисах и маппинге HTTP.
var (
	ErrValidationFailed = newError(CodeValidation, "validation failed")

	// Аутентификация и авторизация
	ErrUnauthenticated    = newError(CodeUnauthenticated, "missing bearer token")
	ErrUnauthorized       = newError(CodeUnauthorized, "invalid or expired token")
	ErrAccountMissing     = newError(CodeUnauthorized, "account does not exist")
	ErrForbiddenOperation = newError(CodeForbidden, "operation not allowed for the current user")
	ErrAdminRequired      = newError(CodeForbidden, "admin role required")

	// Команды
	ErrTeamNotFound      = newError(CodeNotFound, "team not found")
	ErrTeamAlreadyExists = newError(CodeConflict, "you already have a team")
	ErrTeamNameConflict  = newError(CodeConflict, "team name is already taken")
	ErrTeamSlugConflict  = newError(CodeConflict, "team slug already exists")
	ErrTeamPendingLocked = newError(CodeForbidden, "team is under review: only logo and banner can be changed")

	// Турниры
	ErrTournamentNotFound     = newError(CodeTournamentNotFound, "tournament not found")
	ErrTournamentSlugConflict = newError(CodeConflict, "tournament slug already exists")

	// Регистрация
	ErrRegistrationNotStarted = newError(CodeRegistrationNotStarted, "registration has not started yet")
	ErrRegistrationClosed     = newError(CodeRegistrationClosed, "registration is closed")
	ErrNeedTeam               = newError(CodeNeedTeam, "you need to create a team before registering")
	ErrTeamNotApproved        = newError(CodeTeamNotApproved, "your team has not been approved yet")
	ErrTournamentFull         = newError(CodeTournamentFull, "tournament team limit has been reached")
	ErrAlreadyRegistered      = newError(CodeAlreadyRegistered, "your team is already registered for this tournament")

	// Аккаунты
	ErrAccountNotFound = newError(CodeNotFound, "user not found")

	// Внешние сервисы
	ErrMediaUnavailable    = newError(CodeUnavailable, "media storage is not configured")
	ErrIdentityUnavailable = newError(CodeUnavailable, "identity provider is not configured")
)

// ValidationError — ошибка валидации по полям.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Is позволяет сравнивать через errors.Is(err, ErrValidationFailed).
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidationFailed
}

// validator собирает ошибки по полям; первая ошибка поля сохраняется.
type validator struct {
	fields map[string]string
}

func (v *validator) check(ok bool, field, message string) {
	if ok {
		return
	}
	if v.fields == nil {
		v.fields = make(map[string]string)
	}
	if _, exists := v.fields[field]; !exists {
		v.fields[field] = message
	}
}

func (v *validator) err() error {
	if len(v.fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: v.fields}
}

// ErrorCode извлекает код доменной ошибки; пустая строка — ошибка не доменная.
func ErrorCode(err error) Code {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return CodeValidation
	}
	var derr *Error
	if errors.As(err, &derr) {
		return derr.Code
	}
	return ""
}
