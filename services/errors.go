package services

import (
	"errors"
	"fmt"

	"github.com/Dosada05/mytournaments/repositories"
	"github.com/Dosada05/mytournaments/viewmodels"
)

// Общие ошибки, используемые в разных сервисах и маппинге HTTP.
var (
	ErrValidationFailed = errors.New("validation failed")

	// Ресурс не найден
	ErrGameNotFound           = errors.New("game not found")
	ErrTeamNotFound           = errors.New("team not found")
	ErrPlayerNotFound         = errors.New("player not found")
	ErrSponsorNotFound        = errors.New("sponsor not found")
	ErrTournamentNotFound     = errors.New("tournament not found")
	ErrTournamentGameNotFound = errors.New("game is not part of the tournament")

	// Конфликты
	ErrConcurrencyConflict    = errors.New("the record was modified by another user")
	ErrGameInUse              = errors.New("game has teams and cannot be deleted")
	ErrGameNameConflict       = errors.New("game name is already in use")
	ErrSponsorNameConflict    = errors.New("sponsor name is already in use")
	ErrTournamentNameConflict = errors.New("tournament name already exists")
	ErrTournamentGameConflict = errors.New("game is already part of the tournament")
	ErrUserEmailConflict      = errors.New("email address is already in use")

	// Аутентификация
	ErrInvalidCredentials = errors.New("invalid email or password")

	// Хранилище файлов
	ErrStorageDisabled = errors.New("file storage is not configured")
	ErrInvalidUpload   = errors.New("invalid upload")
)

// invalidInput matches ErrValidationFailed with errors.Is and yields the
// field errors with errors.As.
type invalidInput struct {
	fields viewmodels.FieldErrors
}

func (e invalidInput) Error() string   { return e.fields.Error() }
func (e invalidInput) Unwrap() []error { return []error{ErrValidationFailed, e.fields} }

func validationError(errs viewmodels.FieldErrors) error {
	return invalidInput{fields: errs}
}

// FieldErrorsOf returns the field errors carried by err, if any.
func FieldErrorsOf(err error) viewmodels.FieldErrors {
	var fe viewmodels.FieldErrors
	if errors.As(err, &fe) {
		return fe
	}
	return nil
}

// handleRepositoryError переводит ошибки репозиториев в ошибки сервисов.
// Неизвестные ошибки оборачиваются с контекстом операции.
func handleRepositoryError(err error, op string) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, repositories.ErrGameNotFound):
		return ErrGameNotFound
	case errors.Is(err, repositories.ErrTeamNotFound):
		return ErrTeamNotFound
	case errors.Is(err, repositories.ErrPlayerNotFound):
		return ErrPlayerNotFound
	case errors.Is(err, repositories.ErrSponsorNotFound):
		return ErrSponsorNotFound
	case errors.Is(err, repositories.ErrTournamentNotFound):
		return ErrTournamentNotFound
	case errors.Is(err, repositories.ErrTournamentGameNotFound):
		return ErrTournamentGameNotFound
	case errors.Is(err, repositories.ErrConcurrencyConflict):
		return ErrConcurrencyConflict
	case errors.Is(err, repositories.ErrGameInUse):
		return ErrGameInUse
	case errors.Is(err, repositories.ErrGameNameConflict):
		return ErrGameNameConflict
	case errors.Is(err, repositories.ErrSponsorNameConflict):
		return ErrSponsorNameConflict
	case errors.Is(err, repositories.ErrTournamentNameConflict):
		return ErrTournamentNameConflict
	case errors.Is(err, repositories.ErrTournamentGameConflict):
		return ErrTournamentGameConflict
	case errors.Is(err, repositories.ErrTournamentGameInvalid):
		return ErrGameNotFound
	case errors.Is(err, repositories.ErrUserEmailConflict):
		return ErrUserEmailConflict
	case errors.Is(err, repositories.ErrTeamReferenceInvalid):
		return validationError(viewmodels.FieldErrors{{Field: "GameId", Message: "The selected game or sponsor does not exist."}})
	}
	return fmt.Errorf("%s: %w", op, err)
}
