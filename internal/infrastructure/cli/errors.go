package cli

import (
	"errors"
	"fmt"

	"github.com/felixgeelhaar/boardflow/internal/infrastructure/config"
	"github.com/felixgeelhaar/boardflow/internal/infrastructure/jira"
	"github.com/felixgeelhaar/boardflow/pkg/domain/board"
	"github.com/felixgeelhaar/boardflow/pkg/storage"
)

// CLIError wraps domain errors with user-facing messages and actionable hints.
type CLIError struct {
	Message  string
	Hint     string
	Err      error
	ExitCode int
}

func (e *CLIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *CLIError) Unwrap() error {
	return e.Err
}

// NewCLIError creates a CLIError with a default exit code of 1.
func NewCLIError(msg, hint string, err error) *CLIError {
	return &CLIError{
		Message:  msg,
		Hint:     hint,
		Err:      err,
		ExitCode: 1,
	}
}

// MapError converts known domain errors into CLIErrors with actionable hints.
// Unmapped errors are returned as-is.
func MapError(err error) error {
	if err == nil {
		return nil
	}

	var cliErr *CLIError
	if errors.As(err, &cliErr) {
		return err
	}

	var cfgErr *config.ConfigError
	if errors.As(err, &cfgErr) {
		return &CLIError{
			Message:  "invalid configuration",
			Hint:     fmt.Sprintf("Fix '%s' in %s or the matching BOARDFLOW_ variable", cfgErr.Field, config.FileName),
			Err:      err,
			ExitCode: 2,
		}
	}

	switch {
	case errors.Is(err, jira.ErrMissingSite):
		return &CLIError{Message: "jira site not configured", Hint: "Set JIRA_SITE or pass --site", Err: err, ExitCode: 2}
	case errors.Is(err, jira.ErrMissingCredentials):
		return &CLIError{Message: "jira credentials not configured", Hint: "Set JIRA_EMAIL and JIRA_API_TOKEN (or JIRA_OAUTH_TOKEN)", Err: err, ExitCode: 2}
	case errors.Is(err, jira.ErrUnauthorized):
		return NewCLIError("not authorized (401)", "Check JIRA_EMAIL and JIRA_API_TOKEN", err)
	case errors.Is(err, jira.ErrForbidden):
		return NewCLIError("access denied (403)", "Check that the token can browse the board", err)
	case errors.Is(err, jira.ErrNotFound):
		return NewCLIError("board not found (404)", "Check the board id and site", err)
	case errors.Is(err, config.ErrUnknownBoard):
		return &CLIError{Message: "unknown board", Hint: "Pass a numeric board id or define board_aliases in " + config.FileName, Err: err, ExitCode: 2}
	case errors.Is(err, board.ErrInvalidPayload), errors.Is(err, board.ErrInvalidTimestamp):
		return NewCLIError("invalid board payload", "Re-run 'boardflow extract' or check the payload file", err)
	case errors.Is(err, storage.ErrNoReport):
		return NewCLIError("no report found", "Run 'boardflow extract' first or point at a report directory", err)
	case errors.Is(err, config.ErrConfigExists):
		return NewCLIError("config file already exists", "Use --force to overwrite", err)
	}

	return err
}
