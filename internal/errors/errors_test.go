package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"statcalc/domain/core"

	"github.com/stretchr/testify/assert"
)

func TestCodeForAndExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code string
		exit int
	}{
		{"nil", nil, "", 0},
		{"parse", core.NewParseError("x", "abc"), CodeParse, 2},
		{"insufficient", core.NewInsufficientParametersError("two unknowns", "x", "mu"), CodeInsufficientParameters, 3},
		{"ambiguous", core.NewAmbiguousInputError("both given", "sigma", "s"), CodeAmbiguousInput, 4},
		{"domain", core.NewDomainError("n", "must be positive"), CodeDomain, 5},
		{"non-convergence", core.NewNonConvergenceError("n", 200), CodeNonConvergence, 6},
		{"wrapped domain", fmt.Errorf("solve: %w", core.NewDomainError("p", "outside [0, 1]")), CodeDomain, 5},
		{"app error", NotFound("calculator foo"), CodeNotFound, 1},
		{"plain", stderrors.New("boom"), CodeInternalError, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, CodeFor(tt.err))
			assert.Equal(t, tt.exit, ExitCode(tt.err))
		})
	}
}

func TestWrapPreservesCode(t *testing.T) {
	err := Wrap(ConfigInvalid("PORT is empty"), "failed to load server configuration")
	assert.Equal(t, CodeConfigInvalid, GetCode(err))
	assert.Contains(t, err.Error(), "PORT is empty")

	err = Wrapf(core.NewParseError("alpha", "x"), "reading %s", "alpha")
	assert.Equal(t, CodeParse, GetCode(err))
	assert.True(t, core.IsParseError(err))

	assert.Nil(t, Wrap(nil, "ignored"))
}

func TestFileError(t *testing.T) {
	cause := stderrors.New("no such file")
	err := FileError("data.csv", cause)
	assert.Equal(t, CodeFileError, CodeFor(err))
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, 1, ExitCode(err))
}
