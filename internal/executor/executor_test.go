package executor

import (
	"errors"
	"testing"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/iiivansss84/rehydrate/internal/registry"
)

func newExecutor() *Executor {
	return New(clockwork.NewFakeClock(), nil, zerolog.Nop())
}

func TestExecutor_ExecuteSuccess(t *testing.T) {
	e := newExecutor()
	reg := registry.Registration{Key: "k", Fn: func() (any, error) { return 42, nil }}

	v, err := e.Execute(reg)
	require.NoError(t, err)
	require.Equal(t, 42, v)
}

func TestExecutor_ExecutePropagatesError(t *testing.T) {
	e := newExecutor()
	boom := errors.New("boom")
	reg := registry.Registration{Key: "k", Fn: func() (any, error) { return nil, boom }}

	v, err := e.Execute(reg)
	require.ErrorIs(t, err, boom)
	require.Nil(t, v)
}

func TestExecutor_RecoversPanicIntoCrashError(t *testing.T) {
	e := newExecutor()
	reg := registry.Registration{Key: "k", Fn: func() (any, error) {
		panic("unexpected")
	}}

	v, err := e.Execute(reg)
	require.Error(t, err)
	require.Nil(t, v)

	var crashErr *CrashError
	require.ErrorAs(t, err, &crashErr)
	require.Contains(t, crashErr.Detail, "unexpected")
}
