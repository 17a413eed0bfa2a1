package health

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type stubChecker struct {
	name string
	err  error
}

func (s stubChecker) Name() string                { return s.name }
func (s stubChecker) Check(context.Context) error { return s.err }

func TestReady(t *testing.T) {
	assert.NoError(t, NewService().Ready(context.Background()))
	assert.NoError(t, NewService(stubChecker{name: "postgres"}).Ready(context.Background()))

	down := errors.New("connection refused")
	err := NewService(
		stubChecker{name: "postgres"},
		stubChecker{name: "redis", err: down},
		stubChecker{name: "mongo", err: errors.New("timeout")},
	).Ready(context.Background())

	assert.ErrorIs(t, err, down)
	assert.ErrorContains(t, err, "redis: connection refused")
	assert.ErrorContains(t, err, "mongo: timeout")
	assert.NotContains(t, err.Error(), "postgres")
}
