package bootstrap

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeAddr(t *testing.T) {
	assert.Equal(t, ":8080", normalizeAddr(""))
	assert.Equal(t, ":9090", normalizeAddr(" 9090 "))
	assert.Equal(t, ":7000", normalizeAddr(":7000"))
}

func TestBuildAPIRequiresPostgresDSN(t *testing.T) {
	t.Setenv("POSTGRES_DSN", "")

	_, err := BuildAPI()

	assert.EqualError(t, err, "POSTGRES_DSN is required")
}

func TestBuildWorkerRequiresPostgresDSN(t *testing.T) {
	t.Setenv("POSTGRES_DSN", "")

	_, err := BuildWorker()

	assert.EqualError(t, err, "POSTGRES_DSN is required")
}
