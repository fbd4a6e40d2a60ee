package messaging

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConnectNATSReportsUnreachableServer(t *testing.T) {
	_, err := ConnectNATS("nats://127.0.0.1:1", "condogov-test", nil)

	assert.ErrorContains(t, err, "connect to NATS")
}

func TestNATSCloseNilIsNoop(t *testing.T) {
	var bus *NATS
	assert.NoError(t, bus.Close())
}
