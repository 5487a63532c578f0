package sftp

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRequestIDAllocation(t *testing.T) {
	c := new(clientConn)

	assert.Equal(t, uint32(1), c.nextID(), "ids start at 1")
	assert.Equal(t, uint32(2), c.nextID())

	c.reqid.Store(math.MaxUint32)
	assert.Equal(t, uint32(0), c.nextID(), "the id counter wraps")
	assert.Equal(t, uint32(1), c.nextID())
}

func TestDisconnectIdempotent(t *testing.T) {
	c := new(clientConn)
	c.inflight = make(map[uint32]chan<- result)

	ch := make(chan result, 1)
	c.inflight[1] = ch

	c.disconnect(ErrConnectionClosed)
	c.disconnect(assert.AnError) // later causes are ignored

	res := <-ch
	assert.ErrorIs(t, res.err, ErrConnectionClosed)
	assert.Empty(t, c.inflight, "the close sweep leaves nothing pending")
	assert.ErrorIs(t, c.err, ErrConnectionClosed)
}
