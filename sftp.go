// Package sftp implements the client side of the SSH File Transfer
// Protocol version 3, as described in
// https://filezilla-project.org/specs/draft-ietf-secsh-filexfer-02.txt,
// layered on an established SSH session channel.
package sftp

import (
	"github.com/ankerfs/sftp/internal/wire"
)

// ProtocolVersion is the SFTP protocol version this package negotiates
// and speaks. Servers announcing an older version are rejected; newer
// servers are expected to fall back to version 3 semantics.
const ProtocolVersion = wire.ProtocolVersion
