package sftp

import (
	"path"

	"github.com/kr/fs"
)

// Walk returns a new Walker rooted at root that descends the remote
// tree, visiting each directory's entries in the order the server
// lists them.
func (cl *Client) Walk(root string) *fs.Walker {
	return fs.WalkFS(root, cl)
}

// Join joins any number of path elements into a single path, separated
// by forward slashes as the remote server expects.
func (cl *Client) Join(elem ...string) string {
	return path.Join(elem...)
}
