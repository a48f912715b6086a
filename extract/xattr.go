package extract

import (
	"strconv"

	"github.com/pkg/xattr"

	v7 "github.com/v7fs/go-v7fs/filesystem/v7"
)

// xattr names carrying source metadata the host tree cannot express
// (original inode number, numeric owner on the source system)
const (
	xattrInode = "user.v7fs.inode"
	xattrUID   = "user.v7fs.uid"
	xattrGID   = "user.v7fs.gid"
)

// tagSource records the source inode identity on an extracted file as
// extended attributes. Best effort: filesystems without xattr support
// just produce a debug line.
func (e *Extractor) tagSource(hostPath string, in *v7.Inode) {
	attrs := []struct {
		name  string
		value uint32
	}{
		{xattrInode, in.Number},
		{xattrUID, uint32(in.UID)},
		{xattrGID, uint32(in.GID)},
	}
	for _, a := range attrs {
		if err := xattr.Set(hostPath, a.name, []byte(strconv.FormatUint(uint64(a.value), 10))); err != nil {
			e.log.Debugf("could not set %s on %s: %v", a.name, hostPath, err)
			return
		}
	}
}
