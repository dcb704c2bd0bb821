//go:build unix

package archive

import (
	"os"
	"syscall"
)

// FixOwnership makes path owned by the owner of ref, so archives written by
// a root-run backup job stay under the control of the ClickHouse server user
// owning the backup directory. Without root privileges this is a no-op.
func FixOwnership(path, ref string) error {
	if os.Geteuid() != 0 {
		return nil
	}
	info, err := os.Stat(ref)
	if err != nil {
		return err
	}
	st, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return nil
	}
	return os.Chown(path, int(st.Uid), int(st.Gid))
}
