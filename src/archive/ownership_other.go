//go:build !unix

package archive

// FixOwnership is a no-op on platforms without unix ownership semantics.
func FixOwnership(path, ref string) error {
	return nil
}
