package records

import (
	"fmt"
	"os"
)

// Location names the directory a resolver picked.
type Location string

const (
	LocationRemote Location = "remote"
	LocationLocal  Location = "local"
)

// Resolver picks the directory holding record files. Implementations are
// consulted on every store access so a directory that appears mid-session is
// picked up without restart.
type Resolver interface {
	Resolve() (string, Location, error)
}

// ProbeFunc reports whether dir can be used, creating it if needed.
type ProbeFunc func(dir string) error

// DirResolver prefers Remote when it is configured and passes Probe, and
// falls back to Local otherwise.
type DirResolver struct {
	Remote string
	Local  string
	Probe  ProbeFunc
}

// NewDirResolver returns a resolver using ProbeWritable.
func NewDirResolver(remote, local string) *DirResolver {
	return &DirResolver{Remote: remote, Local: local, Probe: ProbeWritable}
}

// Resolve returns the active directory and which location it is.
func (r *DirResolver) Resolve() (string, Location, error) {
	probe := r.Probe
	if probe == nil {
		probe = ProbeWritable
	}

	if r.Remote != "" && probe(r.Remote) == nil {
		return r.Remote, LocationRemote, nil
	}

	if r.Local == "" {
		return "", "", ErrNoDirectory
	}

	if err := os.MkdirAll(r.Local, 0o755); err != nil {
		return "", "", fmt.Errorf("%w: %w", ErrNoDirectory, err)
	}

	return r.Local, LocationLocal, nil
}

// Dir returns the active directory.
func (r *DirResolver) Dir() (string, error) {
	dir, _, err := r.Resolve()

	return dir, err
}

// Location returns which directory is currently active. An unusable
// configuration reports LocationLocal.
func (r *DirResolver) Location() Location {
	_, location, err := r.Resolve()
	if err != nil {
		return LocationLocal
	}

	return location
}

// ProbeWritable creates dir if missing and checks that a file can be written in it.
func ProbeWritable(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	f, err := os.CreateTemp(dir, ".probe-*")
	if err != nil {
		return err
	}

	name := f.Name()

	if err := f.Close(); err != nil {
		os.Remove(name)

		return err
	}

	return os.Remove(name)
}
