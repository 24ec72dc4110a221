package rpm

import (
	"fmt"
	"strings"
)

// Dependency comparison flags, as stored in RequireFlags and ProvideFlags.
const (
	DepLess    uint32 = 1 << 1
	DepGreater uint32 = 1 << 2
	DepEqual   uint32 = 1 << 3
)

// Dependency is one provide or require.
type Dependency struct {
	Name    string `mapstructure:"name"`
	Flags   uint32 `mapstructure:"flags"`
	Version string `mapstructure:"version"`
}

var depOperators = []struct {
	op    string
	flags uint32
}{
	{"<=", DepLess | DepEqual},
	{">=", DepGreater | DepEqual},
	{"<", DepLess},
	{">", DepGreater},
	{"=", DepEqual},
}

// ParseDependency parses "name", "name = 1.0" or "name >= 1.0-2".
func ParseDependency(s string) (Dependency, error) {
	fields := strings.Fields(s)
	switch len(fields) {
	case 1:
		return Dependency{Name: fields[0]}, nil
	case 3:
		for _, o := range depOperators {
			if fields[1] == o.op {
				return Dependency{Name: fields[0], Flags: o.flags, Version: fields[2]}, nil
			}
		}
		return Dependency{}, fmt.Errorf("%w: unknown operator %q in %q", ErrInvalidConfig, fields[1], s)
	default:
		return Dependency{}, fmt.Errorf("%w: malformed dependency %q", ErrInvalidConfig, s)
	}
}

// String renders d the way ParseDependency reads it.
func (d Dependency) String() string {
	if d.Version == "" {
		return d.Name
	}
	for _, o := range depOperators {
		if d.Flags&(DepLess|DepGreater|DepEqual) == o.flags {
			return d.Name + " " + o.op + " " + d.Version
		}
	}
	return d.Name + " ? " + d.Version
}
