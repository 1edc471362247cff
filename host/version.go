package host

import (
	"fmt"

	"github.com/Masterminds/semver"

	mapp "github.com/metaview-dev/mapp-sdk"
	"github.com/metaview-dev/mapp-sdk/domain/errors"
)

// versionPolicy decides which guest binding versions a host accepts.
type versionPolicy struct {
	host       string
	constraint string
	exact      bool
}

func defaultVersionPolicy() versionPolicy {
	return versionPolicy{host: mapp.Version}
}

// DefaultConstraint returns the range of guest versions a host at version
// host accepts by default: the same major and minor, any patch.
func DefaultConstraint(host string) (string, error) {
	v, err := semver.NewVersion(host)
	if err != nil {
		return "", fmt.Errorf("parse host version %q: %w", host, err)
	}
	return fmt.Sprintf(">=%d.%d.0, <%d.%d.0", v.Major(), v.Minor(), v.Major(), v.Minor()+1), nil
}

// CompatibleWith reports whether a guest reporting guest may be driven by
// this host. The returned error is a *errors.VersionError.
func CompatibleWith(guest string, opts ...Option) error {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg.version.check(guest)
}

func (p versionPolicy) check(guest string) error {
	fail := func(constraint string, err error) error {
		return &errors.VersionError{Host: p.host, Guest: guest, Constraint: constraint, Err: err}
	}

	if p.exact {
		if guest != p.host {
			return fail(p.host, nil)
		}
		return nil
	}

	constraint := p.constraint
	if constraint == "" {
		var err error
		if constraint, err = DefaultConstraint(p.host); err != nil {
			return fail("", err)
		}
	}

	c, err := semver.NewConstraint(constraint)
	if err != nil {
		return fail(constraint, fmt.Errorf("parse constraint: %w", err))
	}
	v, err := semver.NewVersion(guest)
	if err != nil {
		return fail(constraint, fmt.Errorf("parse guest version: %w", err))
	}
	if !c.Check(v) {
		return fail(constraint, nil)
	}
	return nil
}
