package compose

import (
	composetypes "github.com/compose-spec/compose-go/v2/types"
)

// LocalBuildDir returns the local build directory for a compose service.
// ok is false when the service has no build section; that is not an error.
// Context read failures and ErrCannotDeriveName are returned unchanged.
func LocalBuildDir(svc composetypes.ServiceConfig) (dir string, ok bool, err error) {
	if svc.Build == nil {
		return "", false, nil
	}
	ctx, err := ReadContext(svc.Build)
	if err != nil {
		return "", false, err
	}
	dir, err = GitToLocal(ctx)
	if err != nil {
		return "", false, err
	}
	return dir, true, nil
}
