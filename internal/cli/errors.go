package cli

import "errors"

var (
	errMultipleReposNotSupported = errors.New("--repo can only be used with a single package argument")
	errDevelopRequiresPath       = errors.New("develop requires --path")
	errUnknownGraphFormat        = errors.New("--format must be one of: dot, svg, png")
)
