package tasks

import "errors"

var (
	ErrUnknownPackageManager = errors.New("unknown package manager: none of dpkg, rpm or brew found")
	ErrRunAsRoot             = errors.New("refusing to run as root")
	ErrComposeVersion        = errors.New("docker-compose version too old")
	ErrComposeFile           = errors.New("invalid docker-compose file")
)
