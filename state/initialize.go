package state

import (
	_ "embed"
	"time"
)

// Stylesheets used when configuration does not name any.
var (
	//go:embed stylesheets/bootstrap-email.css
	defaultStylesheet []byte
	//go:embed stylesheets/head.css
	defaultHeadStylesheet []byte
)

// newLocalEnv creates a new LocalEnv instance with default values
func newLocalEnv() *LocalEnv {
	return &LocalEnv{
		start:                 time.Now(),
		DefaultStylesheet:     defaultStylesheet,
		DefaultHeadStylesheet: defaultHeadStylesheet,
	}
}
