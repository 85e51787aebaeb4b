package classpath

import (
	_ "embed"
	"sync"
)

// CoreOrigin names the embedded core library in class origins and
// diagnostics.
const CoreOrigin = "<core>"

//go:embed corelib.toml
var corelibTOML []byte

var (
	coreOnce sync.Once
	coreLib  *Manifest
	coreErr  error
)

// Core returns the embedded core library. The manifest is decoded once
// and shared; callers must not modify it.
func Core() (*Manifest, error) {
	coreOnce.Do(func() {
		coreLib, coreErr = Decode(FormatTOML, corelibTOML)
	})
	return coreLib, coreErr
}
