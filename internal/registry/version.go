package registry

import (
	"fmt"
	"runtime"
)

const (
	// SDKName identifies this client to the registry.
	SDKName = "AppLinksSDK-Go"
	// SDKVersion is the client version reported to the registry.
	SDKVersion = "1.0.6"
)

// UserAgent returns the User-Agent sent with every request.
func UserAgent() string {
	return fmt.Sprintf("%s/%s (%s)", SDKName, SDKVersion, runtime.GOOS)
}
