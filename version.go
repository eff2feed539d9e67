package optiman

// Version is the opengen code-generator version this client tracks.
// Overridable at build time:
//
//	go build -ldflags "-X github.com/optiman/optiman.Version=x.y.z"
//
// A descriptor stamped with a different build.opengen_version triggers an
// advisory warning at construction; it never gates an operation.
var Version = "0.8.1"
