// Package mock defines the apisim data model: projects, the collections
// inside them, the mock API definitions served by the gateway, and the
// request log records written for every served mock call.
//
// Management input is decoded into the *Input and *Patch types, which
// normalize and validate themselves before being turned into stored
// records. Validation failures are reported as *ValidationError.
package mock
