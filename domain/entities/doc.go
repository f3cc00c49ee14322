// Package entities provides core domain entities for the SDK.
// These are plain value types shared by the ABI bridge, the load negotiator
// and the host tooling. They carry no behaviour that touches host memory.
package entities
