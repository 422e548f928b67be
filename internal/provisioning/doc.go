// Package provisioning orchestrates the ordered phases that take a demo
// environment from an empty sandbox to a ready platform: DNS delegation,
// cluster installs, registry setup, source repositories, secret and IAM
// provisioning, and webhook registration.
//
// Each phase is idempotent. A failed run is recovered by fixing the cause
// and re-running the pipeline; completed phases converge on the existing
// resources instead of duplicating them.
package provisioning
