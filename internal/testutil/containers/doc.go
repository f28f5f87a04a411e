// Package containers provides throwaway broker and database instances for
// integration tests, backed by testcontainers. Everything here is behind the
// integration build tag; unit tests never pull in Docker.
package containers
