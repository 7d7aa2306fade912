// Package mocks provides mock implementations for testing the authorization core.
//
// Generated mocks use go.uber.org/mock (gomock) for type-safe expectations on
// the port interfaces. Regenerate after interface changes with:
//
//	go generate ./internal/mocks
//
// Hand-written lightweight doubles live in the authority subpackage for tests
// that don't need gomock's expectation machinery.
package mocks

// Generate mock for AuthorityClient interface from internal/ports.
// This creates MockAuthorityClient with a Join method.
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=authority_client_mock.go github.com/learning-at-home/dalle/internal/ports AuthorityClient

// Generate mock for TokenAuthorizer interface from internal/ports.
// This creates MockTokenAuthorizer with GetToken, IsTokenValid, and
// DoesTokenNeedRefreshing methods.
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=token_authorizer_mock.go github.com/learning-at-home/dalle/internal/ports TokenAuthorizer
