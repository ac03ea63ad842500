// Package mock provides test doubles for the ai interfaces.
//
// The default mock embedder produces deterministic unit vectors derived from
// an FNV hash of the input text, so similarity comparisons behave
// consistently across test runs. Function fields allow injecting failures
// or custom vectors per test.
package mock
