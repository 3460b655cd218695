// Package shared holds helpers used across gunstats packages that belong to
// no single layer. Its testutil subpackage provides log capture and input
// fixtures for tests.
package shared
