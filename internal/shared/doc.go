// Package shared groups helpers used by several internal packages. Its
// testutil subpackage holds log capture and table fixtures for tests.
package shared
