// Package internal contains helper utilities that are intentionally private to goVerify,
// including secure random code generation and digest helpers.
//
// # What this package must NOT do
//
//   - Export types that appear in the public goVerify API.
//   - Be imported by any package outside the goVerify module.
package internal
