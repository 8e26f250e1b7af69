// Package util provides shared helpers used across dogql packages.
//
//   - TruncateBody: cap upstream bodies before they reach logs or error messages
package util
