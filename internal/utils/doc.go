// Package utils provides small helpers shared across the application,
// such as path expansion, case-insensitive matching, URL host checks,
// and the User-Agent provider used to disguise headless browsers.
package utils
