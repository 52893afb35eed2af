/*
Copyright © 2024 Acronis International GmbH.

Released under MIT license.
*/

// Package logtest provides a log.FieldLogger implementation for testing logging behavior.
// The approach follows httptest (https://golang.org/pkg/net/http/httptest) from the Go standard library.
package logtest
