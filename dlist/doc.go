/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

// Package dlist provides a generic doubly linked list with O(1) insertion,
// removal, and repositioning of nodes.
package dlist
