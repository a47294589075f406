// Package interfaces holds compile-time interface implementation
// checks. It carries no runtime code.
package interfaces
