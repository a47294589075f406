package interfaces

// This file contains compile-time interface implementation checks.
// These ensure that concrete types satisfy their interfaces at compile time,
// catching missing methods before runtime.

import (
	"libroteca/internal/storage"
	"libroteca/internal/storage/providers/localdisk"
	"libroteca/internal/store"
	"libroteca/internal/store/dbstore"
	"libroteca/internal/store/filestore"
)

// =============================================================================
// Data Access Layer
// =============================================================================

// BookStore implementations
var _ store.BookStore = (*filestore.BookStore)(nil)
var _ store.BookStore = (*dbstore.BookStore)(nil)

// UserStore implementations
var _ store.UserStore = (*filestore.UserStore)(nil)
var _ store.UserStore = (*dbstore.UserStore)(nil)

// AuthStore implementations
var _ store.AuthStore = (*filestore.AuthStore)(nil)
var _ store.AuthStore = (*dbstore.AuthStore)(nil)

// =============================================================================
// Blob Storage
// =============================================================================

// Uploader implementations
var _ storage.Uploader = (*localdisk.Client)(nil)
