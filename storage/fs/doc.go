// Package fs implements storage.DocumentStore over a local directory.
//
// The store is flat: documents are addressed by bare file name and only
// files ending in .pdf are visible. Names carrying path separators, hidden
// names and other extensions are rejected with storage.ErrInvalidName before
// the filesystem is touched.
package fs
