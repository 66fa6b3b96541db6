// Package store provides generic persistence for entities addressed by an
// int64 id. A Repository is built from a Table description and a Dialect;
// it borrows a Session (a *sql.DB or *sql.Tx) for each call and never keeps
// one. OwnedRepository adds owner-stamped creation and owner-filtered
// listing for entities that belong to a user.
package store
