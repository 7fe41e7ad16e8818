package core

import "github.com/fox-one/pkg/store/db"

// Transactor runs fn inside one database transaction; fn returning an
// error rolls every write back. *db.DB satisfies it directly.
type Transactor interface {
	Tx(fn func(tx *db.DB) error) error
}
