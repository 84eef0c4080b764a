package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

// mysqlDuplicateEntry is the MySQL error number for a unique key
// violation.
const mysqlDuplicateEntry = 1062

// isDuplicate reports whether err is a unique-constraint violation.
// Conditional inserts (billing cycles, emails) rely on this to turn a
// constraint hit into a domain error instead of a 500.
func isDuplicate(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == mysqlDuplicateEntry
}
