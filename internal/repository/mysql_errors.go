package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

// MySQL error 1062: duplicate entry for a unique key.
const mysqlDuplicateEntry = 1062

func isDuplicate(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == mysqlDuplicateEntry
}
