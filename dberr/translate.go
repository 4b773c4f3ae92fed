package dberr

import (
	"context"
	"database/sql/driver"
	"errors"
	"net"
	"regexp"

	mysql "github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
	mssql "github.com/microsoft/go-mssqldb"
)

// sqlStateRegex matches SQLSTATE codes in messages like "(SQLSTATE 42601)".
var sqlStateRegex = regexp.MustCompile(`\(SQLSTATE ([0-9A-Z]{5})\)`)

// sqlStates holds exact SQLSTATE codes that differ from their class.
var sqlStates = map[string]Kind{
	"40001": KindConcurrency, // serialization_failure
	"40P01": KindDeadlock,
	"55P03": KindConcurrency, // lock_not_available
	"57014": KindTimeout,     // query_canceled
	"57P01": KindConnection,  // admin_shutdown
	"57P02": KindConnection,
	"57P03": KindConnection,
	"42501": KindPermission, // insufficient_privilege
	"HYT00": KindTimeout,
	"HYT01": KindTimeout,
}

// sqlStateClasses maps the two-character SQLSTATE class.
var sqlStateClasses = map[string]Kind{
	"08": KindConnection,
	"21": KindInvalidData, // cardinality violation
	"22": KindInvalidData,
	"23": KindDataIntegrity,
	"28": KindPermission,
	"40": KindConcurrency,
	"42": KindBadGrammar,
	"44": KindDataIntegrity,
}

var mysqlNumbers = map[uint16]Kind{
	1022: KindDataIntegrity,
	1048: KindDataIntegrity,
	1062: KindDataIntegrity,
	1216: KindDataIntegrity,
	1217: KindDataIntegrity,
	1451: KindDataIntegrity,
	1452: KindDataIntegrity,
	1557: KindDataIntegrity,
	1586: KindDataIntegrity,
	3819: KindDataIntegrity,
	1054: KindBadGrammar,
	1064: KindBadGrammar,
	1146: KindBadGrammar,
	1149: KindBadGrammar,
	1305: KindBadGrammar, // procedure does not exist
	1044: KindPermission,
	1045: KindPermission,
	1142: KindPermission,
	1143: KindPermission,
	1227: KindPermission,
	1213: KindDeadlock,
	1205: KindConcurrency, // lock wait timeout
	3024: KindTimeout,
	1264: KindInvalidData,
	1265: KindInvalidData,
	1292: KindInvalidData,
	1366: KindInvalidData,
	1406: KindInvalidData,
	1040: KindConnection,
	1053: KindConnection,
}

var mssqlNumbers = map[int32]Kind{
	515:   KindDataIntegrity,
	547:   KindDataIntegrity,
	2601:  KindDataIntegrity,
	2627:  KindDataIntegrity,
	102:   KindBadGrammar,
	156:   KindBadGrammar,
	207:   KindBadGrammar,
	208:   KindBadGrammar,
	2812:  KindBadGrammar, // could not find stored procedure
	8144:  KindBadGrammar, // too many arguments
	201:   KindBadGrammar, // expects parameter
	229:   KindPermission,
	230:   KindPermission,
	262:   KindPermission,
	18456: KindPermission,
	1205:  KindDeadlock,
	1222:  KindConcurrency,
	3960:  KindConcurrency, // snapshot isolation update conflict
	242:   KindInvalidData,
	245:   KindInvalidData,
	2628:  KindInvalidData,
	8114:  KindInvalidData,
	8115:  KindInvalidData,
	8152:  KindInvalidData,
	4060:  KindConnection,
}

var sqliteCodes = map[sqlite3.ErrNo]Kind{
	sqlite3.ErrConstraint: KindDataIntegrity,
	sqlite3.ErrError:      KindBadGrammar,
	sqlite3.ErrPerm:       KindPermission,
	sqlite3.ErrAuth:       KindPermission,
	sqlite3.ErrReadonly:   KindPermission,
	sqlite3.ErrBusy:       KindConcurrency,
	sqlite3.ErrLocked:     KindConcurrency,
	sqlite3.ErrMismatch:   KindInvalidData,
	sqlite3.ErrTooBig:     KindInvalidData,
	sqlite3.ErrRange:      KindInvalidData,
	sqlite3.ErrCantOpen:   KindConnection,
	sqlite3.ErrNotADB:     KindConnection,
}

// Translate classifies err by its vendor error code. It only reads lookup tables and
// never changes control flow.
func Translate(err error) Kind {
	if err == nil {
		return KindUnknown
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return sqlState(pgErr.Code)
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return sqlState(string(pqErr.Code))
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		if k, ok := mysqlNumbers[myErr.Number]; ok {
			return k
		}
		return sqlState(string(myErr.SQLState[:]))
	}
	var msErr mssql.Error
	if errors.As(err, &msErr) {
		return mssqlNumbers[msErr.Number]
	}
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return sqliteCodes[liteErr.Code]
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return KindTimeout
	case errors.Is(err, driver.ErrBadConn), errors.Is(err, mysql.ErrInvalidConn):
		return KindConnection
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return KindTimeout
		}
		return KindConnection
	}

	if m := sqlStateRegex.FindStringSubmatch(err.Error()); len(m) == 2 {
		return sqlState(m[1])
	}
	return KindUnknown
}

func sqlState(code string) Kind {
	if k, ok := sqlStates[code]; ok {
		return k
	}
	if len(code) < 2 {
		return KindUnknown
	}
	return sqlStateClasses[code[:2]]
}
