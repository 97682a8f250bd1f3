package db

import (
	"strings"

	pkgerrors "github.com/angelmondragon/stockroom-backend/pkg/errors"
)

// IsForeignKeyViolation reports whether err is a foreign key failure. Postgres
// errors are matched on SQLSTATE 23503 (or its message text when the driver
// error was flattened); sqlite reports a generic constraint failure. When
// constraintName is set, the constraint must match as well.
func IsForeignKeyViolation(err error, constraintName string) bool {
	if err == nil {
		return false
	}
	dump := pkgerrors.Dump(err)
	if dump.PGCode != "" {
		if dump.PGCode != pkgerrors.PGForeignKeyViolation {
			return false
		}
		return constraintName == "" || dump.PGConstraint == constraintName
	}
	msg := err.Error()
	if constraintName != "" && !strings.Contains(msg, constraintName) {
		return false
	}
	return strings.Contains(msg, "violates foreign key constraint") ||
		strings.Contains(msg, "FOREIGN KEY constraint failed")
}
