package schema

import (
	"strings"

	"gorm.io/gorm"
)

// Quote renders a resolved identifier with the dialect's quoting. Only
// identifiers coming out of the Introspector may be passed here.
func Quote(gdb *gorm.DB, ident string) string {
	var b strings.Builder
	gdb.Dialector.QuoteTo(&b, ident)
	return b.String()
}

// Qualified renders alias.column with the column quoted.
func Qualified(gdb *gorm.DB, alias, ident string) string {
	return alias + "." + Quote(gdb, ident)
}
