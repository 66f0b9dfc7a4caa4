package repository

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"inventory-catalog-api/internal/model"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// dialect captures the differences between the SQL backends.
type dialect struct {
	name string

	// DDL column types
	idType      string
	keyType     string // indexed strings
	textType    string
	boolType    string
	decimalType string
	timeType    string

	// numberedParams rewrites ? placeholders to $1, $2, ...
	numberedParams bool
	// returningID uses INSERT ... RETURNING id instead of LastInsertId
	returningID bool
	// inlineIndexes declares unique keys inside CREATE TABLE
	inlineIndexes bool

	isUniqueViolation func(error) bool
}

var sqliteDialect = dialect{
	name:        "sqlite",
	idType:      "INTEGER PRIMARY KEY AUTOINCREMENT",
	keyType:     "TEXT",
	textType:    "TEXT",
	boolType:    "INTEGER NOT NULL DEFAULT 0",
	decimalType: "TEXT",
	timeType:    "DATETIME",
	isUniqueViolation: func(err error) bool {
		var se *sqlite.Error
		if errors.As(err, &se) && se.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE {
			return true
		}
		// without extended result codes only the message tells UNIQUE apart
		return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
	},
}

var postgresDialect = dialect{
	name:           "postgres",
	idType:         "BIGSERIAL PRIMARY KEY",
	keyType:        "TEXT",
	textType:       "TEXT",
	boolType:       "BOOLEAN NOT NULL DEFAULT FALSE",
	decimalType:    "NUMERIC",
	timeType:       "TIMESTAMPTZ",
	numberedParams: true,
	returningID:    true,
	isUniqueViolation: func(err error) bool {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			return pqErr.Code == "23505"
		}
		return false
	},
}

var mysqlDialect = dialect{
	name:          "mysql",
	idType:        "BIGINT AUTO_INCREMENT PRIMARY KEY",
	keyType:       "VARCHAR(191)",
	textType:      "TEXT",
	boolType:      "BOOLEAN NOT NULL DEFAULT FALSE",
	decimalType:   "VARCHAR(64)",
	timeType:      "DATETIME(6)",
	inlineIndexes: true,
	isUniqueViolation: func(err error) bool {
		var myErr *mysql.MySQLError
		if errors.As(err, &myErr) {
			return myErr.Number == 1062
		}
		return false
	},
}

// rebind converts ? placeholders for backends that number them.
func (d dialect) rebind(query string) string {
	if !d.numberedParams {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 16)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (d dialect) slotColumnType(col string) string {
	switch {
	case strings.HasSuffix(col, "_show_in_table"), strings.HasSuffix(col, "_is_integer"):
		return d.boolType
	case strings.HasSuffix(col, "_min_value"), strings.HasSuffix(col, "_max_value"), strings.HasSuffix(col, "_step_value"):
		return d.decimalType
	}
	return d.textType
}

func (d dialect) itemValueColumnType(key model.SlotKey) string {
	switch key.Category {
	case model.CategoryNumeric:
		return d.decimalType
	case model.CategoryBoolean:
		// values are nullable, unlike configuration flags
		return strings.Fields(d.boolType)[0]
	}
	return d.textType
}

// schemaStatements returns the DDL that creates both tables and their indexes.
func (d dialect) schemaStatements() []string {
	var inv strings.Builder
	fmt.Fprintf(&inv, "CREATE TABLE IF NOT EXISTS %s (\n", inventoriesTable)
	fmt.Fprintf(&inv, "\tid %s,\n", d.idType)
	fmt.Fprintf(&inv, "\ttitle %s NOT NULL,\n", d.textType)
	fmt.Fprintf(&inv, "\tdescription %s,\n", d.textType)
	fmt.Fprintf(&inv, "\tcategory_name %s,\n", d.textType)
	fmt.Fprintf(&inv, "\tis_public %s,\n", d.boolType)
	fmt.Fprintf(&inv, "\tcustom_id_format %s,\n", d.textType)
	fmt.Fprintf(&inv, "\tcustom_id_elements %s,\n", d.textType)
	fmt.Fprintf(&inv, "\tapi_token %s,\n", d.keyType)
	fmt.Fprintf(&inv, "\tversion BIGINT NOT NULL DEFAULT 1,\n")
	fmt.Fprintf(&inv, "\tcreated_at %s NOT NULL,\n", d.timeType)
	fmt.Fprintf(&inv, "\tupdated_at %s NOT NULL", d.timeType)
	for _, col := range schemaColumns() {
		fmt.Fprintf(&inv, ",\n\t%s %s", col, d.slotColumnType(col))
	}
	if d.inlineIndexes {
		fmt.Fprintf(&inv, ",\n\tUNIQUE KEY idx_inventories_api_token (api_token)")
	}
	inv.WriteString("\n)")

	var items strings.Builder
	fmt.Fprintf(&items, "CREATE TABLE IF NOT EXISTS %s (\n", itemsTable)
	fmt.Fprintf(&items, "\tid %s,\n", d.idType)
	fmt.Fprintf(&items, "\tinventory_id BIGINT NOT NULL REFERENCES %s(id) ON DELETE CASCADE,\n", inventoriesTable)
	fmt.Fprintf(&items, "\tcustom_id %s NOT NULL,\n", d.keyType)
	fmt.Fprintf(&items, "\tcreated_at %s NOT NULL,\n", d.timeType)
	fmt.Fprintf(&items, "\tupdated_at %s NOT NULL", d.timeType)
	for i, key := range model.AllSlotKeys() {
		fmt.Fprintf(&items, ",\n\t%s %s", itemValueColumns()[i], d.itemValueColumnType(key))
	}
	if d.inlineIndexes {
		fmt.Fprintf(&items, ",\n\tUNIQUE KEY idx_items_inventory_custom_id (inventory_id, custom_id)")
	}
	items.WriteString("\n)")

	stmts := []string{inv.String(), items.String()}
	if !d.inlineIndexes {
		stmts = append(stmts,
			fmt.Sprintf("CREATE UNIQUE INDEX IF NOT EXISTS idx_inventories_api_token ON %s(api_token)", inventoriesTable),
			fmt.Sprintf("CREATE UNIQUE INDEX IF NOT EXISTS idx_items_inventory_custom_id ON %s(inventory_id, custom_id)", itemsTable),
		)
	}
	return stmts
}
