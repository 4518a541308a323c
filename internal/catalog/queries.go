package catalog

var postgres = Dialect{
	Name:       "postgres",
	substrFunc: "substring",
	textType:   "text",
	columnsQuery: `
SELECT
    n.nspname,
    c.relname,
    a.attname,
    format_type(a.atttypid, a.atttypmod),
    c.oid::bigint,
    a.attnum::int
FROM pg_class c
JOIN pg_namespace n ON c.relnamespace = n.oid
JOIN pg_attribute a ON a.attrelid = c.oid
WHERE
    a.attnum > 0
    AND NOT a.attisdropped
    AND c.relkind IN ('r', 'p')
    AND n.nspname NOT IN ('pg_catalog', 'information_schema', 'pg_toast')
    AND NOT EXISTS (
        SELECT 1
        FROM pg_index i
        WHERE i.indrelid = c.oid
          AND i.indisprimary
          AND a.attnum = ANY(i.indkey)
    )
    AND NOT EXISTS (
        SELECT 1
        FROM pg_depend d
        JOIN pg_class s ON s.oid = d.objid
        WHERE d.refobjid = c.oid
          AND d.refobjsubid = a.attnum
          AND s.relkind = 'S'
          AND d.deptype = 'a'
          AND d.classid = 'pg_catalog.pg_class'::regclass
          AND d.refclassid = 'pg_catalog.pg_class'::regclass
    )
ORDER BY n.nspname, c.relname, a.attnum`,
	tagsQuery: `
SELECT
    n.nspname,
    c.relname,
    a.attname,
    d.description
FROM pg_description d
JOIN pg_attribute a ON d.objoid = a.attrelid AND d.objsubid = a.attnum
JOIN pg_class c ON c.oid = a.attrelid
JOIN pg_namespace n ON n.oid = c.relnamespace
WHERE
    c.relkind IN ('r', 'p')
    AND a.attnum > 0
    AND NOT a.attisdropped
    AND (d.description LIKE '%:sens%' OR d.description LIKE '%:nosens%')
ORDER BY n.nspname, c.relname, a.attname`,
}

var duckdb = Dialect{
	Name:       "duckdb",
	substrFunc: "substring",
	textType:   "VARCHAR",
	columnsQuery: `
SELECT
    c.schema_name,
    c.table_name,
    c.column_name,
    c.data_type,
    c.table_oid,
    c.column_index
FROM duckdb_columns() c
JOIN duckdb_tables() t ON t.table_oid = c.table_oid
WHERE
    c.database_name = current_database()
    AND c.schema_name NOT IN ('information_schema', 'pg_catalog')
    AND coalesce(c.column_default, '') NOT LIKE 'nextval(%'
    AND NOT EXISTS (
        SELECT 1
        FROM duckdb_constraints() k
        WHERE k.database_name = c.database_name
          AND k.schema_name = c.schema_name
          AND k.table_name = c.table_name
          AND k.constraint_type = 'PRIMARY KEY'
          AND list_contains(k.constraint_column_names, c.column_name)
    )
ORDER BY c.schema_name, c.table_name, c.column_index`,
	tagsQuery: `
SELECT
    schema_name,
    table_name,
    column_name,
    comment
FROM duckdb_columns()
WHERE
    database_name = current_database()
    AND (comment LIKE '%:sens%' OR comment LIKE '%:nosens%')
ORDER BY schema_name, table_name, column_name`,
}

// SQLite has a single "main" schema, no sequences beyond rowid aliases
// (which are primary keys) and no column comments.
var sqlite = Dialect{
	Name:       "sqlite",
	substrFunc: "substr",
	textType:   "TEXT",
	columnsQuery: `
SELECT
    'main',
    m.name,
    p.name,
    p.type,
    m.rootpage,
    p.cid
FROM sqlite_master AS m, pragma_table_info(m.name) AS p
WHERE
    m.type = 'table'
    AND m.name NOT LIKE 'sqlite_%'
    AND p.pk = 0
ORDER BY m.name, p.cid`,
}
