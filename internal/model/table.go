package model

// Table names a browsable database table.
type Table string

// Browsable tables.
const (
	TableTodos       Table = "todos"
	TableUsers       Table = "users"
	TableRequestLogs Table = "request_logs"
)

// Tables lists every browsable table in display order.
var Tables = []Table{TableTodos, TableUsers, TableRequestLogs}

// ParseTable returns the Table for name, or false if it is not browsable.
func ParseTable(name string) (Table, bool) {
	for _, t := range Tables {
		if string(t) == name {
			return t, true
		}
	}
	return "", false
}
