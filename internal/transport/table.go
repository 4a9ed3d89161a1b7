package transport

// Column describes one table column: the header label the console shows, the
// accessor key rows carry the cell under, and how to compute the cell.
type Column[T any] struct {
	Header   string
	Accessor string
	Value    func(T) interface{}
}

type ColumnHeader struct {
	Header   string `json:"header"`
	Accessor string `json:"accessor"`
}

type Table struct {
	Columns []ColumnHeader           `json:"columns"`
	Rows    []map[string]interface{} `json:"rows"`
}

// RenderTable evaluates every column for every item. Each row also carries
// the record id under "id" so actions can target it.
func RenderTable[T any](columns []Column[T], items []T, id func(T) string) Table {
	headers := make([]ColumnHeader, len(columns))
	for i, c := range columns {
		headers[i] = ColumnHeader{Header: c.Header, Accessor: c.Accessor}
	}

	rows := make([]map[string]interface{}, 0, len(items))
	for _, item := range items {
		row := make(map[string]interface{}, len(columns)+1)
		row["id"] = id(item)
		for _, c := range columns {
			row[c.Accessor] = c.Value(item)
		}
		rows = append(rows, row)
	}

	return Table{Columns: headers, Rows: rows}
}
