package output

import (
	"encoding/json"
	"fmt"
	"io"
	"reflect"
	"strings"
	"text/tabwriter"
	"time"
)

// TableFormatter renders data as a tab-aligned table. Slices of
// structs become one row per element; a single struct or a map becomes
// a key-value listing. Anything else falls back to indented JSON.
type TableFormatter struct {
	Wide      bool
	NoHeaders bool
}

// Format renders data to w.
func (f *TableFormatter) Format(w io.Writer, data any) error {
	if data == nil {
		return nil
	}

	v := reflect.ValueOf(data)
	if v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return nil
		}
		v = v.Elem()
	}

	headers, rows, ok := f.tabulate(v)
	if !ok {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(data)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if !f.NoHeaders && len(headers) > 0 {
		fmt.Fprintln(tw, strings.Join(headers, "\t"))
	}
	for _, row := range rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	return tw.Flush()
}

// tabulate turns a reflected value into headers and rows. The third
// return is false when the shape has no table form.
func (f *TableFormatter) tabulate(v reflect.Value) ([]string, [][]string, bool) {
	switch v.Kind() {
	case reflect.Slice, reflect.Array:
		return f.sliceRows(v)
	case reflect.Map:
		return keyValueRowsFromMap(v)
	case reflect.Struct:
		return keyValueRowsFromStruct(v)
	default:
		return nil, nil, false
	}
}

func (f *TableFormatter) sliceRows(v reflect.Value) ([]string, [][]string, bool) {
	if v.Len() == 0 {
		return nil, nil, true
	}

	first := v.Index(0)
	if first.Kind() == reflect.Ptr {
		first = first.Elem()
	}
	if first.Kind() != reflect.Struct {
		return nil, nil, false
	}

	headers, fields := f.columns(first.Type())
	rows := make([][]string, 0, v.Len())
	for i := 0; i < v.Len(); i++ {
		elem := v.Index(i)
		if elem.Kind() == reflect.Ptr {
			elem = elem.Elem()
		}
		row := make([]string, 0, len(fields))
		for _, idx := range fields {
			row = append(row, cell(elem.Field(idx)))
		}
		rows = append(rows, row)
	}
	return headers, rows, true
}

// columns selects the visible struct fields. A `table:"-"` tag hides a
// field; `table:"wide"` shows it only in wide mode. Headers come from
// the json tag when present, upper-snake-cased.
func (f *TableFormatter) columns(t reflect.Type) ([]string, []int) {
	var headers []string
	var fields []int
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		switch field.Tag.Get("table") {
		case "-":
			continue
		case "wide":
			if !f.Wide {
				continue
			}
		}
		headers = append(headers, headerName(field))
		fields = append(fields, i)
	}
	return headers, fields
}

func keyValueRowsFromMap(v reflect.Value) ([]string, [][]string, bool) {
	rows := make([][]string, 0, v.Len())
	iter := v.MapRange()
	for iter.Next() {
		rows = append(rows, []string{cell(iter.Key()), cell(iter.Value())})
	}
	return []string{"KEY", "VALUE"}, rows, true
}

func keyValueRowsFromStruct(v reflect.Value) ([]string, [][]string, bool) {
	t := v.Type()
	var rows [][]string
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		rows = append(rows, []string{headerName(field), cell(v.Field(i))})
	}
	return []string{"FIELD", "VALUE"}, rows, true
}

func headerName(field reflect.StructField) string {
	name := field.Name
	if tag := field.Tag.Get("json"); tag != "" {
		if base, _, _ := strings.Cut(tag, ","); base != "" && base != "-" {
			name = base
		}
	}
	var b strings.Builder
	for i, r := range name {
		if i > 0 && r >= 'A' && r <= 'Z' {
			b.WriteByte('_')
		}
		b.WriteRune(r)
	}
	return strings.ToUpper(b.String())
}

// cell renders one value for display. Empty strings and zero times
// show as "-" so sparse columns stay readable.
func cell(v reflect.Value) string {
	if !v.IsValid() {
		return ""
	}
	if v.Kind() == reflect.Interface || v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return ""
		}
		v = v.Elem()
	}

	if v.Type() == reflect.TypeOf(time.Time{}) {
		ts := v.Interface().(time.Time)
		if ts.IsZero() {
			return "-"
		}
		return ts.Format("2006-01-02 15:04")
	}

	switch v.Kind() {
	case reflect.String:
		if v.String() == "" {
			return "-"
		}
		return v.String()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return fmt.Sprintf("%d", v.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return fmt.Sprintf("%d", v.Uint())
	case reflect.Float32, reflect.Float64:
		return fmt.Sprintf("%.2f", v.Float())
	case reflect.Bool:
		return fmt.Sprintf("%t", v.Bool())
	case reflect.Slice, reflect.Array:
		if v.Len() == 0 {
			return "-"
		}
		return fmt.Sprintf("[%d items]", v.Len())
	case reflect.Map:
		if v.Len() == 0 {
			return "-"
		}
		return fmt.Sprintf("{%d keys}", v.Len())
	default:
		return fmt.Sprintf("%v", v.Interface())
	}
}
