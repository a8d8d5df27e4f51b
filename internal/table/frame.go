package table

import (
	"errors"
	"fmt"
	"slices"
)

var (
	// ErrColumnNotFound cột không có trong bảng
	ErrColumnNotFound = errors.New("column not found")
	// ErrUnsupportedInputType đầu vào không phải dạng bảng được hỗ trợ
	ErrUnsupportedInputType = errors.New("unsupported input type")
	// ErrColumnConflict cột kết quả trùng tên cột đã có
	ErrColumnConflict = errors.New("column already exists")
	// ErrLengthMismatch các cột không cùng số dòng
	ErrLengthMismatch = errors.New("column length mismatch")
)

// Series một cột có tên. Giá trị nil là null.
type Series struct {
	Name   string
	Values []any
}

// Len số dòng
func (s Series) Len() int { return len(s.Values) }

// Frame bảng dạng cột. Frame được xem là bất biến: các thao tác trả về Frame
// mới và dùng chung slice giá trị của các cột không đổi.
type Frame struct {
	columns []Series
	index   map[string]int
	rows    int
}

// NewFrame dựng Frame từ các cột; tên cột phải khác nhau, số dòng phải bằng nhau
func NewFrame(columns ...Series) (*Frame, error) {
	f := &Frame{index: make(map[string]int, len(columns))}
	for i, col := range columns {
		if _, dup := f.index[col.Name]; dup {
			return nil, fmt.Errorf("%w: %q", ErrColumnConflict, col.Name)
		}
		if i == 0 {
			f.rows = col.Len()
		} else if col.Len() != f.rows {
			return nil, fmt.Errorf("%w: column %q has %d rows, expected %d", ErrLengthMismatch, col.Name, col.Len(), f.rows)
		}
		f.index[col.Name] = i
		f.columns = append(f.columns, col)
	}
	return f, nil
}

// FromRecords dựng Frame từ header và các dòng chuỗi (ví dụ đọc từ CSV)
func FromRecords(header []string, rows [][]string) (*Frame, error) {
	columns := make([]Series, len(header))
	for j, name := range header {
		columns[j] = Series{Name: name, Values: make([]any, len(rows))}
	}
	for i, row := range rows {
		if len(row) != len(header) {
			return nil, fmt.Errorf("%w: row %d has %d fields, header has %d", ErrLengthMismatch, i+1, len(row), len(header))
		}
		for j, v := range row {
			columns[j].Values[i] = v
		}
	}
	return NewFrame(columns...)
}

// Len số dòng
func (f *Frame) Len() int { return f.rows }

// Width số cột
func (f *Frame) Width() int { return len(f.columns) }

// Names tên các cột theo thứ tự
func (f *Frame) Names() []string {
	names := make([]string, len(f.columns))
	for i, col := range f.columns {
		names[i] = col.Name
	}
	return names
}

// Has kiểm tra có cột name không
func (f *Frame) Has(name string) bool {
	_, ok := f.index[name]
	return ok
}

// Column lấy cột theo tên
func (f *Frame) Column(name string) (Series, error) {
	i, ok := f.index[name]
	if !ok {
		return Series{}, fmt.Errorf("%w: %q", ErrColumnNotFound, name)
	}
	return f.columns[i], nil
}

// Row giá trị dòng i theo thứ tự cột
func (f *Frame) Row(i int) []any {
	row := make([]any, len(f.columns))
	for j, col := range f.columns {
		row[j] = col.Values[i]
	}
	return row
}

// With trả về Frame mới gồm mọi cột hiện có cộng thêm columns
func (f *Frame) With(columns ...Series) (*Frame, error) {
	return NewFrame(append(slices.Clone(f.columns), columns...)...)
}

// Records chuyển Frame thành header + các dòng chuỗi; null thành chuỗi rỗng
func (f *Frame) Records() [][]string {
	out := make([][]string, 0, f.rows+1)
	out = append(out, f.Names())
	for i := 0; i < f.rows; i++ {
		row := make([]string, len(f.columns))
		for j, col := range f.columns {
			row[j] = formatValue(col.Values[i])
		}
		out = append(out, row)
	}
	return out
}

func formatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}
