// Package dataset は表形式データの値オブジェクトを提供する。
// Dataset は取り込みレイヤーから受け取る不変の生データ、
// ProcessedDataset は前処理済みの数値行列とそのスケーリング・エンコード文脈を保持する。
package dataset

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ColumnType は列の宣言型を表す
type ColumnType string

const (
	// TypeNumber は数値列
	TypeNumber ColumnType = "number"
	// TypeString は文字列列
	TypeString ColumnType = "string"
	// TypeDate は日付列
	TypeDate ColumnType = "date"
)

// Column は列のメタデータ
type Column struct {
	Name        string
	Type        ColumnType
	NullCount   int
	UniqueCount int
}

// Dataset は名前付き列を持つ行の順序付き列。エンジンからは一切変更されない。
type Dataset struct {
	Columns []Column
	Rows    []map[string]any
}

// NumRows は行数を返す
func (d *Dataset) NumRows() int {
	return len(d.Rows)
}

// Column は名前で列メタデータを検索する
func (d *Dataset) Column(name string) (Column, bool) {
	for _, c := range d.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// Infer は行データから列メタデータ（型・欠損数・カーディナリティ）を推定して
// Dataset を組み立てる。列の型は非欠損値の85%以上が数値としてパースできる場合に
// number、そうでなければ string となる。
func Infer(columnNames []string, rows []map[string]any) *Dataset {
	columns := make([]Column, 0, len(columnNames))
	for _, name := range columnNames {
		col := Column{Name: name, Type: TypeString}
		seen := make(map[string]struct{})
		numeric := 0
		nonNull := 0
		for _, row := range rows {
			v := row[name]
			if IsMissing(v) {
				col.NullCount++
				continue
			}
			nonNull++
			seen[formatValue(v)] = struct{}{}
			if _, ok := NumericValue(v); ok {
				numeric++
			}
		}
		col.UniqueCount = len(seen)
		if nonNull > 0 && float64(numeric) >= 0.85*float64(nonNull) {
			col.Type = TypeNumber
		}
		columns = append(columns, col)
	}
	return &Dataset{Columns: columns, Rows: rows}
}

// IsMissing は値が欠損とみなされるかどうかを返す。
// 生の NaN float も欠損セルとして扱う。
func IsMissing(v any) bool {
	if v == nil {
		return true
	}
	switch t := v.(type) {
	case string:
		trimmed := strings.TrimSpace(t)
		return trimmed == "" || strings.EqualFold(trimmed, "null") || strings.EqualFold(trimmed, "n/a")
	case float64:
		return math.IsNaN(t)
	case float32:
		return math.IsNaN(float64(t))
	}
	return false
}

// NumericValue は生の値を float64 として解釈できる場合にその値を返す。
// NaN や ±Inf（"NaN"・"Inf" 文字列のパース結果を含む）は解釈不能として扱う。
// 処理済み行列の全ての値は有限でなければならないため、非有限値は欠損と同様に
// 補完の対象となる。
func NumericValue(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		if !isFinite(t) {
			return 0, false
		}
		return t, true
	case float32:
		if !isFinite(float64(t)) {
			return 0, false
		}
		return float64(t), true
	case int:
		return float64(t), true
	case int32:
		return float64(t), true
	case int64:
		return float64(t), true
	case bool:
		if t {
			return 1, true
		}
		return 0, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil || !isFinite(f) {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func formatValue(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64)
	default:
		return fmt.Sprintf("%v", v)
	}
}
