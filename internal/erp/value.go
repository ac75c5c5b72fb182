package erp

import (
	"strconv"

	"github.com/precha888/ecount-chatbot/internal/utils"
)

// NoPrice is shown when the ERP has no product row for the item code.
const NoPrice = "ไม่พบราคา"

// Value is a price or quantity from the ERP. The API is loosely typed: numbers come
// back as JSON numbers or strings, and anything that is not numeric is kept verbatim.
type Value struct {
	Number  float64
	Text    string
	Numeric bool
}

func Num(f float64) Value { return Value{Number: f, Numeric: true} }
func Raw(s string) Value  { return Value{Text: s} }

func coerce(v any) Value {
	if f, ok := utils.ToFloat(v); ok {
		return Num(f)
	}
	return Raw(utils.Text(v))
}

// String prints numbers in their shortest form and raw values unchanged.
func (v Value) String() string {
	if v.Numeric {
		return utils.FormatFloat(v.Number)
	}
	return v.Text
}

// Fixed prints numbers with prec decimals and raw values unchanged.
func (v Value) Fixed(prec int) string {
	if v.Numeric {
		return strconv.FormatFloat(v.Number, 'f', prec, 64)
	}
	return v.Text
}
