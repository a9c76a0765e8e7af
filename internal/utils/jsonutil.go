package utils

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// StringOrNumber 支持 JSON 中字段为 string 或 number 的场景
// Supabase 表主键可能是 bigint 也可能是 uuid，统一按字符串处理。
// 对象、数组、布尔值一律报错。
type StringOrNumber string

// UnmarshalJSON 支持自动兼容 string 或 number
func (s *StringOrNumber) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*s = ""
		return nil
	}

	// 判断首字符是否为引号 => 说明是字符串
	if b[0] == '"' {
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return err
		}
		*s = StringOrNumber(str)
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return err
	}
	n, ok := v.(json.Number)
	if !ok {
		return fmt.Errorf("expected string or number, got %s", b)
	}
	*s = StringOrNumber(n.String())
	return nil
}

func (s StringOrNumber) String() string { return string(s) }

// Decimal 按十进制解析，空值或非数字返回 false
func (s StringOrNumber) Decimal() (decimal.Decimal, bool) {
	if s == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(string(s))
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}
