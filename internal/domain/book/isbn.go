package book

import (
	"strings"
)

// IsValidISBN 校验ISBN格式(ISBN-10或ISBN-13,含校验位)
// 规则:
// 1. 去除分隔符后仅保留数字与X(如978-7-115-42802-8 → 9787115428028)
// 2. ISBN-10: sum(digit[i] * (10-i)) ≡ 0 (mod 11),末位允许X表示10
// 3. ISBN-13: sum(digit[i] * (1或3交替)) 的校验位匹配末位
// 空字符串视为有效(ISBN是可选字段)
func IsValidISBN(value string) bool {
	if value == "" {
		return true
	}

	isbn := normalizeISBN(value)

	switch len(isbn) {
	case 10:
		return isValidISBN10(isbn)
	case 13:
		return isValidISBN13(isbn)
	default:
		return false
	}
}

// normalizeISBN 去除非数字/X字符并统一大写
func normalizeISBN(value string) string {
	var sb strings.Builder
	for _, r := range value {
		switch {
		case r >= '0' && r <= '9':
			sb.WriteRune(r)
		case r == 'X' || r == 'x':
			sb.WriteRune('X')
		}
	}
	return sb.String()
}

// isValidISBN10 ISBN-10校验位检查
// X只允许出现在末位(表示校验值10)
func isValidISBN10(isbn string) bool {
	sum := 0
	for i := 0; i < 9; i++ {
		c := isbn[i]
		if c < '0' || c > '9' {
			return false
		}
		sum += int(c-'0') * (10 - i)
	}

	last := isbn[9]
	switch {
	case last == 'X':
		sum += 10
	case last >= '0' && last <= '9':
		sum += int(last - '0')
	default:
		return false
	}

	return sum%11 == 0
}

// isValidISBN13 ISBN-13校验位检查
// 权重1、3交替,check = (10 - sum%10) % 10
func isValidISBN13(isbn string) bool {
	sum := 0
	for i := 0; i < 12; i++ {
		c := isbn[i]
		if c < '0' || c > '9' {
			return false
		}
		weight := 1
		if i%2 == 1 {
			weight = 3
		}
		sum += int(c-'0') * weight
	}

	last := isbn[12]
	if last < '0' || last > '9' {
		return false
	}
	check := (10 - sum%10) % 10
	return check == int(last-'0')
}
