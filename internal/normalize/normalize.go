package normalize

import (
	"fmt"
	"math"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	// 末尾的 “空白 + 数字/空格/点” 串，例如 " 2"、" 2024.1"、" 24 1"
	// RE2 的 \s 只含 ASCII 空白，另加 Unicode 空格类（含 NBSP）与 U+0085
	reTrailingNumeric = regexp.MustCompile(`[\s\p{Z}\x{85}]+\d+[\d\s\p{Z}\x{85}.]*$`)

	ordinalReplacer = strings.NewReplacer("º", " ", "ª", " ")
)

func stripMarks() transform.Transformer {
	return transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)))
}

// StripDiacritics 兼容分解 (NFKD) 后去掉所有组合符号
func StripDiacritics(text string) string {
	if text == "" {
		return ""
	}
	out, _, err := transform.String(stripMarks(), text)
	if err != nil {
		return text
	}
	return out
}

// StripDiacriticsValue 接受单元格原始值；nil / NaN 视为空串
func StripDiacriticsValue(v any) string {
	return StripDiacritics(CellText(v))
}

// CellText 把任意单元格值转成文本，nil 与 NaN 返回空串
func CellText(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		if math.IsNaN(t) {
			return ""
		}
	case float32:
		if math.IsNaN(float64(t)) {
			return ""
		}
	}
	return fmt.Sprint(v)
}

// ExtractLeadingID 提取左侧连续的 ASCII 数字（先去首尾空白）
// 只认位置 0 开始的数字，"Dir. USP 23" 没有 ID
func ExtractLeadingID(text string) (string, bool) {
	s := strings.TrimSpace(text)
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return "", false
	}
	return s[:end], true
}

// SuggestCanonical 去掉右侧数字后缀，转大写并去空白
func SuggestCanonical(text string) string {
	if text == "" {
		return ""
	}
	s := reTrailingNumeric.ReplaceAllString(text, "")
	return strings.TrimSpace(strings.ToUpper(s))
}

// NormalizeKey 解析器的发现键：去重音、小写、去空白
func NormalizeKey(text string) string {
	return strings.TrimSpace(strings.ToLower(StripDiacritics(text)))
}

// NormalizeText 严格的文本规范化（用于列名匹配与比较）
//
// º/ª 先替换为空格，再去重音；非字母数字字符统一替换为空格，最后压缩空白。
func NormalizeText(text string) string {
	if text == "" {
		return ""
	}
	s := ordinalReplacer.Replace(text)
	s = strings.ToLower(StripDiacritics(s))
	s = strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			return r
		}
		return ' '
	}, s)
	return strings.Join(strings.Fields(s), " ")
}
