package importer

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Cell coercion for imported values. Spreadsheets hand us strings (raw cell
// values), and anything that does not parse becomes null rather than a row
// error.

var leadingIntRe = regexp.MustCompile(`^[+-]?[0-9]+`)

// CoerceString trims and treats "", "undefined" and "null" (literal) as absent.
func CoerceString(raw string) *string {
	s := strings.TrimSpace(raw)
	if s == "" || s == "undefined" || s == "null" {
		return nil
	}
	return &s
}

// CoerceInteger parses the leading integer of the cell ("12 units" → 12).
func CoerceInteger(raw string) *int {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil
	}
	m := leadingIntRe.FindString(s)
	if m == "" {
		return nil
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return nil
	}
	return &n
}

// CoerceCurrency strips currency symbols and thousands separators and
// normalizes a comma decimal to a dot, so "€ 1.234,56" parses as 1234.56.
func CoerceCurrency(raw string) *float64 {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil
	}
	s = strings.NewReplacer("€", "", "$", "", " ", "", " ", "").Replace(s)
	dot := strings.LastIndex(s, ".")
	comma := strings.LastIndex(s, ",")
	switch {
	case dot >= 0 && comma >= 0 && comma > dot:
		// 1.234,56 — dots are thousands separators, comma is the decimal
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	case dot >= 0 && comma >= 0:
		// 1,234.56 — commas are thousands separators
		s = strings.ReplaceAll(s, ",", "")
	case comma >= 0 && strings.Count(s, ",") == 1:
		// 1234,56 — lone comma is the decimal
		s = strings.Replace(s, ",", ".", 1)
	case comma >= 0:
		// 1,234,567 — commas are thousands separators
		s = strings.ReplaceAll(s, ",", "")
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &n
}

// excelEpoch makes serial 1 = 1900-01-01 while absorbing the historical
// 1900 leap-year bug for any date after Feb 1900.
var excelEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// CoerceDate turns an Excel date serial or a D/M/Y string into YYYY-MM-DD.
// Anything else becomes null.
func CoerceDate(raw string) *string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil
	}
	if serial, err := strconv.ParseFloat(s, 64); err == nil {
		if serial < 61 || serial > 300000 {
			return nil
		}
		d := excelEpoch.AddDate(0, 0, int(serial)).Format("2006-01-02")
		return &d
	}
	parts := strings.Split(s, "/")
	if len(parts) != 3 {
		return nil
	}
	day, errD := strconv.Atoi(strings.TrimSpace(parts[0]))
	month, errM := strconv.Atoi(strings.TrimSpace(parts[1]))
	year, errY := strconv.Atoi(strings.TrimSpace(parts[2]))
	if errD != nil || errM != nil || errY != nil {
		return nil
	}
	d := fmt.Sprintf("%04d-%02d-%02d", year, month, day)
	return &d
}
