// Package format renders prices, weights and timestamps the way the Persian
// gold UI displays them. Everything here is a pure function on values.
package format

import (
    "fmt"
    "strings"
    "time"

    "github.com/shopspring/decimal"
)

var persianDigits = [10]rune{'۰', '۱', '۲', '۳', '۴', '۵', '۶', '۷', '۸', '۹'}

// Simplified month naming: Gregorian month fields with Persian month names,
// as the source UI did. A proper Jalali calendar conversion is a separate
// concern and deliberately not attempted here.
var persianMonths = [12]string{
    "فروردین", "اردیبهشت", "خرداد", "تیر", "مرداد", "شهریور",
    "مهر", "آبان", "آذر", "دی", "بهمن", "اسفند",
}

// ToPersianDigits replaces ASCII digits with their Persian counterparts,
// leaving everything else untouched.
func ToPersianDigits(s string) string {
    var b strings.Builder
    b.Grow(len(s) * 2)
    for _, r := range s {
        if r >= '0' && r <= '9' {
            b.WriteRune(persianDigits[r-'0'])
            continue
        }
        b.WriteRune(r)
    }
    return b.String()
}

// Number renders d with comma thousands separators, keeping any fraction.
func Number(d decimal.Decimal) string {
    s := d.String()
    neg := strings.HasPrefix(s, "-")
    if neg { s = s[1:] }
    intPart, frac, hasFrac := strings.Cut(s, ".")

    var b strings.Builder
    if neg { b.WriteByte('-') }
    for i, c := range intPart {
        if i > 0 && (len(intPart)-i)%3 == 0 {
            b.WriteByte(',')
        }
        b.WriteRune(c)
    }
    if hasFrac {
        b.WriteByte('.')
        b.WriteString(frac)
    }
    return b.String()
}

// PersianNumber is Number with Persian digits.
func PersianNumber(d decimal.Decimal) string {
    return ToPersianDigits(Number(d))
}

// Currency renders an amount in the given currency with Latin digits:
// toman for IRT (whole amounts), two decimals for USD.
func Currency(amount decimal.Decimal, currency string) string {
    if currency == "USD" {
        return fmt.Sprintf("دلار %s", Number(amount.Round(2)))
    }
    return fmt.Sprintf("%s تومان", Number(amount.Round(0)))
}

// PersianCurrency renders an amount with Persian digits.
func PersianCurrency(amount decimal.Decimal, currency string) string {
    if currency == "USD" {
        return "$" + PersianNumber(amount.Round(2))
    }
    return fmt.Sprintf("%s تومان", PersianNumber(amount.Round(0)))
}

// PersianDate renders an epoch-millisecond timestamp as
// "day month year - hour:minute" with Persian digits and month names.
// Timestamps are interpreted in UTC so output does not depend on the host
// timezone.
func PersianDate(timestampMillis int64) string {
    t := time.UnixMilli(timestampMillis).UTC()
    day := ToPersianDigits(fmt.Sprintf("%d", t.Day()))
    month := persianMonths[int(t.Month())-1]
    year := ToPersianDigits(fmt.Sprintf("%d", t.Year()))
    clock := ToPersianDigits(fmt.Sprintf("%d:%02d", t.Hour(), t.Minute()))
    return fmt.Sprintf("%s %s %s - %s", day, month, year, clock)
}

// ShareText builds the plain-text calculation summary handed to the platform
// share sheet (or the clipboard as a fallback).
func ShareText(weight, purityPercent, price, totalValue decimal.Decimal) string {
    lines := []string{
        "محاسبه ارزش طلای آب شده:",
        fmt.Sprintf("وزن: %s گرم", PersianNumber(weight)),
        fmt.Sprintf("عیار: %s٪", PersianNumber(purityPercent)),
        fmt.Sprintf("قیمت هر گرم: %s", PersianCurrency(price, "IRT")),
        fmt.Sprintf("ارزش کل: %s", PersianCurrency(totalValue, "IRT")),
    }
    return strings.Join(lines, "\n")
}
