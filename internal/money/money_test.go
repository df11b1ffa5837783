package money

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestRound2_HalfUp(t *testing.T) {
	assert.Equal(t, "0.13", Round2(d("0.125")).StringFixed(2))
	assert.Equal(t, "333.33", Round2(d("1000").Div(d("3"))).StringFixed(2))
	assert.Equal(t, "10.01", Round2(d("10.005")).StringFixed(2))
}

func TestFormatBRL(t *testing.T) {
	cases := map[string]string{
		"0":          "R$0,00",
		"1234.56":    "R$1.234,56",
		"1234567.8":  "R$1.234.567,80",
		"999.995":    "R$1.000,00",
		"-50":        "-R$50,00",
		"100":        "R$100,00",
	}
	for in, want := range cases {
		assert.Equal(t, want, FormatBRL(d(in)), in)
	}
}

func TestAddMonths_ClampsToMonthEnd(t *testing.T) {
	jan31 := time.Date(2024, time.January, 31, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2024, time.February, 29, 0, 0, 0, 0, time.UTC), AddMonths(jan31, 1))
	assert.Equal(t, time.Date(2024, time.March, 31, 0, 0, 0, 0, time.UTC), AddMonths(jan31, 2))
	assert.Equal(t, time.Date(2024, time.April, 30, 0, 0, 0, 0, time.UTC), AddMonths(jan31, 3))
	assert.Equal(t, time.Date(2025, time.February, 28, 0, 0, 0, 0, time.UTC), AddMonths(jan31, 13))
}

func TestAddMonths_Plain(t *testing.T) {
	feb1 := time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC), AddMonths(feb1, 1))
	assert.Equal(t, time.Date(2023, time.December, 1, 0, 0, 0, 0, time.UTC), AddMonths(feb1, -2))
}

func TestDaysBetween(t *testing.T) {
	a := time.Date(2024, time.March, 1, 23, 0, 0, 0, time.UTC)
	b := time.Date(2024, time.March, 4, 1, 0, 0, 0, time.UTC)
	assert.Equal(t, 3, DaysBetween(a, b))
	assert.Equal(t, -3, DaysBetween(b, a))
}

func TestWeekBounds(t *testing.T) {
	wed := time.Date(2024, time.May, 15, 10, 0, 0, 0, time.UTC)
	start, end := WeekBounds(wed)
	assert.Equal(t, "2024-05-13", start.Format("2006-01-02"))
	assert.Equal(t, "2024-05-19", end.Format("2006-01-02"))

	sun := time.Date(2024, time.May, 19, 10, 0, 0, 0, time.UTC)
	start, _ = WeekBounds(sun)
	assert.Equal(t, "2024-05-13", start.Format("2006-01-02"))
}

func TestIsLastDayOfMonth(t *testing.T) {
	assert.True(t, IsLastDayOfMonth(time.Date(2024, time.February, 29, 0, 0, 0, 0, time.UTC)))
	assert.False(t, IsLastDayOfMonth(time.Date(2023, time.February, 27, 0, 0, 0, 0, time.UTC)))
}

func TestNewPublicID_Format(t *testing.T) {
	id, err := NewPublicID(SalePrefix)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(id, "VEN-"))
	body := strings.TrimPrefix(id, "VEN-")
	assert.Len(t, body, 8)
	for _, r := range body {
		assert.True(t, strings.ContainsRune(publicIDAlphabet, r), "unexpected rune %q", r)
	}
}

func TestUniquePublicID_RetriesOnCollision(t *testing.T) {
	calls := 0
	id, err := UniquePublicID(context.Background(), PromissoryPrefix, func(_ context.Context, _ string) (bool, error) {
		calls++
		return calls < 3, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.True(t, strings.HasPrefix(id, "PROM-"))
}

func TestUniquePublicID_Exhausted(t *testing.T) {
	_, err := UniquePublicID(context.Background(), SalePrefix, func(_ context.Context, _ string) (bool, error) {
		return true, nil
	})
	assert.True(t, errors.Is(err, ErrPublicIDExhausted))
}

func TestPhoneHelpers(t *testing.T) {
	assert.Equal(t, "(83) 99999-1234", FormatPhone("83 99999-1234"))
	assert.Equal(t, "(83) 3333-1234", FormatPhone("8333331234"))
	assert.Equal(t, "-", FormatPhone(""))

	assert.Equal(t, "5583999991234", WhatsAppNumber("(83) 99999-1234"))
	assert.Equal(t, "5583999991234", WhatsAppNumber("+55 83 99999-1234"))
	assert.Equal(t, "", WhatsAppNumber("abc"))
	assert.Equal(t, "12345", WhatsAppNumber("12345"))
}
