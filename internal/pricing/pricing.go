package pricing

import (
	"errors"
	"strings"

	"github.com/goobits/storefront/internal/models"

	"github.com/shopspring/decimal"
)

// ErrAmountInvalid 金额或数量非法
var ErrAmountInvalid = errors.New("pricing: amount invalid")

const defaultSymbol = "$"

// 货币符号表，未收录的币种直接使用代码作为前缀
var currencySymbols = map[string]string{
	"USD": "$",
	"EUR": "€",
	"GBP": "£",
	"JPY": "¥",
}

// FormatPrice 将最小货币单位金额格式化为两位小数字符串（1999 -> "19.99"）
func FormatPrice(amountMinor int64) string {
	return decimal.NewFromInt(amountMinor).Shift(-2).StringFixed(2)
}

// FormatPriceWithSymbol 带符号前缀格式化，符号为空时使用 "$"
func FormatPriceWithSymbol(amountMinor int64, symbol string) string {
	symbol = strings.TrimSpace(symbol)
	if symbol == "" {
		symbol = defaultSymbol
	}
	return symbol + FormatPrice(amountMinor)
}

// FormatCurrency 按币种代码格式化，始终包含符号；未知代码用代码本身作前缀
func FormatCurrency(amountMinor int64, currencyCode string) string {
	code := strings.ToUpper(strings.TrimSpace(currencyCode))
	if code == "" {
		code = "USD"
	}
	symbol, ok := currencySymbols[code]
	if !ok {
		symbol = code
	}
	return symbol + FormatPrice(amountMinor)
}

// LineItemTotal 计算行项目小计并格式化；数量或单价非法时返回 ErrAmountInvalid
func LineItemTotal(unitPrice int64, quantity int) (string, error) {
	if quantity <= 0 || unitPrice < 0 {
		return "", ErrAmountInvalid
	}
	return FormatPrice(unitPrice * int64(quantity)), nil
}

// CartSubtotal 格式化购物车小计，无行项目集合时返回 "0.00"
func CartSubtotal(cart *models.Cart) string {
	if cart == nil || cart.Items == nil {
		return FormatPrice(0)
	}
	return FormatPrice(cart.Subtotal)
}

// CartShippingTotal 格式化配送费
func CartShippingTotal(cart *models.Cart) string {
	if cart == nil {
		return FormatPrice(0)
	}
	return FormatPrice(cart.ShippingTotal)
}

// CartTaxTotal 格式化税费
func CartTaxTotal(cart *models.Cart) string {
	if cart == nil {
		return FormatPrice(0)
	}
	return FormatPrice(cart.TaxTotal)
}

// CartTotal 格式化订单总额
func CartTotal(cart *models.Cart) string {
	if cart == nil {
		return FormatPrice(0)
	}
	return FormatPrice(cart.Total)
}
