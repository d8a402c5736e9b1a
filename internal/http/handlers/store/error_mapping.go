package store

import (
	"errors"

	"github.com/goobits/storefront/internal/checkout"
	"github.com/goobits/storefront/internal/commerce"
	"github.com/goobits/storefront/internal/constants"
	"github.com/goobits/storefront/internal/http/handlers/shared"
	"github.com/goobits/storefront/internal/http/response"
	"github.com/goobits/storefront/internal/i18n"

	"github.com/gin-gonic/gin"
)

// kindCodes 错误分类到业务状态码的映射
var kindCodes = map[string]int{
	constants.ErrorKindValidation: response.CodeBadRequest,
	constants.ErrorKindNetwork:    response.CodeBadGateway,
	constants.ErrorKindRateLimit:  response.CodeTooManyRequests,
	constants.ErrorKindServer:     response.CodeBadGateway,
	constants.ErrorKindCart:       response.CodeNotFound,
	constants.ErrorKindCheckout:   response.CodeBadRequest,
	constants.ErrorKindPayment:    response.CodeBadRequest,
	constants.ErrorKindProduct:    response.CodeNotFound,
	constants.ErrorKindShipping:   response.CodeBadRequest,
	constants.ErrorKindPrice:      response.CodeBadRequest,
	constants.ErrorKindInventory:  response.CodeBadRequest,
	constants.ErrorKindProcessor:  response.CodeBadGateway,
}

// respondCommerceError 将商城接口错误映射为分类文案响应。
// 对用户只暴露分类对应的固定句子，原始错误进日志。
func respondCommerceError(c *gin.Context, err error) {
	if errors.Is(err, commerce.ErrCartIDRequired) {
		shared.RespondError(c, response.CodeBadRequest, "error.invalid_request", nil)
		return
	}
	if errors.Is(err, commerce.ErrCartNotFound) {
		shared.RespondError(c, response.CodeNotFound, "error.category.cart", nil)
		return
	}
	kind := commerce.Kind(err)
	code, ok := kindCodes[kind]
	if !ok {
		code = response.CodeInternal
	}
	locale := i18n.ResolveLocale(c)
	msg := i18n.ErrorMessage(locale, kind)
	shared.RequestLog(c).Warnw("commerce_error",
		"kind", kind,
		"status", commerce.StatusOf(err),
		"error", err,
	)
	response.Error(c, code, msg)
}

// respondFailure 将结账编排的结构化失败映射为响应。
// 后端带回的 message 优先，否则用分类文案。
func respondFailure(c *gin.Context, failure *checkout.Failure) {
	if failure == nil {
		shared.RespondError(c, response.CodeInternal, "error.category.unknown", nil)
		return
	}
	code, ok := kindCodes[failure.Kind]
	if !ok {
		code = response.CodeInternal
	}
	msg := failure.Message
	if msg == "" {
		msg = i18n.ErrorMessage(i18n.ResolveLocale(c), failure.Kind)
	}
	shared.RespondErrorWithMsg(c, code, msg, nil)
}
