package ez

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	resp "portfolio-api/internal/transport/http/response"
)

// 校验错误中的字段名使用 json tag
func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(jsonName)
	}
}

func jsonName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	switch name {
	case "-":
		return ""
	case "":
		return f.Name
	}
	return name
}

// FromBindError 把绑定/校验失败转成 400（请求体超限为 413）
func FromBindError(err error) *AErr {
	var mbe *http.MaxBytesError
	if errors.As(err, &mbe) {
		return &AErr{Code: http.StatusRequestEntityTooLarge, Msg: "request body too large", Err: err}
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return &AErr{Code: http.StatusBadRequest, Msg: "Invalid request body", Err: err}
	}
	fields := make([]resp.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, resp.FieldError{Field: fe.Field(), Message: fieldMessage(fe)})
	}
	return &AErr{Code: http.StatusBadRequest, Msg: "Validation failed", Err: err, Fields: fields}
}

func fieldMessage(fe validator.FieldError) string {
	f := fe.Field()
	switch fe.Tag() {
	case "required":
		return f + " is required"
	case "email":
		return "Please provide a valid email"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", f, fe.Param())
	case "max":
		return fmt.Sprintf("%s cannot be more than %s characters", f, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", f, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "url":
		return f + " must be a valid URL"
	}
	return f + " is invalid"
}
