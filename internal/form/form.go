// Package form constrains which fields a client may set on a Post or
// Comment and validates them before any model mutation.
package form

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

func init() {
	// report errors under the wire field name, not the Go field name
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
}

// PostForm 发帖/编辑表单：text 必填，image 与 group 可选
type PostForm struct {
	Text     string `form:"text" json:"text" validate:"required"`
	GroupID  string `form:"group_id" json:"group_id" validate:"omitempty,uuid4"`
	ImageURL string `form:"image_url" json:"image_url" validate:"omitempty,url"`
}

// CommentForm 评论表单：仅 text
type CommentForm struct {
	Text string `form:"text" json:"text" validate:"required"`
}

// SignupForm 注册表单
type SignupForm struct {
	Username  string `form:"username" json:"username" validate:"required,max=150,alphanum"`
	FirstName string `form:"first_name" json:"first_name" validate:"max=150"`
	LastName  string `form:"last_name" json:"last_name" validate:"max=150"`
	Email     string `form:"email" json:"email" validate:"omitempty,email"`
	Password  string `form:"password" json:"password" validate:"required,min=8"`
}

// LoginForm 登录表单
type LoginForm struct {
	Username string `form:"username" json:"username" validate:"required"`
	Password string `form:"password" json:"password" validate:"required"`
}

var messages = map[string]string{
	"required": "this field is required",
	"max":      "value too long",
	"min":      "value too short",
	"email":    "invalid email address",
	"url":      "invalid URL",
	"uuid4":    "invalid identifier",
	"alphanum": "letters and digits only",
}

// Check validates any form value and maps failures to field-level
// messages keyed by the wire field name.
func Check(v any) map[string]string {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verr validator.ValidationErrors
	if !errors.As(err, &verr) {
		return map[string]string{"_": err.Error()}
	}
	out := make(map[string]string, len(verr))
	for _, fe := range verr {
		msg, ok := messages[fe.Tag()]
		if !ok {
			msg = "invalid value"
		}
		out[fe.Field()] = msg
	}
	return out
}
