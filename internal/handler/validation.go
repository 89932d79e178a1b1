package handler

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/sysu-ecnc-dev/staff-scheduler/backend/internal/domain"
	"github.com/sysu-ecnc-dev/staff-scheduler/backend/internal/utils"
)

type customValidation struct {
	tag         string
	fn          validator.Func
	translation string
}

var customValidations = []customValidation{
	{
		tag: "hhmm",
		fn: func(fl validator.FieldLevel) bool {
			_, err := utils.ParseClock(fl.Field().String())
			return err == nil
		},
		translation: "{0}必须是 HH:MM 格式的时间",
	},
	{
		tag: "date",
		fn: func(fl validator.FieldLevel) bool {
			_, err := utils.ParseDate(fl.Field().String())
			return err == nil
		},
		translation: "{0}必须是 YYYY-MM-DD 格式的日期",
	},
	{
		tag: "language",
		fn: func(fl validator.FieldLevel) bool {
			_, err := domain.ParseLanguage(fl.Field().String())
			return err == nil
		},
		translation: "{0}必须是 en、he、ru、fr 之一",
	},
}

func registerCustomValidations(validate *validator.Validate, trans ut.Translator) error {
	for _, cv := range customValidations {
		if err := validate.RegisterValidation(cv.tag, cv.fn); err != nil {
			return err
		}

		translation := cv.translation
		if err := validate.RegisterTranslation(cv.tag, trans,
			func(ut ut.Translator) error {
				return ut.Add(cv.tag, translation, true)
			},
			func(ut ut.Translator, fe validator.FieldError) string {
				t, _ := ut.T(fe.Tag(), fe.Field())
				return t
			},
		); err != nil {
			return err
		}
	}
	return nil
}
