package service

import (
	"errors"
	"mime/multipart"
	"strings"

	"github.com/jellydator/validation"

	"github.com/Leon-Chun/twitter-fullstack-2020/internal/apperr"
	"github.com/Leon-Chun/twitter-fullstack-2020/internal/model"
)

const (
	msgAllRequired       = "all fields are required"
	msgNameTooLong       = "name must be under 50 characters"
	msgPasswordMismatch  = "passwords do not match"
	msgAccountTaken      = "account is already registered"
	msgEmailTaken        = "email is already registered"
	msgDescriptionLength = "description must be 140 characters or fewer"
	msgDescriptionBlank  = "description must not be blank"
	msgCommentBlank      = "comment must not be blank"
	msgProfileNameBlank  = "name must not be blank"
	msgTooManyCharacters = "too many characters"
)

// notBlank 去掉首尾空白后不能为空
func notBlank(msg string) validation.Rule {
	return validation.By(func(value interface{}) error {
		s, _ := value.(string)
		if strings.TrimSpace(s) == "" {
			return errors.New(msg)
		}
		return nil
	})
}

// maxRunes 字符数（rune）上限
func maxRunes(n int, msg string) validation.Rule {
	return validation.RuneLength(0, n).Error(msg)
}

// invalid 把校验错误转为 apperr
func invalid(err error) error {
	if err == nil {
		return nil
	}
	return apperr.Invalid(err.Error())
}

// SignUpInput 注册表单
type SignUpInput struct {
	Account       string
	Name          string
	Email         string
	Password      string
	CheckPassword string
}

// Normalize 去掉账号、名称、邮箱首尾空白；密码保持原样
func (in SignUpInput) Normalize() SignUpInput {
	in.Account = strings.TrimSpace(in.Account)
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	return in
}

func (in SignUpInput) Validate() error {
	required := notBlank(msgAllRequired)
	for _, v := range []string{in.Account, in.Name, in.Email, in.Password, in.CheckPassword} {
		if err := validation.Validate(v, required); err != nil {
			return invalid(err)
		}
	}
	if err := validation.Validate(in.Name, maxRunes(model.MaxNameLength-1, msgNameTooLong)); err != nil {
		return invalid(err)
	}
	if in.Password != in.CheckPassword {
		return apperr.Invalid(msgPasswordMismatch)
	}
	return nil
}

// SettingsInput 账号设置；Password 为空表示不修改
type SettingsInput struct {
	Account       string
	Name          string
	Email         string
	Password      string
	CheckPassword string
}

func (in SettingsInput) Normalize() SettingsInput {
	in.Account = strings.TrimSpace(in.Account)
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	return in
}

func (in SettingsInput) Validate() error {
	required := notBlank(msgAllRequired)
	for _, v := range []string{in.Account, in.Name, in.Email} {
		if err := validation.Validate(v, required); err != nil {
			return invalid(err)
		}
	}
	if err := validation.Validate(in.Name, maxRunes(model.MaxNameLength-1, msgNameTooLong)); err != nil {
		return invalid(err)
	}
	if in.Password != "" || in.CheckPassword != "" {
		if err := validation.Validate(in.Password, notBlank(msgAllRequired)); err != nil {
			return invalid(err)
		}
		if in.Password != in.CheckPassword {
			return apperr.Invalid(msgPasswordMismatch)
		}
	}
	return nil
}

// ValidateDescription 推文内容：不超过 140 字且非空白
func ValidateDescription(description string) error {
	return invalid(validation.Validate(description,
		maxRunes(model.MaxDescriptionLength, msgDescriptionLength),
		notBlank(msgDescriptionBlank),
	))
}

// ValidateComment 回复内容非空白
func ValidateComment(comment string) error {
	return invalid(validation.Validate(comment, notBlank(msgCommentBlank)))
}

// ProfileInput 个人资料；Avatar/Cover 为可选的新图片
type ProfileInput struct {
	Name         string
	Introduction string
	Avatar       *multipart.FileHeader
	Cover        *multipart.FileHeader
}

func (in ProfileInput) Validate() error {
	if err := validation.Validate(in.Name, notBlank(msgProfileNameBlank)); err != nil {
		return invalid(err)
	}
	if err := validation.Validate(in.Name, maxRunes(model.MaxNameLength, msgTooManyCharacters)); err != nil {
		return invalid(err)
	}
	return invalid(validation.Validate(in.Introduction, maxRunes(model.MaxIntroductionLength, msgTooManyCharacters)))
}
