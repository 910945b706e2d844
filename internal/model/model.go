package model

const (
	MaxDescriptionLength  = 140
	MaxNameLength         = 50
	MaxIntroductionLength = 160
)

// All 返回需要迁移的全部模型
func All() []any {
	return []any{&User{}, &Tweet{}, &Like{}, &Reply{}, &Followship{}}
}
