package model

import "time"

// Post 内容主体；author 删除级联删除，group 删除置空
type Post struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	AuthorID  string    `gorm:"type:varchar(36);index:idx_post_author;not null" json:"author_id"`
	GroupID   *string   `gorm:"type:varchar(36);index:idx_post_group" json:"group_id"`
	Text      string    `gorm:"type:text;not null" json:"text"`
	ImageURL  string    `gorm:"type:varchar(512)" json:"image_url,omitempty"`
	CreatedAt time.Time `gorm:"index:idx_post_created" json:"created_at"`
	UpdatedAt time.Time `json:"-"`

	Author User   `gorm:"foreignKey:AuthorID" json:"-"`
	Group  *Group `gorm:"foreignKey:GroupID" json:"-"`
}

func (Post) TableName() string { return "posts" }

// TitleChars is how much of the text the derived detail title shows.
const TitleChars = 30

// DetailTitle derives the detail-page title from the leading text.
func (p Post) DetailTitle() string {
	runes := []rune(p.Text)
	if len(runes) > TitleChars {
		runes = runes[:TitleChars]
	}
	return "Пост " + string(runes)
}
