package questionstore

type Question struct {
	ID             int64  `gorm:"primaryKey;autoIncrement:false"`
	Title          string `gorm:"not null"`
	TitleSlug      string
	Difficulty     string `gorm:"index;not null"`
	Saved          bool   `gorm:"index"`
	Solved         bool   `gorm:"index"`
	TopLiked       bool
	TopInterviewed bool

	Tags      []Tag     `gorm:"many2many:question_tags;"`
	Companies []Company `gorm:"many2many:question_companies;"`
}

type Tag struct {
	ID   uint   `gorm:"primaryKey"`
	Name string `gorm:"uniqueIndex;not null"`
}

type Company struct {
	ID   uint   `gorm:"primaryKey"`
	Name string `gorm:"uniqueIndex;not null"`
}
