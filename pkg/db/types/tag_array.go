package dbtypes

import (
	"database/sql/driver"
	"fmt"

	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// TagArray is a list of product tags. Postgres stores it as text[]; sqlite
// keeps the same array literal in a text column.
type TagArray []string

func (a *TagArray) Scan(src any) error {
	var arr pq.StringArray
	if err := arr.Scan(src); err != nil {
		return fmt.Errorf("TagArray: %w", err)
	}
	if arr == nil {
		arr = pq.StringArray{}
	}
	*a = TagArray(arr)
	return nil
}

func (a TagArray) Value() (driver.Value, error) {
	if len(a) == 0 {
		return "{}", nil
	}
	return pq.StringArray(a).Value()
}

func (TagArray) GormDataType() string {
	return "tags"
}

func (TagArray) GormDBDataType(db *gorm.DB, _ *schema.Field) string {
	if db.Dialector.Name() == "postgres" {
		return "text[]"
	}
	return "text"
}
