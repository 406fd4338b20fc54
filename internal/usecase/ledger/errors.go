package ledger

import (
	"errors"

	"gorm.io/gorm"
)

func isDuplicate(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}
