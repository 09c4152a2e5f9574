package services

import (
	"errors"

	"gorm.io/gorm"
)

var (
	ErrTemplateNotFound    = errors.New("template not found")
	ErrTemplateNameExists  = errors.New("template with this name already exists")
	ErrVersionNotFound     = errors.New("version not found")
	ErrVersionNumberExists = errors.New("version number already exists for this template")

	ErrVersionNotEditable   = errors.New("only draft versions can be edited")
	ErrCrossTemplateParent  = errors.New("parent version must belong to the same template")
	ErrCrossTemplateCompare = errors.New("cannot compare versions from different templates")
	ErrRollbackArchived     = errors.New("cannot roll back to an archived version")

	// ErrStatusConflict means the status changed between read and write.
	ErrStatusConflict = errors.New("version status was changed by another request, please refresh and try again")
)

// duplicateAs replaces a unique index violation with the matching sentinel.
// It needs the connection opened with TranslateError.
func duplicateAs(err, sentinel error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return sentinel
	}
	return err
}
