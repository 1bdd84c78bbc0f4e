package service

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"gorm.io/gorm"
)

const (
	msgRequired = "This field is required."
	msgBlank    = "This field may not be blank."
	msgMaxLen   = "Ensure this field has no more than %d characters."
	msgMinLen   = "Ensure this field has at least %d characters."
	msgChoice   = "\"%s\" is not a valid choice."
	msgNoObject = "Invalid pk \"%d\" - object does not exist."
)

// textRule validates one string field of an input. On a partial update a
// nil value means "unchanged"; otherwise a nil value for a required field is
// an error.
type textRule struct {
	field      string
	required   bool
	allowBlank bool
	max        int
}

func (r textRule) check(v *ValidationError, val *string, partial bool) {
	if val == nil {
		if r.required && !partial {
			v.Add(r.field, msgRequired)
		}
		return
	}
	*val = strings.TrimSpace(*val)
	if *val == "" {
		if !r.allowBlank {
			v.Add(r.field, msgBlank)
		}
		return
	}
	if r.max > 0 && utf8.RuneCountInString(*val) > r.max {
		v.Add(r.field, fmt.Sprintf(msgMaxLen, r.max))
	}
}

func assign[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

// checkRef validates a foreign key field: present unless partial, and
// pointing at an existing row of model.
func checkRef(ctx context.Context, db *gorm.DB, v *ValidationError, field string, model any, id *uint, partial bool) error {
	if id == nil {
		if !partial {
			v.Add(field, msgRequired)
		}
		return nil
	}
	ok, err := exists(ctx, db, model, *id)
	if err != nil {
		return err
	}
	if !ok {
		v.Add(field, fmt.Sprintf(msgNoObject, *id))
	}
	return nil
}
