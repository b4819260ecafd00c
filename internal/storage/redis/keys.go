package redis

import (
	"fmt"

	"github.com/mcoot/loginpage/internal/model"
)

// Key prefix for all login page data
const keyPrefix = "loginpage"

// formKey returns the Redis key for a Form record
func formKey(id model.FormID) string {
	return fmt.Sprintf("%s:form:%s", keyPrefix, id)
}

// submittingKey returns the Redis key for a form's in-flight flag
func submittingKey(id model.FormID) string {
	return fmt.Sprintf("%s:form:%s:submitting", keyPrefix, id)
}
