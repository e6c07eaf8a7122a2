package docs

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewSwagger(t *testing.T) {
	doc := string(NewSwagger().MustToJson())

	for _, path := range []string{"/state", "/camera/start", "/camera/stop", "/identifier", "/enrollments", "/faces", "/faces/{id}"} {
		assert.Contains(t, doc, `"`+path+`"`)
	}
}
