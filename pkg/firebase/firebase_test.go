package firebase

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInitFirebaseRequiresCredentials(t *testing.T) {
	_, err := InitFirebase(context.Background(), "")
	assert.Error(t, err)

	_, err = InitFirebase(context.Background(), filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorContains(t, err, "not found")
}
