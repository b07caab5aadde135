package services

import (
	"testing"

	"learning-api/internal/database"

	"github.com/stretchr/testify/require"
)

const (
	testCourseProduct   = "prod_course"
	testSubProduct      = "prod_sub"
	testLifetimeProduct = "prod_life"
	testFreeLesson      = "greetings_l1"
)

func newTestStore(t *testing.T) *database.Store {
	t.Helper()

	store, err := database.OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	return store
}

func newTestCatalog() *ProductCatalog {
	return NewProductCatalog(testCourseProduct, testSubProduct, testLifetimeProduct, testFreeLesson)
}
