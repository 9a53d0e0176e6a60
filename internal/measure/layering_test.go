package measure_test

import (
	"testing"

	"labcert/testutil"
)

func TestNoPresentationOrDriverDependencies(t *testing.T) {
	testutil.AssertNoTransitiveDependency(t, ".", testutil.Either(testutil.PresentationImport, testutil.DriverImport),
		"measure is pure calculation")
}
