package memory

import (
	"testing"

	"github.com/getmockd/apisim/pkg/store"
	"github.com/getmockd/apisim/pkg/store/storetest"
)

func TestStore_Conformance(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store { return New() })
}
