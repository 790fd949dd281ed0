package store

import (
	"testing"
)

func TestAccountKeyString(t *testing.T) {
	key := AccountKey{HolderID: "52998224725", BranchCode: "0001", AccountNumber: 7}
	if got := key.String(); got != "52998224725-0001-7" {
		t.Errorf("Expected 52998224725-0001-7, got %s", got)
	}
}
