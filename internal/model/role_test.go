package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func codesOf(privs []Privilege) []string {
	out := make([]string, 0, len(privs))
	for _, p := range privs {
		out = append(out, p.Code)
	}
	return out
}

func TestDefaultPrivilegesFor(t *testing.T) {
	all := DefaultPrivileges

	assert.Len(t, DefaultPrivilegesFor(RoleMasterAdmin, all), len(all))

	admin := codesOf(DefaultPrivilegesFor(RoleAdmin, all))
	assert.Contains(t, admin, PrivProductDelete)
	assert.Contains(t, admin, PrivReportView)
	assert.NotContains(t, admin, PrivImportRun)
	assert.NotContains(t, admin, PrivExportRun)

	clerk := codesOf(DefaultPrivilegesFor(RoleClerk, all))
	assert.ElementsMatch(t, []string{PrivProductView, PrivTransactionView, PrivTransactionCreate}, clerk)

	assert.Empty(t, DefaultPrivilegesFor("GUEST", all))
}
