package snowflake

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildUnpivotQuery(t *testing.T) {
	query := BuildUnpivotQuery("ANALYTICS.MRT_ADMIN.CANDIDATE_ISSUE_RATINGS__CURRENT", "CANDIDATE_NAME_FIRST_LAST")

	assert.True(t, strings.HasPrefix(query, "SELECT"))
	assert.Contains(t, query, "CANDIDATE_NAME_FIRST_LAST AS POLITICIAN_NAME")
	assert.Contains(t, query, "FROM ANALYTICS.MRT_ADMIN.CANDIDATE_ISSUE_RATINGS__CURRENT")
	assert.Contains(t, query, "UNPIVOT(ISSUE_VALUE FOR ISSUE_COL IN (")

	for _, col := range issueColumns {
		assert.Contains(t, query, col)
	}

	// Last column must not carry a trailing comma.
	assert.Contains(t, query, "ISRAEL\n))")
}

func TestBuildUnpivotQueryTrimsInputs(t *testing.T) {
	query := BuildUnpivotQuery("  MY.VIEW  ", "  NAME_COL ")
	assert.Contains(t, query, "NAME_COL AS POLITICIAN_NAME")
	assert.Contains(t, query, "FROM MY.VIEW")
}
